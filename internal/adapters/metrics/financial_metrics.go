package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	ledgerQueries "github.com/andrescamacho/neonrails-go/internal/application/ledger/queries"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
)

// FinancialMetricsCollector handles ledger metrics: recorded transactions and
// the cash flow of a save slot, polled through the mediator
type FinancialMetricsCollector struct {
	mediator common.Mediator
	slot     string
	logger   *zap.Logger

	// Transaction metrics
	transactionsTotal *prometheus.CounterVec
	transactionAmount *prometheus.HistogramVec

	// Cash flow metrics
	totalInflow  *prometheus.GaugeVec
	totalOutflow *prometheus.GaugeVec
	netFlow      prometheus.Gauge
}

// NewFinancialMetricsCollector creates a new financial metrics collector
func NewFinancialMetricsCollector(mediator common.Mediator, slot string, logger *zap.Logger) *FinancialMetricsCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinancialMetricsCollector{
		mediator: mediator,
		slot:     slot,
		logger:   logger.Named("metrics"),

		// Transaction count by type/category
		transactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transactions_total",
				Help:      "Total number of ledger transactions by type and category",
			},
			[]string{"type", "category"},
		),

		// Transaction amount distribution
		transactionAmount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transaction_amount",
				Help:      "Ledger transaction amount distribution",
				Buckets:   []float64{5, 10, 25, 50, 100, 200, 500, 1000, 5000},
			},
			[]string{"type", "category"},
		),

		// Total inflow by category
		totalInflow: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cash_inflow",
				Help:      "Total credits gained by category",
			},
			[]string{"category"},
		),

		// Total outflow by category
		totalOutflow: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cash_outflow",
				Help:      "Total credits spent or lost by category",
			},
			[]string{"category"},
		),

		// Net flow
		netFlow: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "net_cash_flow",
			Help:      "Net cash flow (inflow - outflow)",
		}),
	}
}

// Register registers all financial metrics with the Prometheus registry
func (c *FinancialMetricsCollector) Register() error {
	return register(c.transactionsTotal, c.transactionAmount, c.totalInflow, c.totalOutflow, c.netFlow)
}

// RecordTransaction records a persisted transaction.
// Matches the ledger's TransactionRecorded callback.
func (c *FinancialMetricsCollector) RecordTransaction(tx *ledger.Transaction) {
	txType := tx.TransactionType().String()
	category := tx.Category().String()

	c.transactionsTotal.WithLabelValues(txType, category).Inc()

	// Histogram of absolute amounts
	amount := tx.Amount()
	if amount < 0 {
		amount = -amount
	}
	c.transactionAmount.WithLabelValues(txType, category).Observe(float64(amount))
}

// Run polls the cash flow every interval until ctx is cancelled
func (c *FinancialMetricsCollector) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Do initial poll immediately
	c.UpdateCashFlow(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.UpdateCashFlow(ctx)
		}
	}
}

// UpdateCashFlow fetches the all-time cash flow and updates the gauges
func (c *FinancialMetricsCollector) UpdateCashFlow(ctx context.Context) {
	response, err := c.mediator.Send(ctx, &ledgerQueries.GetCashFlowQuery{Slot: c.slot})
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("failed to fetch cash flow", zap.String("slot", c.slot), zap.Error(err))
		}
		return
	}

	flow, ok := response.(*ledgerQueries.GetCashFlowResponse)
	if !ok {
		c.logger.Warn("unexpected response type for cash flow query", zap.String("type", fmt.Sprintf("%T", response)))
		return
	}

	for _, category := range flow.Categories {
		c.totalInflow.WithLabelValues(category.Category).Set(float64(category.TotalInflow))
		c.totalOutflow.WithLabelValues(category.Category).Set(float64(category.TotalOutflow))
	}
	c.netFlow.Set(float64(flow.NetFlow))
}
