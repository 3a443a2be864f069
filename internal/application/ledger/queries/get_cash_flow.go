package queries

import (
	"context"
	"fmt"
	"sort"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// GetCashFlowQuery represents a query to generate a cash flow statement over a tick range
type GetCashFlowQuery struct {
	Slot     string
	FromTick *int64
	ToTick   *int64
}

// GetCashFlowResponse represents the cash flow statement result
type GetCashFlowResponse struct {
	Period       string              `json:"period" yaml:"period"`
	Categories   []*CategoryCashFlow `json:"categories" yaml:"categories"`
	TotalInflow  int                 `json:"totalInflow" yaml:"total_inflow"`
	TotalOutflow int                 `json:"totalOutflow" yaml:"total_outflow"`
	NetFlow      int                 `json:"netFlow" yaml:"net_flow"`
}

// CategoryCashFlow represents cash flow for a specific category
type CategoryCashFlow struct {
	Category     string `json:"category" yaml:"category"`
	TotalInflow  int    `json:"totalInflow" yaml:"total_inflow"`
	TotalOutflow int    `json:"totalOutflow" yaml:"total_outflow"`
	NetFlow      int    `json:"netFlow" yaml:"net_flow"`
	Transactions int    `json:"transactions" yaml:"transactions"`
}

// GetCashFlowHandler handles the GetCashFlow query
type GetCashFlowHandler struct {
	transactionRepo ledger.TransactionRepository
}

// NewGetCashFlowHandler creates a new GetCashFlowHandler
func NewGetCashFlowHandler(transactionRepo ledger.TransactionRepository) *GetCashFlowHandler {
	return &GetCashFlowHandler{
		transactionRepo: transactionRepo,
	}
}

// Handle executes the GetCashFlow query
func (h *GetCashFlowHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetCashFlowQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetCashFlowQuery")
	}

	slot, err := shared.NewSaveSlot(query.Slot)
	if err != nil {
		return nil, fmt.Errorf("invalid save slot: %w", err)
	}

	opts := ledger.QueryOptions{
		FromTick: query.FromTick,
		ToTick:   query.ToTick,
		Limit:    0, // No limit - get all transactions
		OrderBy:  "tick ASC",
	}

	transactions, err := h.transactionRepo.FindBySlot(ctx, slot, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	return calculateCashFlow(query, transactions), nil
}

func calculateCashFlow(query *GetCashFlowQuery, transactions []*ledger.Transaction) *GetCashFlowResponse {
	categoryMap := make(map[ledger.Category]*CategoryCashFlow)
	for _, cat := range ledger.AllCategories() {
		categoryMap[cat] = &CategoryCashFlow{Category: cat.String()}
	}

	resp := &GetCashFlowResponse{Period: formatPeriod(query)}

	for _, tx := range transactions {
		flow, ok := categoryMap[tx.Category()]
		if !ok {
			continue
		}
		flow.Transactions++

		amount := tx.Amount()
		if amount > 0 {
			flow.TotalInflow += amount
			resp.TotalInflow += amount
		} else {
			flow.TotalOutflow += -amount // Store as positive value
			resp.TotalOutflow += -amount
		}
		flow.NetFlow = flow.TotalInflow - flow.TotalOutflow
	}

	// Only categories with transactions, in a stable order
	resp.Categories = make([]*CategoryCashFlow, 0, len(categoryMap))
	for _, flow := range categoryMap {
		if flow.Transactions > 0 {
			resp.Categories = append(resp.Categories, flow)
		}
	}
	sort.Slice(resp.Categories, func(i, j int) bool {
		return resp.Categories[i].Category < resp.Categories[j].Category
	})

	resp.NetFlow = resp.TotalInflow - resp.TotalOutflow
	return resp
}

func formatPeriod(query *GetCashFlowQuery) string {
	from, to := "start", "now"
	if query.FromTick != nil {
		from = fmt.Sprintf("tick %d", *query.FromTick)
	}
	if query.ToTick != nil {
		to = fmt.Sprintf("tick %d", *query.ToTick)
	}
	return from + " to " + to
}
