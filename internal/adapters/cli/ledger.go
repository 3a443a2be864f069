package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/neonrails-go/internal/adapters/persistence"
	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/application/ledger/queries"
	"github.com/andrescamacho/neonrails-go/internal/application/setup"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/config"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/database"
)

// ledgerFilter holds the flags shared by the ledger subcommands
type ledgerFilter struct {
	slot     string
	fromTick int64
	toTick   int64
}

func (f *ledgerFilter) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.slot, "slot", "", "Save slot (default: daemon.save_slot)")
	cmd.Flags().Int64Var(&f.fromTick, "from-tick", 0, "First tick to include")
	cmd.Flags().Int64Var(&f.toTick, "to-tick", 0, "Last tick to include")
}

// ticks returns the tick bounds that were set on the command line
func (f *ledgerFilter) ticks(cmd *cobra.Command) (from, to *int64) {
	if cmd.Flags().Changed("from-tick") {
		from = &f.fromTick
	}
	if cmd.Flags().Changed("to-tick") {
		to = &f.toTick
	}
	return from, to
}

func (f *ledgerFilter) resolveSlot(cfg *config.Config) string {
	if f.slot != "" {
		return f.slot
	}
	return cfg.Daemon.SaveSlot
}

// NewLedgerCommand creates the ledger command with subcommands
func NewLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Financial ledger operations",
		Long: `View and analyze the credit movements of a network.

The ledger records every change of the credit balance: fares collected on each
tick, station builds and their refunds, upgrades, and random event adjustments.

Examples:
  neonrails ledger list
  neonrails ledger list --category CONSTRUCTION --limit 20
  neonrails ledger list --type EVENT_ADJUSTMENT --from-tick 100
  neonrails ledger cash-flow --from-tick 0 --to-tick 500`,
	}

	// Add subcommands
	cmd.AddCommand(newLedgerListCommand())
	cmd.AddCommand(newLedgerCashFlowCommand())

	return cmd
}

// newLedgerListCommand creates the ledger list subcommand
func newLedgerListCommand() *cobra.Command {
	var (
		filter   ledgerFilter
		category string
		txType   string
		limit    int
		offset   int
		orderBy  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long: `List ledger transactions with optional filtering.

Transactions can be filtered by tick range, category, and type.
Results are ordered by tick descending (newest first) by default.

Categories:
  OPERATING_REVENUE  - Fares collected on ticks
  CONSTRUCTION       - Station builds, refunds and upgrades
  RANDOM_EVENTS      - Credit changes of random events

Transaction Types:
  TICK_INCOME        - Fares of active stations
  STATION_BUILD      - Build cost debited when construction starts
  BUILD_REFUND       - Build cost returned after a failed construction
  STATION_UPGRADE    - Upgrade cost
  EVENT_ADJUSTMENT   - Random event credit change

Examples:
  neonrails ledger list --limit 10
  neonrails ledger list --category RANDOM_EVENTS
  neonrails ledger list --from-tick 100 --to-tick 200 --order-by "tick ASC"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			from, to := filter.ticks(cmd)
			query := &queries.GetTransactionsQuery{
				Slot:     filter.resolveSlot(cfg),
				FromTick: from,
				ToTick:   to,
				Limit:    limit,
				Offset:   offset,
				OrderBy:  orderBy,
			}
			if category != "" {
				query.Category = &category
			}
			if txType != "" {
				query.TransactionType = &txType
			}

			response, err := sendLedgerQuery(cmd.Context(), cfg, query)
			if err != nil {
				return fmt.Errorf("failed to query transactions: %w", err)
			}

			displayTransactionList(cmd.OutOrStdout(), response.(*queries.GetTransactionsResponse))
			return nil
		},
	}

	filter.bind(cmd)
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&txType, "type", "", "Filter by transaction type")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of transactions to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of transactions to skip")
	cmd.Flags().StringVar(&orderBy, "order-by", "tick DESC", `Sort order ("tick DESC" or "tick ASC")`)

	return cmd
}

// newLedgerCashFlowCommand creates the cash flow report subcommand
func newLedgerCashFlowCommand() *cobra.Command {
	var filter ledgerFilter

	cmd := &cobra.Command{
		Use:   "cash-flow",
		Short: "Generate cash flow statement",
		Long: `Generate a cash flow statement grouped by category.

The cash flow statement shows:
- Total inflow (income) by category
- Total outflow (expenses) by category
- Net cash flow by category
- Number of transactions per category

Example:
  neonrails ledger cash-flow --from-tick 0 --to-tick 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			from, to := filter.ticks(cmd)
			response, err := sendLedgerQuery(cmd.Context(), cfg, &queries.GetCashFlowQuery{
				Slot:     filter.resolveSlot(cfg),
				FromTick: from,
				ToTick:   to,
			})
			if err != nil {
				return fmt.Errorf("failed to generate cash flow report: %w", err)
			}

			displayCashFlow(cmd.OutOrStdout(), response.(*queries.GetCashFlowResponse))
			return nil
		},
	}

	filter.bind(cmd)

	return cmd
}

// sendLedgerQuery connects to the database and dispatches a ledger query
func sendLedgerQuery(ctx context.Context, cfg *config.Config, query common.Request) (common.Response, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	defer database.Close(db)

	registry := setup.NewHandlerRegistry(persistence.NewGormTransactionRepository(db), shared.NewRealClock(), nil)
	med, err := registry.CreateConfiguredMediator()
	if err != nil {
		return nil, err
	}
	return med.Send(ctx, query)
}

// displayTransactionList formats and displays transaction list
func displayTransactionList(out io.Writer, response *queries.GetTransactionsResponse) {
	if len(response.Transactions) == 0 {
		fmt.Fprintln(out, "No transactions found")
		return
	}

	fmt.Fprintf(out, "\nTRANSACTIONS (Showing %d of %d total)\n", len(response.Transactions), response.Total)
	fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────────────────")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Tick\tType\tCategory\tAmount\tBalance\tDescription")
	fmt.Fprintln(w, "────\t────\t────────\t──────\t───────\t───────────")

	for _, tx := range response.Transactions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			tx.Tick,
			tx.Type,
			tx.Category,
			formatAmount(tx.Amount),
			formatCredits(tx.BalanceAfter),
			tx.Description,
		)
	}

	w.Flush()
	fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────────────────")
	fmt.Fprintf(out, "Total: %d transactions\n\n", response.Total)
}

// displayCashFlow formats and displays cash flow statement
func displayCashFlow(out io.Writer, response *queries.GetCashFlowResponse) {
	fmt.Fprintf(out, "\nCASH FLOW STATEMENT\n")
	fmt.Fprintf(out, "Period: %s\n", response.Period)
	fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────────────────")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Category\tInflow\tOutflow\tNet\tTransactions")
	fmt.Fprintln(w, "────────\t──────\t───────\t───\t────────────")

	for _, flow := range response.Categories {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			flow.Category,
			formatCredits(flow.TotalInflow),
			formatCredits(flow.TotalOutflow),
			formatAmount(flow.NetFlow),
			flow.Transactions,
		)
	}

	w.Flush()
	fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────────────────")
	fmt.Fprintf(out, "  %-25s %s\n", "Total Inflow:", formatCredits(response.TotalInflow))
	fmt.Fprintf(out, "  %-25s %s\n", "Total Outflow:", formatCredits(response.TotalOutflow))
	fmt.Fprintf(out, "  %-25s %s\n\n", "Net Cash Flow:", formatAmount(response.NetFlow))
}
