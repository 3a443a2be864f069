package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/neonrails-go/internal/adapters/content"
	"github.com/andrescamacho/neonrails-go/internal/application/game"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

// simulateOptions holds the simulate flags
type simulateOptions struct {
	ticks            int
	seed             uint64
	autoBuild        bool
	autoUpgrade      bool
	eventProbability float64
	online           bool
}

// simulateSummary is what a headless run reports
type simulateSummary struct {
	Snapshot game.Snapshot
	Builds   int
	Upgrades int
	Events   map[economy.Impact]int
}

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a network headless for a number of ticks",
		Long: `Run a new network headless and print a summary.

Ticks are fired back to back instead of on the tick interval, and every
outstanding provider request is settled before the next tick. Content comes
from the offline provider unless --online is given.

Examples:
  neonrails simulate --ticks 100
  neonrails simulate --ticks 500 --auto-build --auto-upgrade --seed 7
  neonrails simulate --ticks 50 --event-probability 0.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("event-probability") {
				opts.eventProbability = -1
			}
			return runSimulate(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.ticks, "ticks", 100, "Number of ticks to run")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "Seed for event rolls and station placement")
	cmd.Flags().BoolVar(&opts.autoBuild, "auto-build", false, "Build a station whenever credits allow")
	cmd.Flags().BoolVar(&opts.autoUpgrade, "auto-upgrade", false, "Upgrade the cheapest station whenever credits allow")
	cmd.Flags().Float64Var(&opts.eventProbability, "event-probability", 0, "Override the per-tick random event chance")
	cmd.Flags().BoolVar(&opts.online, "online", false, "Use the configured content provider instead of the offline one")

	return cmd
}

func runSimulate(cmd *cobra.Command, opts simulateOptions) error {
	if opts.ticks < 1 {
		return fmt.Errorf("--ticks must be at least 1")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	balance := cfg.Game.Balance()
	if opts.eventProbability >= 0 {
		if opts.eventProbability > 1 {
			return fmt.Errorf("--event-probability must be between 0 and 1")
		}
		balance.RandomEventProbability = opts.eventProbability
	}

	var provider economy.ContentProvider = content.NewOfflineProvider(content.SharedRandom{})
	if opts.online {
		provider, err = newContentProvider(cmd.Context(), cfg.Content, nil, logger)
		if err != nil {
			return err
		}
	}

	summary, err := simulate(cmd.Context(), balance, provider, opts, logger)
	if err != nil {
		return err
	}

	displaySimulation(cmd.OutOrStdout(), opts.ticks, summary)
	return nil
}

// simulate runs a fresh session on manual ticks and tallies what happened
func simulate(ctx context.Context, balance economy.Balance, provider economy.ContentProvider, opts simulateOptions, logger *zap.Logger) (*simulateSummary, error) {
	summary := &simulateSummary{Events: make(map[economy.Impact]int)}
	ticks := game.NewManualTickSource()

	session, err := game.NewSession(game.Options{
		Balance:  balance,
		Provider: provider,
		Ticks:    ticks,
		Random:   rand.New(rand.NewPCG(opts.seed, opts.seed)),
		Logger:   logger,
		Observers: []game.Observer{game.ObserverFunc(func(change game.Change) {
			// Runs on the session goroutine; the summary is read after Run returns
			switch change.Cause {
			case game.CauseBuildCommitted:
				summary.Builds++
			case game.CauseUpgrade:
				summary.Upgrades++
			case game.CauseEvent:
				if change.Event != nil {
					summary.Events[change.Event.Impact]++
				}
			}
		})},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return session.Run(gctx) })

	result, err := drive(gctx, session, ticks, opts)
	cancel()
	if waitErr := g.Wait(); waitErr != nil && err == nil {
		err = waitErr
	}
	if err != nil {
		return nil, err
	}

	summary.Snapshot = result
	return summary, nil
}

func drive(ctx context.Context, session *game.Session, ticks *game.ManualTickSource, opts simulateOptions) (game.Snapshot, error) {
	balance := session.Balance()

	snap, err := session.Settle(ctx)
	if err != nil {
		return snap, err
	}

	for i := 0; i < opts.ticks; i++ {
		if opts.autoBuild && snap.CanBuild {
			if _, err := session.BuildStation(ctx); err != nil {
				return snap, err
			}
		}
		if opts.autoUpgrade {
			if id, ok := cheapestUpgrade(snap.State, balance); ok {
				if _, err := session.UpgradeStation(ctx, id); err != nil {
					return snap, err
				}
			}
		}

		// Builds resolve before the tick so their station earns on it
		if snap, err = session.Settle(ctx); err != nil {
			return snap, err
		}

		if !ticks.Fire(ctx) {
			return snap, ctx.Err()
		}
		if snap, err = session.Settle(ctx); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// cheapestUpgrade picks the affordable upgrade with the lowest cost
func cheapestUpgrade(s economy.State, b economy.Balance) (string, bool) {
	best, bestCost := "", 0
	for _, st := range s.Stations {
		if !economy.CanUpgrade(s, b, st.ID) {
			continue
		}
		if cost := economy.UpgradeCost(st, b); best == "" || cost < bestCost {
			best, bestCost = st.ID, cost
		}
	}
	return best, best != ""
}

func displaySimulation(out io.Writer, ticks int, summary *simulateSummary) {
	state := summary.Snapshot.State

	fmt.Fprintf(out, "\nSIMULATION (%d ticks)\n", ticks)
	fmt.Fprintln(out, "─────────────────────────────────────────────")
	fmt.Fprintf(out, "  %-24s %d\n", "Tick:", state.Tick)
	fmt.Fprintf(out, "  %-24s %s\n", "Credits:", formatCredits(state.Credits))
	fmt.Fprintf(out, "  %-24s %d\n", "Reputation:", state.Reputation)
	fmt.Fprintf(out, "  %-24s %.1f\n", "Energy:", state.Energy)
	fmt.Fprintf(out, "  %-24s %s/tick\n", "Income:", formatCredits(state.ActiveIncome()))
	fmt.Fprintf(out, "  %-24s %d%%\n", "Network load:", summary.Snapshot.Status.NetworkLoad)
	fmt.Fprintf(out, "  %-24s %d%%\n", "Passenger satisfaction:", summary.Snapshot.Status.PassengerSatisfaction)
	fmt.Fprintf(out, "  %-24s %d\n", "Stations built:", summary.Builds)
	fmt.Fprintf(out, "  %-24s %d\n", "Upgrades:", summary.Upgrades)
	fmt.Fprintf(out, "  %-24s %d positive, %d negative, %d neutral\n", "Events:",
		summary.Events[economy.ImpactPositive],
		summary.Events[economy.ImpactNegative],
		summary.Events[economy.ImpactNeutral],
	)

	fmt.Fprintln(out, "\nSTATIONS")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tType\tLevel\tPassengers\tRevenue")
	fmt.Fprintln(w, "──\t────\t────\t─────\t──────────\t───────")
	for _, st := range state.Stations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			st.ID, st.Name, st.Type, st.Level, st.Passengers, formatCredits(st.RevenuePerTick))
	}
	w.Flush()
	fmt.Fprintln(out)
}
