package steps

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/neonrails-go/internal/adapters/persistence"
	"github.com/andrescamacho/neonrails-go/internal/application/common"
	ledgerCmd "github.com/andrescamacho/neonrails-go/internal/application/ledger/commands"
	"github.com/andrescamacho/neonrails-go/internal/application/ledger/queries"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
	"github.com/andrescamacho/neonrails-go/test/helpers"
)

type ledgerContext struct {
	mediator     common.Mediator
	runner       *sessionRunner
	stopRecorder context.CancelFunc
	recorderDone chan error
}

func (lc *ledgerContext) reset() error {
	var errs []error
	if lc.runner != nil {
		errs = append(errs, lc.runner.stop())
	}
	if lc.stopRecorder != nil {
		lc.stopRecorder()
		errs = append(errs, <-lc.recorderDone)
	}
	lc.mediator = nil
	lc.runner = nil
	lc.stopRecorder = nil
	lc.recorderDone = nil
	return errors.Join(errs...)
}

// Given steps

func (lc *ledgerContext) anEmptyLedger() error {
	return helpers.TruncateAllTables()
}

func (lc *ledgerContext) aSessionRecordingItsLedgerToSlot(slot string) error {
	med := common.NewMediator()
	repo := persistence.NewGormTransactionRepository(helpers.SharedTestDB)
	if err := ledgerCmd.RegisterHandlers(med, repo, shared.NewRealClock(), nil); err != nil {
		return err
	}
	if err := queries.RegisterHandlers(med, repo); err != nil {
		return err
	}
	lc.mediator = med

	recorder := ledgerCmd.NewRecorder(med, slot, nil)
	ctx, cancel := context.WithCancel(context.Background())
	lc.stopRecorder = cancel
	lc.recorderDone = make(chan error, 1)
	go func() { lc.recorderDone <- recorder.Run(ctx) }()

	runner, err := startSessionRunner(nil, recorder)
	if err != nil {
		return err
	}
	lc.runner = runner
	return nil
}

func (lc *ledgerContext) theRecordedSessionCannotBuildStations() error {
	lc.runner.provider.SetStation(economy.StationDetails{}, errors.New("content service unavailable"))
	return nil
}

func (lc *ledgerContext) theRecordedSessionReportsEventsChangingCreditsBy(change int) error {
	lc.runner.provider.SetEvent(economy.EventDetails{
		Title:        "Signal Failure",
		Description:  "Trains idle in the tunnels for an hour.",
		ImpactType:   "negative",
		CreditChange: change,
	}, nil)
	lc.runner.roll.set(0)
	return nil
}

// When steps

func (lc *ledgerContext) theRecordedSessionBuildsAStation() error {
	result, err := lc.runner.build()
	if err != nil {
		return err
	}
	if result.Rejected() {
		return fmt.Errorf("build rejected: %w", result.Reason)
	}
	return nil
}

func (lc *ledgerContext) theRecordedSessionUpgrades(name string) error {
	id, err := lc.runner.stationID(name)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	result, err := lc.runner.session.UpgradeStation(ctx, id)
	if err != nil {
		return err
	}
	if result.Rejected() {
		return fmt.Errorf("upgrade rejected: %w", result.Reason)
	}
	return nil
}

func (lc *ledgerContext) theRecordedSessionSettles() error {
	_, err := lc.runner.settle()
	return err
}

func (lc *ledgerContext) theRecordedSessionTakesTicks(n int) error {
	return lc.runner.fire(n)
}

// theLedgerRecorderDrains waits for the session to publish everything, then stops the recorder
func (lc *ledgerContext) theLedgerRecorderDrains() error {
	if _, err := lc.runner.snapshot(); err != nil {
		return err
	}
	lc.stopRecorder()
	err := <-lc.recorderDone
	lc.stopRecorder = nil
	return err
}

// Then steps

func (lc *ledgerContext) transactions(slot string) (*queries.GetTransactionsResponse, error) {
	med := lc.mediator
	if med == nil {
		med = common.NewMediator()
		if err := queries.RegisterHandlers(med, persistence.NewGormTransactionRepository(helpers.SharedTestDB)); err != nil {
			return nil, err
		}
	}
	response, err := med.Send(context.Background(), &queries.GetTransactionsQuery{Slot: slot, Limit: 100})
	if err != nil {
		return nil, err
	}
	return response.(*queries.GetTransactionsResponse), nil
}

func (lc *ledgerContext) theLedgerOfShouldHoldTransactions(slot string, expected int) error {
	response, err := lc.transactions(slot)
	if err != nil {
		return err
	}
	if response.Total != expected {
		return fmt.Errorf("expected %d transactions in %s, got %d", expected, slot, response.Total)
	}
	return nil
}

func (lc *ledgerContext) theLedgerOfShouldContain(slot string, table *godog.Table) error {
	response, err := lc.transactions(slot)
	if err != nil {
		return err
	}

	for _, row := range table.Rows[1:] {
		txType, category := row.Cells[0].Value, row.Cells[1].Value
		amount, err := strconv.Atoi(row.Cells[2].Value)
		if err != nil {
			return err
		}
		balance, err := strconv.Atoi(row.Cells[3].Value)
		if err != nil {
			return err
		}

		found := false
		for _, tx := range response.Transactions {
			if tx.Type == txType && tx.Category == category && tx.Amount == amount && tx.BalanceAfter == balance {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no %s %s transaction of %d leaving %d in %s", category, txType, amount, balance, slot)
		}
	}
	return nil
}

func (lc *ledgerContext) cashFlow(slot string) (*queries.GetCashFlowResponse, error) {
	response, err := lc.mediator.Send(context.Background(), &queries.GetCashFlowQuery{Slot: slot})
	if err != nil {
		return nil, err
	}
	return response.(*queries.GetCashFlowResponse), nil
}

func (lc *ledgerContext) theCashFlowOfShouldShowCategory(slot, category string, inflow, outflow, count int) error {
	response, err := lc.cashFlow(slot)
	if err != nil {
		return err
	}
	for _, flow := range response.Categories {
		if flow.Category != category {
			continue
		}
		if flow.TotalInflow != inflow || flow.TotalOutflow != outflow || flow.Transactions != count {
			return fmt.Errorf("expected %s inflow %d, outflow %d over %d; got inflow %d, outflow %d over %d",
				category, inflow, outflow, count, flow.TotalInflow, flow.TotalOutflow, flow.Transactions)
		}
		return nil
	}
	return fmt.Errorf("category %s missing from cash flow of %s", category, slot)
}

func (lc *ledgerContext) theCashFlowOfShouldNet(slot string, expected int) error {
	response, err := lc.cashFlow(slot)
	if err != nil {
		return err
	}
	if response.NetFlow != expected {
		return fmt.Errorf("expected net cash flow %d, got %d", expected, response.NetFlow)
	}
	return nil
}

// InitializeLedgerScenario registers the ledger recording steps against the shared test database
func InitializeLedgerScenario(ctx *godog.ScenarioContext) {
	lc := &ledgerContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, lc.reset()
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		return ctx, lc.reset()
	})

	// Given steps
	ctx.Step(`^an empty ledger$`, lc.anEmptyLedger)
	ctx.Step(`^a session recording its ledger to slot "([^"]*)"$`, lc.aSessionRecordingItsLedgerToSlot)
	ctx.Step(`^the recorded session cannot build stations$`, lc.theRecordedSessionCannotBuildStations)
	ctx.Step(`^the recorded session reports events changing credits by (-?\d+)$`, lc.theRecordedSessionReportsEventsChangingCreditsBy)

	// When steps
	ctx.Step(`^the recorded session builds a station$`, lc.theRecordedSessionBuildsAStation)
	ctx.Step(`^the recorded session upgrades "([^"]*)"$`, lc.theRecordedSessionUpgrades)
	ctx.Step(`^the recorded session settles$`, lc.theRecordedSessionSettles)
	ctx.Step(`^the recorded session takes (\d+) ticks?$`, lc.theRecordedSessionTakesTicks)
	ctx.Step(`^the ledger recorder drains$`, lc.theLedgerRecorderDrains)

	// Then steps
	ctx.Step(`^the ledger of "([^"]*)" should hold (\d+) transactions$`, lc.theLedgerOfShouldHoldTransactions)
	ctx.Step(`^the ledger of "([^"]*)" should contain:$`, lc.theLedgerOfShouldContain)
	ctx.Step(`^the cash flow of "([^"]*)" should show "([^"]*)" with inflow (\d+), outflow (\d+) over (\d+) transactions$`, lc.theCashFlowOfShouldShowCategory)
	ctx.Step(`^the cash flow of "([^"]*)" should net (-?\d+)$`, lc.theCashFlowOfShouldNet)
}
