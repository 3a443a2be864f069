package setup

import (
	"fmt"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	gameCommands "github.com/andrescamacho/neonrails-go/internal/application/game/commands"
	gameQueries "github.com/andrescamacho/neonrails-go/internal/application/game/queries"
	ledgerCommands "github.com/andrescamacho/neonrails-go/internal/application/ledger/commands"
	ledgerQueries "github.com/andrescamacho/neonrails-go/internal/application/ledger/queries"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// GameSession is what the game handlers need from a running session
type GameSession interface {
	gameCommands.GameSession
	gameQueries.StateReader
}

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	transactionRepo ledger.TransactionRepository
	clock           shared.Clock
	onRecorded      ledgerCommands.TransactionRecorded
}

// NewHandlerRegistry creates a new handler registry with required dependencies.
// onRecorded may be nil.
func NewHandlerRegistry(
	transactionRepo ledger.TransactionRepository,
	clock shared.Clock,
	onRecorded ledgerCommands.TransactionRecorded,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		transactionRepo: transactionRepo,
		clock:           clock,
		onRecorded:      onRecorded,
	}
}

// RegisterLedgerHandlers registers all ledger command and query handlers with the mediator
//
// This method registers:
//   - RecordTransactionCommand → RecordTransactionHandler (written by the session recorder)
//   - GetTransactionsQuery → GetTransactionsHandler
//   - GetCashFlowQuery → GetCashFlowHandler
func (r *HandlerRegistry) RegisterLedgerHandlers(m common.Mediator) error {
	if err := ledgerCommands.RegisterHandlers(m, r.transactionRepo, r.clock, r.onRecorded); err != nil {
		return fmt.Errorf("ledger commands: %w", err)
	}
	if err := ledgerQueries.RegisterHandlers(m, r.transactionRepo); err != nil {
		return fmt.Errorf("ledger queries: %w", err)
	}
	return nil
}

// RegisterGameHandlers registers the player intents and the state query of a session.
// The session is created after the ledger handlers since its recorder sends through m.
func (r *HandlerRegistry) RegisterGameHandlers(m common.Mediator, session GameSession) error {
	if err := gameCommands.RegisterHandlers(m, session); err != nil {
		return fmt.Errorf("game commands: %w", err)
	}
	if err := gameQueries.RegisterHandlers(m, session); err != nil {
		return fmt.Errorf("game queries: %w", err)
	}
	return nil
}

// CreateConfiguredMediator creates a new mediator with all ledger handlers registered.
// Use this for tools that read or write the ledger without a running session.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...common.Middleware) (common.Mediator, error) {
	m := common.NewMediator()
	for _, mw := range middlewares {
		m.Use(mw)
	}

	if err := r.RegisterLedgerHandlers(m); err != nil {
		return nil, err
	}
	return m, nil
}
