package queries

import (
	"fmt"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
)

// RegisterHandlers registers the ledger query handlers on the mediator
func RegisterHandlers(m common.Mediator, repo ledger.TransactionRepository) error {
	if err := common.RegisterHandler[*GetTransactionsQuery](m, NewGetTransactionsHandler(repo)); err != nil {
		return fmt.Errorf("failed to register GetTransactions handler: %w", err)
	}
	if err := common.RegisterHandler[*GetCashFlowQuery](m, NewGetCashFlowHandler(repo)); err != nil {
		return fmt.Errorf("failed to register GetCashFlow handler: %w", err)
	}
	return nil
}
