package commands

import (
	"fmt"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// RegisterHandlers registers the ledger command handlers on the mediator
func RegisterHandlers(m common.Mediator, repo ledger.TransactionRepository, clock shared.Clock, onRecorded TransactionRecorded) error {
	if err := common.RegisterHandler[*RecordTransactionCommand](m, NewRecordTransactionHandler(repo, clock, onRecorded)); err != nil {
		return fmt.Errorf("failed to register RecordTransaction handler: %w", err)
	}
	return nil
}
