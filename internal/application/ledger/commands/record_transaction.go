package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// RecordTransactionCommand records one credit movement of a save slot
type RecordTransactionCommand struct {
	Slot            string
	Tick            int64
	TransactionType string
	Amount          int // Positive for income, negative for expenses
	BalanceBefore   int
	BalanceAfter    int
	Description     string
	RelatedEntityID string
	Timestamp       *time.Time // Optional: defaults to the handler clock
}

// RecordTransactionResponse represents the result of recording a transaction
type RecordTransactionResponse struct {
	TransactionID string
	Timestamp     time.Time
}

// TransactionRecorded is notified after a transaction is persisted
type TransactionRecorded func(tx *ledger.Transaction)

// RecordTransactionHandler handles the RecordTransaction command
type RecordTransactionHandler struct {
	transactionRepo ledger.TransactionRepository
	clock           shared.Clock
	onRecorded      TransactionRecorded
}

// NewRecordTransactionHandler creates a new RecordTransactionHandler.
// onRecorded may be nil.
func NewRecordTransactionHandler(
	transactionRepo ledger.TransactionRepository,
	clock shared.Clock,
	onRecorded TransactionRecorded,
) *RecordTransactionHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &RecordTransactionHandler{
		transactionRepo: transactionRepo,
		clock:           clock,
		onRecorded:      onRecorded,
	}
}

// Handle executes the RecordTransaction command
func (h *RecordTransactionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RecordTransactionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecordTransactionCommand")
	}

	transactionType, err := ledger.ParseTransactionType(cmd.TransactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type: %w", err)
	}

	slot, err := shared.NewSaveSlot(cmd.Slot)
	if err != nil {
		return nil, fmt.Errorf("invalid save slot: %w", err)
	}

	timestamp := h.clock.Now()
	if cmd.Timestamp != nil {
		timestamp = *cmd.Timestamp
	}

	transaction, err := ledger.NewTransaction(
		slot,
		cmd.Tick,
		timestamp,
		transactionType,
		cmd.Amount,
		cmd.BalanceBefore,
		cmd.BalanceAfter,
		cmd.Description,
		cmd.RelatedEntityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := h.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}

	if h.onRecorded != nil {
		h.onRecorded(transaction)
	}

	return &RecordTransactionResponse{
		TransactionID: transaction.ID().String(),
		Timestamp:     transaction.Timestamp(),
	}, nil
}
