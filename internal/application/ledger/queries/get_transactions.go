package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// GetTransactionsQuery represents a query to retrieve transactions of a save slot
type GetTransactionsQuery struct {
	Slot            string
	FromTick        *int64
	ToTick          *int64
	Category        *string
	TransactionType *string
	Limit           int
	Offset          int
	OrderBy         string
}

// GetTransactionsResponse represents the result of the query
type GetTransactionsResponse struct {
	Transactions []*TransactionDTO `json:"transactions"`
	Total        int               `json:"total"`
}

// TransactionDTO represents a transaction data transfer object
type TransactionDTO struct {
	ID              string    `json:"id" yaml:"id"`
	Tick            int64     `json:"tick" yaml:"tick"`
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
	Type            string    `json:"type" yaml:"type"`
	Category        string    `json:"category" yaml:"category"`
	Amount          int       `json:"amount" yaml:"amount"`
	BalanceBefore   int       `json:"balanceBefore" yaml:"balance_before"`
	BalanceAfter    int       `json:"balanceAfter" yaml:"balance_after"`
	Description     string    `json:"description" yaml:"description"`
	RelatedEntityID string    `json:"relatedEntityId,omitempty" yaml:"related_entity_id,omitempty"`
}

// GetTransactionsHandler handles the GetTransactions query
type GetTransactionsHandler struct {
	transactionRepo ledger.TransactionRepository
}

// NewGetTransactionsHandler creates a new GetTransactionsHandler
func NewGetTransactionsHandler(transactionRepo ledger.TransactionRepository) *GetTransactionsHandler {
	return &GetTransactionsHandler{
		transactionRepo: transactionRepo,
	}
}

// Handle executes the GetTransactions query
func (h *GetTransactionsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetTransactionsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetTransactionsQuery")
	}

	slot, err := shared.NewSaveSlot(query.Slot)
	if err != nil {
		return nil, fmt.Errorf("invalid save slot: %w", err)
	}

	opts, err := h.buildQueryOptions(query)
	if err != nil {
		return nil, err
	}

	transactions, err := h.transactionRepo.FindBySlot(ctx, slot, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	total, err := h.transactionRepo.CountBySlot(ctx, slot, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	dtos := make([]*TransactionDTO, len(transactions))
	for i, tx := range transactions {
		dtos[i] = ToDTO(tx)
	}

	return &GetTransactionsResponse{
		Transactions: dtos,
		Total:        total,
	}, nil
}

func (h *GetTransactionsHandler) buildQueryOptions(query *GetTransactionsQuery) (ledger.QueryOptions, error) {
	opts := ledger.DefaultQueryOptions()
	opts.FromTick = query.FromTick
	opts.ToTick = query.ToTick

	if query.Category != nil {
		category, err := ledger.ParseCategory(*query.Category)
		if err != nil {
			return opts, fmt.Errorf("invalid category: %w", err)
		}
		opts.Category = &category
	}

	if query.TransactionType != nil {
		txType, err := ledger.ParseTransactionType(*query.TransactionType)
		if err != nil {
			return opts, fmt.Errorf("invalid transaction type: %w", err)
		}
		opts.TransactionType = &txType
	}

	if query.Limit > 0 {
		opts.Limit = query.Limit
	}
	opts.Offset = query.Offset

	switch query.OrderBy {
	case "":
	case "tick ASC", "tick DESC":
		opts.OrderBy = query.OrderBy
	default:
		return opts, fmt.Errorf("unsupported order: %s", query.OrderBy)
	}

	return opts, nil
}

// ToDTO converts a ledger transaction for presentation
func ToDTO(tx *ledger.Transaction) *TransactionDTO {
	return &TransactionDTO{
		ID:              tx.ID().String(),
		Tick:            tx.Tick(),
		Timestamp:       tx.Timestamp(),
		Type:            tx.TransactionType().String(),
		Category:        tx.Category().String(),
		Amount:          tx.Amount(),
		BalanceBefore:   tx.BalanceBefore(),
		BalanceAfter:    tx.BalanceAfter(),
		Description:     tx.Description(),
		RelatedEntityID: tx.RelatedEntityID(),
	}
}
