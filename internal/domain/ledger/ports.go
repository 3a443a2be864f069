package ledger

import (
	"context"

	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// TransactionRepository defines persistence operations for transactions
type TransactionRepository interface {
	// Create persists a new transaction
	Create(ctx context.Context, transaction *Transaction) error

	// FindBySlot retrieves transactions of a save slot with optional filtering
	FindBySlot(ctx context.Context, slot shared.SaveSlot, opts QueryOptions) ([]*Transaction, error)

	// CountBySlot returns the count of transactions matching the criteria
	CountBySlot(ctx context.Context, slot shared.SaveSlot, opts QueryOptions) (int, error)
}

// QueryOptions defines filtering and pagination options for transaction queries
type QueryOptions struct {
	// Tick range filtering (inclusive)
	FromTick *int64
	ToTick   *int64

	Category        *Category
	TransactionType *TransactionType

	// Pagination. Limit 0 returns everything.
	Limit  int
	Offset int

	// "tick ASC" or "tick DESC" (default DESC)
	OrderBy string
}

// DefaultQueryOptions returns default query options
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Limit:   50,
		Offset:  0,
		OrderBy: "tick DESC",
	}
}
