package ledger

import (
	"fmt"
	"time"

	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// Transaction is the aggregate root representing one credit movement of a network.
// Transactions are immutable once created and follow strict invariants
type Transaction struct {
	id              TransactionID
	slot            shared.SaveSlot
	tick            int64
	timestamp       time.Time
	transactionType TransactionType
	category        Category
	amount          int // Positive for income, negative for expenses
	balanceBefore   int
	balanceAfter    int
	description     string
	relatedEntityID string // station, build or event id
}

// NewTransaction creates a new transaction with validation
func NewTransaction(
	slot shared.SaveSlot,
	tick int64,
	timestamp time.Time,
	transactionType TransactionType,
	amount int,
	balanceBefore int,
	balanceAfter int,
	description string,
	relatedEntityID string,
) (*Transaction, error) {
	if slot.IsZero() {
		return nil, &ErrInvalidTransaction{
			Field:  "save_slot",
			Reason: "save_slot cannot be empty",
		}
	}

	if !transactionType.IsValid() {
		return nil, &ErrInvalidTransaction{
			Field:  "transaction_type",
			Reason: fmt.Sprintf("invalid transaction type: %s", transactionType),
		}
	}

	category, err := transactionType.ToCategory()
	if err != nil {
		return nil, &ErrInvalidTransaction{
			Field:  "category",
			Reason: err.Error(),
		}
	}

	t := &Transaction{
		id:              NewTransactionID(),
		slot:            slot,
		tick:            tick,
		timestamp:       timestamp,
		transactionType: transactionType,
		category:        category,
		amount:          amount,
		balanceBefore:   balanceBefore,
		balanceAfter:    balanceAfter,
		description:     description,
		relatedEntityID: relatedEntityID,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// ReconstructTransaction reconstructs a transaction from persistence
// This bypasses validation and is used by the repository
func ReconstructTransaction(
	id TransactionID,
	slot shared.SaveSlot,
	tick int64,
	timestamp time.Time,
	transactionType TransactionType,
	category Category,
	amount int,
	balanceBefore int,
	balanceAfter int,
	description string,
	relatedEntityID string,
) *Transaction {
	return &Transaction{
		id:              id,
		slot:            slot,
		tick:            tick,
		timestamp:       timestamp,
		transactionType: transactionType,
		category:        category,
		amount:          amount,
		balanceBefore:   balanceBefore,
		balanceAfter:    balanceAfter,
		description:     description,
		relatedEntityID: relatedEntityID,
	}
}

// Validate checks that the transaction satisfies all invariants
func (t *Transaction) Validate() error {
	if t.amount == 0 {
		return &ErrInvalidTransaction{
			Field:  "amount",
			Reason: "amount cannot be zero",
		}
	}

	// Balance invariant: balance_after must equal balance_before + amount
	expected := t.balanceBefore + t.amount
	if t.balanceAfter != expected {
		return &ErrBalanceInvariantViolation{
			BalanceBefore: t.balanceBefore,
			Amount:        t.amount,
			BalanceAfter:  t.balanceAfter,
			Expected:      expected,
		}
	}

	if t.balanceAfter < 0 {
		return &ErrInvalidTransaction{
			Field:  "balance_after",
			Reason: fmt.Sprintf("balance cannot go below zero: %d", t.balanceAfter),
		}
	}

	if t.tick < 0 {
		return &ErrInvalidTransaction{
			Field:  "tick",
			Reason: "tick cannot be negative",
		}
	}

	return nil
}

// Getters (all fields are immutable)

func (t *Transaction) ID() TransactionID {
	return t.id
}

func (t *Transaction) Slot() shared.SaveSlot {
	return t.slot
}

func (t *Transaction) Tick() int64 {
	return t.tick
}

func (t *Transaction) Timestamp() time.Time {
	return t.timestamp
}

func (t *Transaction) TransactionType() TransactionType {
	return t.transactionType
}

func (t *Transaction) Category() Category {
	return t.category
}

func (t *Transaction) Amount() int {
	return t.amount
}

func (t *Transaction) BalanceBefore() int {
	return t.balanceBefore
}

func (t *Transaction) BalanceAfter() int {
	return t.balanceAfter
}

func (t *Transaction) Description() string {
	return t.description
}

func (t *Transaction) RelatedEntityID() string {
	return t.relatedEntityID
}

// IsIncome returns true if the transaction represents income
func (t *Transaction) IsIncome() bool {
	return t.amount > 0
}

// IsExpense returns true if the transaction represents an expense
func (t *Transaction) IsExpense() bool {
	return t.amount < 0
}

// String provides a human-readable representation
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction[%s, tick=%d, type=%s, amount=%d, balance=%d->%d]",
		t.id.String(), t.tick, t.transactionType, t.amount, t.balanceBefore, t.balanceAfter)
}
