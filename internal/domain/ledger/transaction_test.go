package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

func TestNewTransaction_Valid(t *testing.T) {
	slot := shared.MustNewSaveSlot(shared.DefaultSaveSlot)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tx, err := ledger.NewTransaction(slot, 7, now, ledger.TransactionTypeStationBuild, -500, 1000, 500, "construction", "build-1")

	require.NoError(t, err)
	assert.False(t, tx.ID().IsZero())
	assert.Equal(t, ledger.CategoryConstruction, tx.Category())
	assert.True(t, tx.IsExpense())
	assert.Equal(t, int64(7), tx.Tick())
	assert.Equal(t, "build-1", tx.RelatedEntityID())
}

func TestNewTransaction_Invariants(t *testing.T) {
	slot := shared.MustNewSaveSlot("slot")
	now := time.Now()

	tests := []struct {
		name   string
		slot   shared.SaveSlot
		txType ledger.TransactionType
		amount int
		before int
		after  int
	}{
		{"empty slot", shared.SaveSlot{}, ledger.TransactionTypeTickIncome, 5, 0, 5},
		{"unknown type", slot, ledger.TransactionType("LOTTERY"), 5, 0, 5},
		{"zero amount", slot, ledger.TransactionTypeTickIncome, 0, 10, 10},
		{"balance mismatch", slot, ledger.TransactionTypeTickIncome, 5, 10, 16},
		{"negative balance", slot, ledger.TransactionTypeEventAdjustment, -20, 10, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.NewTransaction(tt.slot, 1, now, tt.txType, tt.amount, tt.before, tt.after, "", "")
			assert.Error(t, err)
		})
	}
}

func TestBalanceInvariantViolation_Message(t *testing.T) {
	_, err := ledger.NewTransaction(shared.MustNewSaveSlot("s"), 1, time.Now(), ledger.TransactionTypeTickIncome, 5, 10, 16, "", "")

	var violation *ledger.ErrBalanceInvariantViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, 15, violation.Expected)
}

func TestTransactionType_Categories(t *testing.T) {
	for _, txType := range ledger.AllTransactionTypes() {
		category, err := txType.ToCategory()
		require.NoError(t, err)
		assert.True(t, category.IsValid(), "category of %s", txType)
	}

	_, err := ledger.ParseTransactionType("NOPE")
	assert.Error(t, err)
}
