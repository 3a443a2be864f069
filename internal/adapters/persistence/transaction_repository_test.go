package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/adapters/persistence"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
	"github.com/andrescamacho/neonrails-go/test/helpers"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedTransactions(t *testing.T, repo *persistence.GormTransactionRepository, slot shared.SaveSlot) {
	t.Helper()
	rows := []struct {
		tick   int64
		typ    ledger.TransactionType
		amount int
		before int
	}{
		{1, ledger.TransactionTypeTickIncome, 13, 1000},
		{2, ledger.TransactionTypeStationBuild, -500, 1013},
		{2, ledger.TransactionTypeTickIncome, 13, 513},
		{3, ledger.TransactionTypeEventAdjustment, -50, 526},
		{4, ledger.TransactionTypeBuildRefund, 500, 476},
	}
	for i, row := range rows {
		tx, err := ledger.NewTransaction(
			slot, row.tick, baseTime.Add(time.Duration(i)*time.Second),
			row.typ, row.amount, row.before, row.before+row.amount, "seed", "",
		)
		require.NoError(t, err)
		require.NoError(t, repo.Create(context.Background(), tx))
	}
}

func TestTransactionRepository_CreateAndFind(t *testing.T) {
	// Arrange
	repo := persistence.NewGormTransactionRepository(helpers.NewTestDB(t))
	slot := shared.MustNewSaveSlot("slot-a")
	tx, err := ledger.NewTransaction(slot, 7, baseTime, ledger.TransactionTypeStationUpgrade, -250, 400, 150, "Upgrade Core Plaza", "st-1")
	require.NoError(t, err)

	// Act
	require.NoError(t, repo.Create(context.Background(), tx))
	found, err := repo.FindBySlot(context.Background(), slot, ledger.DefaultQueryOptions())

	// Assert
	require.NoError(t, err)
	require.Len(t, found, 1)
	got := found[0]
	assert.Equal(t, tx.ID(), got.ID())
	assert.Equal(t, int64(7), got.Tick())
	assert.Equal(t, ledger.CategoryConstruction, got.Category())
	assert.Equal(t, -250, got.Amount())
	assert.Equal(t, 150, got.BalanceAfter())
	assert.Equal(t, "st-1", got.RelatedEntityID())
	assert.True(t, baseTime.Equal(got.Timestamp()))
}

func TestTransactionRepository_Ordering(t *testing.T) {
	repo := persistence.NewGormTransactionRepository(helpers.NewTestDB(t))
	slot := shared.MustNewSaveSlot("slot-a")
	seedTransactions(t, repo, slot)

	desc, err := repo.FindBySlot(context.Background(), slot, ledger.QueryOptions{OrderBy: "tick DESC"})
	require.NoError(t, err)
	asc, err := repo.FindBySlot(context.Background(), slot, ledger.QueryOptions{OrderBy: "tick ASC"})
	require.NoError(t, err)

	require.Len(t, desc, 5)
	require.Len(t, asc, 5)
	assert.Equal(t, ledger.TransactionTypeBuildRefund, desc[0].TransactionType())
	assert.Equal(t, ledger.TransactionTypeTickIncome, asc[0].TransactionType())
	assert.Equal(t, ledger.TransactionTypeStationBuild, asc[1].TransactionType(), "same-tick rows keep insertion order")
	assert.Equal(t, ledger.TransactionTypeTickIncome, asc[2].TransactionType())
}

func TestTransactionRepository_Filters(t *testing.T) {
	repo := persistence.NewGormTransactionRepository(helpers.NewTestDB(t))
	slot := shared.MustNewSaveSlot("slot-a")
	seedTransactions(t, repo, slot)
	other := shared.MustNewSaveSlot("slot-b")
	seedTransactions(t, repo, other)

	from, to := int64(2), int64(3)
	construction := ledger.CategoryConstruction
	income := ledger.TransactionTypeTickIncome

	tests := []struct {
		name string
		opts ledger.QueryOptions
		want int
	}{
		{"all", ledger.QueryOptions{}, 5},
		{"tick range", ledger.QueryOptions{FromTick: &from, ToTick: &to}, 3},
		{"category", ledger.QueryOptions{Category: &construction}, 2},
		{"type", ledger.QueryOptions{TransactionType: &income}, 2},
		{"limit", ledger.QueryOptions{Limit: 2}, 2},
		{"offset", ledger.QueryOptions{Offset: 4, Limit: 10}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindBySlot(context.Background(), slot, tt.opts)
			require.NoError(t, err)
			assert.Len(t, found, tt.want)
			for _, tx := range found {
				assert.True(t, tx.Slot().Equals(slot))
			}
		})
	}
}

func TestTransactionRepository_CountBySlot(t *testing.T) {
	repo := persistence.NewGormTransactionRepository(helpers.NewTestDB(t))
	slot := shared.MustNewSaveSlot("slot-a")
	seedTransactions(t, repo, slot)
	events := ledger.CategoryRandomEvents

	total, err := repo.CountBySlot(context.Background(), slot, ledger.QueryOptions{Limit: 1})
	require.NoError(t, err)
	filtered, err := repo.CountBySlot(context.Background(), slot, ledger.QueryOptions{Category: &events})
	require.NoError(t, err)
	empty, err := repo.CountBySlot(context.Background(), shared.MustNewSaveSlot("nobody"), ledger.QueryOptions{})
	require.NoError(t, err)

	assert.Equal(t, 5, total, "limit does not affect the count")
	assert.Equal(t, 1, filtered)
	assert.Equal(t, 0, empty)
}
