package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/adapters/persistence"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
	"github.com/andrescamacho/neonrails-go/test/helpers"
)

func newSnapshotRepo(t *testing.T) *persistence.GormSnapshotRepository {
	t.Helper()
	clock := shared.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return persistence.NewGormSnapshotRepository(helpers.NewTestDB(t), clock)
}

func TestSnapshotRepository_SaveAndLoad(t *testing.T) {
	// Arrange
	repo := newSnapshotRepo(t)
	ctx := context.Background()
	state := economy.NewState(economy.DefaultBalance())
	state.Tick = 42
	state.Credits = 1337
	state.Version = 9
	state.Events = []economy.GameEvent{{
		ID:          "ev-1",
		Timestamp:   40,
		Title:       "Power Surge",
		Description: "Gates fried.",
		Impact:      economy.ImpactNegative,
	}}

	// Act
	require.NoError(t, repo.Save(ctx, "slot-a", state))
	loaded, ok, err := repo.Load(ctx, "slot-a")

	// Assert
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state, loaded)
}

func TestSnapshotRepository_SaveOverwritesSlot(t *testing.T) {
	repo := newSnapshotRepo(t)
	ctx := context.Background()
	first := economy.NewState(economy.DefaultBalance())
	second := first
	second.Credits = 5
	second.Tick = 100

	require.NoError(t, repo.Save(ctx, "slot-a", first))
	require.NoError(t, repo.Save(ctx, "slot-a", second))

	loaded, ok, err := repo.Load(ctx, "slot-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, loaded.Credits)
	assert.Equal(t, int64(100), loaded.Tick)
}

func TestSnapshotRepository_LoadUnknownSlot(t *testing.T) {
	repo := newSnapshotRepo(t)

	_, ok, err := repo.Load(context.Background(), "never-saved")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotRepository_Delete(t *testing.T) {
	repo := newSnapshotRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "slot-a", economy.NewState(economy.DefaultBalance())))
	require.NoError(t, repo.Save(ctx, "slot-b", economy.NewState(economy.DefaultBalance())))

	require.NoError(t, repo.Delete(ctx, "slot-a"))

	_, okA, err := repo.Load(ctx, "slot-a")
	require.NoError(t, err)
	_, okB, err := repo.Load(ctx, "slot-b")
	require.NoError(t, err)
	assert.False(t, okA)
	assert.True(t, okB, "other slots are untouched")
}
