package economy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

func TestUpgrade_LevelOneStation(t *testing.T) {
	// Arrange
	b := economy.DefaultBalance()
	s := singleStationState(5)
	s.Credits = 1000

	// Act
	next, upgraded, err := economy.Upgrade(s, b, "st-a")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 800, next.Credits, "level 1 upgrade costs UpgradeCostBase")
	assert.Equal(t, 2, upgraded.Level)
	assert.Equal(t, 7, upgraded.RevenuePerTick)
	assert.Equal(t, 60, upgraded.Passengers)
	assert.Equal(t, upgraded, next.Stations[0])
}

func TestUpgrade_CostScalesWithLevel(t *testing.T) {
	b := economy.DefaultBalance()
	s := singleStationState(5)
	s.Credits = 10000
	s.Stations[0].Level = 4

	next, _, err := economy.Upgrade(s, b, "st-a")

	require.NoError(t, err)
	assert.Equal(t, 10000-4*b.UpgradeCostBase, next.Credits)
}

func TestUpgrade_LeavesOtherStationsAlone(t *testing.T) {
	b := economy.DefaultBalance()
	s := economy.NewState(b)
	s.Credits = 5000
	other := s.Stations[1]

	next, _, err := economy.Upgrade(s, b, s.Stations[0].ID)

	require.NoError(t, err)
	assert.Equal(t, other, next.Stations[1])
	assert.Equal(t, s.Reputation, next.Reputation)
	assert.Equal(t, s.Energy, next.Energy)
	assert.Equal(t, s.Tick, next.Tick)
	assert.Equal(t, s.Events, next.Events)
	assert.Equal(t, 1, s.Stations[0].Level, "input state must not change")
}

func TestUpgrade_Monotonic(t *testing.T) {
	b := economy.DefaultBalance()
	s := singleStationState(1)
	s.Stations[0].Passengers = 1
	s.Credits = 1_000_000

	for i := 0; i < 10; i++ {
		before := s.Stations[0]
		next, after, err := economy.Upgrade(s, b, "st-a")
		require.NoError(t, err)

		assert.Equal(t, before.Level+1, after.Level)
		assert.GreaterOrEqual(t, after.RevenuePerTick, before.RevenuePerTick)
		assert.GreaterOrEqual(t, after.Passengers, before.Passengers)
		s = next
	}
}

func TestUpgrade_Rejections(t *testing.T) {
	b := economy.DefaultBalance()

	t.Run("unknown station", func(t *testing.T) {
		s := singleStationState(5)
		next, _, err := economy.Upgrade(s, b, "missing")

		var notFound *economy.ErrStationNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, s, next)
	})

	t.Run("insufficient credits", func(t *testing.T) {
		s := singleStationState(5)
		s.Credits = b.UpgradeCostBase - 1
		next, _, err := economy.Upgrade(s, b, "st-a")

		var insufficient *economy.ErrInsufficientCredits
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, b.UpgradeCostBase, insufficient.Required)
		assert.Equal(t, s, next)
	})
}

func TestCanUpgrade(t *testing.T) {
	b := economy.DefaultBalance()
	s := singleStationState(5)
	s.Credits = 200

	assert.True(t, economy.CanUpgrade(s, b, "st-a"))
	assert.False(t, economy.CanUpgrade(s, b, "missing"))

	s.Credits = 199
	assert.False(t, economy.CanUpgrade(s, b, "st-a"))
}
