package shared

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaveSlot(t *testing.T) {
	slot, err := NewSaveSlot("  main  ")
	require.NoError(t, err)
	assert.Equal(t, "main", slot.String())

	_, err = NewSaveSlot("   ")
	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "save_slot", validation.Field)

	_, err = NewSaveSlot(strings.Repeat("x", maxSaveSlotLength+1))
	assert.Error(t, err)
}

func TestMockClock(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	clock.Advance(90 * time.Second)

	assert.Equal(t, time.Date(2026, 3, 1, 12, 1, 30, 0, time.UTC), clock.Now())
}
