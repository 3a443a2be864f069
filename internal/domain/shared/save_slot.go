package shared

import (
	"fmt"
	"strings"
)

// DefaultSaveSlot is the slot a network is stored under when none is configured
const DefaultSaveSlot = "neon-rails-save-v1"

const maxSaveSlotLength = 64

// SaveSlot is a value object naming one saved network
type SaveSlot struct {
	value string
}

// NewSaveSlot creates a new SaveSlot value object
func NewSaveSlot(name string) (SaveSlot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SaveSlot{}, NewValidationError("save_slot", "cannot be empty")
	}
	if len(name) > maxSaveSlotLength {
		return SaveSlot{}, NewValidationError("save_slot", fmt.Sprintf("longer than %d characters", maxSaveSlotLength))
	}
	return SaveSlot{value: name}, nil
}

// MustNewSaveSlot creates a new SaveSlot value object, panicking if invalid
// Use this only when you're certain the name is valid (e.g., from database)
func MustNewSaveSlot(name string) SaveSlot {
	slot, err := NewSaveSlot(name)
	if err != nil {
		panic(err)
	}
	return slot
}

// Value returns the slot name
func (s SaveSlot) Value() string {
	return s.value
}

// String returns a string representation of the SaveSlot
func (s SaveSlot) String() string {
	return s.value
}

// Equals checks if two SaveSlots are equal
func (s SaveSlot) Equals(other SaveSlot) bool {
	return s.value == other.value
}

// IsZero checks if the SaveSlot is the zero value (uninitialized)
func (s SaveSlot) IsZero() bool {
	return s.value == ""
}
