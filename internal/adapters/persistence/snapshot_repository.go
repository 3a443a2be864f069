package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// GormSnapshotRepository implements economy.SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSnapshotRepository creates a new GORM snapshot repository
func NewGormSnapshotRepository(db *gorm.DB, clock shared.Clock) *GormSnapshotRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSnapshotRepository{db: db, clock: clock}
}

// Save upserts the snapshot of a slot
func (r *GormSnapshotRepository) Save(ctx context.Context, slot string, state economy.State) error {
	model, err := r.stateToModel(slot, state)
	if err != nil {
		return fmt.Errorf("failed to convert state to model: %w", err)
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", slot, result.Error)
	}
	return nil
}

// Load returns the latest snapshot of a slot. ok is false when the slot was never saved.
func (r *GormSnapshotRepository) Load(ctx context.Context, slot string) (economy.State, bool, error) {
	var model NetworkSnapshotModel
	result := r.db.WithContext(ctx).Where("slot = ?", slot).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return economy.State{}, false, nil
		}
		return economy.State{}, false, fmt.Errorf("failed to load snapshot %s: %w", slot, result.Error)
	}

	state, err := r.modelToState(&model)
	if err != nil {
		return economy.State{}, false, fmt.Errorf("corrupt snapshot %s: %w", slot, err)
	}
	return state, true, nil
}

// Delete removes the snapshot of a slot
func (r *GormSnapshotRepository) Delete(ctx context.Context, slot string) error {
	result := r.db.WithContext(ctx).Where("slot = ?", slot).Delete(&NetworkSnapshotModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", slot, result.Error)
	}
	return nil
}

func (r *GormSnapshotRepository) stateToModel(slot string, state economy.State) (*NetworkSnapshotModel, error) {
	stations, err := json.Marshal(state.Stations)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stations: %w", err)
	}
	events, err := json.Marshal(state.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events: %w", err)
	}

	return &NetworkSnapshotModel{
		Slot:       slot,
		Version:    state.Version,
		Tick:       state.Tick,
		Credits:    state.Credits,
		Reputation: state.Reputation,
		Energy:     state.Energy,
		Stations:   string(stations),
		Events:     string(events),
		SavedAt:    r.clock.Now().UTC().Truncate(time.Millisecond),
	}, nil
}

func (r *GormSnapshotRepository) modelToState(model *NetworkSnapshotModel) (economy.State, error) {
	state := economy.State{
		Credits:    model.Credits,
		Reputation: model.Reputation,
		Energy:     model.Energy,
		Tick:       model.Tick,
		Version:    model.Version,
		Stations:   []economy.Station{},
		Events:     []economy.GameEvent{},
	}

	if err := json.Unmarshal([]byte(model.Stations), &state.Stations); err != nil {
		return economy.State{}, fmt.Errorf("failed to unmarshal stations: %w", err)
	}
	if err := json.Unmarshal([]byte(model.Events), &state.Events); err != nil {
		return economy.State{}, fmt.Errorf("failed to unmarshal events: %w", err)
	}
	return state, nil
}
