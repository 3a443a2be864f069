package game_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/application/game"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

type memorySnapshots struct {
	mu    sync.Mutex
	saves []economy.State
	err   error
}

func (m *memorySnapshots) Save(ctx context.Context, slot string, state economy.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves = append(m.saves, state)
	return nil
}

func (m *memorySnapshots) Load(ctx context.Context, slot string) (economy.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return economy.State{}, false, nil
	}
	return m.saves[len(m.saves)-1], true, nil
}

func (m *memorySnapshots) Saves() []economy.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]economy.State(nil), m.saves...)
}

func stateAt(version uint64, credits int) economy.State {
	return economy.State{Version: version, Tick: int64(version), Credits: credits}
}

func TestSaver_SavesOnlyNewVersions(t *testing.T) {
	// Arrange
	repo := &memorySnapshots{}
	saver := game.NewSaver(repo, "slot", nil)
	ctx := context.Background()

	// Act & Assert
	assert.False(t, saver.Save(ctx), "nothing observed yet")

	saver.Observe(game.Change{Cause: game.CauseTick, State: stateAt(1, 1013)})
	assert.True(t, saver.Save(ctx))
	assert.False(t, saver.Save(ctx), "same version is not written twice")

	saver.Observe(game.Change{Cause: game.CauseTick, State: stateAt(2, 1026)})
	assert.True(t, saver.Save(ctx))

	saves := repo.Saves()
	require.Len(t, saves, 2)
	assert.Equal(t, 1026, saves[1].Credits)
}

func TestSaver_SkipsStatesWithPendingBuild(t *testing.T) {
	// Arrange
	repo := &memorySnapshots{}
	saver := game.NewSaver(repo, "slot", nil)
	ctx := context.Background()
	saver.Observe(game.Change{Cause: game.CauseTick, State: stateAt(1, 1000)})

	// Act
	saver.Observe(game.Change{Cause: game.CauseBuildStarted, BuildID: "b-1", State: stateAt(2, 500)})
	saver.Observe(game.Change{Cause: game.CauseTick, BuildID: "", State: stateAt(3, 513)})
	require.True(t, saver.Save(ctx))

	// Assert
	assert.Equal(t, 1000, repo.Saves()[0].Credits, "debited states are not saved")

	saver.Observe(game.Change{Cause: game.CauseBuildCommitted, BuildID: "b-1", State: stateAt(4, 513)})
	require.True(t, saver.Save(ctx))
	assert.Equal(t, uint64(4), repo.Saves()[1].Version)
}

func TestSaver_FailedSaveIsRetried(t *testing.T) {
	repo := &memorySnapshots{err: errors.New("disk full")}
	saver := game.NewSaver(repo, "slot", nil)
	saver.Observe(game.Change{Cause: game.CauseTick, State: stateAt(1, 1013)})

	assert.False(t, saver.Save(context.Background()))

	repo.mu.Lock()
	repo.err = nil
	repo.mu.Unlock()
	assert.True(t, saver.Save(context.Background()))
}

func TestSaver_RunSavesOnShutdown(t *testing.T) {
	// Arrange
	repo := &memorySnapshots{}
	saver := game.NewSaver(repo, "slot", nil)
	saver.Observe(game.Change{Cause: game.CauseTick, State: stateAt(7, 1091)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- saver.Run(ctx, 0) }()

	// Act
	cancel()

	// Assert
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("saver did not stop")
	}
	saves := repo.Saves()
	require.Len(t, saves, 1)
	assert.Equal(t, int64(7), saves[0].Tick)
}
