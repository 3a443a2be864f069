package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/application/game"
	"github.com/andrescamacho/neonrails-go/internal/application/game/commands"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

type stubSession struct {
	upgraded []string
	playing  *bool
	err      error
}

func (s *stubSession) BuildStation(ctx context.Context) (game.BuildResult, error) {
	if s.err != nil {
		return game.BuildResult{}, s.err
	}
	return game.BuildResult{Result: game.Result{Outcome: game.OutcomeAccepted}, BuildID: "build-1"}, nil
}

func (s *stubSession) UpgradeStation(ctx context.Context, stationID string) (game.UpgradeResult, error) {
	s.upgraded = append(s.upgraded, stationID)
	return game.UpgradeResult{
		Result: game.Result{Outcome: game.OutcomeRejected, Reason: &economy.ErrStationNotFound{ID: stationID}},
	}, nil
}

func (s *stubSession) SetPlaying(ctx context.Context, playing bool) (game.Snapshot, error) {
	s.playing = &playing
	return game.Snapshot{Playing: playing}, nil
}

func (s *stubSession) Chat(ctx context.Context, stationID, message string) (game.ChatResult, error) {
	return game.ChatResult{StationName: stationID, Reply: "echo: " + message}, nil
}

func newMediator(t *testing.T, session commands.GameSession) common.Mediator {
	t.Helper()
	m := common.NewMediator()
	require.NoError(t, commands.RegisterHandlers(m, session))
	return m
}

func TestBuildStationHandler(t *testing.T) {
	m := newMediator(t, &stubSession{})

	resp, err := m.Send(context.Background(), &commands.BuildStationCommand{})

	require.NoError(t, err)
	result := resp.(*game.BuildResult)
	assert.Equal(t, "build-1", result.BuildID)
	assert.False(t, result.Rejected())
}

func TestBuildStationHandler_SessionClosed(t *testing.T) {
	m := newMediator(t, &stubSession{err: game.ErrSessionClosed})

	_, err := m.Send(context.Background(), &commands.BuildStationCommand{})

	assert.ErrorIs(t, err, game.ErrSessionClosed)
}

func TestUpgradeStationHandler(t *testing.T) {
	session := &stubSession{}
	m := newMediator(t, session)

	resp, err := m.Send(context.Background(), &commands.UpgradeStationCommand{StationID: " st-9 "})

	require.NoError(t, err)
	assert.Equal(t, []string{"st-9"}, session.upgraded)
	assert.True(t, resp.(*game.UpgradeResult).Rejected())
}

func TestUpgradeStationHandler_RequiresStationID(t *testing.T) {
	m := newMediator(t, &stubSession{})

	_, err := m.Send(context.Background(), &commands.UpgradeStationCommand{})

	var validation *shared.ValidationError
	require.True(t, errors.As(err, &validation))
	assert.Equal(t, "station_id", validation.Field)
}

func TestSetPlayingHandler(t *testing.T) {
	session := &stubSession{}
	m := newMediator(t, session)

	resp, err := m.Send(context.Background(), &commands.SetPlayingCommand{Playing: false})

	require.NoError(t, err)
	require.NotNil(t, session.playing)
	assert.False(t, *session.playing)
	assert.False(t, resp.(*game.Snapshot).Playing)
}

func TestChatWithPassengerHandler(t *testing.T) {
	m := newMediator(t, &stubSession{})

	resp, err := m.Send(context.Background(), &commands.ChatWithPassengerCommand{StationID: "st-0", Message: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "echo: hi", resp.(*game.ChatResult).Reply)
}

func TestRegisterHandlers_Twice(t *testing.T) {
	m := newMediator(t, &stubSession{})

	assert.Error(t, commands.RegisterHandlers(m, &stubSession{}))
}
