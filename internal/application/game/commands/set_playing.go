package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
)

// SetPlayingCommand pauses or resumes the scheduler
type SetPlayingCommand struct {
	Playing bool
}

// SetPlayingHandler handles SetPlayingCommand
type SetPlayingHandler struct {
	session GameSession
}

// NewSetPlayingHandler creates a new playback handler
func NewSetPlayingHandler(session GameSession) *SetPlayingHandler {
	return &SetPlayingHandler{session: session}
}

// Handle executes the playback command
func (h *SetPlayingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SetPlayingCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SetPlayingCommand")
	}

	snap, err := h.session.SetPlaying(ctx, cmd.Playing)
	if err != nil {
		return nil, fmt.Errorf("failed to change playback: %w", err)
	}
	return &snap, nil
}
