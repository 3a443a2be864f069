package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/application/game"
)

// StateReader is the part of game.Session that reads state
type StateReader interface {
	Snapshot(ctx context.Context) (game.Snapshot, error)
}

// GetGameStateQuery returns the current network
type GetGameStateQuery struct{}

// GetGameStateHandler handles GetGameStateQuery
type GetGameStateHandler struct {
	reader StateReader
}

// NewGetGameStateHandler creates a new game state handler
func NewGetGameStateHandler(reader StateReader) *GetGameStateHandler {
	return &GetGameStateHandler{reader: reader}
}

// Handle executes the query
func (h *GetGameStateHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*GetGameStateQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetGameStateQuery")
	}

	snap, err := h.reader.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read game state: %w", err)
	}
	return &snap, nil
}
