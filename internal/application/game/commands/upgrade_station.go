package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// UpgradeStationCommand raises the level of one station
type UpgradeStationCommand struct {
	StationID string
}

// UpgradeStationHandler handles UpgradeStationCommand
type UpgradeStationHandler struct {
	session GameSession
}

// NewUpgradeStationHandler creates a new upgrade station handler
func NewUpgradeStationHandler(session GameSession) *UpgradeStationHandler {
	return &UpgradeStationHandler{session: session}
}

// Handle executes the upgrade station command
func (h *UpgradeStationHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpgradeStationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *UpgradeStationCommand")
	}

	stationID := strings.TrimSpace(cmd.StationID)
	if stationID == "" {
		return nil, shared.NewValidationError("station_id", "station id is required")
	}

	result, err := h.session.UpgradeStation(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade station %s: %w", stationID, err)
	}

	return &result, nil
}
