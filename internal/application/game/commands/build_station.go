package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
)

// BuildStationCommand asks the network to construct a new station
type BuildStationCommand struct{}

// BuildStationHandler handles BuildStationCommand
type BuildStationHandler struct {
	session GameSession
}

// NewBuildStationHandler creates a new build station handler
func NewBuildStationHandler(session GameSession) *BuildStationHandler {
	return &BuildStationHandler{session: session}
}

// Handle executes the build station command
func (h *BuildStationHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*BuildStationCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *BuildStationCommand")
	}

	result, err := h.session.BuildStation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build station: %w", err)
	}

	logger := common.LoggerFromContext(ctx)
	if result.Rejected() {
		logger.Sugar().Infow("build rejected", "reason", result.Reason)
	}

	return &result, nil
}

var _ common.RequestHandler = (*BuildStationHandler)(nil)
