package commands

import (
	"fmt"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
)

// RegisterHandlers registers every game command handler on the mediator
func RegisterHandlers(m common.Mediator, session GameSession) error {
	if err := common.RegisterHandler[*BuildStationCommand](m, NewBuildStationHandler(session)); err != nil {
		return fmt.Errorf("failed to register BuildStation handler: %w", err)
	}
	if err := common.RegisterHandler[*UpgradeStationCommand](m, NewUpgradeStationHandler(session)); err != nil {
		return fmt.Errorf("failed to register UpgradeStation handler: %w", err)
	}
	if err := common.RegisterHandler[*SetPlayingCommand](m, NewSetPlayingHandler(session)); err != nil {
		return fmt.Errorf("failed to register SetPlaying handler: %w", err)
	}
	if err := common.RegisterHandler[*ChatWithPassengerCommand](m, NewChatWithPassengerHandler(session)); err != nil {
		return fmt.Errorf("failed to register ChatWithPassenger handler: %w", err)
	}
	return nil
}
