package queries

import (
	"fmt"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
)

// RegisterHandlers registers every game query handler on the mediator
func RegisterHandlers(m common.Mediator, reader StateReader) error {
	if err := common.RegisterHandler[*GetGameStateQuery](m, NewGetGameStateHandler(reader)); err != nil {
		return fmt.Errorf("failed to register GetGameState handler: %w", err)
	}
	return nil
}
