package commands

import (
	"context"

	"github.com/andrescamacho/neonrails-go/internal/application/game"
)

// GameSession is the part of game.Session the command handlers drive
type GameSession interface {
	BuildStation(ctx context.Context) (game.BuildResult, error)
	UpgradeStation(ctx context.Context, stationID string) (game.UpgradeResult, error)
	SetPlaying(ctx context.Context, playing bool) (game.Snapshot, error)
	Chat(ctx context.Context, stationID, message string) (game.ChatResult, error)
}
