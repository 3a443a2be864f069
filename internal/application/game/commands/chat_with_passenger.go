package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
)

// ChatWithPassengerCommand sends a message to a commuter at a station
type ChatWithPassengerCommand struct {
	StationID string
	Message   string
}

// ChatWithPassengerHandler handles ChatWithPassengerCommand
type ChatWithPassengerHandler struct {
	session GameSession
}

// NewChatWithPassengerHandler creates a new chat handler
func NewChatWithPassengerHandler(session GameSession) *ChatWithPassengerHandler {
	return &ChatWithPassengerHandler{session: session}
}

// Handle executes the chat command
func (h *ChatWithPassengerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ChatWithPassengerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ChatWithPassengerCommand")
	}

	result, err := h.session.Chat(ctx, cmd.StationID, cmd.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to chat at station %s: %w", cmd.StationID, err)
	}
	return &result, nil
}
