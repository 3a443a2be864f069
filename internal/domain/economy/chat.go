package economy

import (
	"errors"
	"strings"
)

// IgnoredChatReply is what a commuter says when the provider cannot answer
const IgnoredChatReply = "The passenger ignores you."

// ErrEmptyMessage is returned for a chat message with no visible text
var ErrEmptyMessage = errors.New("chat message is empty")

// NormalizeChatMessage trims the message and rejects blank input
func NormalizeChatMessage(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", ErrEmptyMessage
	}
	return trimmed, nil
}
