package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

// DecodeStation parses a station payload. Type is left as free text; the
// domain coerces it when the station is committed.
func DecodeStation(text string) (economy.StationDetails, error) {
	var details economy.StationDetails
	if err := decodeObject(text, &details); err != nil {
		return economy.StationDetails{}, err
	}
	if strings.TrimSpace(details.Name) == "" {
		return economy.StationDetails{}, fmt.Errorf("%w: station has no name", ErrMalformedPayload)
	}
	return details, nil
}

// DecodeEvent parses an event payload. CreditChange is taken as given.
func DecodeEvent(text string) (economy.EventDetails, error) {
	var details economy.EventDetails
	if err := decodeObject(text, &details); err != nil {
		return economy.EventDetails{}, err
	}
	if strings.TrimSpace(details.Title) == "" {
		return economy.EventDetails{}, fmt.Errorf("%w: event has no title", ErrMalformedPayload)
	}
	return details, nil
}

func decodeObject(text string, v any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyResponse
	}
	// Models occasionally wrap JSON in a markdown fence despite the MIME type
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
