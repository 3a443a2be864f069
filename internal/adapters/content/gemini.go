package content

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

// DefaultModel is the Gemini model used when none is configured
const DefaultModel = "gemini-2.5-flash"

// GeminiProvider implements economy.ContentProvider on the Gemini API
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider for the given API key and model
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// FetchStationDetails asks the model for a new station
func (p *GeminiProvider) FetchStationDetails(ctx context.Context) (economy.StationDetails, error) {
	text, err := p.generate(ctx, stationPrompt, stationSchema)
	if err != nil {
		return economy.StationDetails{}, err
	}
	return DecodeStation(text)
}

// FetchRandomEvent asks the model for an event sized to the current reputation
func (p *GeminiProvider) FetchRandomEvent(ctx context.Context, reputation int) (economy.EventDetails, error) {
	text, err := p.generate(ctx, eventPrompt(reputation), eventSchema)
	if err != nil {
		return economy.EventDetails{}, err
	}
	return DecodeEvent(text)
}

// FetchChatReply asks the model to voice a commuter at the named station
func (p *GeminiProvider) FetchChatReply(ctx context.Context, stationName, message string) (string, error) {
	text, err := p.generate(ctx, chatPrompt(stationName, message), nil)
	if err != nil {
		return "", err
	}
	reply := strings.TrimSpace(text)
	if reply == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	var cfg *genai.GenerateContentConfig
	if schema != nil {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return resp.Text(), nil
}
