package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/kweiss-dev/minerva/internal/core/domain"
	"github.com/kweiss-dev/minerva/internal/core/ports"
)

// GeminiProvider generates text against the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// GenerateText implements ports.TextGenerator. Assistant turns map onto
// Gemini's "model" role; the system instruction rides the request config.
func (p *GeminiProvider) GenerateText(ctx context.Context, system string, messages []domain.ChatMessage, params ports.GenerateParams) (string, error) {
	var contents []*genai.Content
	for _, m := range messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	var config *genai.GenerateContentConfig
	if system != "" || params.Temperature > 0 {
		config = &genai.GenerateContentConfig{}
		if system != "" {
			config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
		}
		if params.Temperature > 0 {
			temp := float32(params.Temperature)
			config.Temperature = &temp
		}
	}

	model := p.model
	if params.Model != "" {
		model = params.Model
	}
	result, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return result.Text(), nil
}
