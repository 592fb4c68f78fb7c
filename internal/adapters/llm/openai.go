package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kweiss-dev/minerva/internal/core/domain"
	"github.com/kweiss-dev/minerva/internal/core/ports"
)

// OpenAIProvider generates text against any OpenAI-compatible chat API:
// OpenAI, Azure OpenAI, Together AI, a local Ollama /v1 endpoint, etc.
type OpenAIProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// GenerateText implements ports.TextGenerator via the chat completions API.
func (p *OpenAIProvider) GenerateText(ctx context.Context, system string, messages []domain.ChatMessage, params ports.GenerateParams) (string, error) {
	url := fmt.Sprintf("%s/chat/completions", p.baseURL)

	var apiMessages []map[string]string
	if system != "" {
		apiMessages = append(apiMessages, map[string]string{"role": "system", "content": system})
	}
	for _, m := range messages {
		apiMessages = append(apiMessages, map[string]string{"role": normalizeRole(m.Role), "content": m.Content})
	}

	model := p.model
	if params.Model != "" {
		model = params.Model
	}
	payload := map[string]any{
		"model":    model,
		"messages": apiMessages,
	}
	if params.Temperature > 0 {
		payload["temperature"] = params.Temperature
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}
