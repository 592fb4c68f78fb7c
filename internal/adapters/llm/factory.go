package llm

import (
	"context"
	"fmt"

	"github.com/kweiss-dev/minerva/internal/config"
	"github.com/kweiss-dev/minerva/internal/core/ports"
)

// Build constructs the configured text-generation provider.
func Build(ctx context.Context, cfg config.LLMConfig) (ports.TextGenerator, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	case "openai":
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm.base_url is required for the openai provider")
		}
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm.api_key is required for the gemini provider")
		}
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
