package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/kweiss-dev/minerva/internal/core/domain"
	"github.com/kweiss-dev/minerva/internal/core/ports"
)

// GenerationError means the backend itself failed after all retries were
// spent. Parse failures never produce this error; they degrade inside the
// extraction pipeline instead.
type GenerationError struct {
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GenOptions override the client defaults per call.
type GenOptions struct {
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

// GenClient turns the free-text generation backend into a structured-data
// producer: it steers the model toward a JSON shape, retries backend errors
// with linear backoff, and scavenges JSON out of whatever comes back.
type GenClient struct {
	logger   *slog.Logger
	provider ports.TextGenerator
	defaults GenOptions
}

// NewGenClient creates a client around the given provider.
func NewGenClient(logger *slog.Logger, provider ports.TextGenerator, defaults GenOptions) *GenClient {
	if defaults.MaxRetries <= 0 {
		defaults.MaxRetries = 3
	}
	if defaults.RetryDelay <= 0 {
		defaults.RetryDelay = time.Second
	}
	return &GenClient{logger: logger, provider: provider, defaults: defaults}
}

// Invoke sends the messages with a system instruction embedding the target
// shape and returns the parsed JSON candidate values. The result is always a
// non-empty list: unparseable replies are wrapped as {"text": raw}.
func (c *GenClient) Invoke(ctx context.Context, messages []domain.ChatMessage, shape *jsonschema.Schema, opts *GenOptions) ([]any, error) {
	raw, err := c.generate(ctx, messages, shape, opts)
	if err != nil {
		return nil, err
	}
	return ExtractJSON(raw), nil
}

// InvokeStructured invokes the backend and decodes the first candidate value
// into T. Missing required fields are logged, not failed: the caller gets the
// best-effort object either way.
func InvokeStructured[T any](ctx context.Context, c *GenClient, messages []domain.ChatMessage, shape *jsonschema.Schema) (T, error) {
	var out T
	vals, err := c.Invoke(ctx, messages, shape, nil)
	if err != nil {
		return out, err
	}

	first := vals[0]
	if shape != nil {
		if obj, ok := first.(map[string]any); ok {
			for _, req := range shape.Required {
				if _, present := obj[req]; !present {
					c.logger.Warn("structured response missing required field", "field", req)
				}
			}
		}
	}

	b, err := json.Marshal(first)
	if err != nil {
		return out, fmt.Errorf("re-encode candidate: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode candidate: %w", err)
	}
	return out, nil
}

// generate performs the backend call with retry. Only backend errors retry;
// whatever text comes back is handed to the extraction pipeline as-is.
func (c *GenClient) generate(ctx context.Context, messages []domain.ChatMessage, shape *jsonschema.Schema, opts *GenOptions) (string, error) {
	eff := c.defaults
	if opts != nil {
		if opts.Model != "" {
			eff.Model = opts.Model
		}
		if opts.Temperature != 0 {
			eff.Temperature = opts.Temperature
		}
		if opts.Timeout > 0 {
			eff.Timeout = opts.Timeout
		}
		if opts.MaxRetries > 0 {
			eff.MaxRetries = opts.MaxRetries
		}
		if opts.RetryDelay > 0 {
			eff.RetryDelay = opts.RetryDelay
		}
	}

	if eff.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, eff.Timeout)
		defer cancel()
	}

	system := c.buildSystemInstruction(shape)
	params := ports.GenerateParams{Model: eff.Model, Temperature: eff.Temperature}

	var lastErr error
	for attempt := 1; attempt <= eff.MaxRetries; attempt++ {
		raw, err := c.provider.GenerateText(ctx, system, messages, params)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		c.logger.Warn("generation attempt failed", "attempt", attempt, "max", eff.MaxRetries, "error", err)

		if attempt < eff.MaxRetries {
			// Linear backoff: delay * attempt number.
			select {
			case <-time.After(eff.RetryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return "", &GenerationError{Attempts: attempt, Err: ctx.Err()}
			}
		}
	}
	return "", &GenerationError{Attempts: eff.MaxRetries, Err: lastErr}
}

// buildSystemInstruction embeds the target shape and the JSON-only directive.
func (c *GenClient) buildSystemInstruction(shape *jsonschema.Schema) string {
	if shape == nil {
		return "Respond with valid JSON only. No prose, no markdown fences."
	}
	shapeJSON, err := json.Marshal(shape)
	if err != nil {
		shapeJSON = []byte("{}")
	}
	return fmt.Sprintf(
		"Respond with valid JSON only. No prose, no markdown fences.\n"+
			"Your reply must conform to this JSON schema:\n%s", shapeJSON)
}

// Model returns the default model identifier this client targets.
func (c *GenClient) Model() string { return c.defaults.Model }
