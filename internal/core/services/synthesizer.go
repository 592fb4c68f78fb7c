package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// Synthesizer builds the final structured answer from the question, the
// accumulated context, and the resolved response schema. It always yields a
// response object: when generation fails it falls back to an apologetic
// conversational answer and reports the error alongside it.
type Synthesizer struct {
	logger  *slog.Logger
	gen     *GenClient
	schemas *domain.SchemaRegistry
}

// NewSynthesizer creates a synthesizer over the schema registry.
func NewSynthesizer(logger *slog.Logger, gen *GenClient, schemas *domain.SchemaRegistry) *Synthesizer {
	return &Synthesizer{logger: logger, gen: gen, schemas: schemas}
}

// Synthesize produces the final AgentResponse. The returned response is never
// nil; a non-nil error means the fallback path was taken.
func (s *Synthesizer) Synthesize(ctx context.Context, userMessage string, kind domain.ResponseKind, fragments []string, sources []domain.Source) (*domain.AgentResponse, error) {
	schema := s.schemas.Lookup(kind)

	messages := []domain.ChatMessage{
		{Role: "user", Content: s.buildPrompt(userMessage, schema, fragments)},
	}

	vals, err := s.gen.Invoke(ctx, messages, schema.Shape, nil)
	if err != nil {
		s.logger.Error("synthesis generation failed, using fallback response", "kind", schema.Kind, "error", err)
		return s.fallback(sources), fmt.Errorf("synthesis: %w", err)
	}

	response := s.normalize(vals[0], schema, sources)
	return response, nil
}

func (s *Synthesizer) buildPrompt(userMessage string, schema domain.ResponseSchema, fragments []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer the user's question as a %s response.\n\n", schema.Name)
	fmt.Fprintf(&b, "Question: %s\n\n", userMessage)

	if len(fragments) > 0 {
		fmt.Fprintf(&b, "Use this gathered context:\n%s\n\n", strings.Join(fragments, "\n\n"))
	}

	fmt.Fprintf(&b, "Guidance: %s\n", schema.Guidance)
	fmt.Fprintf(&b, "Example: %s\n", schema.Example)
	return b.String()
}

// normalize repairs the model's candidate into a well-formed response:
// guaranteed topic and confidence, tagged with the resolved kind, sources
// attached.
func (s *Synthesizer) normalize(candidate any, schema domain.ResponseSchema, sources []domain.Source) *domain.AgentResponse {
	response := &domain.AgentResponse{}

	if b, err := json.Marshal(candidate); err == nil {
		if err := json.Unmarshal(b, response); err != nil {
			s.logger.Warn("synthesis candidate did not decode, keeping raw text", "error", err)
		}
	}

	// The extraction pipeline wraps unparseable replies as {"text": raw};
	// surface that as the message rather than losing it.
	if response.Message == "" {
		if obj, ok := candidate.(map[string]any); ok {
			if text, ok := obj["text"].(string); ok {
				response.Message = text
			}
		}
	}

	response.Kind = schema.Kind
	if response.Topic == "" {
		response.Topic = "Response"
	}
	if response.Confidence == 0 {
		response.Confidence = 0.8
	}
	if len(sources) > 0 {
		response.Sources = sources
	}
	return response
}

func (s *Synthesizer) fallback(sources []domain.Source) *domain.AgentResponse {
	resp := &domain.AgentResponse{
		Kind:       domain.KindConversational,
		Topic:      "Response",
		Confidence: 0,
		Message:    "I'm sorry, I wasn't able to generate a proper answer this time. Please try again.",
	}
	if len(sources) > 0 {
		resp.Sources = sources
	}
	return resp
}
