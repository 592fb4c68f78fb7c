package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/invopop/jsonschema"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// classificationShape steers the classifier call. Enums keep the model on the
// fixed vocabularies; requires_tools stays free-form since tools are
// externally extensible.
type classificationShape struct {
	Intent        string   `json:"intent" jsonschema:"required,enum=question,enum=code_request,enum=explanation,enum=comparison,enum=task,enum=creative,enum=search,enum=summary,enum=instruction,enum=conversation"`
	ResponseKind  string   `json:"response_kind" jsonschema:"required,enum=conversational,enum=code,enum=analytical,enum=search,enum=task,enum=creative,enum=summary,enum=comparison,enum=instruction"`
	RequiresTools []string `json:"requires_tools" jsonschema_description:"Names of tools needed to answer, empty if none"`
	Complexity    string   `json:"complexity" jsonschema:"required,enum=simple,enum=moderate,enum=complex"`
	Keywords      []string `json:"keywords" jsonschema_description:"Salient keywords from the query"`
}

var classificationSchema = (&jsonschema.Reflector{
	DoNotReference: true,
	ExpandedStruct: true,
}).Reflect(classificationShape{})

// Classifier maps raw user text to an intent, a response shape, and the tools
// that might be needed. It is a single generation call with a hard guarantee:
// it never fails the request, only falls back to the default classification.
type Classifier struct {
	logger *slog.Logger
	gen    *GenClient
	tools  *domain.ToolRegistry
}

// NewClassifier creates a classifier backed by the generation client.
func NewClassifier(logger *slog.Logger, gen *GenClient, tools *domain.ToolRegistry) *Classifier {
	return &Classifier{logger: logger, gen: gen, tools: tools}
}

// Classify analyzes a query. Any failure, from backend errors to malformed
// output, is swallowed and replaced with the safe default.
func (c *Classifier) Classify(ctx context.Context, query string) domain.Classification {
	messages := []domain.ChatMessage{
		{Role: "user", Content: c.buildPrompt(query)},
	}

	shape, err := InvokeStructured[classificationShape](ctx, c.gen, messages, classificationSchema)
	if err != nil {
		c.logger.Warn("classification failed, using default", "error", err)
		return domain.DefaultClassification()
	}

	result := domain.Classification{
		Intent:        domain.Intent(shape.Intent),
		ResponseKind:  domain.ResponseKind(shape.ResponseKind),
		RequiresTools: shape.RequiresTools,
		Complexity:    domain.Complexity(shape.Complexity),
		Keywords:      shape.Keywords,
	}
	if result.Intent == "" {
		result.Intent = domain.IntentQuestion
	}
	if result.ResponseKind == "" {
		result.ResponseKind = domain.KindConversational
	}
	if result.Complexity == "" {
		result.Complexity = domain.ComplexitySimple
	}
	if result.RequiresTools == nil {
		result.RequiresTools = []string{}
	}
	if result.Keywords == nil {
		result.Keywords = []string{}
	}
	return result
}

func (c *Classifier) buildPrompt(query string) string {
	catalogue := ""
	if c.tools != nil {
		catalogue = "\n" + c.tools.FormatForPrompt()
	}
	return fmt.Sprintf(`Classify the user query below.

Pick the intent, the best response shape, the tools (by exact name) that would
help answer it, the complexity, and up to five keywords. Only list tools when
the query genuinely needs external information.
%s
Query: %s`, catalogue, query)
}
