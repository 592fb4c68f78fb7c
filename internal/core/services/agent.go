package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// thoughtShape steers the per-iteration reasoning call.
type thoughtShape struct {
	Reasoning  string  `json:"reasoning" jsonschema:"required" jsonschema_description:"Step-by-step reasoning about what is known and what is missing"`
	Confidence float64 `json:"confidence" jsonschema:"required" jsonschema_description:"Confidence in [0,1] that the question can be answered with the context so far"`
	NextAction string  `json:"next_action" jsonschema_description:"Exact name of the tool to call next, or empty when ready to answer"`
}

var thoughtSchema = (&jsonschema.Reflector{
	DoNotReference: true,
	ExpandedStruct: true,
}).Reflect(thoughtShape{})

// AgentConfig bounds one Process call.
type AgentConfig struct {
	MaxIterations int
	Timeout       time.Duration
}

// AgentService is the orchestration core: classify the message, run the
// bounded think→act→observe loop when tools are needed, then synthesize one
// structured answer. Registries are shared read-only state; everything
// mutable lives in a per-request AgentContext.
type AgentService struct {
	logger     *slog.Logger
	gen        *GenClient
	classifier *Classifier
	synth      *Synthesizer
	tools      *domain.ToolRegistry
	cfg        AgentConfig
}

// NewAgentService wires the orchestration loop.
func NewAgentService(
	logger *slog.Logger,
	gen *GenClient,
	classifier *Classifier,
	synth *Synthesizer,
	tools *domain.ToolRegistry,
	cfg AgentConfig,
) *AgentService {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &AgentService{
		logger:     logger,
		gen:        gen,
		classifier: classifier,
		synth:      synth,
		tools:      tools,
		cfg:        cfg,
	}
}

// Process runs one request end to end. It never returns a bare error: any
// failure that escapes the inner guards lands in the envelope's Error field.
func (s *AgentService) Process(ctx context.Context, userMessage string, history []domain.ChatMessage, opts domain.ProcessOptions) (result domain.ProcessResult) {
	agCtx := domain.NewAgentContext(opts.SessionID, opts.UserID, s.cfg.MaxIterations, s.cfg.Timeout)
	agCtx.History = history
	agCtx.State = domain.StateThinking

	defer func() {
		if rec := recover(); rec != nil {
			agCtx.State = domain.StateError
			s.logger.Error("process panicked", "session_id", agCtx.SessionID, "panic", rec)
			result = domain.ProcessResult{
				Steps:    agCtx.Steps,
				Metadata: s.metadata(agCtx),
				Error:    fmt.Sprintf("internal error: %v", rec),
			}
		}
	}()

	s.logger.Info("processing message", "session_id", agCtx.SessionID, "user_id", opts.UserID)

	classification := s.classifier.Classify(ctx, userMessage)
	responseKind := classification.ResponseKind
	if opts.ForceSchema != "" {
		responseKind = opts.ForceSchema
	}
	s.logger.Info("classified",
		"session_id", agCtx.SessionID,
		"intent", classification.Intent,
		"kind", responseKind,
		"tools", classification.RequiresTools)

	if len(classification.RequiresTools) > 0 {
		s.runLoop(ctx, agCtx, userMessage)
	}

	agCtx.State = domain.StateResponding
	response, synthErr := s.synth.Synthesize(ctx, userMessage, responseKind, agCtx.Fragments, agCtx.Sources)

	agCtx.State = domain.StateComplete
	result = domain.ProcessResult{
		Response: response,
		Steps:    agCtx.Steps,
		Metadata: s.metadata(agCtx),
	}
	if synthErr != nil {
		result.Error = synthErr.Error()
	}
	return result
}

// runLoop executes the bounded think→act→observe cycle. One tool call per
// iteration, strictly sequential: each iteration's reasoning depends on the
// previous observation.
func (s *AgentService) runLoop(ctx context.Context, agCtx *domain.AgentContext, userMessage string) {
	for agCtx.Iteration < agCtx.MaxIterations {
		if ctx.Err() != nil {
			s.logger.Info("request cancelled, synthesizing with gathered context",
				"session_id", agCtx.SessionID, "iteration", agCtx.Iteration)
			return
		}
		if agCtx.Expired() {
			s.logger.Warn("wall-clock budget spent, synthesizing with gathered context",
				"session_id", agCtx.SessionID, "iteration", agCtx.Iteration)
			return
		}

		agCtx.Iteration++
		agCtx.State = domain.StateThinking

		thought := s.think(ctx, agCtx, userMessage)
		next := s.normalizeAction(thought.NextAction)

		if next == "" {
			// Convergence: the model is ready to answer.
			agCtx.AddStep(domain.AgentStep{Thought: thought})
			return
		}

		tool, ok := s.tools.GetTool(next)
		if !ok {
			s.logger.Warn("thought named an unknown tool, ending loop",
				"session_id", agCtx.SessionID, "tool", next)
			agCtx.AddStep(domain.AgentStep{Thought: thought})
			return
		}

		agCtx.State = domain.StateActing
		action := &domain.AgentAction{
			Tool:      tool.Name,
			ToolInput: s.buildToolInput(tool, agCtx, userMessage),
			Reasoning: thought.Reasoning,
		}

		agCtx.State = domain.StateObserving
		toolResult := s.tools.Execute(ctx, action.Tool, action.ToolInput)
		observation := &domain.Observation{Result: toolResult, ObservedAt: time.Now()}
		agCtx.AddStep(domain.AgentStep{Thought: thought, Action: action, Observation: observation})

		if !toolResult.Success {
			// One failed tool call does not stop the loop.
			s.logger.Warn("tool execution failed",
				"session_id", agCtx.SessionID, "tool", action.Tool, "error", toolResult.Error)
			continue
		}

		fragment, sources := extractToolContext(action.Tool, toolResult)
		if fragment != "" {
			agCtx.Fragments = append(agCtx.Fragments, fragment)
		}
		agCtx.Sources = append(agCtx.Sources, sources...)
	}
}

// think asks the generation client for the next thought. Failure degrades
// into a safe "answer with what we have" thought instead of aborting.
func (s *AgentService) think(ctx context.Context, agCtx *domain.AgentContext, userMessage string) domain.AgentThought {
	messages := []domain.ChatMessage{
		{Role: "user", Content: s.buildThoughtPrompt(agCtx, userMessage)},
	}

	shape, err := InvokeStructured[thoughtShape](ctx, s.gen, messages, thoughtSchema)
	if err != nil {
		s.logger.Warn("thought generation failed, proceeding with available information",
			"session_id", agCtx.SessionID, "error", err)
		return domain.AgentThought{
			Reasoning:  "Proceeding with available information.",
			Confidence: 0.3,
		}
	}
	return domain.AgentThought{
		Reasoning:  shape.Reasoning,
		Confidence: shape.Confidence,
		NextAction: shape.NextAction,
	}
}

func (s *AgentService) buildThoughtPrompt(agCtx *domain.AgentContext, userMessage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are deciding whether more information is needed before answering.\n\n")
	fmt.Fprintf(&b, "User question: %s\n\n", userMessage)

	if len(agCtx.Fragments) > 0 {
		fmt.Fprintf(&b, "Context gathered so far:\n%s\n\n", strings.Join(agCtx.Fragments, "\n\n"))
	} else {
		b.WriteString("No context has been gathered yet.\n\n")
	}

	b.WriteString(s.tools.FormatForPrompt())
	fmt.Fprintf(&b, "\nIteration %d of %d.\n", agCtx.Iteration, agCtx.MaxIterations)
	b.WriteString("If the gathered context is enough to answer, leave next_action empty. " +
		"Otherwise name the EXACT tool to call next. Do not invent tool names.")
	return b.String()
}

// normalizeAction maps every "stop" spelling onto the single empty sentinel:
// empty, null-ish strings, and the explicit no_op tool all mean converge.
func (s *AgentService) normalizeAction(next string) string {
	next = strings.TrimSpace(next)
	switch strings.ToLower(next) {
	case "", "null", "none", "nil", NoOpToolName:
		return ""
	}
	return next
}

var expressionRe = regexp.MustCompile(`[\d][\d\s+\-*/%^().,]*[\d)]|[\d]`)

// buildToolInput merges declared defaults, the caller identity, the raw user
// message for query-taking tools, and per-tool heuristics.
func (s *AgentService) buildToolInput(tool *domain.Tool, agCtx *domain.AgentContext, userMessage string) map[string]any {
	input := make(map[string]any)

	for name, spec := range tool.Parameters.Properties {
		if spec.Default != nil {
			input[name] = spec.Default
		}
	}
	if _, declared := tool.Parameters.Properties["user_id"]; declared && agCtx.UserID != "" {
		input["user_id"] = agCtx.UserID
	}
	if _, declared := tool.Parameters.Properties["query"]; declared {
		input["query"] = userMessage
	}
	if _, declared := tool.Parameters.Properties["expression"]; declared {
		if expr := extractExpression(userMessage); expr != "" {
			input["expression"] = expr
		}
	}
	return input
}

// extractExpression pulls the longest arithmetic-looking substring out of a
// message, so "What's 17 * 4?" yields "17 * 4".
func extractExpression(message string) string {
	matches := expressionRe.FindAllString(message, -1)
	best := ""
	for _, m := range matches {
		m = strings.Trim(m, " .,")
		if len(m) > len(best) {
			best = m
		}
	}
	return best
}

// extractToolContext converts a successful tool result into a working-context
// fragment and citation sources. Interpretation of Data is tool-specific by
// design; unknown tools fall back to raw JSON.
func extractToolContext(toolName string, result domain.ToolResult) (string, []domain.Source) {
	data, _ := result.Data.(map[string]any)

	switch toolName {
	case "search_personal_notes":
		hits, _ := data["matches"].([]NoteHit)
		var parts []string
		var sources []domain.Source
		for _, h := range hits {
			parts = append(parts, fmt.Sprintf("Note: %s\n%s", h.Title, h.Snippet))
			sources = append(sources, domain.Source{
				Type:      "note",
				Title:     h.Title,
				NoteID:    h.NoteID,
				Snippet:   h.Snippet,
				Relevance: h.Similarity,
			})
		}
		return strings.Join(parts, "\n\n"), sources

	case "search_shared_corpus":
		hits, _ := data["matches"].([]CorpusHit)
		var parts []string
		var sources []domain.Source
		for _, h := range hits {
			parts = append(parts, fmt.Sprintf("Article: %s\n%s", h.Title, h.Snippet))
			sources = append(sources, domain.Source{
				Type:      "corpus",
				Title:     h.Title,
				CorpusID:  h.CorpusID,
				Snippet:   h.Snippet,
				Relevance: h.Similarity,
			})
		}
		return strings.Join(parts, "\n\n"), sources

	case "web_search":
		answer, _ := data["answer"].(string)
		results, _ := data["results"].([]WebSearchResult)
		var sources []domain.Source
		for _, r := range results {
			sources = append(sources, domain.Source{
				Type:    "web",
				Title:   r.Title,
				URL:     r.Link,
				Snippet: r.Snippet,
			})
		}
		fragment := ""
		if answer != "" {
			fragment = "Web Search Result: " + answer
		}
		return fragment, sources

	case "calculate":
		expr, _ := data["expression"].(string)
		return fmt.Sprintf("Calculation: %s = %v", expr, data["result"]), nil

	case "current_time":
		t, _ := data["time"].(string)
		tz, _ := data["timezone"].(string)
		return fmt.Sprintf("Current time: %s (%s)", t, tz), nil

	default:
		raw, err := json.Marshal(result.Data)
		if err != nil {
			return "", nil
		}
		return fmt.Sprintf("%s result: %s", toolName, raw), nil
	}
}

func (s *AgentService) metadata(agCtx *domain.AgentContext) domain.ProcessMetadata {
	toolsUsed := []string{}
	seen := make(map[string]struct{})
	for _, step := range agCtx.Steps {
		if step.Action == nil {
			continue
		}
		if _, dup := seen[step.Action.Tool]; dup {
			continue
		}
		seen[step.Action.Tool] = struct{}{}
		toolsUsed = append(toolsUsed, step.Action.Tool)
	}
	return domain.ProcessMetadata{
		ProcessingTime: agCtx.Elapsed(),
		Model:          s.gen.Model(),
		IterationCount: agCtx.Iteration,
		ToolsUsed:      toolsUsed,
	}
}
