package domain

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ResponseKind tags the shape a final answer must conform to.
type ResponseKind string

const (
	KindConversational ResponseKind = "conversational"
	KindCode           ResponseKind = "code"
	KindAnalytical     ResponseKind = "analytical"
	KindSearch         ResponseKind = "search"
	KindTask           ResponseKind = "task"
	KindCreative       ResponseKind = "creative"
	KindSummary        ResponseKind = "summary"
	KindComparison     ResponseKind = "comparison"
	KindInstruction    ResponseKind = "instruction"
)

// ResponseSchema pairs a response kind with its JSON-shape descriptor and the
// guidance text embedded into the synthesis prompt.
type ResponseSchema struct {
	Kind        ResponseKind
	Name        string
	Description string
	Shape       *jsonschema.Schema
	Guidance    string
	Example     string
}

// ShapeJSON renders the shape descriptor for prompt embedding.
func (s ResponseSchema) ShapeJSON() string {
	b, err := json.Marshal(s.Shape)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// RequiredFields returns the shape's declared required top-level fields.
func (s ResponseSchema) RequiredFields() []string {
	if s.Shape == nil {
		return nil
	}
	return s.Shape.Required
}

// Shape structs: one per response kind, reflected into JSON-shape descriptors.
// These describe what the model must emit; the normalized AgentResponse is
// built from them by the synthesizer.

type conversationalShape struct {
	Topic      string  `json:"topic" jsonschema:"required" jsonschema_description:"Short topic of the answer"`
	Message    string  `json:"message" jsonschema:"required" jsonschema_description:"The conversational reply"`
	Confidence float64 `json:"confidence" jsonschema_description:"Confidence in [0,1]"`
}

type codeShape struct {
	Topic      string      `json:"topic" jsonschema:"required"`
	CodeBlocks []CodeBlock `json:"code_blocks" jsonschema:"required" jsonschema_description:"One or more code blocks answering the request"`
	Message    string      `json:"message" jsonschema_description:"Prose around the code"`
	Confidence float64     `json:"confidence"`
}

type analyticalShape struct {
	Topic      string    `json:"topic" jsonschema:"required"`
	Sections   []Section `json:"sections" jsonschema:"required" jsonschema_description:"Titled analysis sections"`
	Confidence float64   `json:"confidence"`
}

type searchShape struct {
	Topic      string       `json:"topic" jsonschema:"required"`
	Results    []SearchItem `json:"results" jsonschema:"required" jsonschema_description:"Ranked result items"`
	Message    string       `json:"message" jsonschema_description:"Summary of what was found"`
	Confidence float64      `json:"confidence"`
}

type taskShape struct {
	Topic      string     `json:"topic" jsonschema:"required"`
	Steps      []TaskStep `json:"steps" jsonschema:"required" jsonschema_description:"Ordered steps to complete the task"`
	Confidence float64    `json:"confidence"`
}

type creativeShape struct {
	Topic      string  `json:"topic" jsonschema:"required"`
	Message    string  `json:"message" jsonschema:"required" jsonschema_description:"The creative piece"`
	Confidence float64 `json:"confidence"`
}

type summaryShape struct {
	Topic      string   `json:"topic" jsonschema:"required"`
	Summary    string   `json:"summary" jsonschema:"required"`
	KeyPoints  []string `json:"key_points" jsonschema_description:"Bullet key points"`
	Confidence float64  `json:"confidence"`
}

type comparisonShape struct {
	Topic      string          `json:"topic" jsonschema:"required"`
	Rows       []ComparisonRow `json:"rows" jsonschema:"required" jsonschema_description:"Criterion-by-criterion comparison"`
	Verdict    string          `json:"verdict" jsonschema_description:"Overall verdict, if one is warranted"`
	Confidence float64         `json:"confidence"`
}

type instructionShape struct {
	Topic      string     `json:"topic" jsonschema:"required"`
	Steps      []TaskStep `json:"steps" jsonschema:"required" jsonschema_description:"Numbered how-to instructions"`
	Message    string     `json:"message" jsonschema_description:"Context or caveats"`
	Confidence float64    `json:"confidence"`
}

// SchemaRegistry maps response kinds to schemas. Write-once at startup,
// read-only afterwards.
type SchemaRegistry struct {
	schemas map[ResponseKind]ResponseSchema
}

// NewSchemaRegistry builds the registry with all built-in response schemas.
func NewSchemaRegistry() *SchemaRegistry {
	r := &SchemaRegistry{schemas: make(map[ResponseKind]ResponseSchema)}

	register := func(kind ResponseKind, name, desc, guidance, example string, shape any) {
		r.schemas[kind] = ResponseSchema{
			Kind:        kind,
			Name:        name,
			Description: desc,
			Shape:       reflectShape(shape),
			Guidance:    guidance,
			Example:     example,
		}
	}

	register(KindConversational, "Conversational",
		"A plain conversational reply.",
		"Answer naturally in the message field. Keep topic short.",
		`{"topic":"greeting","message":"Hi! How can I help?","confidence":0.9}`,
		conversationalShape{})
	register(KindCode, "Code",
		"An answer built around one or more code blocks.",
		"Put all code in code_blocks with language tags. Use message only for surrounding prose.",
		`{"topic":"fizzbuzz","code_blocks":[{"language":"go","code":"...","explanation":"..."}],"confidence":0.9}`,
		codeShape{})
	register(KindAnalytical, "Analytical",
		"A structured analysis split into titled sections.",
		"Break the analysis into sections with clear headings.",
		`{"topic":"tradeoffs","sections":[{"heading":"Latency","content":"..."}],"confidence":0.85}`,
		analyticalShape{})
	register(KindSearch, "Search",
		"Ranked results gathered from search tools.",
		"List the result items in relevance order; summarize in message.",
		`{"topic":"onboarding notes","results":[{"title":"...","snippet":"...","relevance":0.8}],"message":"Found 2 notes.","confidence":0.8}`,
		searchShape{})
	register(KindTask, "Task",
		"A plan of ordered steps to accomplish something.",
		"Number the steps; keep each description actionable.",
		`{"topic":"deploy service","steps":[{"order":1,"description":"..."}],"confidence":0.8}`,
		taskShape{})
	register(KindCreative, "Creative",
		"A creative writing piece.",
		"Put the whole piece in message.",
		`{"topic":"haiku","message":"...","confidence":0.9}`,
		creativeShape{})
	register(KindSummary, "Summary",
		"A condensed summary with key points.",
		"Keep summary to a few sentences; extract key_points as bullets.",
		`{"topic":"meeting notes","summary":"...","key_points":["..."],"confidence":0.85}`,
		summaryShape{})
	register(KindComparison, "Comparison",
		"A criterion-by-criterion comparison of named subjects.",
		"One row per criterion with a value per subject; add a verdict if warranted.",
		`{"topic":"go vs rust","rows":[{"criterion":"compile speed","values":{"go":"fast","rust":"slow"}}],"confidence":0.8}`,
		comparisonShape{})
	register(KindInstruction, "Instruction",
		"Step-by-step how-to instructions.",
		"Number every step; put caveats in message.",
		`{"topic":"install duckdb","steps":[{"order":1,"description":"..."}],"confidence":0.85}`,
		instructionShape{})

	return r
}

// Lookup returns the schema for the given kind, falling back to the
// conversational schema for unknown kinds. It never errors.
func (r *SchemaRegistry) Lookup(kind ResponseKind) ResponseSchema {
	if s, ok := r.schemas[kind]; ok {
		return s
	}
	return r.schemas[KindConversational]
}

// Kinds returns all registered kinds.
func (r *SchemaRegistry) Kinds() []ResponseKind {
	kinds := make([]ResponseKind, 0, len(r.schemas))
	for k := range r.schemas {
		kinds = append(kinds, k)
	}
	return kinds
}

// List returns all registered schemas.
func (r *SchemaRegistry) List() []ResponseSchema {
	out := make([]ResponseSchema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	return out
}

// reflectShape derives an inlined, ref-free JSON schema from a shape struct.
func reflectShape(v any) *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return reflector.Reflect(v)
}
