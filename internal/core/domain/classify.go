package domain

// Intent is the classifier's guess at what the user wants.
type Intent string

const (
	IntentQuestion     Intent = "question"
	IntentCodeRequest  Intent = "code_request"
	IntentExplanation  Intent = "explanation"
	IntentComparison   Intent = "comparison"
	IntentTask         Intent = "task"
	IntentCreative     Intent = "creative"
	IntentSearch       Intent = "search"
	IntentSummary      Intent = "summary"
	IntentInstruction  Intent = "instruction"
	IntentConversation Intent = "conversation"
)

// Complexity grades how involved a query is.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Classification is the transient result of the pre-loop classify step.
type Classification struct {
	Intent        Intent       `json:"intent"`
	ResponseKind  ResponseKind `json:"response_kind"`
	RequiresTools []string     `json:"requires_tools"`
	Complexity    Complexity   `json:"complexity"`
	Keywords      []string     `json:"keywords"`
}

// DefaultClassification is the safe fallback when classification fails.
// Classification must never abort a request.
func DefaultClassification() Classification {
	return Classification{
		Intent:        IntentQuestion,
		ResponseKind:  KindConversational,
		RequiresTools: []string{},
		Complexity:    ComplexitySimple,
		Keywords:      []string{},
	}
}
