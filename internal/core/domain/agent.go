package domain

import (
	"time"

	"github.com/google/uuid"
)

// AgentState tracks where a request is in its lifecycle.
type AgentState string

const (
	StateIdle       AgentState = "idle"
	StateThinking   AgentState = "thinking"
	StateActing     AgentState = "acting"
	StateObserving  AgentState = "observing"
	StateResponding AgentState = "responding"
	StateComplete   AgentState = "complete"
	StateError      AgentState = "error"
)

// ChatMessage is one turn of conversation history supplied by the caller.
type ChatMessage struct {
	Role      string    `json:"role"` // "user", "assistant", "system", "tool"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// AgentThought is the model's per-iteration reasoning output.
// An empty NextAction is the loop's convergence signal; the no_op tool name
// and unresolvable tool names are normalized to the same empty sentinel.
type AgentThought struct {
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
	NextAction string  `json:"next_action,omitempty"`
}

// AgentAction is the resolved decision to invoke one tool.
type AgentAction struct {
	Tool      string         `json:"tool"`
	ToolInput map[string]any `json:"tool_input"`
	Reasoning string         `json:"reasoning,omitempty"`
}

// Observation records the result of executing an action.
type Observation struct {
	Result     ToolResult `json:"result"`
	ObservedAt time.Time  `json:"observed_at"`
}

// AgentStep is one think→act→observe record in the step log.
// Invariant: Action == nil implies Observation == nil.
type AgentStep struct {
	Thought     AgentThought `json:"thought"`
	Action      *AgentAction `json:"action,omitempty"`
	Observation *Observation `json:"observation,omitempty"`
}

// AgentContext holds per-request loop state. One instance per Process call,
// never shared across requests.
type AgentContext struct {
	SessionID     string
	UserID        string
	Iteration     int
	MaxIterations int
	StartedAt     time.Time
	Timeout       time.Duration
	State         AgentState
	Steps         []AgentStep
	Fragments     []string // accumulated working-context strings
	Sources       []Source
	History       []ChatMessage
}

// NewAgentContext creates a fresh context in the idle state.
func NewAgentContext(sessionID, userID string, maxIterations int, timeout time.Duration) *AgentContext {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &AgentContext{
		SessionID:     sessionID,
		UserID:        userID,
		MaxIterations: maxIterations,
		StartedAt:     time.Now(),
		Timeout:       timeout,
		State:         StateIdle,
	}
}

// Elapsed returns wall-clock time since the request started.
func (c *AgentContext) Elapsed() time.Duration {
	return time.Since(c.StartedAt)
}

// Expired reports whether the wall-clock budget has been spent.
func (c *AgentContext) Expired() bool {
	return c.Timeout > 0 && c.Elapsed() >= c.Timeout
}

// AddStep appends an immutable step record to the log.
func (c *AgentContext) AddStep(step AgentStep) {
	c.Steps = append(c.Steps, step)
}

// ProcessOptions are the per-request knobs a caller may set.
type ProcessOptions struct {
	UserID      string       `json:"user_id,omitempty"`
	SessionID   string       `json:"session_id,omitempty"`
	ForceSchema ResponseKind `json:"force_schema,omitempty"` // bypass the classifier's choice
}

// ProcessMetadata summarizes one Process call for the caller.
type ProcessMetadata struct {
	ProcessingTime time.Duration `json:"processing_time"`
	Model          string        `json:"model"`
	IterationCount int           `json:"iteration_count"`
	ToolsUsed      []string      `json:"tools_used"`
}

// ProcessResult is the envelope every Process call returns. Error is a
// message rather than a Go error so the envelope is always well-formed.
type ProcessResult struct {
	Response *AgentResponse  `json:"response"`
	Steps    []AgentStep     `json:"steps"`
	Metadata ProcessMetadata `json:"metadata"`
	Error    string          `json:"error,omitempty"`
}
