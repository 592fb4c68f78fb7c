package domain

// Source is a citation back to material that informed part of an answer.
type Source struct {
	Type      string  `json:"type"` // "note", "corpus", "web"
	Title     string  `json:"title"`
	URL       string  `json:"url,omitempty"`
	NoteID    string  `json:"note_id,omitempty"`
	CorpusID  string  `json:"corpus_id,omitempty"`
	Snippet   string  `json:"snippet,omitempty"`
	Relevance float64 `json:"relevance,omitempty"`
}

// CodeBlock is one snippet in a code response.
type CodeBlock struct {
	Language    string `json:"language" jsonschema_description:"Language identifier, e.g. 'go' or 'python'"`
	Code        string `json:"code" jsonschema_description:"The code itself, no surrounding prose"`
	Explanation string `json:"explanation,omitempty" jsonschema_description:"Short explanation of what the block does"`
}

// Section is one titled block in an analytical response.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// SearchItem is one ranked hit in a search response.
type SearchItem struct {
	Title     string  `json:"title"`
	Snippet   string  `json:"snippet"`
	URL       string  `json:"url,omitempty"`
	Relevance float64 `json:"relevance,omitempty"`
}

// TaskStep is one ordered step in a task or instruction response.
type TaskStep struct {
	Order       int    `json:"order"`
	Description string `json:"description"`
	Detail      string `json:"detail,omitempty"`
}

// ComparisonRow compares the subjects along one criterion.
type ComparisonRow struct {
	Criterion string            `json:"criterion"`
	Values    map[string]string `json:"values" jsonschema_description:"Subject name to its value for this criterion"`
}

// AgentResponse is the final structured answer. Kind selects which of the
// variant fields are populated; the common fields are always present.
// Constructed once by the synthesizer, never mutated afterwards.
type AgentResponse struct {
	Kind       ResponseKind   `json:"kind"`
	Topic      string         `json:"topic"`
	Confidence float64        `json:"confidence"`
	Sources    []Source       `json:"sources,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`

	Message    string          `json:"message,omitempty"`
	CodeBlocks []CodeBlock     `json:"code_blocks,omitempty"`
	Sections   []Section       `json:"sections,omitempty"`
	Results    []SearchItem    `json:"results,omitempty"`
	Steps      []TaskStep      `json:"steps,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	KeyPoints  []string        `json:"key_points,omitempty"`
	Rows       []ComparisonRow `json:"rows,omitempty"`
	Verdict    string          `json:"verdict,omitempty"`
}
