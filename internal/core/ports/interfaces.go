package ports

import (
	"context"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// GenerateParams are the per-call generation knobs. Zero values mean "use the
// provider's default": an empty Model keeps the configured model, a zero
// Temperature leaves the backend's own default in place.
type GenerateParams struct {
	Model       string
	Temperature float64
}

// TextGenerator abstracts the raw text-generation backend (Ollama, an
// OpenAI-compatible endpoint, Gemini, ...). The system prompt is separated
// so backends with native system-instruction support can use it.
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, messages []domain.ChatMessage, params GenerateParams) (string, error)
}

// Ranker is the semantic-ranking capability: score documents against a query
// and return the topK above threshold, best first.
type Ranker interface {
	Rank(query string, docs []domain.RankedDocument, topK int, threshold float64) []domain.RankedDocument
}

// NoteStore reads a user's personal notes.
type NoteStore interface {
	ListNotes(ctx context.Context, userID string) ([]domain.Note, error)
}

// CorpusStore reads approved articles from knowledge bases the user owns or
// is subscribed to.
type CorpusStore interface {
	ListCorpusDocuments(ctx context.Context, userID string) ([]domain.CorpusDocument, error)
}
