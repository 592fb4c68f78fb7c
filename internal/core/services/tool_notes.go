package services

import (
	"context"
	"fmt"

	"github.com/kweiss-dev/minerva/internal/core/domain"
	"github.com/kweiss-dev/minerva/internal/core/ports"
)

// NoteHit is one ranked note returned by search_personal_notes.
type NoteHit struct {
	NoteID     string  `json:"note_id"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	Similarity float64 `json:"similarity"`
}

// NewNotesSearchTool returns the personal-notes search tool. Ranking is
// delegated to the semantic-ranking capability; this tool only loads the
// user's notes and shapes the hits.
func NewNotesSearchTool(store ports.NoteStore, ranker ports.Ranker) *domain.Tool {
	return &domain.Tool{
		Name:        "search_personal_notes",
		Description: "Searches the user's personal notes by semantic relevance to the query.",
		Parameters: domain.ToolParameters{
			Properties: map[string]domain.ParamSpec{
				"user_id": {
					Type:        "string",
					Description: "Owner of the notes.",
					Required:    true,
				},
				"query": {
					Type:        "string",
					Description: "What to look for.",
					Required:    true,
				},
				"top_k": {
					Type:        "number",
					Description: "Maximum hits to return.",
					Default:     3,
				},
				"threshold": {
					Type:        "number",
					Description: "Minimum similarity score in [0,1].",
					Default:     0.5,
				},
			},
			Required: []string{"user_id", "query"},
		},
		Execute: func(ctx context.Context, params map[string]any) (any, error) {
			userID, _ := params["user_id"].(string)
			query, _ := params["query"].(string)
			topK := intParam(params, "top_k", 3)
			threshold := floatParam(params, "threshold", 0.5)

			notes, err := store.ListNotes(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("load notes: %w", err)
			}

			docs := make([]domain.RankedDocument, 0, len(notes))
			for _, n := range notes {
				docs = append(docs, domain.RankedDocument{ID: n.ID, Title: n.Title, Body: n.Body})
			}

			var hits []NoteHit
			for _, d := range ranker.Rank(query, docs, topK, threshold) {
				hits = append(hits, NoteHit{
					NoteID:     d.ID,
					Title:      d.Title,
					Snippet:    snippet(d.Body, 240),
					Similarity: d.Score,
				})
			}
			return map[string]any{"matches": hits, "total": len(hits)}, nil
		},
	}
}

// intParam reads a numeric parameter that may arrive as float64 (JSON) or int.
func intParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func floatParam(params map[string]any, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// snippet truncates text on a rune boundary for citation display.
func snippet(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
