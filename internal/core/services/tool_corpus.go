package services

import (
	"context"
	"fmt"

	"github.com/kweiss-dev/minerva/internal/core/domain"
	"github.com/kweiss-dev/minerva/internal/core/ports"
)

// CorpusHit is one ranked article returned by search_shared_corpus.
type CorpusHit struct {
	DocumentID string  `json:"document_id"`
	CorpusID   string  `json:"corpus_id"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	Similarity float64 `json:"similarity"`
}

// NewCorpusSearchTool returns the shared-corpus search tool, scoped to
// approved articles in knowledge bases the user owns or subscribes to.
func NewCorpusSearchTool(store ports.CorpusStore, ranker ports.Ranker) *domain.Tool {
	return &domain.Tool{
		Name:        "search_shared_corpus",
		Description: "Searches approved articles in the user's subscribed knowledge bases.",
		Parameters: domain.ToolParameters{
			Properties: map[string]domain.ParamSpec{
				"user_id": {
					Type:        "string",
					Description: "The requesting user; scopes which knowledge bases are visible.",
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
			},
			Required: []string{"user_id", "query"},
		},
		Execute: func(ctx context.Context, params map[string]any) (any, error) {
			userID, _ := params["user_id"].(string)
			query, _ := params["query"].(string)
			topK := intParam(params, "top_k", 3)

			articles, err := store.ListCorpusDocuments(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("load corpus: %w", err)
			}

			corpusByDoc := make(map[string]string, len(articles))
			docs := make([]domain.RankedDocument, 0, len(articles))
			for _, a := range articles {
				corpusByDoc[a.ID] = a.CorpusID
				docs = append(docs, domain.RankedDocument{ID: a.ID, Title: a.Title, Body: a.Body})
			}

			var hits []CorpusHit
			for _, d := range ranker.Rank(query, docs, topK, 0) {
				hits = append(hits, CorpusHit{
					DocumentID: d.ID,
					CorpusID:   corpusByDoc[d.ID],
					Title:      d.Title,
					Snippet:    snippet(d.Body, 240),
					Similarity: d.Score,
				})
			}
			return map[string]any{"matches": hits, "total": len(hits)}, nil
		},
	}
}
