package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

func sampleDocs() []domain.RankedDocument {
	return []domain.RankedDocument{
		{ID: "d1", Title: "Deploy runbook", Body: "How to deploy the service safely."},
		{ID: "d2", Title: "Oncall guide", Body: "Dashboards, alerts, and escalation."},
		{ID: "d3", Title: "Deploy checklist", Body: "Deploy steps: canary, verify, promote the deploy."},
	}
}

func TestRankOrdersByRelevance(t *testing.T) {
	r := NewLexicalRanker()

	ranked := r.Rank("deploy", sampleDocs(), 0, 0)
	require.Len(t, ranked, 2, "the oncall guide never mentions deploy")
	assert.Equal(t, "d3", ranked[0].ID, "more deploy mentions rank higher")
	assert.Equal(t, "d1", ranked[1].ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	for _, d := range ranked {
		assert.Greater(t, d.Score, 0.0)
		assert.LessOrEqual(t, d.Score, 1.0)
	}
}

func TestRankAppliesTopK(t *testing.T) {
	r := NewLexicalRanker()

	ranked := r.Rank("deploy", sampleDocs(), 1, 0)
	require.Len(t, ranked, 1)
	assert.Equal(t, "d3", ranked[0].ID)
}

func TestRankAppliesThreshold(t *testing.T) {
	r := NewLexicalRanker()

	ranked := r.Rank("deploy", sampleDocs(), 0, 0.99)
	assert.Empty(t, ranked)
}

func TestRankZeroScoresAreDropped(t *testing.T) {
	r := NewLexicalRanker()

	ranked := r.Rank("kubernetes", sampleDocs(), 0, 0)
	assert.Empty(t, ranked)
}

func TestRankEmptyQuery(t *testing.T) {
	r := NewLexicalRanker()

	assert.Nil(t, r.Rank("", sampleDocs(), 0, 0))
	assert.Nil(t, r.Rank("...!!!", sampleDocs(), 0, 0))
}

func TestRankTitleTermsWeighHigher(t *testing.T) {
	r := NewLexicalRanker()
	docs := []domain.RankedDocument{
		{ID: "title-hit", Title: "Caching strategies", Body: "General storage advice."},
		{ID: "body-hit", Title: "Storage advice", Body: "General caching strategies."},
	}

	ranked := r.Rank("caching", docs, 0, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, "title-hit", ranked[0].ID)
}

func TestTokenizeLowercasesAndSplits(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "42"}, tokenize("Hello, WORLD! 42"))
	assert.Empty(t, tokenize("  ...  "))
}

func TestCosineIdenticalVectorsIsOne(t *testing.T) {
	v := map[string]float64{"a": 2, "b": 3}
	assert.InDelta(t, 1.0, cosine(v, v), 1e-9)
	assert.Zero(t, cosine(v, map[string]float64{"c": 1}))
}
