package rank

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// LexicalRanker scores documents by cosine similarity over term-frequency
// vectors. It stands in for an embedding-based ranker behind the same
// interface; title terms are weighted above body terms.
type LexicalRanker struct {
	TitleWeight float64
}

// NewLexicalRanker creates a ranker with the default title weight.
func NewLexicalRanker() *LexicalRanker {
	return &LexicalRanker{TitleWeight: 2.0}
}

// Rank implements ports.Ranker: score every document against the query and
// return the topK above threshold, best first.
func (r *LexicalRanker) Rank(query string, docs []domain.RankedDocument, topK int, threshold float64) []domain.RankedDocument {
	queryVec := termFrequencies(query, 1)
	if len(queryVec) == 0 {
		return nil
	}

	scored := make([]domain.RankedDocument, 0, len(docs))
	for _, d := range docs {
		docVec := termFrequencies(d.Title, r.TitleWeight)
		for term, tf := range termFrequencies(d.Body, 1) {
			docVec[term] += tf
		}
		score := cosine(queryVec, docVec)
		if score < threshold || score == 0 {
			continue
		}
		d.Score = score
		scored = append(scored, d)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func termFrequencies(text string, weight float64) map[string]float64 {
	freqs := make(map[string]float64)
	for _, tok := range tokenize(text) {
		freqs[tok] += weight
	}
	return freqs
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, va := range a {
		normA += va * va
		if vb, ok := b[term]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if dot == 0 || normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
