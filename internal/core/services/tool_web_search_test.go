package services

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddgFixture = `
<html><body>
  <div class="result">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc">Go Documentation</a>
    <div class="result__snippet">The official Go documentation.</div>
  </div>
  <div class="result">
    <a class="result__a" href="https://pkg.go.dev/">Go Packages</a>
    <div class="result__snippet">Discover Go packages.</div>
  </div>
  <div class="result">
    <a class="result__a" href="">No href here</a>
    <div class="result__snippet">Should be skipped.</div>
  </div>
  <div class="result">
    <a class="result__a" href="https://a.example/">A</a>
  </div>
  <div class="result">
    <a class="result__a" href="https://b.example/">B</a>
  </div>
  <div class="result">
    <a class="result__a" href="https://c.example/">Sixth result, past the cap</a>
  </div>
</body></html>`

func TestParseDuckDuckGoResults(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ddgFixture))
	require.NoError(t, err)

	results := parseDuckDuckGoResults(doc)
	require.Len(t, results, 4)

	// The redirect wrapper is unwrapped to the real target.
	assert.Equal(t, "Go Documentation", results[0].Title)
	assert.Equal(t, "https://go.dev/doc/", results[0].Link)
	assert.Equal(t, "The official Go documentation.", results[0].Snippet)

	assert.Equal(t, "https://pkg.go.dev/", results[1].Link)

	// Empty-href entry is dropped; snippet-less entries survive.
	assert.Equal(t, "A", results[2].Title)
	assert.Empty(t, results[2].Snippet)
}

func TestParseDuckDuckGoResultsEmptyDocument(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, parseDuckDuckGoResults(doc))
}

func TestBuildSearchAnswer(t *testing.T) {
	results := []WebSearchResult{
		{Title: "a", Link: "https://a", Snippet: "First."},
		{Title: "b", Link: "https://b", Snippet: "Second."},
		{Title: "c", Link: "https://c", Snippet: "Third."},
		{Title: "d", Link: "https://d", Snippet: "Fourth, past the summary cap."},
	}

	out := buildSearchAnswer(results, nil, true)
	assert.Equal(t, "First. Second. Third.", out["answer"])
	assert.Equal(t, results, out["results"])
	_, hasImages := out["images"]
	assert.False(t, hasImages)
}

func TestBuildSearchAnswerImages(t *testing.T) {
	results := []WebSearchResult{{Title: "a", Link: "https://a", Snippet: "s"}}
	images := []string{"https://img.example/1.png"}

	out := buildSearchAnswer(results, images, true)
	assert.Equal(t, images, out["images"])

	out = buildSearchAnswer(results, images, false)
	_, hasImages := out["images"]
	assert.False(t, hasImages)
}
