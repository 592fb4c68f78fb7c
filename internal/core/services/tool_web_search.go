package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kweiss-dev/minerva/internal/core/domain"
)

// NewWebSearchTool returns the external search tool. Uses Brave Search when an
// API key is configured, otherwise falls back to scraping the non-JS
// DuckDuckGo HTML endpoint.
func NewWebSearchTool() *domain.Tool {
	return &domain.Tool{
		Name:        "web_search",
		Description: "Searches the web. Returns an answer summary plus top results with titles, snippets, and URLs.",
		Parameters: domain.ToolParameters{
			Properties: map[string]domain.ParamSpec{
				"query": {
					Type:        "string",
					Description: "The search query (e.g. 'latest golang release notes').",
					Required:    true,
				},
				"include_images": {
					Type:        "boolean",
					Description: "Whether to include image results when the backend provides them.",
					Default:     true,
				},
			},
			Required: []string{"query"},
		},
		Execute: func(ctx context.Context, params map[string]any) (any, error) {
			query, ok := params["query"].(string)
			if !ok || query == "" {
				return nil, fmt.Errorf("query is required")
			}
			includeImages := true
			if v, ok := params["include_images"].(bool); ok {
				includeImages = v
			}

			var results []WebSearchResult
			var images []string
			var err error

			if apiKey := os.Getenv("BRAVE_SEARCH_API_KEY"); apiKey != "" {
				results, images, err = searchBrave(ctx, query, apiKey)
				if err == nil {
					return buildSearchAnswer(results, images, includeImages), nil
				}
				// Brave failed; fall through to DuckDuckGo.
			}

			results, err = searchDuckDuckGo(ctx, query)
			if err != nil {
				return nil, err
			}
			return buildSearchAnswer(results, nil, includeImages), nil
		},
	}
}

// WebSearchResult is one web hit.
type WebSearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// buildSearchAnswer folds results into the tool's uniform payload: a short
// answer string assembled from the top snippets plus the raw hits.
func buildSearchAnswer(results []WebSearchResult, images []string, includeImages bool) map[string]any {
	var parts []string
	for i, r := range results {
		if i >= 3 || r.Snippet == "" {
			break
		}
		parts = append(parts, r.Snippet)
	}
	out := map[string]any{
		"answer":  strings.Join(parts, " "),
		"results": results,
	}
	if includeImages && len(images) > 0 {
		out["images"] = images
	}
	return out
}

func searchBrave(ctx context.Context, query, apiKey string) ([]WebSearchResult, []string, error) {
	reqURL := "https://api.search.brave.com/res/v1/web/search?q=" + url.QueryEscape(query) + "&count=5"
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("X-Subscription-Token", apiKey)
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("brave api error: %d", resp.StatusCode)
	}

	var braveResp struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
				Thumbnail   struct {
					Src string `json:"src"`
				} `json:"thumbnail"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&braveResp); err != nil {
		return nil, nil, err
	}

	var results []WebSearchResult
	var images []string
	for _, r := range braveResp.Web.Results {
		results = append(results, WebSearchResult{
			Title:   r.Title,
			Link:    r.URL,
			Snippet: r.Description,
		})
		if r.Thumbnail.Src != "" {
			images = append(images, r.Thumbnail.Src)
		}
	}
	return results, images, nil
}

func searchDuckDuckGo(ctx context.Context, query string) ([]WebSearchResult, error) {
	// html.duckduckgo.com serves the lighter non-JS version
	reqURL := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ddg error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse ddg html: %w", err)
	}
	results := parseDuckDuckGoResults(doc)
	if len(results) == 0 {
		return nil, fmt.Errorf("no results found on DuckDuckGo (layout likely changed or blocked)")
	}
	return results, nil
}

// parseDuckDuckGoResults extracts hits from the DDG HTML layout. The
// result__a / result__snippet class names have been stable on the non-JS
// endpoint for years.
func parseDuckDuckGoResults(doc *goquery.Document) []WebSearchResult {
	var results []WebSearchResult
	doc.Find("div.result").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= 5 {
			return false
		}
		link := sel.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())

		// DDG wraps targets in a redirect: //duckduckgo.com/l/?uddg=<real url>
		if strings.Contains(href, "uddg=") {
			if u, err := url.Parse(href); err == nil {
				if val := u.Query().Get("uddg"); val != "" {
					href = val
				}
			}
		}

		if title != "" && href != "" {
			results = append(results, WebSearchResult{
				Title:   title,
				Link:    href,
				Snippet: snippet,
			})
		}
		return true
	})
	return results
}
