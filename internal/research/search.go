package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// SearchResult is one entry from the search backend.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"href"`
	Snippet string `json:"body"`
}

// SearchProvider executes a text query against a search backend.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// DuckDuckGoSearch scrapes the DuckDuckGo HTML endpoint. No API key,
// which keeps research runnable out of the box.
type DuckDuckGoSearch struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxResults int
}

// NewDuckDuckGoSearch creates the search client. baseURL is overridable
// for tests; empty selects the public endpoint.
func NewDuckDuckGoSearch(httpClient *http.Client, userAgent string, maxResults int, baseURL string) *DuckDuckGoSearch {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if baseURL == "" {
		baseURL = "https://html.duckduckgo.com"
	}
	return &DuckDuckGoSearch{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		maxResults: maxResults,
	}
}

// Search returns up to maxResults ordered results for a query.
func (s *DuckDuckGoSearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("%s/html/?q=%s", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search %q: unexpected status %d", query, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2_000_000))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	results := parseResultPage(string(body))
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}
	return results, nil
}

// parseResultPage extracts result links and snippets from the
// DuckDuckGo HTML layout (result__a anchors, result__snippet blocks).
func parseResultPage(page string) []SearchResult {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var results []SearchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			class := attrValue(n, "class")
			switch {
			case n.Data == "a" && strings.Contains(class, "result__a"):
				href := decodeRedirect(attrValue(n, "href"))
				title := strings.TrimSpace(nodeText(n))
				if href != "" && title != "" {
					results = append(results, SearchResult{Title: title, URL: href})
				}
			case strings.Contains(class, "result__snippet"):
				if len(results) > 0 && results[len(results)-1].Snippet == "" {
					results[len(results)-1].Snippet = strings.TrimSpace(nodeText(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

// decodeRedirect unwraps DuckDuckGo's /l/?uddg= redirect links into the
// destination URL. Direct links pass through untouched.
func decodeRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}
