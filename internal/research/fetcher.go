package research

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dkrasnov/docureel/internal/cache"
	"github.com/dkrasnov/docureel/internal/model"
	"github.com/dkrasnov/docureel/internal/util"
	"github.com/dkrasnov/docureel/internal/worker"
)

// PageFetcher downloads a page and reduces it to cleaned visible text.
// Any failure yields an empty string: a page that cannot be fetched
// simply contributes no evidence, it never aborts a research run.
type PageFetcher struct {
	httpClient    *http.Client
	pages         cache.Cache
	robots        *util.RobotsChecker
	limiter       *worker.HostLimiter
	logger        *slog.Logger
	userAgent     string
	maxBodyBytes  int64
	maxContentLen int
	cacheTTL      time.Duration
	respectRobots bool
}

// NewPageFetcher builds a fetcher from the HTTP and research config.
// pages may be nil to disable caching.
func NewPageFetcher(cfg model.HTTPConfig, research model.ResearchConfig, pages cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *PageFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)

	var robots *util.RobotsChecker
	if cfg.RespectRobots {
		robots = util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}

	return &PageFetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		pages:         pages,
		robots:        robots,
		limiter:       worker.NewHostLimiter(1, 1, research.PolitenessDelay),
		logger:        logger,
		userAgent:     cfg.UserAgent,
		maxBodyBytes:  cfg.MaxBodyBytes,
		maxContentLen: research.MaxContentLength,
		cacheTTL:      cacheTTL,
		respectRobots: cfg.RespectRobots,
	}
}

// Fetch returns the cleaned text of a page, or "" if the page cannot
// be fetched or parsed.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) string {
	key := cache.PageKey(rawURL)
	if f.pages != nil {
		if cached, ok := f.pages.Get(key); ok {
			return string(cached)
		}
	}

	if f.respectRobots && f.robots != nil && !f.robots.IsAllowed(ctx, rawURL) {
		f.logger.Debug("robots.txt disallows fetch", "url", rawURL)
		return ""
	}

	if err := f.limiter.Acquire(ctx, rawURL); err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.logger.Debug("invalid page URL", "url", rawURL, "error", err)
		return ""
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Debug("page fetch failed", "url", rawURL, "error", err)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Debug("page returned non-2xx", "url", rawURL, "status", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		f.logger.Debug("page read failed", "url", rawURL, "error", err)
		return ""
	}

	text := truncateText(CleanHTML(string(body)), f.maxContentLen)

	if f.pages != nil && text != "" {
		if err := f.pages.Set(key, []byte(text), f.cacheTTL); err != nil {
			f.logger.Debug("page cache write failed", "url", rawURL, "error", err)
		}
	}
	return text
}

// strippedTags are removed wholesale before text extraction: chrome and
// machinery, never evidence.
var strippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"nav":      true,
	"footer":   true,
	"header":   true,
}

// truncateText cuts s to at most max bytes without splitting a
// multi-byte rune at the cut.
func truncateText(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// CleanHTML reduces an HTML document to its visible text with
// whitespace collapsed to single spaces.
func CleanHTML(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}
