// Package htmlfetch downloads a web page and extracts the fields the classifier reads.
package htmlfetch

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/kailas-cloud/veritas/internal/domain"
	"github.com/kailas-cloud/veritas/internal/domain/article"
)

// Defaults applied by New to zero Config fields.
const (
	DefaultMaxParagraphs = 10
	DefaultMaxBodyBytes  = 2 << 20
	DefaultUserAgent     = "veritas/1.0 (+https://github.com/kailas-cloud/veritas)"
)

// publishDateSelectors are tried in order; the first non-empty content wins.
var publishDateSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[property="og:published_time"]`,
	`meta[itemprop="datePublished"]`,
	`meta[name="date"]`,
	`meta[name="pubdate"]`,
}

// Config holds fetcher settings.
type Config struct {
	UserAgent     string
	MaxBodyBytes  int64
	MaxParagraphs int
	HTTPClient    *http.Client
}

// Fetcher is the HTML DocumentFetcher.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	maxBodyBytes  int64
	maxParagraphs int
	policy        *bluemonday.Policy
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	f := &Fetcher{
		client:        cfg.HTTPClient,
		userAgent:     cfg.UserAgent,
		maxBodyBytes:  cfg.MaxBodyBytes,
		maxParagraphs: cfg.MaxParagraphs,
		policy:        bluemonday.StrictPolicy(),
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.userAgent == "" {
		f.userAgent = DefaultUserAgent
	}
	if f.maxBodyBytes <= 0 {
		f.maxBodyBytes = DefaultMaxBodyBytes
	}
	if f.maxParagraphs <= 0 {
		f.maxParagraphs = DefaultMaxParagraphs
	}
	return f
}

// Fetch downloads rawURL and extracts title, headings, leading paragraphs and publish date.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (article.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return article.Document{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return article.Document{}, fmt.Errorf("%w: fetch %s: %w", domain.ErrUpstream, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return article.Document{}, fmt.Errorf("%w: fetch %s: status %d", domain.ErrUpstream, rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return article.Document{}, fmt.Errorf("%w: parse %s: %w", domain.ErrUpstream, rawURL, err)
	}

	return f.extract(rawURL, doc), nil
}

func (f *Fetcher) extract(rawURL string, doc *goquery.Document) article.Document {
	// The strict policy drops <title> content, so the title is read as plain text.
	title := strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")

	var parts []string
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if t := f.text(s); t != "" {
			parts = append(parts, t)
		}
	})

	paragraphs := 0
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := f.text(s); t != "" {
			parts = append(parts, t)
			paragraphs++
		}
		return paragraphs < f.maxParagraphs
	})

	description, _ := doc.Find(`meta[name="description"]`).First().Attr("content")

	return article.New(rawURL, title, strings.Join(parts, "\n"), f.clean(description), publishDate(doc))
}

// text returns the visible text of s with markup, scripts and styles removed.
func (f *Fetcher) text(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	raw, err := goquery.OuterHtml(s)
	if err != nil {
		return strings.Join(strings.Fields(s.Text()), " ")
	}
	return f.clean(raw)
}

func (f *Fetcher) clean(raw string) string {
	sanitized := html.UnescapeString(f.policy.Sanitize(raw))
	return strings.Join(strings.Fields(sanitized), " ")
}

func publishDate(doc *goquery.Document) string {
	for _, sel := range publishDateSelectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
