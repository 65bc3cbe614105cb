package article

import (
	"net/url"
	"strings"

	"github.com/kailas-cloud/veritas/internal/domain/hit"
)

// Document is the scoring input for one search hit (immutable value object).
// URL and SourceDomain are always set, possibly to "".
type Document struct {
	url          string
	title        string
	body         string
	snippet      string
	sourceDomain string
	publishDate  string
}

// New creates a Document. The source domain is derived from rawURL.
func New(rawURL, title, body, snippet, publishDate string) Document {
	return Document{
		url:          rawURL,
		title:        strings.TrimSpace(title),
		body:         strings.TrimSpace(body),
		snippet:      strings.TrimSpace(snippet),
		sourceDomain: DomainOf(rawURL),
		publishDate:  strings.TrimSpace(publishDate),
	}
}

// FromHit synthesizes a Document from search metadata when the page could not be fetched.
// Body and publish date stay empty.
func FromHit(h hit.Hit) Document {
	return New(h.Link, h.Title, "", h.Snippet, "")
}

// WithSnippet returns a copy carrying the search snippet (fetchers do not see it).
func (d Document) WithSnippet(snippet string) Document {
	d.snippet = strings.TrimSpace(snippet)
	return d
}

// MergeHit completes a fetched document with search metadata:
// the search snippet replaces the page description, the link and title fill in only when the page had none.
func (d Document) MergeHit(h hit.Hit) Document {
	if strings.TrimSpace(h.Snippet) != "" {
		d = d.WithSnippet(h.Snippet)
	}
	if d.url == "" {
		d.url = h.Link
		d.sourceDomain = DomainOf(h.Link)
	}
	if d.title == "" {
		d.title = strings.TrimSpace(h.Title)
	}
	return d
}

// URL returns the document address.
func (d Document) URL() string { return d.url }

// Title returns the page title.
func (d Document) Title() string { return d.title }

// Body returns the extracted page text.
func (d Document) Body() string { return d.body }

// Snippet returns the search snippet.
func (d Document) Snippet() string { return d.snippet }

// SourceDomain returns the host part of the URL.
func (d Document) SourceDomain() string { return d.sourceDomain }

// PublishDate returns the raw publish date string and whether one was found.
func (d Document) PublishDate() (string, bool) {
	return d.publishDate, d.publishDate != ""
}

// DomainOf returns the host (with port, if any) of rawURL, or "" when it cannot be parsed.
func DomainOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return u.Host
}
