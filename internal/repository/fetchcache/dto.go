package fetchcache

import "github.com/kailas-cloud/veritas/internal/domain/article"

// documentDTO is the cached JSON form of a fetched document.
type documentDTO struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Snippet     string `json:"snippet,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
}

func toDTO(d article.Document) documentDTO {
	date, _ := d.PublishDate()
	return documentDTO{URL: d.URL(), Title: d.Title(), Body: d.Body(), Snippet: d.Snippet(), PublishDate: date}
}

func (d documentDTO) toDomain() article.Document {
	return article.New(d.URL, d.Title, d.Body, d.Snippet, d.PublishDate)
}
