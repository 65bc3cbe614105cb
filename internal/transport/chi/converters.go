package chi

import (
	"github.com/kailas-cloud/veritas/internal/domain/item"
	"github.com/kailas-cloud/veritas/internal/domain/response"
)

// ResponseToAPI converts a pipeline response to its wire form. Results is never nil.
func ResponseToAPI(resp response.Response) SearchResponse {
	results := make([]ResultItem, len(resp.Results))
	for i, it := range resp.Results {
		results[i] = ItemToAPI(it)
	}

	out := SearchResponse{Prompt: resp.Prompt, Results: results}
	if a, ok := resp.Summary.Answer(); ok {
		out.Answer = &a
	}
	if r, ok := resp.Summary.Report(); ok {
		out.Report = &r
	}
	return out
}

// ItemToAPI converts one ranked item to its wire form.
func ItemToAPI(it item.Item) ResultItem {
	doc := it.Document()
	v := it.Verdict()
	exp := it.Explanation()

	features := make([]ContributingFeature, 0, exp.Len())
	for _, c := range exp.Items() {
		features = append(features, ContributingFeature{
			Token:             c.Token,
			ContributionScore: c.Score,
			Tfidf:             c.RawWeight,
		})
	}

	out := ResultItem{
		Url:                     doc.URL(),
		Title:                   doc.Title(),
		Snippet:                 doc.Snippet(),
		SourceDomain:            doc.SourceDomain(),
		Prediction:              string(v.Label()),
		TrustScore:              v.Trust(),
		TrustBand:               string(v.Band()),
		ScoreKind:               string(v.Kind()),
		TopContributingFeatures: features,
		ExplanationMode:         string(exp.Mode()),
	}
	if d, ok := doc.PublishDate(); ok {
		out.PublishDate = &d
	}
	if days, ok := it.RecencyDays(); ok {
		out.RecencyDays = &days
	}
	if p, ok := it.Placement(); ok {
		cluster := p.Cluster
		out.Cluster = &cluster
		out.Coord2d = p.Coord
	}
	return out
}
