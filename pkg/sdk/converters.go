package veritas

import (
	"github.com/kailas-cloud/veritas/internal/domain/item"
	"github.com/kailas-cloud/veritas/internal/domain/response"
)

func responseFromDomain(resp response.Response) Response {
	out := Response{Prompt: resp.Prompt, Results: make([]Result, len(resp.Results))}
	for i, it := range resp.Results {
		out.Results[i] = resultFromDomain(it)
	}
	out.Answer, _ = resp.Summary.Answer()
	out.Report, _ = resp.Summary.Report()
	return out
}

func resultFromDomain(it item.Item) Result {
	doc := it.Document()
	v := it.Verdict()
	exp := it.Explanation()

	features := make([]Feature, 0, exp.Len())
	for _, c := range exp.Items() {
		features = append(features, Feature{Token: c.Token, Contribution: c.Score, TFIDF: c.RawWeight})
	}

	r := Result{
		URL:             doc.URL(),
		Title:           doc.Title(),
		Snippet:         doc.Snippet(),
		SourceDomain:    doc.SourceDomain(),
		Prediction:      Prediction(v.Label()),
		TrustScore:      v.Trust(),
		TrustBand:       string(v.Band()),
		ScoreKind:       string(v.Kind()),
		Features:        features,
		ExplanationMode: string(exp.Mode()),
	}
	r.PublishDate, _ = doc.PublishDate()
	if days, ok := it.RecencyDays(); ok {
		r.RecencyDays = &days
	}
	if p, ok := it.Placement(); ok {
		cluster := p.Cluster
		r.Cluster = &cluster
		r.Coord = p.Coord
	}
	return r
}
