// Package veritas embeds the veritas credibility pipeline in a Go program.
//
// A query runs a web search, fetches each hit, classifies the page text as
// REAL or FAKE with a pre-trained tf-idf model, explains the verdict by its top
// tokens and returns the results ranked by trust.
//
//	client, _ := veritas.New(ctx,
//	    veritas.WithModel("models/vectorizer.json", "models/classifier.json"),
//	    veritas.WithSearch("google", apiKey, engineID),
//	)
//	defer client.Close()
//
//	resp, _ := client.Query(ctx, "moon landing hoax", 5)
//	for _, r := range resp.Results {
//	    fmt.Println(r.TrustScore, r.Prediction, r.URL)
//	}
//
// Without WithSearch credentials the client answers from mock hits.
// WithRedis adds a shared fetch cache and a persisted summarizer budget.
package veritas
