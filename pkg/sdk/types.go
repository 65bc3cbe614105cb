package veritas

// Prediction is the binary authenticity class.
type Prediction string

// Prediction constants.
const (
	PredictionReal Prediction = "REAL"
	PredictionFake Prediction = "FAKE"
)

// Response is the ranked answer to one query.
type Response struct {
	Prompt  string
	Results []Result // sorted by TrustScore, highest first
	Answer  string   // empty unless the summarizer is enabled and succeeded
	Report  string
}

// Result is one classified search hit.
type Result struct {
	URL          string
	Title        string
	Snippet      string
	SourceDomain string
	PublishDate  string // empty when unknown
	RecencyDays  *int   // nil when the publish date is unknown

	Prediction Prediction
	TrustScore float64 // probability of REAL, or 0/1 for hard-margin models
	TrustBand  string  // "high", "medium", "low"
	ScoreKind  string  // "calibrated" or "hard"

	Features        []Feature
	ExplanationMode string // "coefficients", "importances" or "magnitude"

	Cluster *int        // nil when clustering is off or degraded
	Coord   *[2]float64 // 2-D projection, nil when unavailable
}

// Feature is one token's contribution to a verdict.
type Feature struct {
	Token        string
	Contribution float64
	TFIDF        float64
}

// ModelInfo describes the loaded vectorizer/classifier pair.
type ModelInfo struct {
	Version        string
	Kind           string
	VocabularySize int
	Explainable    string
}
