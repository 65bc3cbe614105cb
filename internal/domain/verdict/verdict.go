package verdict

import "fmt"

// Label is the binary authenticity class.
type Label string

const (
	// LabelReal marks a document judged authentic.
	LabelReal Label = "REAL"
	// LabelFake marks a document judged fabricated.
	LabelFake Label = "FAKE"
)

// ScoreKind tells how trust was obtained.
type ScoreKind string

const (
	// ScoreCalibrated is a probability estimate of the REAL class.
	ScoreCalibrated ScoreKind = "calibrated"
	// ScoreHard is a {0,1} proxy matching the label.
	ScoreHard ScoreKind = "hard"
)

// Band is a coarse trust bucket for display.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// Verdict is a ClassificationResult: label plus trust score in [0,1].
type Verdict struct {
	label Label
	trust float64
	kind  ScoreKind
}

// New creates a Verdict. Trust outside [0,1] is rejected.
func New(label Label, trust float64, kind ScoreKind) (Verdict, error) {
	if label != LabelReal && label != LabelFake {
		return Verdict{}, fmt.Errorf("unknown label %q", label)
	}
	if trust < 0 || trust > 1 || trust != trust {
		return Verdict{}, fmt.Errorf("trust score %v out of [0,1]", trust)
	}
	return Verdict{label: label, trust: trust, kind: kind}, nil
}

// Hard creates a hard verdict: trust 1 for REAL, 0 for FAKE.
func Hard(label Label) Verdict {
	trust := 0.0
	if label == LabelReal {
		trust = 1.0
	}
	return Verdict{label: label, trust: trust, kind: ScoreHard}
}

// Label returns the predicted class.
func (v Verdict) Label() Label { return v.label }

// Trust returns the trust score.
func (v Verdict) Trust() float64 { return v.trust }

// Kind returns the score quality.
func (v Verdict) Kind() ScoreKind { return v.kind }

// Band buckets the trust score.
func (v Verdict) Band() Band {
	switch {
	case v.trust >= 0.8:
		return BandHigh
	case v.trust >= 0.6:
		return BandMedium
	default:
		return BandLow
	}
}
