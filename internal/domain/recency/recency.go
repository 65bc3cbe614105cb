package recency

import (
	"strings"
	"time"
)

// layouts are tried in order; ISO-8601 first, then calendar formats.
// Day-first is tried before month-first, so 03/04/2024 reads as 3 April.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
}

// Estimator turns publish dates into elapsed whole days.
type Estimator struct {
	now func() time.Time
}

// NewEstimator creates an Estimator. A nil now uses time.Now.
func NewEstimator(now func() time.Time) *Estimator {
	if now == nil {
		now = time.Now
	}
	return &Estimator{now: now}
}

// Parse reads a date string using the supported layouts. Dates without a zone are UTC.
func Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Estimate returns whole days between now and the parsed date.
// ok is false when the date is absent or unparseable; callers must not invent a value.
// Future dates yield a negative count.
func (e *Estimator) Estimate(raw string) (days int, ok bool) {
	t, ok := Parse(raw)
	if !ok {
		return 0, false
	}
	d := e.now().UTC().Sub(t.UTC())
	days = int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days, true
}
