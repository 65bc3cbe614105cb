package article

import "strings"

// DefaultBodyPrefix is the number of body runes that take part in the representation.
const DefaultBodyPrefix = 2000

const separator = " "

// Representation builds the classifier input: title, snippet, body prefix and source domain,
// in that order, skipping empty fields.
// ok is false when title, snippet and body are all empty; such documents must not be scored.
func (d Document) Representation(bodyPrefix int) (text string, ok bool) {
	if bodyPrefix <= 0 {
		bodyPrefix = DefaultBodyPrefix
	}
	body := truncateRunes(d.body, bodyPrefix)

	if d.title == "" && d.snippet == "" && body == "" {
		return "", false
	}

	parts := make([]string, 0, 4)
	for _, p := range []string{d.title, d.snippet, body, d.sourceDomain} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, separator), true
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return strings.TrimSpace(s[:i])
		}
		count++
	}
	return s
}
