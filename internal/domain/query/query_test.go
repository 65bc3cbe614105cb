package query

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/veritas/internal/domain"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		max     int
		limit   int
		wantMax int
		wantErr error
	}{
		{"defaults", "vaccine safety", 0, 10, DefaultMaxResults, nil},
		{"explicit", "vaccine safety", 3, 10, 3, nil},
		{"clamped", "vaccine safety", 50, 10, 10, nil},
		{"no cap", "vaccine safety", 50, 0, 50, nil},
		{"empty prompt", "", 5, 10, 0, domain.ErrEmptyPrompt},
		{"blank prompt", "   \t", 5, 10, 0, domain.ErrEmptyPrompt},
		{"negative", "vaccine safety", -1, 10, 0, domain.ErrInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := New(tc.prompt, tc.max, tc.limit)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.MaxResults() != tc.wantMax {
				t.Errorf("MaxResults() = %d, want %d", q.MaxResults(), tc.wantMax)
			}
		})
	}
}

func TestNew_TrimsPrompt(t *testing.T) {
	q, err := New("  vaccine safety \n", 1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Prompt() != "vaccine safety" {
		t.Errorf("Prompt() = %q", q.Prompt())
	}
}
