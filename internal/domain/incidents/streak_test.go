package incidents

import (
	"testing"

	"github.com/jawadbiag8/PDA/internal/domain/results"
)

func verdicts(vs ...results.Verdict) []results.Verdict { return vs }

const (
	hit     = results.VerdictHit
	miss    = results.VerdictMiss
	skipped = results.VerdictSkipped
)

func TestConsecutiveMisses(t *testing.T) {
	tests := []struct {
		name   string
		recent []results.Verdict
		k      int
		want   bool
	}{
		{"exactly k misses", verdicts(miss, miss, miss), 3, true},
		{"streak with older hit", verdicts(miss, miss, miss, hit), 3, true},
		{"not enough history", verdicts(miss, miss), 3, false},
		{"hit inside window", verdicts(miss, hit, miss), 3, false},
		// A skipped check means the streak was interrupted, even if the
		// miss before it is still inside the window.
		{"skipped inside window", verdicts(miss, miss, skipped, miss), 3, false},
		{"skipped outside window", verdicts(miss, miss, miss, skipped), 3, true},
		{"k of one", verdicts(miss, hit), 1, true},
		{"zero k", verdicts(miss, miss, miss), 0, false},
		{"empty history", nil, 3, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConsecutiveMisses(tc.recent, tc.k); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConsecutiveHits(t *testing.T) {
	if !ConsecutiveHits(verdicts(hit, hit, hit, miss), 3) {
		t.Error("three newest hits should establish the streak")
	}
	if ConsecutiveHits(verdicts(hit, skipped, hit), 3) {
		t.Error("skipped verdict must break the hit streak")
	}
	if ConsecutiveHits(verdicts(hit, hit), 3) {
		t.Error("short history must not establish the streak")
	}
}
