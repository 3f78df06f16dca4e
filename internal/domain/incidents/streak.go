package incidents

import "github.com/jawadbiag8/PDA/internal/domain/results"

// DefaultCreationFrequency is the fallback when the configured incident
// creation frequency cannot be read.
const DefaultCreationFrequency = 3

// ConsecutiveMisses reports whether the k most recent verdicts are all
// misses. recent must be ordered newest first and unfiltered: fewer than k
// records means the streak is not yet established, and a skipped verdict
// inside the window breaks it.
func ConsecutiveMisses(recent []results.Verdict, k int) bool {
	return streak(recent, k, results.VerdictMiss)
}

// ConsecutiveHits is the symmetric check used for auto-close.
func ConsecutiveHits(recent []results.Verdict, k int) bool {
	return streak(recent, k, results.VerdictHit)
}

func streak(recent []results.Verdict, k int, want results.Verdict) bool {
	if k <= 0 || len(recent) < k {
		return false
	}
	for _, v := range recent[:k] {
		if v != want {
			return false
		}
	}
	return true
}
