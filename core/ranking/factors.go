// Package ranking computes unified relevance scores for heterogeneous
// retrieval candidates. All normalized scores live in [0, 1].
package ranking

import (
	"math"
	"time"

	"github.com/siherrmann/recall/model"
)

// Clamp01 limits a score to [0, 1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NormalizeGraphScore squashes an unbounded graph score into [0, 1].
// Formula: raw / (1 + raw). One direct entity match lands at 0.5, additional
// matches approach 1.0 with diminishing returns.
func NormalizeGraphScore(raw float64) float64 {
	if raw <= 0 {
		return 0
	}
	return raw / (1 + raw)
}

// RecencyScore computes exponential time decay for a candidate timestamp.
// A candidate from exactly one half-life ago scores 0.5; a missing timestamp
// scores 0.5 neutral; future timestamps clamp to 1.0.
func RecencyScore(meta model.Metadata, now time.Time, halfLife time.Duration) float64 {
	timestamp, ok := meta.Timestamp()
	if !ok {
		return 0.5
	}
	if halfLife <= 0 {
		return 1.0
	}

	age := now.Sub(timestamp)
	if age <= 0 {
		return 1.0
	}

	return math.Exp2(-float64(age) / float64(halfLife))
}

// EntityOverlap returns the fraction of query entities present in the
// candidate's matched entities. No query entities means no overlap signal.
func EntityOverlap(queryEntities []string, matchedEntities []string) float64 {
	if len(queryEntities) == 0 || len(matchedEntities) == 0 {
		return 0
	}

	matched := make(map[string]bool, len(matchedEntities))
	for _, entity := range matchedEntities {
		matched[entity] = true
	}

	overlap := 0
	for _, entity := range queryEntities {
		if matched[entity] {
			overlap++
		}
	}

	return float64(overlap) / float64(len(queryEntities))
}
