package analytics

import (
	"math"
	"sort"
)

// Rank orders scored observations by importance and truncates the result to
// maxSentences entries.
//
// The quality bucket is deliberately coarse (2-wide) so that statistical
// significance, not quality noise, dominates the order within a bucket.
// Reference sigma sorts before world sigma; it is zero for every row when no
// reference area was supplied, which makes it a no-op tie-break in that
// case. The numerator and value keys make the order fully deterministic.
// This order is an external contract: it decides which indicators are
// narrated and sent to the LLM.
func Rank(scored ObservationSet, maxSentences int) []Observation {
	ranked := make([]Observation, 0, len(scored))
	for _, obs := range scored {
		ranked = append(ranked, obs)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if ab, bb := qualityBucket(a.Quality), qualityBucket(b.Quality); ab != bb {
			return ab < bb
		}
		if a.ReferenceSigma != b.ReferenceSigma {
			return a.ReferenceSigma > b.ReferenceSigma
		}
		if a.WorldSigma != b.WorldSigma {
			return a.WorldSigma > b.WorldSigma
		}
		if a.Numerator != b.Numerator {
			return a.Numerator < b.Numerator
		}
		return a.Value < b.Value
	})
	if maxSentences >= 0 && len(ranked) > maxSentences {
		ranked = ranked[:maxSentences]
	}
	return ranked
}

func qualityBucket(quality float64) int {
	return int(math.Abs(quality)/2) * 2
}
