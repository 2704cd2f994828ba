package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rankObs(numerator string, quality, worldSigma, refSigma, value float64) Observation {
	return Observation{
		Numerator:      numerator,
		Denominator:    "one",
		Calculation:    CalcMean,
		Quality:        quality,
		WorldSigma:     worldSigma,
		ReferenceSigma: refSigma,
		Value:          value,
	}
}

func toSet(observations ...Observation) ObservationSet {
	set := make(ObservationSet, len(observations))
	for _, obs := range observations {
		set[obs.Key()] = obs
	}
	return set
}

func TestRankQualityBucketsDominate(t *testing.T) {
	good := rankObs("good", 0.5, 1.0, 0, 1)
	bad := rankObs("bad", 3.5, 9.0, 0, 1)

	ranked := Rank(toSet(good, bad), 10)
	assert.Equal(t, []string{"good", "bad"}, []string{ranked[0].Numerator, ranked[1].Numerator})
}

func TestRankQualityBucketIsCoarse(t *testing.T) {
	// 0.1 and 1.9 fall in the same 2-wide bucket, so sigma decides
	noisy := rankObs("noisy", 1.9, 5.0, 0, 1)
	clean := rankObs("clean", 0.1, 1.0, 0, 1)

	ranked := Rank(toSet(noisy, clean), 10)
	assert.Equal(t, "noisy", ranked[0].Numerator)
}

func TestRankReferenceSigmaBeatsWorldSigma(t *testing.T) {
	refHeavy := rankObs("ref", 0, 1.0, 3.0, 1)
	worldHeavy := rankObs("world", 0, 9.0, 1.0, 1)

	ranked := Rank(toSet(refHeavy, worldHeavy), 10)
	assert.Equal(t, "ref", ranked[0].Numerator)
}

func TestRankTruncates(t *testing.T) {
	set := toSet(
		rankObs("a", 0, 3, 0, 1),
		rankObs("b", 0, 2, 0, 1),
		rankObs("c", 0, 1, 0, 1),
	)

	ranked := Rank(set, 2)
	assert.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Numerator)
	assert.Equal(t, "b", ranked[1].Numerator)
}

func TestRankIsDeterministicOnTies(t *testing.T) {
	set := toSet(
		rankObs("b", 0, 1, 0, 5),
		rankObs("a", 0, 1, 0, 5),
		rankObs("c", 0, 1, 0, 5),
	)

	for i := 0; i < 10; i++ {
		ranked := Rank(set, 10)
		assert.Equal(t, []string{"a", "b", "c"},
			[]string{ranked[0].Numerator, ranked[1].Numerator, ranked[2].Numerator})
	}
}

func TestQualityBucket(t *testing.T) {
	assert.Equal(t, 0, qualityBucket(0))
	assert.Equal(t, 0, qualityBucket(1.99))
	assert.Equal(t, 2, qualityBucket(2))
	assert.Equal(t, 2, qualityBucket(-3.5))
	assert.Equal(t, 4, qualityBucket(4.1))
}
