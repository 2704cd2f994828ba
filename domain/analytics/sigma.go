package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Score annotates every selected-area observation with its deviation from
// the world and reference baselines and returns the annotated set. The
// input set is not mutated.
//
// Sigma is the absolute difference between two mean values divided by the
// standard deviation, a dimensionless measure that lets unrelated kinds of
// measurements be sorted together. The standard deviation always comes from
// the world distribution, even when scoring against the reference area: a
// reference area's own sample may be too small for a stable stddev.
func Score(selected, world, reference ObservationSet) ObservationSet {
	scored := make(ObservationSet, len(selected))
	for key, obs := range selected {
		obs.WorldSigma = sigma(obs, world, world, key)
		obs.ReferenceSigma = sigma(obs, reference, world, key)
		scored[key] = obs
	}
	return scored
}

// sigma computes the deviation of obs from the ref baseline at the same
// axis key. Only mean observations are scored; a missing baseline or a
// missing world stddev yields 0.
func sigma(obs Observation, ref, world ObservationSet, key AxisKey) float64 {
	if key.Calculation != CalcMean {
		return 0
	}
	refObs, ok := ref[key]
	if !ok {
		return 0
	}
	stddev, ok := world[AxisKey{Calculation: CalcStdDev, Numerator: key.Numerator, Denominator: key.Denominator}]
	if !ok {
		return 0
	}
	return math.Abs((obs.Value - refObs.Value) / stddev.Value)
}

// TailProbability converts a sigma distance into the two-sided tail
// probability of a standard normal. It is reported as a confidence figure
// only; the underlying data is not checked for normality.
func TailProbability(sigma float64) float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	return 2 * norm.Survival(math.Abs(sigma))
}
