package analytics

import "strings"

const (
	unitDate           = "date"
	trivialDenominator = "1"

	// deprecated duplicate of the population indicator, still present in
	// upstream payloads
	previousPopulationLabel = "Population (previous version)"
)

// Flatten turns one area's advanced-analytics payload into an observation
// set, enriched with units and emoji from the indicator metadata.
//
// A record is skipped when its value is absent, its numerator is not
// published in the metadata, its numerator is the deprecated population
// duplicate, a date-unit value is summed or divided by a non-trivial
// denominator, or a Man-days/Man-distance composite is divided by area.
// Axis-key collisions within one payload overwrite silently; valid upstream
// data never produces them.
func Flatten(groups []AxisGroup, meta IndicatorMetadata) ObservationSet {
	set := make(ObservationSet, len(groups))
	for _, group := range groups {
		numMeta, ok := meta[group.Numerator]
		if !ok {
			// indicator not ready yet
			continue
		}
		if group.NumeratorLabel == previousPopulationLabel {
			continue
		}

		for _, rec := range group.Records {
			if rec.Value == nil {
				continue
			}
			if numMeta.Unit == unitDate {
				if rec.Calculation == CalcSum {
					// timestamp addition makes no sense
					continue
				}
				if group.DenominatorLabel != trivialDenominator {
					// timestamp divided by area or population makes no sense
					continue
				}
			}
			if group.DenominatorLabel == "Area" &&
				(strings.Contains(group.NumeratorLabel, "Man-days") ||
					strings.Contains(group.NumeratorLabel, "Man-distance")) {
				// ppl*day/km2 and ppl*km/km2 are not interpretable
				continue
			}

			obs := Observation{
				Numerator:        group.Numerator,
				Denominator:      group.Denominator,
				NumeratorLabel:   group.NumeratorLabel,
				DenominatorLabel: group.DenominatorLabel,
				Calculation:      rec.Calculation,
				Value:            *rec.Value,
				Quality:          rec.Quality,
				Emoji:            numMeta.Emoji,
				NumeratorUnit:    numMeta.Unit,
				DenominatorUnit:  meta[group.Denominator].Unit,
			}
			set[obs.Key()] = obs
		}
	}
	return set
}
