package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenEnrichesFromMetadata(t *testing.T) {
	groups := []AxisGroup{{
		Numerator:        "pop_without_car",
		Denominator:      "population",
		NumeratorLabel:   "Population without a car",
		DenominatorLabel: "Population",
		Records: []CalculationRecord{
			{Calculation: CalcMean, Value: obsFloat(0.31), Quality: 0.78},
			{Calculation: CalcStdDev, Value: obsFloat(0.05), Quality: 0.78},
		},
	}}
	meta := IndicatorMetadata{
		"pop_without_car": {Unit: "people", Emoji: "🚗", Label: "Population without a car"},
		"population":      {Unit: "people", Label: "Population"},
	}

	set := Flatten(groups, meta)
	assert.Len(t, set, 2)

	obs := set[AxisKey{Calculation: CalcMean, Numerator: "pop_without_car", Denominator: "population"}]
	assert.Equal(t, 0.31, obs.Value)
	assert.Equal(t, "🚗", obs.Emoji)
	assert.Equal(t, "people", obs.NumeratorUnit)
	assert.Equal(t, "people", obs.DenominatorUnit)
}

func TestFlattenSkipsUnpublishedIndicators(t *testing.T) {
	groups := []AxisGroup{{
		Numerator:        "experimental",
		Denominator:      "one",
		NumeratorLabel:   "Experimental",
		DenominatorLabel: "1",
		Records:          []CalculationRecord{{Calculation: CalcMean, Value: obsFloat(1)}},
	}}

	set := Flatten(groups, IndicatorMetadata{})
	assert.Empty(t, set)
}

func TestFlattenSkipsDeprecatedPopulationDuplicate(t *testing.T) {
	groups := []AxisGroup{{
		Numerator:        "population_prev",
		Denominator:      "one",
		NumeratorLabel:   "Population (previous version)",
		DenominatorLabel: "1",
		Records:          []CalculationRecord{{Calculation: CalcMean, Value: obsFloat(1000)}},
	}}
	meta := IndicatorMetadata{"population_prev": {Unit: "people", Label: "Population (previous version)"}}

	set := Flatten(groups, meta)
	assert.Empty(t, set)
}

func TestFlattenSkipsMissingValues(t *testing.T) {
	groups := []AxisGroup{{
		Numerator:        "gdp",
		Denominator:      "one",
		NumeratorLabel:   "Gross Domestic Product",
		DenominatorLabel: "1",
		Records: []CalculationRecord{
			{Calculation: CalcMean, Value: nil},
			{Calculation: "max", Value: obsFloat(7)},
		},
	}}
	meta := IndicatorMetadata{"gdp": {Unit: "United States dollar", Label: "Gross Domestic Product"}}

	set := Flatten(groups, meta)
	assert.Len(t, set, 1)
	_, ok := set[AxisKey{Calculation: "max", Numerator: "gdp", Denominator: "one"}]
	assert.True(t, ok)
}

func TestFlattenSkipsNonsenseDateMath(t *testing.T) {
	meta := IndicatorMetadata{
		"max_ts":     {Unit: "date", Label: "OSM last edit"},
		"population": {Unit: "people", Label: "Population"},
	}

	// a summed timestamp is meaningless
	summed := []AxisGroup{{
		Numerator: "max_ts", Denominator: "one",
		NumeratorLabel: "OSM last edit", DenominatorLabel: "1",
		Records: []CalculationRecord{{Calculation: CalcSum, Value: obsFloat(1.7e9)}},
	}}
	assert.Empty(t, Flatten(summed, meta))

	// so is a timestamp divided by population
	divided := []AxisGroup{{
		Numerator: "max_ts", Denominator: "population",
		NumeratorLabel: "OSM last edit", DenominatorLabel: "Population",
		Records: []CalculationRecord{{Calculation: CalcMean, Value: obsFloat(1.7e9)}},
	}}
	assert.Empty(t, Flatten(divided, meta))

	// a mean timestamp over the trivial denominator is kept
	kept := []AxisGroup{{
		Numerator: "max_ts", Denominator: "one",
		NumeratorLabel: "OSM last edit", DenominatorLabel: "1",
		Records: []CalculationRecord{{Calculation: CalcMean, Value: obsFloat(1.7e9)}},
	}}
	assert.Len(t, Flatten(kept, meta), 1)
}

func TestFlattenSkipsManUnitsOverArea(t *testing.T) {
	meta := IndicatorMetadata{
		"man_days":     {Label: "Man-days above 32°C"},
		"man_distance": {Label: "Man-distance to charging stations"},
		"area":         {Unit: "square kilometers", Label: "Area"},
	}
	groups := []AxisGroup{
		{
			Numerator: "man_days", Denominator: "area",
			NumeratorLabel: "Man-days above 32°C", DenominatorLabel: "Area",
			Records: []CalculationRecord{{Calculation: CalcMean, Value: obsFloat(12)}},
		},
		{
			Numerator: "man_distance", Denominator: "area",
			NumeratorLabel: "Man-distance to charging stations", DenominatorLabel: "Area",
			Records: []CalculationRecord{{Calculation: CalcMean, Value: obsFloat(3)}},
		},
	}

	assert.Empty(t, Flatten(groups, meta))
}
