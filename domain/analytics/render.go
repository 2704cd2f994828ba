package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// unixTimestampCeiling separates plausible unix timestamps from plain large
// numbers when a date-unit value is rendered.
const unixTimestampCeiling = 2_000_000_000

var englishPrinter = message.NewPrinter(language.English)

// Sentences renders ranked observations into readable comparison sentences,
// e.g. "mean of 🚗 Population without a car over Population is 0.32
// (globally 0.01, 4.30 sigma)". Consecutive entries sharing an axis
// (numerator and denominator labels) are merged into one sentence, joined
// with ", ". Rendering is pure: the same input always yields the same list.
func Sentences(ranked []Observation, world, reference ObservationSet) []string {
	sentences := make([]string, 0, len(ranked))
	prevAxis := ""
	for _, entry := range ranked {
		numeratorLabel := entry.NumeratorLabel
		if entry.Emoji != "" {
			numeratorLabel = entry.Emoji + " " + numeratorLabel
		}
		denominatorLabel := ""
		if entry.DenominatorLabel != trivialDenominator {
			denominatorLabel = " over " + entry.DenominatorLabel
		}

		valueStr := FormatValue(entry.Value, entry, false)
		key := entry.Key()
		referenceClause := comparisonClause("reference_area", reference, key, entry, entry.ReferenceSigma)
		worldClause := comparisonClause("globally", world, key, entry, entry.WorldSigma)

		axis := numeratorLabel + denominatorLabel
		if axis == prevAxis && len(sentences) > 0 {
			sentences[len(sentences)-1] += fmt.Sprintf(", %s is %s%s%s",
				entry.Calculation, valueStr, referenceClause, worldClause)
		} else {
			sentences = append(sentences, fmt.Sprintf("%s of %s%s is %s%s%s",
				entry.Calculation, numeratorLabel, denominatorLabel, valueStr, referenceClause, worldClause))
		}
		prevAxis = axis
	}
	return sentences
}

// comparisonClause renders " (label value, s.ss sigma)" for one baseline.
// The clause is omitted entirely when the baseline has no observation at
// this axis key, and the sigma part is omitted when sigma is zero.
func comparisonClause(label string, baseline ObservationSet, key AxisKey, entry Observation, sigma float64) string {
	base, ok := baseline[key]
	if !ok {
		return ""
	}
	formatted := FormatValue(base.Value, entry, false)
	if formatted == "" {
		return ""
	}
	sigmaStr := ""
	if sigma != 0 {
		sigmaStr = ", " + FormatValue(sigma, entry, true) + " sigma"
	}
	return fmt.Sprintf(" (%s %s%s)", label, formatted, sigmaStr)
}

// FormatValue renders an observation value for humans. A date-unit point
// value below the unix-timestamp ceiling becomes an ISO-8601 timestamp; its
// stddev becomes a time spread, since a stddev of timestamps is a duration,
// not a point in time. Everything else is rendered with thousands
// separators and two decimals, or in scientific notation for tiny
// magnitudes. Sigma values are dimensionless, so their unit suffix is
// suppressed.
func FormatValue(x float64, entry Observation, sigma bool) string {
	if !sigma && entry.NumeratorUnit == unitDate &&
		entry.DenominatorLabel == trivialDenominator && x < unixTimestampCeiling {
		if entry.Calculation == CalcStdDev {
			return formatTimeSpread(int64(x))
		}
		return time.Unix(int64(x), 0).UTC().Format("2006-01-02T15:04:05Z")
	}

	var s string
	if math.Abs(x) > 1e-3 {
		s = englishPrinter.Sprintf("%.2f", x)
	} else {
		s = fmt.Sprintf("%.2e", x)
	}
	return s + UnitSuffix(entry, sigma)
}

// formatTimeSpread renders seconds as "h:mm:ss", prefixed with a day count
// when the spread exceeds a day.
func formatTimeSpread(seconds int64) string {
	days := seconds / 86400
	rem := seconds % 86400
	h, m, s := rem/3600, rem%3600/60, rem%60
	switch {
	case days == 1:
		return fmt.Sprintf("1 day, %d:%02d:%02d", h, m, s)
	case days != 0:
		return fmt.Sprintf("%d days, %d:%02d:%02d", days, h, m, s)
	default:
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
}

// UnitSuffix renders the measurement unit appended after a value, or ""
// when the unit cancels out or carries no information.
//
// Composite man-unit numerators reduce dimensionally when divided by
// population: Man-distance is ppl*km, so ppl*km/ppl leaves kilometers, and
// Man-days is ppl*days, leaving days.
func UnitSuffix(entry Observation, sigma bool) string {
	if sigma {
		return ""
	}

	if entry.DenominatorLabel == "Population" {
		if strings.Contains(entry.NumeratorLabel, "Man-distance") {
			return " kilometers"
		}
		if strings.Contains(entry.NumeratorLabel, "Man-days") {
			return " days"
		}
	}

	if entry.DenominatorUnit == entry.NumeratorUnit ||
		entry.NumeratorUnit == "" || entry.NumeratorUnit == "index" || entry.NumeratorUnit == "fraction" ||
		(entry.NumeratorUnit == "number" && entry.DenominatorLabel == trivialDenominator) {
		return ""
	}

	s := strings.ReplaceAll(entry.NumeratorUnit, "number", "")
	if entry.DenominatorUnit != "" && entry.DenominatorLabel != trivialDenominator {
		s += " per " + singularizeUnit(entry.DenominatorUnit)
	}
	if s != "" && s[0] != ' ' {
		s = " " + s
	}
	return s
}

func singularizeUnit(unit string) string {
	unit = strings.ReplaceAll(unit, "people", "person")
	return strings.ReplaceAll(unit, "square kilometers", "square kilometer")
}
