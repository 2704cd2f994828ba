package analytics

// AxisKey identifies one statistical observation within an area: a
// calculation applied to a numerator/denominator indicator pair. Each area
// holds at most one observation per key.
type AxisKey struct {
	Calculation string
	Numerator   string
	Denominator string
}

// Calculation names are passed through from the upstream service as-is; the
// engine only treats these specially.
const (
	CalcMean   = "mean"
	CalcStdDev = "stddev"
	CalcSum    = "sum"
)

// Observation is one flattened indicator measurement for an area, enriched
// with labels, units and emoji from the indicator metadata.
type Observation struct {
	Numerator        string
	Denominator      string
	NumeratorLabel   string
	DenominatorLabel string
	Calculation      string
	Value            float64
	Quality          float64
	Emoji            string
	NumeratorUnit    string // empty when the indicator has no unit
	DenominatorUnit  string

	// Deviation from the baselines, annotated by Score. Zero until then,
	// and zero whenever no baseline counterpart exists.
	WorldSigma     float64
	ReferenceSigma float64
}

// Key returns the axis key the observation is stored under.
func (o Observation) Key() AxisKey {
	return AxisKey{Calculation: o.Calculation, Numerator: o.Numerator, Denominator: o.Denominator}
}

// ObservationSet maps axis keys to observations for one area. Sets are
// request-scoped and never shared between requests.
type ObservationSet map[AxisKey]Observation

// AxisGroup is one entry of the upstream advanced-analytics payload: a
// numerator/denominator pair with its per-calculation records.
type AxisGroup struct {
	Numerator        string
	Denominator      string
	NumeratorLabel   string
	DenominatorLabel string
	Resolution       int
	Records          []CalculationRecord
}

// CalculationRecord is one raw measurement within an axis group. Value is
// nil when the upstream has no data for this calculation.
type CalculationRecord struct {
	Calculation string
	Value       *float64
	Quality     float64
}

// IndicatorMeta describes one published indicator.
type IndicatorMeta struct {
	Unit        string
	Emoji       string
	Label       string
	Description string
}

// IndicatorMetadata maps indicator ids to their metadata. An id missing
// from the map means the indicator is not published yet.
type IndicatorMetadata map[string]IndicatorMeta
