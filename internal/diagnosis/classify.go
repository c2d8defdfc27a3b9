package diagnosis

import (
	"fmt"
	"math"

	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/model"
)

// Classify builds one TrendEntry per catalog metric, in metric.Names order,
// from the Early, Mid and Late metric tables.
//
// A metric absent from a table is treated as the NaN sentinel. Deltas are
// rounded to the metric precision before grading so that a change of
// exactly one threshold is not pushed across it by float noise.
func Classify(early, mid, late []model.MetricValue, cat metric.Catalog) ([]model.TrendEntry, error) {
	e, m, l := index(early), index(mid), index(late)

	out := make([]model.TrendEntry, 0, metric.Count)
	for _, name := range metric.Names {
		spec, ok := cat[name]
		if !ok {
			return nil, &PolicyError{Reason: fmt.Sprintf("catalog missing metric %s", name)}
		}
		out = append(out, classifyOne(spec, lookup(e, name), lookup(m, name), lookup(l, name)))
	}
	return out, nil
}

func classifyOne(spec metric.Spec, early, mid, late float64) model.TrendEntry {
	entry := model.TrendEntry{
		Metric:     spec.Name,
		Early:      early,
		Mid:        mid,
		Late:       late,
		EarlyToMid: delta(early, mid, spec.Precision),
		MidToLate:  delta(mid, late, spec.Precision),
		Delta:      delta(early, late, spec.Precision),
	}
	if math.IsNaN(entry.Delta) {
		entry.Direction = model.DirectionInsufficient
		entry.Magnitude = model.MagnitudeInsufficient
		return entry
	}
	entry.Direction = direction(entry.Delta, spec)
	entry.Magnitude = magnitude(math.Abs(entry.Delta), spec.Thresholds)
	return entry
}

func direction(d float64, spec metric.Spec) model.Direction {
	if math.Abs(d) < spec.Thresholds.Stable || d == 0 {
		return model.DirectionStable
	}
	if d*float64(spec.Polarity) > 0 {
		return model.DirectionImproved
	}
	return model.DirectionDeclined
}

func magnitude(abs float64, t metric.Thresholds) model.Magnitude {
	switch {
	case abs < t.Moderate:
		return model.MagnitudeMinor
	case abs < t.Major:
		return model.MagnitudeModerate
	default:
		return model.MagnitudeMajor
	}
}

// delta returns to-from, NaN if either side is NaN.
func delta(from, to float64, precision int) float64 {
	if math.IsNaN(from) || math.IsNaN(to) {
		return math.NaN()
	}
	return metric.Round(to-from, precision)
}

func index(vals []model.MetricValue) map[metric.Name]float64 {
	m := make(map[metric.Name]float64, len(vals))
	for _, v := range vals {
		m[v.Metric] = v.Value
	}
	return m
}

func lookup(m map[metric.Name]float64, name metric.Name) float64 {
	if v, ok := m[name]; ok {
		return v
	}
	return math.NaN()
}
