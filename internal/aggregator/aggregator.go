// Package aggregator computes the ten per-window batting metrics from the raw
// pitch events of a window's games.
package aggregator

import (
	"math"
	"sort"

	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/model"
)

// hardHitMPH is the Statcast hard-hit cutoff (inclusive).
const hardHitMPH = 95.0

// wOBA linear weights (FanGraphs, 2024 season).
const (
	wUBB    = 0.689
	wHBP    = 0.720
	wSingle = 0.882
	wDouble = 1.254
	wTriple = 1.590
	wHR     = 2.050
)

var (
	swingDescriptions = map[string]bool{
		"swinging_strike":         true,
		"swinging_strike_blocked": true,
		"missed_bunt":             true,
		"foul":                    true,
		"foul_tip":                true,
		"foul_bunt":               true,
		"bunt_foul_tip":           true,
		"hit_into_play":           true,
		"hit_into_play_no_out":    true,
		"hit_into_play_score":     true,
	}
	whiffDescriptions = map[string]bool{
		"swinging_strike":         true,
		"swinging_strike_blocked": true,
		"missed_bunt":             true,
	}
	hitEvents = map[string]bool{
		"single": true, "double": true, "triple": true, "home_run": true,
	}
	// Official at-bat outcomes; walks, HBP, sacrifices and interference are excluded.
	atBatEvents = map[string]bool{
		"single": true, "double": true, "triple": true, "home_run": true,
		"field_out": true, "strikeout": true, "strikeout_double_play": true,
		"double_play": true, "grounded_into_double_play": true, "triple_play": true,
		"force_out": true, "fielders_choice": true, "fielders_choice_out": true,
		"field_error": true,
	}
)

// tally holds everything the formulas read. It is filled in one pass over the
// window and never written to by a formula.
type tally struct {
	launchSpeeds []float64
	launchAngles []float64
	distances    []float64
	spins        []float64

	swings, whiffs int
	plateApps      int
	events         map[string]int
}

func (t *tally) count(events ...string) int {
	n := 0
	for _, e := range events {
		n += t.events[e]
	}
	return n
}

func (t *tally) countIn(set map[string]bool) int {
	n := 0
	for e, c := range t.events {
		if set[e] {
			n += c
		}
	}
	return n
}

// formula computes one metric. It returns NaN when the window has no
// qualifying events.
type formula func(t *tally) float64

var formulas = map[metric.Name]formula{
	metric.AvgLaunchSpeed: func(t *tally) float64 { return mean(t.launchSpeeds) },
	metric.AvgLaunchAngle: func(t *tally) float64 { return mean(t.launchAngles) },
	metric.HardHitRate: func(t *tally) float64 {
		hard := 0
		for _, v := range t.launchSpeeds {
			if v >= hardHitMPH {
				hard++
			}
		}
		return ratio(hard, len(t.launchSpeeds)) * 100
	},
	metric.WhiffRate: func(t *tally) float64 {
		return ratio(t.whiffs, t.swings) * 100
	},
	metric.MaxHitDistance: func(t *tally) float64 {
		if len(t.distances) == 0 {
			return math.NaN()
		}
		best := t.distances[0]
		for _, v := range t.distances[1:] {
			if v > best {
				best = v
			}
		}
		return best
	},
	metric.AvgPitcherSpin: func(t *tally) float64 { return mean(t.spins) },
	metric.BBRate: func(t *tally) float64 {
		return ratio(t.count("walk", "intent_walk"), t.plateApps) * 100
	},
	metric.KRate: func(t *tally) float64 {
		return ratio(t.count("strikeout", "strikeout_double_play"), t.plateApps) * 100
	},
	metric.BABIP: func(t *tally) float64 {
		hr := t.count("home_run")
		k := t.count("strikeout", "strikeout_double_play")
		sf := t.count("sac_fly", "sac_fly_double_play")
		num := t.countIn(hitEvents) - hr
		den := t.countIn(atBatEvents) - k - hr + sf
		return ratio(num, den)
	},
	metric.WOBA: func(t *tally) float64 {
		num := wUBB*float64(t.count("walk")) +
			wHBP*float64(t.count("hit_by_pitch")) +
			wSingle*float64(t.count("single")) +
			wDouble*float64(t.count("double")) +
			wTriple*float64(t.count("triple")) +
			wHR*float64(t.count("home_run"))
		den := t.countIn(atBatEvents) + t.count("walk") +
			t.count("sac_fly", "sac_fly_double_play") + t.count("hit_by_pitch")
		if den <= 0 {
			return math.NaN()
		}
		return num / float64(den)
	},
}

// Aggregate computes all ten metrics for one window, in metric.Names order.
// A metric with no qualifying events resolves to NaN; the others are
// unaffected. Values are rounded to the catalog precision.
func Aggregate(w model.Window, cat metric.Catalog) []model.MetricValue {
	t := collect(w)

	out := make([]model.MetricValue, 0, metric.Count)
	for _, name := range metric.Names {
		v := math.NaN()
		if f, ok := formulas[name]; ok {
			v = f(t)
		}
		if spec, ok := cat[name]; ok {
			v = metric.Round(v, spec.Precision)
		}
		out = append(out, model.MetricValue{Metric: name, Value: v})
	}
	return out
}

// Bounds summarizes a window's game range and counting stats.
func Bounds(w model.Window) model.WindowBounds {
	b := model.WindowBounds{Kind: w.Kind, Name: w.Kind.String(), Games: len(w.Games)}
	if len(w.Games) == 0 {
		return b
	}
	first, last := w.Games[0], w.Games[len(w.Games)-1]
	b.FirstIndex, b.LastIndex = first.Index, last.Index
	b.StartDate, b.EndDate = first.Date, last.Date

	t := collect(w)
	for _, g := range w.Games {
		b.Pitches += len(g.Pitches)
	}
	b.PlateAppearances = t.plateApps
	b.HomeRuns = t.count("home_run")
	b.Walks = t.count("walk", "intent_walk")
	b.Strikeouts = t.count("strikeout", "strikeout_double_play")
	return b
}

// collect walks every pitch of the window once. Only the window's own games
// are read.
func collect(w model.Window) *tally {
	t := &tally{events: make(map[string]int)}
	for _, g := range w.Games {
		for _, p := range g.Pitches {
			if p.LaunchSpeed != nil && isFinite(*p.LaunchSpeed) {
				t.launchSpeeds = append(t.launchSpeeds, *p.LaunchSpeed)
			}
			if p.LaunchAngle != nil && isFinite(*p.LaunchAngle) {
				t.launchAngles = append(t.launchAngles, *p.LaunchAngle)
			}
			if p.HitDistance != nil && isFinite(*p.HitDistance) {
				t.distances = append(t.distances, *p.HitDistance)
			}
			if p.SpinRate != nil && isFinite(*p.SpinRate) {
				t.spins = append(t.spins, *p.SpinRate)
			}
			if swingDescriptions[p.Description] {
				t.swings++
				if whiffDescriptions[p.Description] {
					t.whiffs++
				}
			}
			if p.EndsPlateAppearance() {
				t.plateApps++
				t.events[p.Event]++
			}
		}
	}
	return t
}

// mean sums a sorted copy so the result does not depend on game order.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

// ratio returns num/den, or NaN when den is not positive.
func ratio(num, den int) float64 {
	if den <= 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
