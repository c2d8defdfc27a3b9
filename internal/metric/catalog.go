// Package metric holds the fixed catalog of the ten per-window batting metrics:
// their names, which direction counts as improvement, and the threshold tiers
// used to grade a change.
package metric

import (
	"fmt"
	"math"
)

// Name identifies one of the ten window metrics.
type Name string

const (
	AvgLaunchSpeed Name = "avg_launch_speed"
	AvgLaunchAngle Name = "avg_launch_angle"
	HardHitRate    Name = "hard_hit_rate"
	WhiffRate      Name = "whiff_rate"
	MaxHitDistance Name = "max_hit_distance"
	AvgPitcherSpin Name = "avg_pitcher_spin"
	BBRate         Name = "bb_rate"
	KRate          Name = "k_rate"
	BABIP          Name = "babip"
	WOBA           Name = "woba"
)

// Count is the number of metrics computed for every window.
const Count = 10

// Names lists every metric in report order.
var Names = [Count]Name{
	AvgLaunchSpeed,
	AvgLaunchAngle,
	HardHitRate,
	WhiffRate,
	MaxHitDistance,
	AvgPitcherSpin,
	BBRate,
	KRate,
	BABIP,
	WOBA,
}

// Polarity says which direction of change is an improvement.
type Polarity int

const (
	HigherIsBetter Polarity = 1
	LowerIsBetter  Polarity = -1
)

func (p Polarity) String() string {
	if p == LowerIsBetter {
		return "lower"
	}
	return "higher"
}

// Thresholds grade the absolute Early→Late delta of one metric.
// |delta| < Stable is "stable"; |delta| < Moderate is "minor";
// |delta| < Major is "moderate"; anything larger is "major".
type Thresholds struct {
	Stable   float64 `koanf:"stable"`
	Moderate float64 `koanf:"moderate"`
	Major    float64 `koanf:"major"`
}

// Validate checks that the tiers are non-negative and ordered.
func (t Thresholds) Validate() error {
	for _, v := range []float64{t.Stable, t.Moderate, t.Major} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("thresholds must be finite and non-negative: %+v", t)
		}
	}
	if t.Stable > t.Moderate || t.Moderate > t.Major {
		return fmt.Errorf("thresholds must satisfy stable <= moderate <= major: %+v", t)
	}
	return nil
}

// Spec is the static description of one metric.
type Spec struct {
	Name       Name
	Label      string // short column header
	Unit       string
	Polarity   Polarity
	Thresholds Thresholds
	Precision  int     // decimals kept after aggregation
	LeagueAvg  float64 // MLB reference value shown next to the trend table
}

// Catalog maps every metric to its spec.
type Catalog map[Name]Spec

// Default returns the built-in catalog. League averages are recent MLB
// regular-season figures.
func Default() Catalog {
	return Catalog{
		AvgLaunchSpeed: {AvgLaunchSpeed, "EV", "mph", HigherIsBetter, Thresholds{1.0, 2.0, 4.0}, 2, 88.5},
		AvgLaunchAngle: {AvgLaunchAngle, "LA", "°", HigherIsBetter, Thresholds{1.0, 3.0, 6.0}, 2, 12.5},
		HardHitRate:    {HardHitRate, "HARD_HIT%", "%", HigherIsBetter, Thresholds{2.0, 5.0, 10.0}, 2, 35.0},
		WhiffRate:      {WhiffRate, "WHIFF%", "%", LowerIsBetter, Thresholds{2.0, 5.0, 10.0}, 2, 24.5},
		MaxHitDistance: {MaxHitDistance, "MAX_DIST", "ft", HigherIsBetter, Thresholds{5.0, 15.0, 30.0}, 2, 0},
		AvgPitcherSpin: {AvgPitcherSpin, "SPIN", "rpm", LowerIsBetter, Thresholds{25.0, 60.0, 120.0}, 2, 2250},
		BBRate:         {BBRate, "BB%", "%", HigherIsBetter, Thresholds{1.0, 3.0, 5.0}, 2, 8.0},
		KRate:          {KRate, "K%", "%", LowerIsBetter, Thresholds{1.0, 3.0, 6.0}, 2, 22.0},
		BABIP:          {BABIP, "BABIP", "", HigherIsBetter, Thresholds{0.010, 0.030, 0.060}, 3, 0.300},
		WOBA:           {WOBA, "wOBA", "", HigherIsBetter, Thresholds{0.010, 0.030, 0.060}, 3, 0.320},
	}
}

// WithThresholds returns a copy of c with the given per-metric thresholds
// replacing the defaults. Unknown metric names are rejected.
func (c Catalog) WithThresholds(overrides map[string]Thresholds) (Catalog, error) {
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = v
	}
	for name, th := range overrides {
		spec, ok := out[Name(name)]
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", name)
		}
		if err := th.Validate(); err != nil {
			return nil, fmt.Errorf("metric %s: %w", name, err)
		}
		spec.Thresholds = th
		out[Name(name)] = spec
	}
	return out, nil
}

// Validate checks that c describes exactly the ten known metrics.
func (c Catalog) Validate() error {
	if len(c) != Count {
		return fmt.Errorf("catalog has %d metrics, want %d", len(c), Count)
	}
	for _, n := range Names {
		spec, ok := c[n]
		if !ok {
			return fmt.Errorf("catalog missing metric %s", n)
		}
		if spec.Polarity != HigherIsBetter && spec.Polarity != LowerIsBetter {
			return fmt.Errorf("metric %s: invalid polarity %d", n, spec.Polarity)
		}
		if err := spec.Thresholds.Validate(); err != nil {
			return fmt.Errorf("metric %s: %w", n, err)
		}
	}
	return nil
}

// Known reports whether n is one of the ten catalog metrics.
func Known(n Name) bool {
	for _, m := range Names {
		if m == n {
			return true
		}
	}
	return false
}

// Round rounds v to the given number of decimals. NaN passes through.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || decimals < 0 {
		return v
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
