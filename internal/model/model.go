package model

import (
	"math"
	"time"

	"github.com/pable/go-season-diag/internal/metric"
)

// ---- Raw events handed in by the data-acquisition layer ----

// PitchEvent is one pitch seen by the batter. Event is empty unless the pitch
// ended the plate appearance. Nil measurement fields mean Statcast had no reading.
type PitchEvent struct {
	Description string   // pitch result: "ball", "swinging_strike", "hit_into_play", ...
	Event       string   // PA outcome: "single", "strikeout", "walk", ... or ""
	LaunchSpeed *float64 // mph
	LaunchAngle *float64 // degrees
	HitDistance *float64 // feet (hit_distance_sc)
	SpinRate    *float64 // release spin of the pitch, rpm
}

// EndsPlateAppearance reports whether this pitch closed out a PA.
func (p PitchEvent) EndsPlateAppearance() bool {
	return p.Event != "" && p.Event != "truncated_pa"
}

// GameRecord is one game of a batter's season. Index is the chronological
// sequence number and must be strictly increasing across a SeasonLog.
type GameRecord struct {
	Index   int
	GamePK  int
	Date    time.Time
	Pitches []PitchEvent
}

// PlateAppearances counts the pitches that ended a PA.
func (g GameRecord) PlateAppearances() int {
	n := 0
	for _, p := range g.Pitches {
		if p.EndsPlateAppearance() {
			n++
		}
	}
	return n
}

// SeasonLog is a batter's chronologically ordered season. The engine never
// re-sorts it; callers must not mutate it while a diagnosis runs.
type SeasonLog struct {
	PlayerID   int
	PlayerName string
	Season     string
	Games      []GameRecord
}

// ---- Windows ----

// WindowKind names one of the three comparison windows.
type WindowKind int

const (
	WindowEarly WindowKind = iota
	WindowMid
	WindowLate
)

// WindowKinds lists the windows in chronological order.
var WindowKinds = [3]WindowKind{WindowEarly, WindowMid, WindowLate}

func (k WindowKind) String() string {
	switch k {
	case WindowEarly:
		return "Early"
	case WindowMid:
		return "Mid"
	case WindowLate:
		return "Late"
	default:
		return "?"
	}
}

// Window owns a contiguous sub-sequence of a SeasonLog's games.
// Games aliases the caller's slice and is read-only.
type Window struct {
	Kind  WindowKind
	Games []GameRecord
}

// WindowBounds describes a window in the diagnostic output: the game index
// range it covers plus side statistics for context.
type WindowBounds struct {
	Kind             WindowKind `json:"-"`
	Name             string     `json:"name"`
	FirstIndex       int        `json:"first_game_index"`
	LastIndex        int        `json:"last_game_index"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	Games            int        `json:"games"`
	Pitches          int        `json:"pitches"`
	PlateAppearances int        `json:"plate_appearances"`
	HomeRuns         int        `json:"home_runs"`
	Walks            int        `json:"walks"`
	Strikeouts       int        `json:"strikeouts"`
}

// ---- Aggregated metrics ----

// MetricValue is one metric measured over one window. Value is NaN when the
// window had no qualifying events for the metric.
type MetricValue struct {
	Metric metric.Name
	Value  float64
}

// Defined reports whether the value is a real number rather than the sentinel.
func (m MetricValue) Defined() bool {
	return !math.IsNaN(m.Value)
}

// Direction is the qualitative Early→Late change of a metric.
type Direction string

const (
	DirectionImproved     Direction = "improved"
	DirectionDeclined     Direction = "declined"
	DirectionStable       Direction = "stable"
	DirectionInsufficient Direction = "insufficient-data"
)

// Magnitude is the discretized size of a change.
type Magnitude string

const (
	MagnitudeMinor        Magnitude = "minor"
	MagnitudeModerate     Magnitude = "moderate"
	MagnitudeMajor        Magnitude = "major"
	MagnitudeInsufficient Magnitude = "insufficient-data"
)

// TrendEntry is the classified movement of one metric across the windows.
// Any float field may be NaN; it is encoded as JSON null.
type TrendEntry struct {
	Metric     metric.Name
	Early      float64
	Mid        float64
	Late       float64
	EarlyToMid float64
	MidToLate  float64
	Delta      float64 // Late - Early
	Direction  Direction
	Magnitude  Magnitude
}

// Insufficient reports whether the entry could not be classified.
func (e TrendEntry) Insufficient() bool {
	return e.Direction == DirectionInsufficient
}

// DiagnosticResult is the engine's whole output. It is built once and held by
// value: fixed-size arrays mean a copy never shares state with the original.
type DiagnosticResult struct {
	PlayerID   int
	PlayerName string
	Season     string
	TotalGames int
	Windows    [3]WindowBounds
	Trends     [metric.Count]TrendEntry
}

// Window returns the bounds of the given window.
func (r DiagnosticResult) Window(k WindowKind) WindowBounds {
	return r.Windows[k]
}

// Trend looks up the entry for a metric.
func (r DiagnosticResult) Trend(name metric.Name) (TrendEntry, bool) {
	for _, e := range r.Trends {
		if e.Metric == name {
			return e, true
		}
	}
	return TrendEntry{}, false
}

// Series returns the Early/Mid/Late values of a metric for charting.
func (r DiagnosticResult) Series(name metric.Name) ([3]float64, bool) {
	e, ok := r.Trend(name)
	if !ok {
		return [3]float64{}, false
	}
	return [3]float64{e.Early, e.Mid, e.Late}, true
}

// WindowGames returns the number of games covered by the three windows.
func (r DiagnosticResult) WindowGames() int {
	n := 0
	for _, w := range r.Windows {
		n += w.Games
	}
	return n
}
