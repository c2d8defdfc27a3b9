package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pable/go-season-diag/internal/metric"
)

// nullable maps the NaN sentinel to nil so it encodes as JSON null.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fromNullable(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

type trendEntryJSON struct {
	Metric     metric.Name `json:"metric"`
	Early      *float64    `json:"early"`
	Mid        *float64    `json:"mid"`
	Late       *float64    `json:"late"`
	EarlyToMid *float64    `json:"early_to_mid"`
	MidToLate  *float64    `json:"mid_to_late"`
	Delta      *float64    `json:"delta"`
	Direction  Direction   `json:"direction"`
	Magnitude  Magnitude   `json:"magnitude"`
}

// MarshalJSON encodes NaN values as null.
func (e TrendEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(trendEntryJSON{
		Metric:     e.Metric,
		Early:      nullable(e.Early),
		Mid:        nullable(e.Mid),
		Late:       nullable(e.Late),
		EarlyToMid: nullable(e.EarlyToMid),
		MidToLate:  nullable(e.MidToLate),
		Delta:      nullable(e.Delta),
		Direction:  e.Direction,
		Magnitude:  e.Magnitude,
	})
}

// UnmarshalJSON decodes null values back to NaN.
func (e *TrendEntry) UnmarshalJSON(data []byte) error {
	var raw trendEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = TrendEntry{
		Metric:     raw.Metric,
		Early:      fromNullable(raw.Early),
		Mid:        fromNullable(raw.Mid),
		Late:       fromNullable(raw.Late),
		EarlyToMid: fromNullable(raw.EarlyToMid),
		MidToLate:  fromNullable(raw.MidToLate),
		Delta:      fromNullable(raw.Delta),
		Direction:  raw.Direction,
		Magnitude:  raw.Magnitude,
	}
	return nil
}

type resultJSON struct {
	PlayerID   int            `json:"player_id"`
	PlayerName string         `json:"player_name,omitempty"`
	Season     string         `json:"season"`
	TotalGames int            `json:"total_games"`
	Windows    []WindowBounds `json:"windows"`
	Trends     []TrendEntry   `json:"trends"`
}

// MarshalJSON encodes the result as the handoff document consumed by report
// generation and charting.
func (r DiagnosticResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		PlayerID:   r.PlayerID,
		PlayerName: r.PlayerName,
		Season:     r.Season,
		TotalGames: r.TotalGames,
		Windows:    r.Windows[:],
		Trends:     r.Trends[:],
	})
}

// UnmarshalJSON decodes a stored handoff document.
func (r *DiagnosticResult) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Windows) != len(r.Windows) {
		return fmt.Errorf("diagnostic result: %d windows, want %d", len(raw.Windows), len(r.Windows))
	}
	if len(raw.Trends) != metric.Count {
		return fmt.Errorf("diagnostic result: %d trends, want %d", len(raw.Trends), metric.Count)
	}
	out := DiagnosticResult{
		PlayerID:   raw.PlayerID,
		PlayerName: raw.PlayerName,
		Season:     raw.Season,
		TotalGames: raw.TotalGames,
	}
	for i, w := range raw.Windows {
		w.Kind = WindowKinds[i]
		out.Windows[i] = w
	}
	copy(out.Trends[:], raw.Trends)
	*r = out
	return nil
}
