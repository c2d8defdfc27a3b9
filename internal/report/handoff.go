package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/model"
)

// Document is the JSON handed to narrative generation and charting.
type Document struct {
	RunID       string                 `json:"run_id,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
	Diagnosis   model.DiagnosticResult `json:"diagnosis"`
	Summary     Summary                `json:"summary"`
}

// Summary condenses the trend table for readers that only need the headline.
type Summary struct {
	TotalGames       int             `json:"total_games"`
	WindowGames      int             `json:"total_games_analyzed"`
	LaunchSpeedTrend model.Direction `json:"launch_speed_trend"`
	HardHitTrend     model.Direction `json:"hard_hit_trend"`
	KRateTrend       model.Direction `json:"k_rate_trend"`
	Improved         []metric.Name   `json:"improved"`
	Declined         []metric.Name   `json:"declined"`
	Insufficient     []metric.Name   `json:"insufficient_data"`
}

// NewDocument builds the handoff document for a result.
func NewDocument(res model.DiagnosticResult, runID string, now time.Time) Document {
	return Document{
		RunID:       runID,
		GeneratedAt: now.UTC(),
		Diagnosis:   res,
		Summary:     Summarize(res),
	}
}

// Summarize groups metrics by direction. Lists are never nil so they encode
// as [] rather than null.
func Summarize(res model.DiagnosticResult) Summary {
	s := Summary{
		TotalGames:   res.TotalGames,
		WindowGames:  res.WindowGames(),
		Improved:     []metric.Name{},
		Declined:     []metric.Name{},
		Insufficient: []metric.Name{},
	}
	direction := func(n metric.Name) model.Direction {
		if e, ok := res.Trend(n); ok {
			return e.Direction
		}
		return model.DirectionInsufficient
	}
	s.LaunchSpeedTrend = direction(metric.AvgLaunchSpeed)
	s.HardHitTrend = direction(metric.HardHitRate)
	s.KRateTrend = direction(metric.KRate)

	for _, e := range res.Trends {
		switch e.Direction {
		case model.DirectionImproved:
			s.Improved = append(s.Improved, e.Metric)
		case model.DirectionDeclined:
			s.Declined = append(s.Declined, e.Metric)
		case model.DirectionInsufficient:
			s.Insufficient = append(s.Insufficient, e.Metric)
		}
	}
	return s
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
