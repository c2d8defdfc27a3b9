package diagnosis

import (
	"fmt"

	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/model"
)

// Assemble packages window bounds and trend entries into a DiagnosticResult.
// It does no computation; it only checks that exactly three windows arrived
// in Early, Mid, Late order and that every catalog metric has exactly one
// trend entry. Trends are stored in metric.Names order.
func Assemble(log model.SeasonLog, bounds []model.WindowBounds, trends []model.TrendEntry) (model.DiagnosticResult, error) {
	var res model.DiagnosticResult

	incomplete := func(detail string) error {
		return &IncompleteResultError{Windows: len(bounds), Trends: len(trends), Detail: detail}
	}

	if len(bounds) != len(model.WindowKinds) {
		return res, incomplete("expected 3 windows")
	}
	for i, k := range model.WindowKinds {
		if bounds[i].Kind != k {
			return res, incomplete(fmt.Sprintf("window %d is %s, want %s", i, bounds[i].Kind, k))
		}
		if bounds[i].Games == 0 {
			return res, incomplete(fmt.Sprintf("window %s is empty", k))
		}
		res.Windows[i] = bounds[i]
	}

	if len(trends) != metric.Count {
		return res, incomplete(fmt.Sprintf("expected %d trend entries", metric.Count))
	}
	byName := make(map[metric.Name]model.TrendEntry, len(trends))
	for _, t := range trends {
		if !metric.Known(t.Metric) {
			return res, incomplete(fmt.Sprintf("unknown metric %q", t.Metric))
		}
		if _, dup := byName[t.Metric]; dup {
			return res, incomplete(fmt.Sprintf("duplicate metric %s", t.Metric))
		}
		byName[t.Metric] = t
	}
	for i, name := range metric.Names {
		res.Trends[i] = byName[name]
	}

	res.PlayerID = log.PlayerID
	res.PlayerName = log.PlayerName
	res.Season = log.Season
	res.TotalGames = len(log.Games)
	return res, nil
}
