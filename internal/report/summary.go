package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/model"
)

// Exit-velocity change (mph) and hard-hit change (points) beyond which the
// quick summary calls out a shift.
const (
	speedShiftMPH   = 1.0
	hardHitShiftPts = 5.0
)

// WriteQuickSummary writes a short markdown preview of the diagnosis that
// needs no narrative service.
func WriteQuickSummary(w io.Writer, res model.DiagnosticResult, cat metric.Catalog) error {
	var b strings.Builder

	name := res.PlayerName
	if name == "" {
		name = fmt.Sprintf("Player %d", res.PlayerID)
	}
	fmt.Fprintf(&b, "## %s quick summary (%s)\n\n", name, res.Season)
	fmt.Fprintf(&b, "**Games analyzed**: %d of %d\n\n", res.WindowGames(), res.TotalGames)

	b.WriteString("### Trends\n")
	for _, n := range []metric.Name{metric.AvgLaunchSpeed, metric.HardHitRate, metric.KRate} {
		e, _ := res.Trend(n)
		fmt.Fprintf(&b, "- %s: %s\n", displayName(n), describeTrend(e))
	}

	early := res.Windows[model.WindowEarly]
	late := res.Windows[model.WindowLate]
	ev, _ := res.Trend(metric.AvgLaunchSpeed)
	hh, _ := res.Trend(metric.HardHitRate)
	woba, _ := res.Trend(metric.WOBA)

	b.WriteString("\n### Findings\n")
	fmt.Fprintf(&b, "- %s\n", speedFinding(ev))
	fmt.Fprintf(&b, "- %s\n", fatigueFinding(hh))

	b.WriteString("\n### Key stats\n")
	b.WriteString("| Metric | Early | Late |\n")
	b.WriteString("|------|------|------|\n")
	fmt.Fprintf(&b, "| Avg exit velocity | %s | %s |\n", FormatValue(ev.Early, cat[metric.AvgLaunchSpeed]), FormatValue(ev.Late, cat[metric.AvgLaunchSpeed]))
	fmt.Fprintf(&b, "| Hard-hit rate | %s | %s |\n", FormatValue(hh.Early, cat[metric.HardHitRate]), FormatValue(hh.Late, cat[metric.HardHitRate]))
	fmt.Fprintf(&b, "| wOBA | %s | %s |\n", FormatValue(woba.Early, cat[metric.WOBA]), FormatValue(woba.Late, cat[metric.WOBA]))
	fmt.Fprintf(&b, "| Home runs | %d | %d |\n", early.HomeRuns, late.HomeRuns)

	_, err := io.WriteString(w, b.String())
	return err
}

func displayName(n metric.Name) string {
	switch n {
	case metric.AvgLaunchSpeed:
		return "Exit velocity"
	case metric.HardHitRate:
		return "Hard-hit rate"
	case metric.KRate:
		return "Strikeout rate"
	default:
		return string(n)
	}
}

func describeTrend(e model.TrendEntry) string {
	if e.Insufficient() || e.Direction == "" {
		return "insufficient data"
	}
	if e.Direction == model.DirectionStable {
		return "stable"
	}
	return fmt.Sprintf("%s (%s)", e.Direction, e.Magnitude)
}

func speedFinding(e model.TrendEntry) string {
	if math.IsNaN(e.Early) || math.IsNaN(e.Late) {
		return "Exit velocity change unavailable"
	}
	diff := e.Late - e.Early
	switch {
	case diff > speedShiftMPH:
		return fmt.Sprintf("Exit velocity up %.1f mph", diff)
	case diff < -speedShiftMPH:
		return fmt.Sprintf("Exit velocity down %.1f mph", -diff)
	default:
		return "Exit velocity held steady"
	}
}

func fatigueFinding(e model.TrendEntry) string {
	if math.IsNaN(e.Early) || math.IsNaN(e.Late) {
		return "Hard-hit change unavailable"
	}
	diff := e.Late - e.Early
	switch {
	case diff < -hardHitShiftPts:
		return "Possible late-season fatigue"
	case diff > hardHitShiftPts:
		return "Late-season surge"
	default:
		return "Performance held steady"
	}
}
