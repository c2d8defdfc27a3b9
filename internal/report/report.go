// Package report renders diagnostic results as terminal tables, a JSON
// handoff document and a markdown quick summary.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/model"
)

const missing = "n/a"

var (
	cImproved     = color.New(color.FgGreen, color.Bold)
	cDeclined     = color.New(color.FgRed, color.Bold)
	cStable       = color.New(color.Faint)
	cInsufficient = color.New(color.FgYellow)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintHeader prints a one-line summary of the diagnosed season.
func PrintHeader(w io.Writer, res model.DiagnosticResult) {
	name := res.PlayerName
	if name == "" {
		name = "player"
	}
	fmt.Fprintf(w, "\nPlayer: %s (%d)  |  Season: %s  |  Games: %d  |  In windows: %d\n\n",
		name, res.PlayerID, res.Season, res.TotalGames, res.WindowGames())
}

// PrintWindowTable prints the game range and side statistics of each window.
func PrintWindowTable(w io.Writer, res model.DiagnosticResult) {
	table := newTable(w)
	table.Header("WINDOW", "GAMES", "DATES", "G", "PA", "PITCHES", "HR", "BB", "K")
	for _, b := range res.Windows {
		table.Append(
			b.Name,
			fmt.Sprintf("#%d-#%d", b.FirstIndex, b.LastIndex),
			fmt.Sprintf("%s to %s", b.StartDate.Format("Jan 02"), b.EndDate.Format("Jan 02")),
			strconv.Itoa(b.Games),
			strconv.Itoa(b.PlateAppearances),
			strconv.Itoa(b.Pitches),
			strconv.Itoa(b.HomeRuns),
			strconv.Itoa(b.Walks),
			strconv.Itoa(b.Strikeouts),
		)
	}
	table.Render()
}

// PrintTrendTable prints the ten trend entries with the MLB reference value
// of each metric.
func PrintTrendTable(w io.Writer, res model.DiagnosticResult, cat metric.Catalog) {
	table := newTable(w)
	table.Header("METRIC", "EARLY", "MID", "LATE", "DELTA", "DIRECTION", "MAGNITUDE", "MLB_AVG")
	for _, e := range res.Trends {
		spec := cat[e.Metric]
		table.Append(
			label(spec, e.Metric),
			FormatValue(e.Early, spec),
			FormatValue(e.Mid, spec),
			FormatValue(e.Late, spec),
			formatDelta(e.Delta, spec),
			colorDirection(e.Direction),
			string(e.Magnitude),
			leagueAvg(spec),
		)
	}
	table.Render()
}

// FormatValue renders a metric value at its catalog precision with its unit.
// The sentinel renders as n/a.
func FormatValue(v float64, spec metric.Spec) string {
	if math.IsNaN(v) {
		return missing
	}
	s := strconv.FormatFloat(v, 'f', spec.Precision, 64)
	switch spec.Unit {
	case "", "°", "%":
		return s + spec.Unit
	default:
		return s + " " + spec.Unit
	}
}

func formatDelta(v float64, spec metric.Spec) string {
	if math.IsNaN(v) {
		return missing
	}
	s := strconv.FormatFloat(v, 'f', spec.Precision, 64)
	if v > 0 {
		s = "+" + s
	}
	return s
}

func leagueAvg(spec metric.Spec) string {
	if spec.LeagueAvg == 0 {
		return missing
	}
	return FormatValue(spec.LeagueAvg, spec)
}

func label(spec metric.Spec, name metric.Name) string {
	if spec.Label != "" {
		return spec.Label
	}
	return string(name)
}

func colorDirection(d model.Direction) string {
	switch d {
	case model.DirectionImproved:
		return cImproved.Sprint(string(d))
	case model.DirectionDeclined:
		return cDeclined.Sprint(string(d))
	case model.DirectionStable:
		return cStable.Sprint(string(d))
	default:
		return cInsufficient.Sprint(string(d))
	}
}
