package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-season-diag/internal/model"
	"github.com/pable/go-season-diag/internal/report"
	"github.com/pable/go-season-diag/internal/season"
)

var (
	diagSeason  string
	diagCSV     string
	diagJSON    bool
	diagSummary bool
	diagSave    bool
	diagRefresh bool
	diagName    string
	diagStart   string
	diagEnd     string
	diagPlayer  string
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [player-id]",
	Short: "Diagnose how a batter's season evolved",
	Long: `Compares the first, middle and last windows of a batter's season and
classifies the change of ten batting metrics as improved, declined or stable.

The season is read from the cache, downloaded from Baseball Savant on a miss,
or parsed from a Savant CSV export with --csv.

Examples:
  seasondiag diagnose 592450 --season 2024
  seasondiag diagnose --player "Judge, Aaron" --season 2024 --json > judge-2024.json
  seasondiag diagnose 592450 --season 2024 --csv savant_data.csv --summary`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiagnose,
}

func init() {
	f := diagnoseCmd.Flags()
	f.StringVar(&diagSeason, "season", "", "season year (required)")
	f.StringVar(&diagCSV, "csv", "", "read pitches from a Savant CSV export instead of the cache")
	f.BoolVar(&diagJSON, "json", false, "print the JSON handoff document")
	f.BoolVar(&diagSummary, "summary", false, "print a markdown quick summary")
	f.BoolVar(&diagSave, "save", false, "store the result in the diagnosis history")
	f.BoolVar(&diagRefresh, "refresh", false, "re-download the season even if cached")
	f.StringVar(&diagName, "name", "", "player display name")
	f.StringVar(&diagStart, "start", "", "first date to fetch (YYYY-MM-DD)")
	f.StringVar(&diagEnd, "end", "", "last date to fetch (YYYY-MM-DD)")
	f.StringVar(&diagPlayer, "player", "", `look the player up by name ("Last, First")`)
	_ = diagnoseCmd.MarkFlagRequired("season")
	diagnoseCmd.MarkFlagsMutuallyExclusive("json", "summary")
	diagnoseCmd.MarkFlagsMutuallyExclusive("csv", "refresh")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := checkPlayerArgs(args, diagPlayer); err != nil {
		return err
	}
	if _, err := seasonRequest(1, diagSeason, "", diagStart, diagEnd, diagRefresh); err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	playerID, name, err := resolvePlayer(ctx, a, args, diagPlayer, diagName)
	if err != nil {
		return err
	}
	req, err := seasonRequest(playerID, diagSeason, name, diagStart, diagEnd, diagRefresh)
	if err != nil {
		return err
	}

	var res model.DiagnosticResult
	if diagCSV != "" {
		f, err := os.Open(diagCSV)
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}
		log, err := season.FromCSV(f, playerID, diagSeason)
		f.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", diagCSV, err)
		}
		if name != "" {
			log.PlayerName = name
		}
		res, err = a.service.DiagnoseLog(ctx, log)
		if err != nil {
			return err
		}
	} else {
		res, err = a.service.Diagnose(ctx, req)
		if err != nil {
			return err
		}
	}

	var runID string
	if diagSave {
		runID, err = a.db.SaveDiagnosis(ctx, res)
		if err != nil {
			return fmt.Errorf("save diagnosis: %w", err)
		}
	}

	switch {
	case diagJSON:
		return report.WriteJSON(os.Stdout, report.NewDocument(res, runID, time.Now()))
	case diagSummary:
		return report.WriteQuickSummary(os.Stdout, res, a.service.Engine().Catalog())
	}

	printDiagnosis(res, a)
	if runID != "" {
		cMuted.Fprintf(os.Stdout, "\nSaved as %s\n", runID[:8])
	}
	return nil
}

func printDiagnosis(res model.DiagnosticResult, a *app) {
	report.PrintHeader(os.Stdout, res)
	report.PrintWindowTable(os.Stdout, res)
	fmt.Fprintln(os.Stdout)
	report.PrintTrendTable(os.Stdout, res, a.service.Engine().Catalog())
}
