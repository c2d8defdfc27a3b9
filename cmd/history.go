package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-season-diag/internal/metric"
	"github.com/pable/go-season-diag/internal/report"
	"github.com/pable/go-season-diag/internal/storage"
)

var (
	historySeason string
	historyLimit  int
	historyID     string
)

var historyCmd = &cobra.Command{
	Use:   "history [player-id]",
	Short: "List saved diagnoses, or show one with --id",
	Example: `  seasondiag history 592450 --season 2024
  seasondiag history --id 3f2a9c1b`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySeason, "season", "", "only this season")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows")
	historyCmd.Flags().StringVar(&historyID, "id", "", "show the saved diagnosis with this id prefix")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if historyID != "" {
		rec, err := db.GetDiagnosis(cmd.Context(), historyID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no saved diagnosis with id prefix %q", historyID)
		}
		if err != nil {
			return err
		}
		cat, err := cfg.Catalog()
		if err != nil {
			cat = metric.Default()
		}
		cMuted.Fprintf(os.Stdout, "Run %s, saved %s\n", rec.ID, rec.CreatedAt.Local().Format("2006-01-02 15:04"))
		report.PrintHeader(os.Stdout, rec.Result)
		report.PrintWindowTable(os.Stdout, rec.Result)
		fmt.Fprintln(os.Stdout)
		report.PrintTrendTable(os.Stdout, rec.Result, cat)
		return nil
	}

	filter := storage.DiagnosisFilter{Season: historySeason, Limit: historyLimit}
	if len(args) == 1 {
		if filter.PlayerID, err = parsePlayerID(args[0]); err != nil {
			return err
		}
	}
	recs, err := db.ListDiagnoses(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("list diagnoses: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stdout, "No saved diagnoses. Run 'seasondiag diagnose <player-id> --season <year> --save' to add one.")
		return nil
	}

	table := newTable(os.Stdout)
	table.Header("ID", "PLAYER", "NAME", "SEASON", "GAMES", "IMPROVED", "DECLINED", "N/A", "SAVED")
	for _, r := range recs {
		table.Append(
			r.ID[:8],
			strconv.Itoa(r.Result.PlayerID),
			r.Result.PlayerName,
			r.Result.Season,
			strconv.Itoa(r.Result.TotalGames),
			strconv.Itoa(r.Improved),
			strconv.Itoa(r.Declined),
			strconv.Itoa(r.Insufficient),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	table.Render()
	return nil
}
