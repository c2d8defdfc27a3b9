package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-season-diag/internal/season"
)

// fetch command flags.
var (
	// fetchSeason is the season year to download, e.g. "2024".
	fetchSeason string
	// fetchStart and fetchEnd narrow the download range (YYYY-MM-DD).
	fetchStart string
	fetchEnd   string
	// fetchName is stored as the player's display name.
	fetchName string
	// fetchPlayer looks the player up by name instead of id.
	fetchPlayer string
)

// fetchCmd downloads a batter's season from Baseball Savant into the cache.
var fetchCmd = &cobra.Command{
	Use:   "fetch [player-id]",
	Short: "Download a batter's Statcast season into the cache",
	Long: `Downloads every pitch a batter saw during a season from Baseball Savant,
keeps regular-season games, groups pitches into games and caches the result.
A cached season is replaced. A season narrowed with --start/--end is fetched
but not cached.

Examples:
  seasondiag fetch 592450 --season 2024 --name "Aaron Judge"
  seasondiag fetch --player "Ohtani, Shohei" --season 2024
  seasondiag fetch 660271 --season 2023 --start 2023-04-01 --end 2023-09-30`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchSeason, "season", "", "season year (required)")
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", "first date to include (YYYY-MM-DD, default Mar 1)")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "last date to include (YYYY-MM-DD, default Nov 30)")
	fetchCmd.Flags().StringVar(&fetchName, "name", "", "player display name")
	fetchCmd.Flags().StringVar(&fetchPlayer, "player", "", `look the player up by name ("Last, First")`)
	_ = fetchCmd.MarkFlagRequired("season")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := checkPlayerArgs(args, fetchPlayer); err != nil {
		return err
	}
	// dates are checked before any network call
	if _, err := seasonRequest(1, fetchSeason, "", fetchStart, fetchEnd, true); err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	playerID, name, err := resolvePlayer(cmd.Context(), a, args, fetchPlayer, fetchName)
	if err != nil {
		return err
	}
	req, err := seasonRequest(playerID, fetchSeason, name, fetchStart, fetchEnd, true)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Fetching player %d, season %s from Baseball Savant...\n", playerID, fetchSeason)
	log, err := a.loader.Load(cmd.Context(), req)
	if err != nil {
		return err
	}

	pitches := 0
	for _, g := range log.Games {
		pitches += len(g.Pitches)
	}
	first, last := log.Games[0].Date, log.Games[len(log.Games)-1].Date
	verb := "Cached"
	if _, _, ranged, _ := season.ResolveRange(req); ranged {
		verb = "Fetched (partial season, not cached)"
	}
	fmt.Fprintf(os.Stdout, "%s %d games (%d pitches) from %s to %s.\n",
		verb, len(log.Games), pitches, first.Format("2006-01-02"), last.Format("2006-01-02"))
	if p := cfg.Policy(); len(log.Games) < p.MinGames {
		fmt.Fprintf(os.Stdout, "Note: %d games is below the %d needed for a diagnosis.\n", len(log.Games), p.MinGames)
	}
	return nil
}
