package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [player-id]",
	Short: "List season logs cached in SQLite",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	var playerID int
	if len(args) == 1 {
		id, err := parsePlayerID(args[0])
		if err != nil {
			return err
		}
		playerID = id
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	logs, err := db.ListSeasonLogs(cmd.Context(), playerID)
	if err != nil {
		return fmt.Errorf("list season logs: %w", err)
	}
	if len(logs) == 0 {
		fmt.Fprintln(os.Stdout, "No seasons cached yet. Run 'seasondiag fetch <player-id> --season <year>' to add one.")
		return nil
	}

	table := newTable(os.Stdout)
	table.Header("PLAYER", "NAME", "SEASON", "GAMES", "FETCHED")
	for _, l := range logs {
		table.Append(
			strconv.Itoa(l.PlayerID),
			l.PlayerName,
			l.Season,
			strconv.Itoa(l.Games),
			l.FetchedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	table.Render()
	return nil
}
