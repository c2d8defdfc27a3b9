package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var invalidateSeason string

var invalidateCmd = &cobra.Command{
	Use:   "invalidate <player-id>",
	Short: "Drop a cached season so the next diagnose re-downloads it",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvalidate,
}

func init() {
	invalidateCmd.Flags().StringVar(&invalidateSeason, "season", "", "season year (required)")
	_ = invalidateCmd.MarkFlagRequired("season")
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	playerID, err := parsePlayerID(args[0])
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.loader.Invalidate(cmd.Context(), playerID, invalidateSeason)
	if err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}
	if !removed {
		fmt.Fprintf(os.Stdout, "Season %s for player %d was not cached.\n", invalidateSeason, playerID)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Invalidated season %s for player %d.\n", invalidateSeason, playerID)
	return nil
}
