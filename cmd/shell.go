package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-season-diag/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long:  "Open a persistent session with the cache and engine loaded. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cGreeting.Println("seasondiag shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("seasondiag")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(ctx, a)
		case "diagnose", "summary":
			if len(args) != 2 {
				cError.Fprintf(os.Stderr, "usage: %s <player-id> <season>\n", name)
				continue
			}
			shellDiagnose(ctx, a, args[0], args[1], name == "summary")
		case "invalidate":
			if len(args) != 2 {
				cError.Fprintln(os.Stderr, "usage: invalidate <player-id> <season>")
				continue
			}
			shellInvalidate(ctx, a, args[0], args[1])
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return scanner.Err()
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list cached seasons"},
		{"diagnose <player-id> <season>", "window and trend tables"},
		{"summary <player-id> <season>", "markdown quick summary"},
		{"invalidate <player-id> <season>", "drop a cached season"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-36s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(ctx context.Context, a *app) {
	logs, err := a.db.ListSeasonLogs(ctx, 0)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(logs) == 0 {
		cMuted.Println("No seasons cached yet.")
		return
	}
	for _, l := range logs {
		fmt.Fprintf(os.Stdout, "%-8d  %-24s  %s  %3d games\n", l.PlayerID, l.PlayerName, l.Season, l.Games)
	}
}

func shellDiagnose(ctx context.Context, a *app, id, seasonYear string, summary bool) {
	playerID, err := parsePlayerID(id)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	req, err := seasonRequest(playerID, seasonYear, "", "", "", false)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	res, err := a.service.Diagnose(ctx, req)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %s\n", userMessage(err))
		return
	}
	if summary {
		if err := report.WriteQuickSummary(os.Stdout, res, a.service.Engine().Catalog()); err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return
	}
	printDiagnosis(res, a)
}

func shellInvalidate(ctx context.Context, a *app, id, seasonYear string) {
	playerID, err := parsePlayerID(id)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	removed, err := a.loader.Invalidate(ctx, playerID, seasonYear)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if removed {
		fmt.Println("invalidated")
		return
	}
	cMuted.Println("not cached")
}
