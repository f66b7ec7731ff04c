package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"igreport/pkg/history"
	"igreport/pkg/instagram"
	"igreport/pkg/logger"
	"igreport/pkg/report"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <username>",
	Short: "Show earlier scans of a profile",
	Long: `List stored snapshots of a profile, newest first, with the change since
the scan before each one.

History needs a PostgreSQL database, configured with history.dsn in the
config file or the IGREPORT_DATABASE_URL environment variable.`,
	Example: `  igreport history natgeo
  igreport history natgeo --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		if !cfg.History.Enabled {
			return fmt.Errorf("scan history is disabled: set history.dsn or IGREPORT_DATABASE_URL")
		}

		ctx, cancel := signalContext()
		defer cancel()

		store, err := history.Open(ctx, cfg.History, logger.GetLogger())
		if err != nil {
			return err
		}
		defer store.Close()

		return printHistory(ctx, os.Stdout, store, args[0], historyLimit)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of snapshots")
}

func printHistory(ctx context.Context, out io.Writer, store history.Store, username string, limit int) error {
	username = instagram.SanitizeUsername(username)

	snapshots, err := store.List(ctx, username, limit)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		fmt.Fprintf(out, "No earlier scans of @%s.\n", username)
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Scanned", "Followers", "Engagement", "Avg likes", "Posts", "Change")
	for i := range snapshots {
		s := &snapshots[i]
		change := "-"
		if i+1 < len(snapshots) {
			change = formatDelta(history.Compare(&snapshots[i+1], s))
		}
		t.Row(
			s.ScannedAt.Local().Format("2006-01-02 15:04"),
			report.FormatNumber(s.Followers),
			report.FormatEngagement(s),
			report.FormatNumber(s.AvgLikes),
			strconv.Itoa(s.SampleSize),
			change,
		)
	}

	fmt.Fprintf(out, "Scans of @%s\n%s\n", username, t.String())
	return nil
}
