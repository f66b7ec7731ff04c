package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"igreport/pkg/config"
	"igreport/pkg/errors"
	"igreport/pkg/history"
	"igreport/pkg/instagram"
	"igreport/pkg/report"
	"igreport/pkg/scanner"
	"igreport/pkg/stats"
	"igreport/pkg/storage"
	"igreport/pkg/ui"
	"igreport/pkg/ui/tui"
)

// scanOptions holds the flags shared by scan and compare
type scanOptions struct {
	limit     int
	format    string
	output    string
	save      bool
	account   string
	loginUser string
	sessionID string
	csrfToken string
	cache     string
	timezone  string
	useTUI    bool
}

var scanOpts scanOptions

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <username>",
	Short: "Report engagement statistics for an Instagram profile",
	Long: `Read the most recent posts of a profile and report average likes and
comments, engagement rate, media mix, top hashtags and posting weekdays.

Private profiles need a session that follows them. Sessions come from:
  - A stored account (use 'igreport auth login' to store one)
  - Environment variables (IGREPORT_SESSION_ID and IGREPORT_CSRF_TOKEN)
  - A password login with --login-user (never stored)`,
	Example: `  # Scan the 40 most recent posts
  igreport scan natgeo

  # Scan 20 posts and print JSON
  igreport scan natgeo --limit 20 --format json

  # Save the report under ./reports as well as printing it
  igreport scan natgeo --save

  # Follow the scan in the full-screen dashboard
  igreport scan natgeo --tui`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(scanOpts.flags())
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		return runScan(ctx, cfg, os.Stdout, scanOpts, args[0], "")
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd, &scanOpts)
}

func addScanFlags(cmd *cobra.Command, opts *scanOptions) {
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "number of recent posts to read (default 40)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "report format: text, json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "directory to save the report in (implies --save)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the report to the output directory")
	cmd.Flags().StringVarP(&opts.account, "account", "a", "", "use a specific stored account")
	cmd.Flags().StringVar(&opts.loginUser, "login-user", "", "log in with this Instagram username and a prompted password")
	cmd.Flags().StringVar(&opts.sessionID, "session-id", "", "Instagram sessionid cookie")
	cmd.Flags().StringVar(&opts.csrfToken, "csrf-token", "", "Instagram csrftoken cookie")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "result cache: none, memory or redis")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "", "timezone for weekday statistics (default local)")
	cmd.Flags().BoolVar(&opts.useTUI, "tui", false, "show the interactive dashboard while scanning")
}

func (o scanOptions) flags() map[string]interface{} {
	flags := map[string]interface{}{
		"limit":      o.limit,
		"format":     o.format,
		"output":     o.output,
		"login-user": o.loginUser,
		"session-id": o.sessionID,
		"csrf-token": o.csrfToken,
		"cache":      o.cache,
		"timezone":   o.timezone,
	}
	return flags
}

// runScan scans username, and competitor too when it is not empty, then
// prints the report to out
func runScan(ctx context.Context, cfg *config.Config, out io.Writer, opts scanOptions, username, competitor string) error {
	if opts.save {
		cfg.Output.Save = true
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	self, err := a.request(username, opts.account, cfg.Scan.PostLimit)
	if err != nil {
		return err
	}
	var rival scanner.Request
	if competitor != "" {
		rival = self
		rival.Username = competitor
	}

	var (
		mine, theirs *stats.ProfileStats
		scanErr      error
	)
	work := func(ctx context.Context, view ui.ScanView) error {
		s, err := a.newScanner(view)
		if err != nil {
			return err
		}
		if competitor == "" {
			mine, scanErr = s.Scan(ctx, self)
		} else {
			mine, theirs, scanErr = s.Compare(ctx, self, rival)
		}
		if mine == nil {
			return scanErr
		}
		return nil
	}

	if opts.useTUI {
		dash := tui.New(tui.Options{AltScreen: true})
		err = dash.Run(ctx, func(ctx context.Context) error { return work(ctx, dash) })
	} else {
		err = work(ctx, progressView())
	}
	if err != nil {
		return err
	}

	if mine == nil {
		ui.PrintWarning(fmt.Sprintf("@%s has no posts to analyse", instagram.SanitizeUsername(self.Username)))
		return nil
	}
	if scanErr != nil {
		// Only the competitor failed
		ui.PrintWarning("Competitor skipped", describe(scanErr))
	}

	recordHistory(ctx, a, mine)
	if theirs != nil {
		recordHistory(ctx, a, theirs)
	}

	r, err := report.Build(report.Comparison{Self: mine, Competitor: theirs}, time.Now())
	if err != nil {
		return err
	}
	if err := report.Write(out, r, cfg.Output.Format); err != nil {
		return err
	}

	if cfg.Output.Save {
		manager, err := storage.NewManager(cfg.Output.Directory)
		if err != nil {
			return err
		}
		path, err := manager.SaveReport(r, cfg.Output.Format)
		if err != nil {
			return err
		}
		ui.PrintInfo("Report saved", path)
	}

	return nil
}

func recordHistory(ctx context.Context, a *app, p *stats.ProfileStats) {
	delta, ok, err := history.Record(ctx, a.history, p)
	if err != nil {
		a.log.WithError(err).WithField("username", p.Username).Warn("Failed to record scan history")
		return
	}
	if ok && !quiet {
		ui.PrintInfo("Since last scan of @"+p.Username, formatDelta(delta))
	}
}

func formatDelta(d history.Delta) string {
	parts := []string{
		fmt.Sprintf("%+d followers", d.Followers),
		fmt.Sprintf("%+.2f%% engagement", d.Engagement),
		fmt.Sprintf("%+d avg likes", d.AvgLikes),
	}
	return strings.Join(parts, ", ") + fmt.Sprintf(" (%s ago)", ui.FormatDuration(d.Elapsed))
}

func describe(err error) string {
	if text := errors.Guidance(err); text != "" {
		return text
	}
	return err.Error()
}
