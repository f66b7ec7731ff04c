package main

import (
	"github.com/spf13/cobra"
	"igreport/pkg/logger"
	"igreport/pkg/mcpserver"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve scans as MCP tools over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the
scan_profile, compare_profiles and profile_history tools.

Scans run under the default stored session when one exists. Without a
history database, snapshots are kept in memory for the life of the server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		cfg.History.Enabled = true

		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.newScanner(nil)
		if err != nil {
			return err
		}

		opts := []mcpserver.Option{
			mcpserver.WithHistory(a.history),
			mcpserver.WithLogger(a.log),
			mcpserver.WithSessions(a),
		}

		logger.LogComponentStart("mcp", map[string]interface{}{"version": version})
		err = mcpserver.NewServer(s, version, opts...).ServeContext(ctx)
		reason := "stdin closed"
		if err != nil {
			reason = err.Error()
		}
		logger.LogComponentStop("mcp", reason)
		return err
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
