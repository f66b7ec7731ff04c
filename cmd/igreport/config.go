package main

import (
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"igreport/pkg/config"
	"igreport/pkg/ui"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igreport configuration files.

Configuration is merged from, highest priority first:
  - Command line flags
  - Environment variables (IGREPORT_*)
  - .env files (./.env and ~/.igreport.env)
  - Configuration file
  - Default values`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the defaults",
	Long: `Write a configuration file holding every option at its default value.

The file goes to ~/.config/igreport/config.yaml unless --config names
another path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = config.DefaultPath()
		}

		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		ui.PrintSuccess("Configuration written to " + path)
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging every source.

Session cookies and passwords are masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}
		return showConfig(os.Stdout, cfg)
	},
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}

		if !cfg.HasSession() {
			ui.PrintWarning("No session configured: private profiles need 'igreport auth login'")
		}
		ui.PrintSuccess("Configuration is valid")
		ui.PrintInfo("Post limit", fmt.Sprint(cfg.Scan.PostLimit))
		ui.PrintInfo("Pacing", fmt.Sprintf("%s to %s between posts", cfg.Scan.PacingMin, cfg.Scan.PacingMax))
		ui.PrintInfo("Cache", cfg.Cache.Backend)
		ui.PrintInfo("History", fmt.Sprint(cfg.History.Enabled))
		return nil
	},
}

// configPathCmd represents the config path command
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "List the configuration file search paths",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range config.SearchPaths() {
			marker := " "
			if _, err := os.Stat(p); err == nil {
				marker = "*"
			}
			fmt.Fprintf(os.Stdout, "%s %s\n", marker, p)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
}

func showConfig(out io.Writer, cfg *config.Config) error {
	display := *cfg
	display.Instagram.SessionID = mask(display.Instagram.SessionID)
	display.Instagram.CSRFToken = mask(display.Instagram.CSRFToken)
	display.Cache.Redis.Password = mask(display.Cache.Redis.Password)
	display.History.DSN = maskDSN(display.History.DSN)

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return "***"
	}
}

// maskDSN hides the password of a postgres:// URL
func maskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return mask(dsn)
	}
	return u.Redacted()
}
