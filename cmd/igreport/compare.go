package main

import (
	"os"

	"github.com/spf13/cobra"
)

var compareOpts scanOptions

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <username> <competitor>",
	Short: "Compare a profile with a competitor",
	Long: `Scan your profile, wait a few seconds, then scan a competitor and report
both side by side with recommendations.

If the competitor cannot be read the report still covers your own profile.`,
	Example: `  # Compare the 40 most recent posts of each profile
  igreport compare mybrand rivalbrand

  # Compare 20 posts each and save the report as YAML
  igreport compare mybrand rivalbrand -n 20 -f yaml --save`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(compareOpts.flags())
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		return runScan(ctx, cfg, os.Stdout, compareOpts, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addScanFlags(compareCmd, &compareOpts)
}
