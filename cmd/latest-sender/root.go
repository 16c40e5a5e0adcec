package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var opts rootOptions

	ctx := newCommandContext(&opts)

	rootCmd := &cobra.Command{
		Use:   "latest-sender",
		Short: "Send the newest backup file of each configured location to a webhook",
		Long: "latest-sender scans each configured backup directory for files matching a glob,\n" +
			"picks the most recently modified one and uploads it to the backup's webhook.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelivery(cmd, ctx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Configuration file path (default: ./config.toml, then ~/.config/latest-sender/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug detail, including full error chains")
	rootCmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "d", false, "Select files but do not upload them")
	rootCmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit non-zero when any backup fails")

	rootCmd.AddCommand(newTargetsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
