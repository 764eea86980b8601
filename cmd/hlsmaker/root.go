package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose bool
	gen := &generateFlags{}

	ctx := newCommandContext(&configFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:   "hlsmaker -i <source> [flags]",
		Short: "Generate HTTP Live Streaming renditions from a source video",
		Long: `hlsmaker transcodes a source video once per connection-speed tier with
HandBrakeCLI, segments each result with mediafilesegmenter, and writes a
variant playlist that references every rendition that succeeded.

Exit status is 0 on success, 1 on validation or fatal errors, and 2 when
some presets failed but a variant playlist was still written.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().NFlag() == 0 {
				return cmd.Help()
			}
			return runGenerate(cmd, ctx, gen)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging, including tool output")
	// -h is the transcoder path, so help gets a long-only flag.
	rootCmd.Flags().Bool("help", false, "Show help for hlsmaker")
	registerGenerateFlags(rootCmd.Flags(), gen)

	rootCmd.AddCommand(newPresetsCommand())
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
