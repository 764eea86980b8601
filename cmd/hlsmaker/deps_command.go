package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hlsmaker/internal/deps"
	"hlsmaker/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var transcoder string
	var segmenter string

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check that the transcoder, segmenter and state directories are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			tools := preflight.CheckTools(cfg, transcoder, segmenter)
			fmt.Fprintln(out, "Tools")
			missing := renderToolStatuses(out, tools, colorize)

			fmt.Fprintln(out, "Directories")
			failed := 0
			for _, result := range preflight.RunAll(cfg) {
				status := statusLabel(result.Passed, "ok", "fail", colorize)
				fmt.Fprintf(out, "  %s %-22s %s\n", status, result.Name, result.Detail)
				if !result.Passed {
					failed++
				}
			}

			if missing > 0 || failed > 0 {
				return errors.New("dependency check failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&transcoder, "transcoder", "t", "", "Transcoder to check instead of the configured one")
	cmd.Flags().StringVarP(&segmenter, "segmenter", "m", "", "Segmenter to check instead of the configured one")
	return cmd
}

func renderToolStatuses(out io.Writer, statuses []deps.Status, colorize bool) int {
	missing := 0
	for _, status := range statuses {
		label := statusLabel(status.Available, "ok", "missing", colorize)
		detail := status.Resolved
		if !status.Available {
			detail = status.Detail
			if !status.Optional {
				missing++
			}
		}
		fmt.Fprintf(out, "  %s %-22s %s\n", label, status.Name, detail)
	}
	return missing
}

func statusLabel(ok bool, good, bad string, colorize bool) string {
	label := fmt.Sprintf("%-7s", "["+bad+"]")
	color := ansiRed
	if ok {
		label = fmt.Sprintf("%-7s", "["+good+"]")
		color = ansiGreen
	}
	if !colorize {
		return label
	}
	return color + label + ansiReset
}
