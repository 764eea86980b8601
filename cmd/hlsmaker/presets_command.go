package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hlsmaker/internal/preset"
)

func newPresetsCommand() *cobra.Command {
	aspect := preset.AspectWidescreen

	cmd := &cobra.Command{
		Use:         "presets",
		Short:       "List the rendition presets for an aspect",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := preset.All(aspect)
			rows := make([][]string, 0, len(presets))
			for _, p := range presets {
				audio := "none"
				if p.HasAudio {
					audio = fmt.Sprintf("%d kbps %s", p.AudioKbps, p.Mixdown())
				}
				rows = append(rows, []string{
					p.Tier.String(),
					p.Tier.Label(),
					strconv.Itoa(p.Kbps()),
					p.Resolution(),
					strconv.Itoa(p.VideoKbps),
					audio,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Presets (%s)\n", aspect)
			fmt.Fprintln(out, renderTable(
				[]string{"Tier", "Label", "Kbps", "Resolution", "Video", "Audio"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().VarP(&aspectValue{value: &aspect}, "aspect", "r", "Frame shape: widescreen (16:9) or standard (4:3)")
	return cmd
}
