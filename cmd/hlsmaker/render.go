package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"hlsmaker/internal/hls"
	"hlsmaker/internal/textutil"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func renderReport(report hls.Report, colorize bool) string {
	rows := make([][]string, 0, len(report.Presets))
	for _, outcome := range report.Presets {
		p := outcome.Preset
		playlist := ""
		if outcome.PlaylistPath != "" {
			if rel, err := filepath.Rel(report.OutputDirectory, outcome.PlaylistPath); err == nil {
				playlist = rel
			} else {
				playlist = outcome.PlaylistPath
			}
		}
		rows = append(rows, []string{
			p.Tier.Label(),
			strconv.Itoa(p.Kbps()),
			p.Resolution(),
			colorStatus(outcomeLabel(outcome), outcome.Status, colorize),
			formatDuration(outcome.Duration),
			playlist,
		})
	}

	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"Tier", "Kbps", "Resolution", "Status", "Time", "Playlist"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight, alignLeft},
	))
	b.WriteString("\n")

	succeeded := report.Succeeded()
	fmt.Fprintf(&b, "Run %s: %d %s succeeded, %d failed, %d skipped in %s\n",
		report.RunID,
		succeeded, textutil.Pluralize(succeeded, "preset", "presets"),
		report.Failed(),
		report.Skipped(),
		formatDuration(report.Duration()),
	)
	if report.VariantPath != "" {
		fmt.Fprintf(&b, "Variant playlist: %s\n", report.VariantPath)
	}
	return b.String()
}

func outcomeLabel(outcome hls.PresetOutcome) string {
	if outcome.Status != hls.StatusFailed {
		return outcome.Status
	}
	label := "failed (" + string(outcome.FailedStep)
	if outcome.ExitCode >= 0 {
		label += ", exit " + strconv.Itoa(outcome.ExitCode)
	}
	return label + ")"
}

func colorStatus(label, status string, colorize bool) string {
	if !colorize {
		return label
	}
	switch status {
	case hls.StatusSucceeded:
		return ansiGreen + label + ansiReset
	case hls.StatusFailed:
		return ansiRed + label + ansiReset
	case hls.StatusSkipped:
		return ansiYellow + label + ansiReset
	default:
		return label
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
