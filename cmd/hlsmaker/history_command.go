package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hlsmaker/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.BaseName,
					run.Status,
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Failed),
					formatDuration(run.Duration()),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Base Name", "Status", "OK", "Failed", "Time"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-preset results for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("run %s not found", args[0])
				}
				return fmt.Errorf("load run: %w", err)
			}
			presets, err := store.Presets(cmd.Context(), run.ID)
			if err != nil {
				return fmt.Errorf("load presets: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, struct {
					Run     history.Run      `json:"run"`
					Presets []history.Preset `json:"presets"`
				}{run, presets})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:      %s\n", run.ID)
			fmt.Fprintf(out, "Source:   %s\n", run.SourceFile)
			fmt.Fprintf(out, "Output:   %s\n", run.OutputDirectory)
			fmt.Fprintf(out, "Status:   %s\n", run.Status)
			if run.VariantPath != "" {
				fmt.Fprintf(out, "Variant:  %s\n", run.VariantPath)
			}
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:    %s\n", run.ErrorMessage)
			}
			rows := make([][]string, 0, len(presets))
			for _, p := range presets {
				step := p.FailedStep
				if step == "" {
					step = "-"
				}
				rows = append(rows, []string{
					p.Tier,
					strconv.Itoa(p.Kbps),
					p.Status,
					step,
					strconv.Itoa(p.Segments),
					formatDuration(p.Duration),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tier", "Kbps", "Status", "Failed Step", "Segments", "Time"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	path := cfg.HistoryPath()
	if path == "" {
		return nil, errors.New("run history is disabled (set [history] enabled = true)")
	}
	store, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}
