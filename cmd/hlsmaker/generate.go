package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hlsmaker/internal/args"
	"hlsmaker/internal/history"
	"hlsmaker/internal/hls"
	"hlsmaker/internal/logging"
	"hlsmaker/internal/metrics"
	"hlsmaker/internal/notifications"
	"hlsmaker/internal/preflight"
	"hlsmaker/internal/services"
)

// validationFailure carries every argument problem found before a run.
type validationFailure struct {
	errs []args.ValidationError
}

func (v *validationFailure) Error() string {
	parts := make([]string, 0, len(v.errs))
	for _, err := range v.errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

func (v *validationFailure) Unwrap() error { return services.ErrValidation }

func runGenerate(cmd *cobra.Command, ctx *commandContext, gen *generateFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "cli", "working directory", "", err)
	}
	raw, parseErrs := gen.arguments()
	resolved := args.Resolve(raw, cfg, workDir)
	prepared, verrs := args.Prepare(resolved, args.Options{Resolver: preflight.ToolResolver(cfg)})
	if verrs = append(parseErrs, verrs...); len(verrs) > 0 {
		return &validationFailure{errs: verrs}
	}

	opts := []hls.Option{
		hls.WithLogger(logger),
		hls.WithSettings(hls.SettingsFromConfig(cfg)),
		hls.WithNotifier(notifications.NewService(cfg)),
	}
	if path := cfg.HistoryPath(); path != "" {
		store, err := history.Open(path)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "run will not be recorded"),
			)
		} else {
			defer store.Close()
			opts = append(opts, hls.WithHistory(store))
		}
	}
	if path := cfg.Metrics.TextfilePath; path != "" {
		opts = append(opts, hls.WithMetrics(metrics.NewRecorder(), path))
	}

	report, runErr := hls.New(opts...).Run(cmd.Context(), prepared)
	if len(report.Presets) > 0 {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, renderReport(report, shouldColorize(out)))
	}
	return runErr
}
