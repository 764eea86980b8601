package hls

import (
	"context"
	"log/slog"

	"hlsmaker/internal/args"
	"hlsmaker/internal/history"
	"hlsmaker/internal/logging"
	"hlsmaker/internal/notifications"
)

// beginHistory and recordPreset write with cancellation detached so an
// interrupted run keeps the rows for work already attempted.
func (m *Maker) beginHistory(ctx context.Context, logger *slog.Logger, a args.Arguments, report Report) {
	if m.history == nil {
		return
	}
	err := m.history.BeginRun(context.WithoutCancel(ctx), history.Run{
		ID:              report.RunID,
		SourceFile:      a.SourceFile,
		OutputDirectory: a.OutputDirectory,
		BaseName:        a.BaseName,
		Aspect:          a.Aspect.String(),
		FailurePolicy:   a.FailurePolicy,
		StartedAt:       report.StartedAt,
	})
	if err != nil {
		logging.WarnWithContext(logger, "history begin failed", "history_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will be missing from history"),
		)
	}
}

func (m *Maker) recordPreset(ctx context.Context, logger *slog.Logger, runID string, outcome PresetOutcome) {
	if m.history == nil {
		return
	}
	record := history.Preset{
		RunID:        runID,
		Tier:         outcome.Preset.Tier.String(),
		Kbps:         outcome.Preset.Kbps(),
		Status:       outcome.Status,
		FailedStep:   string(outcome.FailedStep),
		ExitCode:     outcome.ExitCode,
		Duration:     outcome.Duration,
		PlaylistPath: outcome.PlaylistPath,
		Segments:     outcome.Segments,
	}
	if outcome.Err != nil {
		record.ErrorMessage = outcome.Err.Error()
	}
	if err := m.history.RecordPreset(context.WithoutCancel(ctx), record); err != nil {
		logging.WarnWithContext(logger, "history preset record failed", "history_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "preset outcome missing from history"),
		)
	}
}

// finish records the final run state, including for interrupted runs.
func (m *Maker) finish(ctx context.Context, logger *slog.Logger, report Report, runErr error) {
	ctx = context.WithoutCancel(ctx)
	status := runStatus(report, runErr)

	if m.history != nil {
		run := history.Run{
			ID:          report.RunID,
			Status:      status,
			VariantPath: report.VariantPath,
			Succeeded:   report.Succeeded(),
			Failed:      report.Failed(),
			FinishedAt:  report.FinishedAt,
		}
		if runErr != nil {
			run.ErrorMessage = runErr.Error()
		}
		if err := m.history.FinishRun(ctx, run); err != nil {
			logging.WarnWithContext(logger, "history finish failed", "history_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run status in history is stale"),
			)
		}
	}

	if m.metrics != nil {
		m.metrics.ObserveRun(report.Succeeded(), report.Failed(), report.Skipped(), report.Duration(), report.FinishedAt)
		if m.metricsPath != "" {
			if err := m.metrics.WriteTextfile(m.metricsPath); err != nil {
				logging.WarnWithContext(logger, "metrics export failed", "metrics_failed",
					logging.String("path", m.metricsPath),
					logging.Error(err),
					logging.String(logging.FieldImpact, "textfile collector shows previous run"),
				)
			}
		}
	}

	if report.Succeeded()+report.Failed() > 0 {
		if err := m.notifier.NotifyRunCompleted(ctx, notifications.RunSummary{
			RunID:       report.RunID,
			BaseName:    report.BaseName,
			Succeeded:   report.Succeeded(),
			Failed:      report.Failed(),
			Duration:    report.Duration(),
			VariantPath: report.VariantPath,
		}); err != nil {
			logger.Warn("run notification failed", logging.Error(err))
		}
	}
	if runErr != nil && status != history.StatusPartial {
		if err := m.notifier.NotifyError(ctx, runErr, report.BaseName); err != nil {
			logger.Warn("error notification failed", logging.Error(err))
		}
	}

	level := slog.LevelInfo
	if runErr != nil {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "generation finished",
		logging.String(logging.FieldEventType, "run_completed"),
		logging.String("status", status),
		logging.Int("succeeded", report.Succeeded()),
		logging.Int("failed", report.Failed()),
		logging.Int("skipped", report.Skipped()),
		logging.Duration("duration", report.Duration()),
		logging.String("variant_playlist", report.VariantPath),
	)
}
