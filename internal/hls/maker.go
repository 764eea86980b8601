package hls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"hlsmaker/internal/args"
	"hlsmaker/internal/command"
	"hlsmaker/internal/config"
	"hlsmaker/internal/history"
	"hlsmaker/internal/logging"
	"hlsmaker/internal/metrics"
	"hlsmaker/internal/notifications"
	"hlsmaker/internal/playlist"
	"hlsmaker/internal/preset"
	"hlsmaker/internal/services"
	"hlsmaker/internal/services/handbrake"
	"hlsmaker/internal/services/segmenter"
)

// HistoryRecorder persists run progress. *history.Store satisfies it.
type HistoryRecorder interface {
	BeginRun(ctx context.Context, run history.Run) error
	RecordPreset(ctx context.Context, p history.Preset) error
	FinishRun(ctx context.Context, run history.Run) error
}

// Settings carries tool invocation details shared by every run.
type Settings struct {
	TranscoderArgs []string
	SegmenterArgs  []string
	TargetDuration int
	Timeout        time.Duration
	MaxOutputBytes int
}

// SettingsFromConfig extracts Settings from the [tools] section.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{TargetDuration: segmenter.DefaultTargetDuration}
	}
	return Settings{
		TranscoderArgs: cfg.Tools.TranscoderArgs,
		SegmenterArgs:  cfg.Tools.SegmenterArgs,
		TargetDuration: cfg.Tools.TargetDuration,
		Timeout:        time.Duration(cfg.Tools.TimeoutSeconds) * time.Second,
		MaxOutputBytes: cfg.Tools.MaxOutputBytes,
	}
}

// Option configures a Maker.
type Option func(*Maker)

// WithRunner replaces the process runner (primarily for tests).
func WithRunner(runner command.Runner) Option {
	return func(m *Maker) {
		if runner != nil {
			m.runner = runner
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Maker) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHistory records runs in the given store.
func WithHistory(recorder HistoryRecorder) Option {
	return func(m *Maker) {
		m.history = recorder
	}
}

// WithMetrics exports run metrics to a Prometheus textfile at path.
func WithMetrics(recorder *metrics.Recorder, path string) Option {
	return func(m *Maker) {
		m.metrics = recorder
		m.metricsPath = path
	}
}

// WithNotifier publishes run outcomes.
func WithNotifier(service notifications.Service) Option {
	return func(m *Maker) {
		if service != nil {
			m.notifier = service
		}
	}
}

// WithSettings sets tool invocation details.
func WithSettings(settings Settings) Option {
	return func(m *Maker) {
		m.settings = settings
	}
}

// WithIDGenerator overrides run ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(m *Maker) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(m *Maker) {
		if fn != nil {
			m.now = fn
		}
	}
}

// Maker orchestrates rendition generation.
type Maker struct {
	runner      command.Runner
	logger      *slog.Logger
	history     HistoryRecorder
	metrics     *metrics.Recorder
	metricsPath string
	notifier    notifications.Service
	settings    Settings
	newID       func() string
	now         func() time.Time
}

// New constructs a Maker.
func New(opts ...Option) *Maker {
	m := &Maker{
		logger:   logging.NewNop(),
		notifier: notifications.NewService(nil),
		settings: Settings{TargetDuration: segmenter.DefaultTargetDuration},
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.runner == nil {
		m.runner = m.execRunner()
	}
	return m
}

func (m *Maker) execRunner() command.Runner {
	logger := logging.NewComponentLogger(m.logger, "tool")
	return command.ExecRunner{
		MaxStdout: m.settings.MaxOutputBytes,
		OnLine: func(stream, line string) {
			logger.Debug("tool output", logging.String("stream", stream), logging.String("line", line))
		},
	}
}

// Run generates every preset selected in a and writes the variant playlist.
// a must already be prepared by args.Prepare. The returned error carries
// services.ErrPartial when some presets failed and others succeeded.
func (m *Maker) Run(ctx context.Context, a args.Arguments) (Report, error) {
	runID := m.newID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(m.logger, "hls"))

	report := Report{
		RunID:           runID,
		SourceFile:      a.SourceFile,
		OutputDirectory: a.OutputDirectory,
		BaseName:        a.BaseName,
		StartedAt:       m.now(),
	}

	presets, err := preset.Select(a.Tiers, a.Aspect)
	if err != nil {
		return report, services.Wrap(services.ErrValidation, "hls", "select presets", "", err)
	}
	if len(presets) == 0 {
		return report, services.Wrap(services.ErrValidation, "hls", "select presets", "no presets selected", nil)
	}

	transcoder, err := handbrake.New(a.TranscoderPath,
		handbrake.WithRunner(m.runner),
		handbrake.WithExtraArgs(m.settings.TranscoderArgs),
		handbrake.WithTimeout(m.settings.Timeout),
	)
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "hls", "transcoder", "", err)
	}
	seg, err := segmenter.New(a.SegmenterPath,
		segmenter.WithRunner(m.runner),
		segmenter.WithExtraArgs(m.settings.SegmenterArgs),
		segmenter.WithTargetDuration(m.settings.TargetDuration),
		segmenter.WithTimeout(m.settings.Timeout),
	)
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "hls", "segmenter", "", err)
	}

	if err := os.MkdirAll(a.OutputDirectory, 0o755); err != nil {
		return report, services.Wrap(services.ErrFilesystem, "hls", "create output directory", a.OutputDirectory, err)
	}
	lock, err := lockOutput(a.OutputDirectory)
	if err != nil {
		return report, err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("output lock release failed", logging.Error(unlockErr))
		}
	}()

	m.beginHistory(ctx, logger, a, report)
	logger.Info("generation started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("source", a.SourceFile),
		logging.String("output_dir", a.OutputDirectory),
		logging.String("base_name", a.BaseName),
		logging.String("aspect", a.Aspect.String()),
		logging.Int("presets", len(presets)),
		logging.String("failure_policy", a.FailurePolicy),
	)

	w := presetWorker{
		transcoder:       transcoder,
		segmenter:        seg,
		metrics:          m.metrics,
		outputDir:        a.OutputDirectory,
		source:           a.SourceFile,
		baseName:         a.BaseName,
		keepIntermediate: a.KeepIntermediate,
	}

	halted := false
	for _, p := range presets {
		if halted || ctx.Err() != nil {
			report.Presets = append(report.Presets, PresetOutcome{Preset: p, Status: StatusSkipped})
			continue
		}
		outcome := w.run(ctx, logger, p)
		report.Presets = append(report.Presets, outcome)
		m.recordPreset(ctx, logger, runID, outcome)
		if outcome.Status == StatusFailed && a.FailurePolicy == config.FailurePolicyHalt {
			logging.WarnWithContext(logger, "halting after failed preset", "run_halted",
				logging.String(logging.FieldTier, p.Tier.String()),
				logging.String(logging.FieldImpact, "remaining presets skipped"),
			)
			halted = true
		}
	}
	report.Interrupted = ctx.Err() != nil

	variants := variantsFor(report.Presets, a.BaseName)
	if len(variants) > 0 {
		path := filepath.Join(a.OutputDirectory, a.BaseName+".m3u8")
		if err := playlist.WriteVariant(path, variants); err != nil {
			report.FinishedAt = m.now()
			runErr := services.Wrap(services.ErrFilesystem, "hls", "write variant playlist", path, err)
			m.finish(ctx, logger, report, runErr)
			return report, runErr
		}
		report.VariantPath = path
	}
	report.FinishedAt = m.now()

	runErr := outcomeError(ctx, report)
	m.finish(ctx, logger, report, runErr)
	return report, runErr
}

func variantsFor(outcomes []PresetOutcome, baseName string) []playlist.Variant {
	variants := make([]playlist.Variant, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Status != StatusSucceeded {
			continue
		}
		p := outcome.Preset
		name := p.Name(baseName)
		variants = append(variants, playlist.Variant{
			URI:       name + "/" + name + ".m3u8",
			Bandwidth: p.Bandwidth(),
			Width:     p.Width,
			Height:    p.Height,
			HasAudio:  p.HasAudio,
		})
	}
	return variants
}

func outcomeError(ctx context.Context, report Report) error {
	succeeded, failed := report.Succeeded(), report.Failed()
	switch {
	case report.Interrupted:
		return services.Wrap(services.ErrTransient, "hls", "run", "interrupted", context.Cause(ctx))
	case failed == 0:
		return nil
	case succeeded == 0:
		return services.Wrap(services.ErrExternalTool, "hls", "run",
			fmt.Sprintf("all %d attempted presets failed", failed), firstPresetError(report))
	default:
		return services.Wrap(services.ErrPartial, "hls", "run",
			fmt.Sprintf("%d of %d presets failed", failed, len(report.Presets)), firstPresetError(report))
	}
}

func firstPresetError(report Report) error {
	for _, outcome := range report.Presets {
		if outcome.Err != nil {
			return outcome.Err
		}
	}
	return nil
}

func runStatus(report Report, err error) string {
	switch {
	case report.Interrupted:
		return history.StatusInterrupted
	case err == nil:
		return history.StatusSucceeded
	case errors.Is(err, services.ErrPartial):
		return history.StatusPartial
	default:
		return history.StatusFailed
	}
}
