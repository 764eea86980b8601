package hls

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"hlsmaker/internal/command"
	"hlsmaker/internal/fileutil"
	"hlsmaker/internal/logging"
	"hlsmaker/internal/metrics"
	"hlsmaker/internal/playlist"
	"hlsmaker/internal/preset"
	"hlsmaker/internal/services"
	"hlsmaker/internal/services/handbrake"
	"hlsmaker/internal/services/segmenter"
)

// presetWorker runs the transcode, segment and verify steps for one preset
// at a time.
type presetWorker struct {
	transcoder       handbrake.Transcoder
	segmenter        segmenter.Segmenter
	metrics          *metrics.Recorder
	outputDir        string
	source           string
	baseName         string
	keepIntermediate bool
}

func (w presetWorker) run(ctx context.Context, runLogger *slog.Logger, p preset.Preset) PresetOutcome {
	ctx = services.WithTier(ctx, p.Tier.String())
	logger := logging.WithContext(ctx, logging.NewComponentLogger(runLogger, "preset"))
	start := time.Now()
	outcome := PresetOutcome{Preset: p}

	name := p.Name(w.baseName)
	intermediate := filepath.Join(w.outputDir, name+".mp4")
	segmentDir := filepath.Join(w.outputDir, name)
	indexName := name + ".m3u8"

	logger.Info("preset started",
		logging.String(logging.FieldEventType, "preset_started"),
		logging.String("label", p.Tier.Label()),
		logging.Int("kbps", p.Kbps()),
		logging.String("resolution", p.Resolution()),
		logging.String("audio", p.Mixdown()),
	)

	fail := func(step Step, err error) PresetOutcome {
		outcome.Status = StatusFailed
		outcome.FailedStep = step
		outcome.ExitCode = command.ExitCodeOf(err)
		outcome.Duration = time.Since(start)
		outcome.Err = err
		w.metrics.ObservePreset(p.Tier.String(), false)
		logging.ErrorWithContext(logger, "preset failed", "preset_failed",
			logging.String(logging.FieldStep, string(step)),
			logging.Int("exit_code", outcome.ExitCode),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(step)),
		)
		return outcome
	}

	stepCtx := services.WithStep(ctx, string(StepTranscode))
	stepStart := time.Now()
	result, err := w.transcoder.Transcode(stepCtx, p, w.source, intermediate)
	w.metrics.ObserveStep(p.Tier.String(), string(StepTranscode), time.Since(stepStart), err)
	if err != nil {
		logToolFailure(logger, result)
		return fail(StepTranscode, services.Wrap(services.ErrExternalTool, string(StepTranscode), p.Tier.String(), "", err))
	}
	logger.Debug("transcode complete",
		logging.String("command", result.CommandLine()),
		logging.Duration("duration", result.Duration),
	)
	if info, statErr := os.Stat(intermediate); statErr == nil {
		w.metrics.ObserveIntermediate(p.Tier.String(), info.Size())
	}

	stepCtx = services.WithStep(ctx, string(StepSegment))
	stepStart = time.Now()
	result, err = w.segmenter.Segment(stepCtx, intermediate, segmentDir, indexName, name)
	w.metrics.ObserveStep(p.Tier.String(), string(StepSegment), time.Since(stepStart), err)
	if err != nil {
		logToolFailure(logger, result)
		return fail(StepSegment, services.Wrap(services.ErrExternalTool, string(StepSegment), p.Tier.String(), "", err))
	}
	logger.Debug("segment complete",
		logging.String("command", result.CommandLine()),
		logging.Duration("duration", result.Duration),
	)

	playlistPath := filepath.Join(segmentDir, indexName)
	media, err := playlist.CheckMedia(playlistPath)
	if err != nil {
		return fail(StepVerify, services.Wrap(services.ErrExternalTool, string(StepVerify), p.Tier.String(), "segmenter output unusable", err))
	}

	if !w.keepIntermediate {
		if err := fileutil.RemoveIfExists(intermediate); err != nil {
			logging.WarnWithContext(logger, "intermediate cleanup failed", "cleanup_failed",
				logging.String("path", intermediate),
				logging.Error(err),
				logging.String(logging.FieldImpact, "intermediate MP4 left in output directory"),
			)
		}
	}

	outcome.Status = StatusSucceeded
	outcome.PlaylistPath = playlistPath
	outcome.Segments = media.Segments
	outcome.Duration = time.Since(start)
	w.metrics.ObservePreset(p.Tier.String(), true)
	logger.Info("preset complete",
		logging.String(logging.FieldEventType, "preset_completed"),
		logging.Int("segments", media.Segments),
		logging.Duration("duration", outcome.Duration),
		logging.String("playlist", playlistPath),
	)
	return outcome
}

func logToolFailure(logger *slog.Logger, result command.Result) {
	if result.Binary == "" {
		return
	}
	logger.Debug("tool invocation failed",
		logging.String("command", result.CommandLine()),
		logging.String("stderr", result.Stderr),
	)
}

func hintFor(step Step) string {
	switch step {
	case StepTranscode:
		return "run the logged HandBrakeCLI command by hand to see the full error"
	case StepSegment:
		return "check that mediafilesegmenter accepts the intermediate MP4"
	default:
		return "inspect the media playlist in the preset directory"
	}
}
