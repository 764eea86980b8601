package hls_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"hlsmaker/internal/args"
	"hlsmaker/internal/command"
	"hlsmaker/internal/config"
	"hlsmaker/internal/history"
	"hlsmaker/internal/hls"
	"hlsmaker/internal/metrics"
	"hlsmaker/internal/preset"
	"hlsmaker/internal/services"
)

const (
	transcoderBin = "/tools/HandBrakeCLI"
	segmenterBin  = "/tools/mediafilesegmenter"
)

type call struct {
	binary string
	args   []string
}

// recordingRunner imitates both tools: the transcoder writes its -o file and
// the segmenter writes a one-segment playlist into -f/-i.
type recordingRunner struct {
	mu    sync.Mutex
	calls []call
	fail  func(binary string, args []string) error
}

func (r *recordingRunner) Run(ctx context.Context, binary string, args []string) (command.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{binary: binary, args: append([]string(nil), args...)})
	r.mu.Unlock()

	result := command.Result{Binary: binary, Args: args}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	if r.fail != nil {
		if err := r.fail(binary, args); err != nil {
			return result, err
		}
	}
	switch binary {
	case transcoderBin:
		if err := os.WriteFile(flagValue(args, "-o"), []byte("mp4 data"), 0o644); err != nil {
			return result, err
		}
	case segmenterBin:
		dir := flagValue(args, "-f")
		body := "#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXTINF:10.0,\nfileSequence0.ts\n#EXT-X-ENDLIST\n"
		if err := os.WriteFile(filepath.Join(dir, flagValue(args, "-i")), []byte(body), 0o644); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *recordingRunner) binaries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, filepath.Base(c.binary))
	}
	return out
}

func flagValue(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func failFor(binary, name string, code int) func(string, []string) error {
	return func(b string, args []string) error {
		if b == binary && strings.Contains(strings.Join(args, " "), name) {
			return &command.ExitError{Binary: b, Code: code, Stderr: "simulated failure"}
		}
		return nil
	}
}

func newArgs(t *testing.T, tiers ...preset.Tier) args.Arguments {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "movie.mov")
	if err := os.WriteFile(source, []byte("source"), 0o644); err != nil {
		t.Fatal(err)
	}
	return args.Arguments{
		SourceFile:      source,
		OutputDirectory: filepath.Join(dir, "out"),
		BaseName:        "movie",
		Tiers:           tiers,
		Aspect:          preset.AspectWidescreen,
		TranscoderPath:  transcoderBin,
		SegmenterPath:   segmenterBin,
		FailurePolicy:   config.FailurePolicyContinue,
	}
}

func TestRunGeneratesAllPresets(t *testing.T) {
	runner := &recordingRunner{}
	maker := hls.New(hls.WithRunner(runner), hls.WithIDGenerator(func() string { return "run-1" }))
	a := newArgs(t, preset.TierWifiSlow, preset.TierCellularMini)

	report, err := maker.Run(context.Background(), a)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"HandBrakeCLI", "mediafilesegmenter", "HandBrakeCLI", "mediafilesegmenter"}
	if got := runner.binaries(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("invocations = %v, want %v", got, want)
	}
	// Presets run in table order regardless of argument order.
	if report.Presets[0].Preset.Tier != preset.TierCellularMini {
		t.Fatalf("expected cellular-mini first, got %s", report.Presets[0].Preset.Tier)
	}
	if out := flagValue(runner.calls[0].args, "-o"); filepath.Base(out) != "movie_64.mp4" {
		t.Fatalf("first transcode wrote %q, want movie_64.mp4", out)
	}
	if report.RunID != "run-1" || report.Succeeded() != 2 || report.Failed() != 0 {
		t.Fatalf("unexpected report: %#v", report)
	}

	variant, err := os.ReadFile(filepath.Join(a.OutputDirectory, "movie.m3u8"))
	if err != nil {
		t.Fatalf("read variant: %v", err)
	}
	wantVariant := "#EXTM3U\n#EXT-X-VERSION:3\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=64000,RESOLUTION=398x224\nmovie_64/movie_64.m3u8\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=440000,RESOLUTION=640x360\nmovie_440/movie_440.m3u8\n"
	if string(variant) != wantVariant {
		t.Fatalf("variant playlist mismatch:\n%s", variant)
	}
	if report.VariantPath != filepath.Join(a.OutputDirectory, "movie.m3u8") {
		t.Fatalf("variant path = %q", report.VariantPath)
	}

	for _, outcome := range report.Presets {
		if outcome.Segments != 1 || outcome.PlaylistPath == "" {
			t.Fatalf("unexpected outcome: %#v", outcome)
		}
		mp4 := filepath.Join(a.OutputDirectory, outcome.Preset.Name("movie")+".mp4")
		if _, err := os.Stat(mp4); !os.IsNotExist(err) {
			t.Fatalf("expected intermediate %s removed", mp4)
		}
	}
}

func TestRunKeepsIntermediateWhenRequested(t *testing.T) {
	maker := hls.New(hls.WithRunner(&recordingRunner{}))
	a := newArgs(t, preset.TierCellularFast)
	a.KeepIntermediate = true

	if _, err := maker.Run(context.Background(), a); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.OutputDirectory, "movie_240.mp4")); err != nil {
		t.Fatalf("expected intermediate kept: %v", err)
	}
}

func TestRunTranscodeFailureSkipsSegmenter(t *testing.T) {
	runner := &recordingRunner{fail: failFor(transcoderBin, "movie_150", 3)}
	maker := hls.New(hls.WithRunner(runner))
	a := newArgs(t, preset.TierCellularMini, preset.TierCellularSlow, preset.TierCellularFast)

	report, err := maker.Run(context.Background(), a)
	if !errors.Is(err, services.ErrPartial) {
		t.Fatalf("expected ErrPartial, got %v", err)
	}
	if services.ExitCode(err) != services.ExitPartial {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}

	want := "HandBrakeCLI,mediafilesegmenter,HandBrakeCLI,HandBrakeCLI,mediafilesegmenter"
	if got := strings.Join(runner.binaries(), ","); got != want {
		t.Fatalf("invocations = %s, want %s", got, want)
	}

	failed := report.Presets[1]
	if failed.Status != hls.StatusFailed || failed.FailedStep != hls.StepTranscode || failed.ExitCode != 3 {
		t.Fatalf("unexpected failed outcome: %#v", failed)
	}
	if !errors.Is(failed.Err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", failed.Err)
	}

	variant, err := os.ReadFile(report.VariantPath)
	if err != nil {
		t.Fatalf("read variant: %v", err)
	}
	if strings.Contains(string(variant), "movie_150") {
		t.Fatalf("failed preset must not appear in variant playlist:\n%s", variant)
	}
	if !strings.Contains(string(variant), "movie_240") {
		t.Fatalf("later preset missing from variant playlist:\n%s", variant)
	}
}

func TestRunSegmentFailure(t *testing.T) {
	runner := &recordingRunner{fail: failFor(segmenterBin, "movie_64", 1)}
	maker := hls.New(hls.WithRunner(runner))
	a := newArgs(t, preset.TierCellularMini)

	report, err := maker.Run(context.Background(), a)
	if !errors.Is(err, services.ErrExternalTool) || services.ExitCode(err) != services.ExitFatal {
		t.Fatalf("expected fatal external tool error, got %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(runner.calls))
	}
	if report.Presets[0].FailedStep != hls.StepSegment {
		t.Fatalf("failed step = %q", report.Presets[0].FailedStep)
	}
	if report.VariantPath != "" {
		t.Fatalf("expected no variant playlist, got %q", report.VariantPath)
	}
	if _, err := os.Stat(filepath.Join(a.OutputDirectory, "movie.m3u8")); !os.IsNotExist(err) {
		t.Fatal("variant playlist must not be written when every preset failed")
	}
}

func TestRunHaltPolicyStopsAfterFailure(t *testing.T) {
	runner := &recordingRunner{fail: failFor(transcoderBin, "movie_150", 2)}
	maker := hls.New(hls.WithRunner(runner))
	a := newArgs(t, preset.TierCellularMini, preset.TierCellularSlow, preset.TierCellularFast)
	a.FailurePolicy = config.FailurePolicyHalt

	report, err := maker.Run(context.Background(), a)
	if !errors.Is(err, services.ErrPartial) {
		t.Fatalf("expected ErrPartial, got %v", err)
	}
	if got := strings.Join(runner.binaries(), ","); got != "HandBrakeCLI,mediafilesegmenter,HandBrakeCLI" {
		t.Fatalf("invocations = %s", got)
	}
	if report.Succeeded() != 1 || report.Failed() != 1 || report.Skipped() != 1 {
		t.Fatalf("unexpected counts: %d/%d/%d", report.Succeeded(), report.Failed(), report.Skipped())
	}
	if report.Presets[2].Status != hls.StatusSkipped {
		t.Fatalf("expected last preset skipped, got %s", report.Presets[2].Status)
	}
}

func TestRunVerifyFailure(t *testing.T) {
	runner := &recordingRunner{}
	runner.fail = func(binary string, args []string) error {
		if binary != segmenterBin {
			return nil
		}
		// A playlist without segments passes the client's existence check
		// but not verification.
		path := filepath.Join(flagValue(args, "-f"), flagValue(args, "-i"))
		if err := os.WriteFile(path, []byte("#EXTM3U\n#EXT-X-ENDLIST\n"), 0o644); err != nil {
			return err
		}
		return nil
	}
	wrapped := &verifyRunner{inner: runner}
	maker := hls.New(hls.WithRunner(wrapped))
	a := newArgs(t, preset.TierCellularMini)

	report, err := maker.Run(context.Background(), a)
	if err == nil {
		t.Fatal("expected error")
	}
	if report.Presets[0].FailedStep != hls.StepVerify {
		t.Fatalf("failed step = %q", report.Presets[0].FailedStep)
	}
}

// verifyRunner skips the recording runner's own playlist so the empty one
// written by its fail hook survives.
type verifyRunner struct {
	inner *recordingRunner
}

func (v *verifyRunner) Run(ctx context.Context, binary string, args []string) (command.Result, error) {
	if binary == segmenterBin {
		return command.Result{Binary: binary, Args: args}, v.inner.fail(binary, args)
	}
	return v.inner.Run(ctx, binary, args)
}

func TestRunRejectsBusyOutputDirectory(t *testing.T) {
	runner := &recordingRunner{}
	a := newArgs(t, preset.TierCellularMini)
	if err := os.MkdirAll(a.OutputDirectory, 0o755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(filepath.Join(a.OutputDirectory, hls.LockFileName))
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("pre-lock failed: ok=%v err=%v", ok, err)
	}
	defer func() { _ = held.Unlock() }()

	_, err := hls.New(hls.WithRunner(runner)).Run(context.Background(), a)
	if !errors.Is(err, hls.ErrOutputBusy) || !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected ErrOutputBusy, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("expected no invocations, got %d", len(runner.calls))
	}
}

func TestRunCancelledContext(t *testing.T) {
	runner := &recordingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := hls.New(hls.WithRunner(runner)).Run(ctx, newArgs(t, preset.TierCellularMini, preset.TierWifiFast))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !report.Interrupted || report.Skipped() != 2 {
		t.Fatalf("unexpected report: %#v", report)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("expected no invocations, got %d", len(runner.calls))
	}
}

func TestRunRejectsEmptySelection(t *testing.T) {
	_, err := hls.New(hls.WithRunner(&recordingRunner{})).Run(context.Background(), newArgs(t))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRunRecordsHistoryAndMetrics(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer store.Close()

	metricsPath := filepath.Join(t.TempDir(), "hlsmaker.prom")
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	maker := hls.New(
		hls.WithRunner(&recordingRunner{fail: failFor(transcoderBin, "movie_440", 1)}),
		hls.WithHistory(store),
		hls.WithMetrics(metrics.NewRecorder(), metricsPath),
		hls.WithIDGenerator(func() string { return "run-42" }),
		hls.WithClock(func() time.Time { return clock }),
	)

	if _, err := maker.Run(context.Background(), newArgs(t, preset.TierCellularMini, preset.TierWifiSlow)); !errors.Is(err, services.ErrPartial) {
		t.Fatalf("expected ErrPartial, got %v", err)
	}

	run, err := store.GetRun(context.Background(), "run-42")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != history.StatusPartial || run.Succeeded != 1 || run.Failed != 1 {
		t.Fatalf("unexpected history run: %#v", run)
	}
	presets, err := store.Presets(context.Background(), "run-42")
	if err != nil {
		t.Fatalf("Presets: %v", err)
	}
	if len(presets) != 2 || presets[1].FailedStep != "transcode" || presets[1].ExitCode != 1 {
		t.Fatalf("unexpected history presets: %#v", presets)
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), `hlsmaker_preset_success{tier="wifi-slow"} 0`) {
		t.Fatalf("unexpected metrics:\n%s", data)
	}
}

func TestRunRecordsPresetInterruptedMidTranscode(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := &recordingRunner{fail: func(binary string, args []string) error {
		if binary != transcoderBin {
			return nil
		}
		cancel()
		return fmt.Errorf("%s interrupted: %w", binary, context.Canceled)
	}}
	maker := hls.New(
		hls.WithRunner(runner),
		hls.WithHistory(store),
		hls.WithIDGenerator(func() string { return "run-int" }),
	)

	report, err := maker.Run(ctx, newArgs(t, preset.TierCellularMini, preset.TierWifiSlow))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !report.Interrupted || report.Failed() != 1 || report.Skipped() != 1 {
		t.Fatalf("unexpected report: %#v", report)
	}

	run, err := store.GetRun(context.Background(), "run-int")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != history.StatusInterrupted {
		t.Fatalf("run status = %q, want interrupted", run.Status)
	}
	presets, err := store.Presets(context.Background(), "run-int")
	if err != nil {
		t.Fatalf("Presets: %v", err)
	}
	if len(presets) != 1 || presets[0].Tier != string(preset.TierCellularMini) || presets[0].Status != history.PresetFailed {
		t.Fatalf("unexpected history presets: %#v", presets)
	}
}
