package handbrake_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"hlsmaker/internal/command"
	"hlsmaker/internal/preset"
	"hlsmaker/internal/services/handbrake"
)

type stubRunner struct {
	calls    int
	binary   string
	args     []string
	deadline bool
	write    []byte
	err      error
}

func (s *stubRunner) Run(ctx context.Context, binary string, args []string) (command.Result, error) {
	s.calls++
	s.binary = binary
	s.args = append([]string(nil), args...)
	_, s.deadline = ctx.Deadline()
	if s.write != nil {
		for i := 0; i+1 < len(args); i++ {
			if args[i] == "-o" {
				_ = os.WriteFile(args[i+1], s.write, 0o644)
			}
		}
	}
	return command.Result{Binary: binary, Args: args}, s.err
}

func mustPreset(t *testing.T, tier preset.Tier) preset.Preset {
	t.Helper()
	p, err := preset.Lookup(tier, preset.AspectWidescreen)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	return p
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := handbrake.New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestBuildArgsWithoutAudio(t *testing.T) {
	p := mustPreset(t, preset.TierCellularMini)
	got := handbrake.BuildArgs(p, "in.mov", "out.mp4", nil)
	want := []string{
		"-i", "in.mov", "-o", "out.mp4", "-f", "av_mp4", "-O", "-e", "x264",
		"-b", "64", "-w", "398", "-l", "224", "-a", "none",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args mismatch\n got: %v\nwant: %v", got, want)
	}
}

func TestBuildArgsWithAudioAndExtras(t *testing.T) {
	p := mustPreset(t, preset.TierWifiVeryFast)
	got := handbrake.BuildArgs(p, "in.mov", "out.mp4", []string{"--two-pass"})
	want := []string{
		"-i", "in.mov", "-o", "out.mp4", "-f", "av_mp4", "-O", "-e", "x264",
		"-b", "1736", "-w", "1280", "-l", "720",
		"-E", "av_aac", "-B", "64", "-6", "stereo", "--two-pass",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args mismatch\n got: %v\nwant: %v", got, want)
	}

	mono := handbrake.BuildArgs(mustPreset(t, preset.TierCellularSlow), "in.mov", "out.mp4", nil)
	if mono[len(mono)-1] != "mono" {
		t.Fatalf("expected mono mixdown, got %v", mono)
	}
}

func TestTranscodeVerifiesOutput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "movie_240.mp4")
	runner := &stubRunner{write: []byte("mp4")}
	client, err := handbrake.New("/opt/HandBrakeCLI", handbrake.WithRunner(runner), handbrake.WithTimeout(time.Minute))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Transcode(context.Background(), mustPreset(t, preset.TierCellularFast), "in.mov", output); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if runner.calls != 1 || runner.binary != "/opt/HandBrakeCLI" {
		t.Fatalf("unexpected invocation: calls=%d binary=%q", runner.calls, runner.binary)
	}
	if !runner.deadline {
		t.Fatal("expected timeout to set a context deadline")
	}
}

func TestTranscodeFailsWhenOutputMissing(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "movie_240.mp4")
	if err := os.WriteFile(output, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	client, err := handbrake.New("HandBrakeCLI", handbrake.WithRunner(&stubRunner{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Transcode(context.Background(), mustPreset(t, preset.TierCellularFast), "in.mov", output)
	if err == nil || !strings.Contains(err.Error(), "no usable output") {
		t.Fatalf("expected missing output error, got %v", err)
	}
}

func TestTranscodeReturnsRunnerError(t *testing.T) {
	exitErr := &command.ExitError{Binary: "HandBrakeCLI", Code: 3}
	runner := &stubRunner{err: exitErr}
	client, err := handbrake.New("HandBrakeCLI", handbrake.WithRunner(runner))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Transcode(context.Background(), mustPreset(t, preset.TierWifiSlow), "in.mov", filepath.Join(t.TempDir(), "o.mp4"))
	if !errors.Is(err, exitErr) {
		t.Fatalf("expected wrapped exit error, got %v", err)
	}
	if command.ExitCodeOf(err) != 3 {
		t.Fatalf("expected exit code 3, got %d", command.ExitCodeOf(err))
	}
}

func TestTranscodeRequiresPaths(t *testing.T) {
	runner := &stubRunner{}
	client, _ := handbrake.New("HandBrakeCLI", handbrake.WithRunner(runner))
	p := mustPreset(t, preset.TierWifiSlow)
	if _, err := client.Transcode(context.Background(), p, "", "out.mp4"); err == nil {
		t.Fatal("expected error for empty source")
	}
	if _, err := client.Transcode(context.Background(), p, "in.mov", ""); err == nil {
		t.Fatal("expected error for empty output")
	}
	if runner.calls != 0 {
		t.Fatalf("runner should not be called, got %d calls", runner.calls)
	}
}
