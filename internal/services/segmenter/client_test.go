package segmenter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"hlsmaker/internal/command"
	"hlsmaker/internal/services/segmenter"
)

type stubRunner struct {
	calls      int
	args       []string
	writeIndex bool
	err        error
}

func (s *stubRunner) Run(_ context.Context, binary string, args []string) (command.Result, error) {
	s.calls++
	s.args = append([]string(nil), args...)
	if s.writeIndex {
		var dir, index string
		for i := 0; i+1 < len(args); i++ {
			switch args[i] {
			case "-f":
				dir = args[i+1]
			case "-i":
				index = args[i+1]
			}
		}
		_ = os.WriteFile(filepath.Join(dir, index), []byte("#EXTM3U\n"), 0o644)
	}
	return command.Result{Binary: binary, Args: args}, s.err
}

func TestBuildArgs(t *testing.T) {
	got := segmenter.BuildArgs("/out/movie_240.mp4", "/out/movie_240", "movie_240.m3u8", "movie_240", 6, []string{"-z", "none"})
	want := []string{
		"-q", "-t", "6", "-f", "/out/movie_240", "-i", "movie_240.m3u8",
		"-B", "movie_240", "-z", "none", "/out/movie_240.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("args mismatch\n got: %v\nwant: %v", got, want)
	}

	defaults := segmenter.BuildArgs("in.mp4", "d", "i.m3u8", "", 0, nil)
	if defaults[2] != "10" {
		t.Fatalf("expected default target duration, got %v", defaults)
	}
	for _, arg := range defaults {
		if arg == "-B" {
			t.Fatalf("expected no -B without base name, got %v", defaults)
		}
	}
}

func TestSegmentCreatesDirectoryAndChecksIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "movie_240")
	runner := &stubRunner{writeIndex: true}
	client, err := segmenter.New("mediafilesegmenter", segmenter.WithRunner(runner), segmenter.WithTargetDuration(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Segment(context.Background(), "movie_240.mp4", dir, "movie_240.m3u8", "movie_240"); err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("expected one call, got %d", runner.calls)
	}
	if runner.args[2] != "4" {
		t.Fatalf("expected target duration 4, got %v", runner.args)
	}
	if runner.args[len(runner.args)-1] != "movie_240.mp4" {
		t.Fatalf("expected input last, got %v", runner.args)
	}
}

func TestSegmentFailsWithoutIndex(t *testing.T) {
	client, err := segmenter.New("mediafilesegmenter", segmenter.WithRunner(&stubRunner{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Segment(context.Background(), "in.mp4", t.TempDir(), "in.m3u8", "in")
	if err == nil || !strings.Contains(err.Error(), "media playlist missing") {
		t.Fatalf("expected missing playlist error, got %v", err)
	}
}

func TestSegmentReturnsRunnerError(t *testing.T) {
	exitErr := &command.ExitError{Binary: "mediafilesegmenter", Code: 1, Stderr: "bad input"}
	client, err := segmenter.New("mediafilesegmenter", segmenter.WithRunner(&stubRunner{err: exitErr}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Segment(context.Background(), "in.mp4", t.TempDir(), "in.m3u8", "in")
	if !errors.Is(err, exitErr) {
		t.Fatalf("expected wrapped exit error, got %v", err)
	}
}

func TestSegmentValidatesArguments(t *testing.T) {
	runner := &stubRunner{}
	client, err := segmenter.New("mediafilesegmenter", segmenter.WithRunner(runner))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Segment(context.Background(), "", t.TempDir(), "i.m3u8", "b"); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := client.Segment(context.Background(), "in.mp4", "", "i.m3u8", "b"); err == nil {
		t.Fatal("expected error for empty directory")
	}
	if runner.calls != 0 {
		t.Fatalf("runner should not be called, got %d", runner.calls)
	}
	if _, err := segmenter.New(""); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
