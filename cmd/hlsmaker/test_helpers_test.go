package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"hlsmaker/internal/config"
	"hlsmaker/internal/testsupport"
)

const (
	stubTranscoder = `printf 'mp4' > "$4"`
	stubSegmenter  = `printf '#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXTINF:10,\nseg0.ts\n#EXT-X-ENDLIST\n' > "$5/$7"`
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	source     string
	output     string
}

func setupCLITestEnv(t *testing.T, transcoderBody, segmenterBody string) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedTools(transcoderBody, segmenterBody))
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	source := filepath.Join(base, "media", "clip.mov")
	testsupport.WriteFile(t, source, 1024)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		source:     source,
		output:     filepath.Join(base, "out"),
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// errorLines returns the stderr lines that report an argument error.
func errorLines(stderr string) []string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		if strings.HasPrefix(line, "error: ") {
			lines = append(lines, line)
		}
	}
	return lines
}
