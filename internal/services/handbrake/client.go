package handbrake

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hlsmaker/internal/command"
	"hlsmaker/internal/fileutil"
	"hlsmaker/internal/preset"
)

const (
	container    = "av_mp4"
	videoEncoder = "x264"
	audioEncoder = "av_aac"
)

// Transcoder defines the behaviour required by the orchestrator.
type Transcoder interface {
	Transcode(ctx context.Context, p preset.Preset, source, output string) (command.Result, error)
}

// Option configures the client.
type Option func(*Client)

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(runner command.Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// WithExtraArgs appends arguments to every invocation after the preset flags.
func WithExtraArgs(args []string) Option {
	return func(c *Client) {
		c.extraArgs = append([]string(nil), args...)
	}
}

// WithTimeout bounds each invocation. Zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client wraps HandBrakeCLI interactions.
type Client struct {
	binary    string
	extraArgs []string
	timeout   time.Duration
	runner    command.Runner
}

// New constructs a HandBrakeCLI client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("handbrake binary required")
	}
	client := &Client{
		binary: binary,
		runner: command.ExecRunner{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the executable path the client invokes.
func (c *Client) Binary() string {
	return c.binary
}

// Transcode encodes source into output using the preset's dimensions and
// bit rates. The output must exist and be non-empty when the tool reports
// success.
func (c *Client) Transcode(ctx context.Context, p preset.Preset, source, output string) (command.Result, error) {
	if source == "" {
		return command.Result{}, errors.New("source path required")
	}
	if output == "" {
		return command.Result{}, errors.New("output path required")
	}
	if err := fileutil.RemoveIfExists(output); err != nil {
		return command.Result{}, fmt.Errorf("remove stale output: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.runner.Run(runCtx, c.binary, BuildArgs(p, source, output, c.extraArgs))
	if err != nil {
		return result, fmt.Errorf("handbrake %s: %w", p.Tier, err)
	}
	if _, err := fileutil.RequireNonEmptyFile(output); err != nil {
		return result, fmt.Errorf("handbrake %s produced no usable output: %w", p.Tier, err)
	}
	return result, nil
}

// BuildArgs returns the HandBrakeCLI argument list for one preset.
func BuildArgs(p preset.Preset, source, output string, extra []string) []string {
	args := []string{
		"-i", source,
		"-o", output,
		"-f", container,
		"-O",
		"-e", videoEncoder,
		"-b", strconv.Itoa(p.VideoKbps),
		"-w", strconv.Itoa(p.Width),
		"-l", strconv.Itoa(p.Height),
	}
	if !p.HasAudio {
		args = append(args, "-a", "none")
	} else {
		args = append(args,
			"-E", audioEncoder,
			"-B", strconv.Itoa(p.AudioKbps),
			"-6", p.Mixdown(),
		)
	}
	return append(args, extra...)
}
