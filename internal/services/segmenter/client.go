package segmenter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hlsmaker/internal/command"
	"hlsmaker/internal/fileutil"
)

// DefaultTargetDuration is the segment length in seconds used when none is configured.
const DefaultTargetDuration = 10

// Segmenter defines the behaviour required by the orchestrator.
type Segmenter interface {
	Segment(ctx context.Context, input, dir, indexName, baseName string) (command.Result, error)
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

// WithExtraArgs appends arguments before the input file.
func WithExtraArgs(args []string) Option {
	return func(c *Client) {
		c.extraArgs = append([]string(nil), args...)
	}
}

// WithTargetDuration sets the segment length in seconds.
func WithTargetDuration(seconds int) Option {
	return func(c *Client) {
		if seconds > 0 {
			c.targetDuration = seconds
		}
	}
}

// WithTimeout bounds each invocation. Zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client wraps mediafilesegmenter interactions.
type Client struct {
	binary         string
	extraArgs      []string
	targetDuration int
	timeout        time.Duration
	runner         command.Runner
}

// New constructs a segmenter client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("segmenter binary required")
	}
	client := &Client{
		binary:         binary,
		targetDuration: DefaultTargetDuration,
		runner:         command.ExecRunner{},
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

// Segment splits input into dir, writing indexName as the media playlist and
// naming segments after baseName. The playlist must exist afterwards.
func (c *Client) Segment(ctx context.Context, input, dir, indexName, baseName string) (command.Result, error) {
	if input == "" {
		return command.Result{}, errors.New("input path required")
	}
	if dir == "" || indexName == "" {
		return command.Result{}, errors.New("segment directory and index name required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return command.Result{}, fmt.Errorf("create segment directory: %w", err)
	}
	index := filepath.Join(dir, indexName)
	if err := fileutil.RemoveIfExists(index); err != nil {
		return command.Result{}, fmt.Errorf("remove stale playlist: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := BuildArgs(input, dir, indexName, baseName, c.targetDuration, c.extraArgs)
	result, err := c.runner.Run(runCtx, c.binary, args)
	if err != nil {
		return result, fmt.Errorf("segment %s: %w", filepath.Base(input), err)
	}
	if _, err := fileutil.RequireNonEmptyFile(index); err != nil {
		return result, fmt.Errorf("segment %s: media playlist missing: %w", filepath.Base(input), err)
	}
	return result, nil
}

// BuildArgs returns the mediafilesegmenter argument list.
func BuildArgs(input, dir, indexName, baseName string, targetDuration int, extra []string) []string {
	if targetDuration <= 0 {
		targetDuration = DefaultTargetDuration
	}
	args := []string{
		"-q",
		"-t", strconv.Itoa(targetDuration),
		"-f", dir,
		"-i", indexName,
	}
	if baseName != "" {
		args = append(args, "-B", baseName)
	}
	args = append(args, extra...)
	return append(args, input)
}
