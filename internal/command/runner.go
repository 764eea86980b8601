package command

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const stderrTailLines = 20

// Result captures the observable outcome of one invocation.
type Result struct {
	Binary    string
	Args      []string
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	Truncated bool
}

// CommandLine renders the invocation for logs.
func (r Result) CommandLine() string {
	return FormatCommandLine(r.Binary, r.Args)
}

// Runner executes a binary and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (Result, error)
}

// ExitError reports an invocation that exited non-zero.
type ExitError struct {
	Binary string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Binary, e.Code)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// ExitCodeOf returns the exit code carried by err, or -1 when err does not
// come from a process exit.
func ExitCodeOf(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct {
	// MaxStdout caps captured stdout in bytes. Zero means unlimited.
	MaxStdout int
	// OnLine, when set, receives every stdout and stderr line as it arrives.
	// It is called from both stream readers and must be safe for concurrent use.
	OnLine func(stream, line string)
	// Dir is the working directory for the child process.
	Dir string
}

// Run starts binary with args and waits for it to finish.
func (r ExecRunner) Run(ctx context.Context, binary string, args []string) (Result, error) {
	result := Result{Binary: binary, Args: append([]string(nil), args...)}

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Dir = r.Dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return result, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return result, fmt.Errorf("stderr pipe: %w", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return result, fmt.Errorf("start %s: %w", binary, err)
	}

	out := &cappedBuffer{limit: r.MaxStdout}
	tail := &tailBuffer{max: stderrTailLines}

	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(reader io.Reader, stream string, sink func(string)) {
		defer wg.Done()
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			sink(line)
			if r.OnLine != nil {
				r.OnLine(stream, line)
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
			// Keep draining so the child never blocks on a full pipe.
			_, _ = io.Copy(io.Discard, reader)
		}
	}

	wg.Add(2)
	go scan(stdout, "stdout", out.writeLine)
	go scan(stderr, "stderr", tail.add)
	wg.Wait()

	waitErr := cmd.Wait()
	result.Duration = time.Since(start)
	result.Stdout = out.String()
	result.Truncated = out.truncated
	result.Stderr = tail.String()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, &ExitError{Binary: binary, Code: result.ExitCode, Stderr: result.Stderr}
		}
		result.ExitCode = -1
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%s interrupted: %w", binary, ctxErr)
		}
		return result, fmt.Errorf("wait %s: %w", binary, waitErr)
	}
	if scanErr != nil {
		return result, fmt.Errorf("scan output: %w", scanErr)
	}
	return result, nil
}

// FormatCommandLine quotes arguments containing whitespace so the result can
// be pasted into a shell.
func FormatCommandLine(binary string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, part := range append([]string{binary}, args...) {
		if part == "" || strings.ContainsAny(part, " \t\"'") {
			part = fmt.Sprintf("%q", part)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (c *cappedBuffer) writeLine(line string) {
	if c.truncated {
		return
	}
	if c.limit > 0 && c.buf.Len()+len(line)+1 > c.limit {
		remaining := c.limit - c.buf.Len()
		if remaining > 0 {
			c.buf.WriteString(line[:min(remaining, len(line))])
		}
		c.truncated = true
		return
	}
	c.buf.WriteString(line)
	c.buf.WriteByte('\n')
}

func (c *cappedBuffer) String() string { return c.buf.String() }

type tailBuffer struct {
	lines []string
	max   int
}

func (t *tailBuffer) add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *tailBuffer) String() string { return strings.Join(t.lines, "\n") }

func lastLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return text
}
