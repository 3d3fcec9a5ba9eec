package ffmpeg

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
)

// Executor abstracts command execution for testability.
type Executor interface {
	// Run executes the binary, forwarding each output line to onLine.
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
	// Output executes the binary and returns captured stdout bytes.
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// Runner invokes a fixed ffmpeg binary.
type Runner struct {
	binary string
	exec   Executor
}

// NewRunner constructs a runner for the given ffmpeg binary.
func NewRunner(binary string, opts ...Option) (*Runner, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	runner := &Runner{binary: binary, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// Binary returns the configured ffmpeg executable.
func (r *Runner) Binary() string {
	return r.binary
}

// Run executes ffmpeg with the given arguments. Output lines stream to
// onLine when provided; otherwise they are discarded. A nonzero exit carries
// the tail of the process output in the returned error.
func (r *Runner) Run(ctx context.Context, args []string, onLine func(string)) error {
	return r.exec.Run(ctx, r.binary, args, onLine)
}

// Output executes ffmpeg and returns its stdout, for pipe: outputs such as
// single-frame extraction.
func (r *Runner) Output(ctx context.Context, args []string) ([]byte, error) {
	return r.exec.Output(ctx, r.binary, args)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	var tail tailBuffer
	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 512*1024)
		for scanner.Scan() {
			line := scanner.Text()
			tail.add(line)
			if onLine != nil {
				onLine(line)
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if detail := tail.String(); detail != "" {
			return fmt.Errorf("%s: %w: %s", binary, err, detail)
		}
		return fmt.Errorf("%s: %w", binary, err)
	}
	return nil
}

func (commandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > maxTailBytes {
			detail = "..." + detail[len(detail)-maxTailBytes:]
		}
		if detail != "" {
			return nil, fmt.Errorf("%s: %w: %s", binary, err, detail)
		}
		return nil, fmt.Errorf("%s: %w", binary, err)
	}
	return stdout.Bytes(), nil
}

const (
	maxTailLines = 12
	maxTailBytes = 2048
)

// tailBuffer retains the last few output lines for error reporting.
type tailBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (t *tailBuffer) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > maxTailLines {
		t.lines = t.lines[len(t.lines)-maxTailLines:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	joined := strings.Join(t.lines, " | ")
	if len(joined) > maxTailBytes {
		joined = "..." + joined[len(joined)-maxTailBytes:]
	}
	return joined
}
