package ffmpeg_test

import (
	"context"
	"strings"
	"testing"

	"easel/internal/media/ffmpeg"
)

func TestNewRunnerRequiresBinary(t *testing.T) {
	if _, err := ffmpeg.NewRunner("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestRunStreamsLines(t *testing.T) {
	runner, err := ffmpeg.NewRunner("/bin/sh")
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	var lines []string
	err = runner.Run(context.Background(), []string{"-c", "echo one; echo two 1>&2"}, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "one") || !strings.Contains(joined, "two") {
		t.Fatalf("expected both streams captured, got %q", joined)
	}
}

func TestRunSurfacesExitFailureWithTail(t *testing.T) {
	runner, err := ffmpeg.NewRunner("/bin/sh")
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	err = runner.Run(context.Background(), []string{"-c", "echo broken filter graph 1>&2; exit 1"}, nil)
	if err == nil {
		t.Fatal("expected error for nonzero exit")
	}
	if !strings.Contains(err.Error(), "broken filter graph") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
}

func TestOutputCapturesStdout(t *testing.T) {
	runner, err := ffmpeg.NewRunner("/bin/sh")
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	out, err := runner.Output(context.Background(), []string{"-c", "printf 'frame-bytes'"})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if string(out) != "frame-bytes" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestOutputFailureIncludesStderr(t *testing.T) {
	runner, err := ffmpeg.NewRunner("/bin/sh")
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	_, err = runner.Output(context.Background(), []string{"-c", "echo no such file 1>&2; exit 2"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no such file") {
		t.Fatalf("expected stderr detail, got %v", err)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	runner, err := ffmpeg.NewRunner("/bin/sh")
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx, []string{"-c", "sleep 5"}, nil); err == nil {
		t.Fatal("expected canceled context to fail the run")
	}
}

type fakeExecutor struct {
	binary string
	args   []string
	out    []byte
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string, _ func(string)) error {
	f.binary = binary
	f.args = args
	return nil
}

func (f *fakeExecutor) Output(_ context.Context, binary string, args []string) ([]byte, error) {
	f.binary = binary
	f.args = args
	return f.out, nil
}

func TestWithExecutorInjectsFake(t *testing.T) {
	fake := &fakeExecutor{out: []byte("png")}
	runner, err := ffmpeg.NewRunner("ffmpeg", ffmpeg.WithExecutor(fake))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if err := runner.Run(context.Background(), []string{"-i", "in.mp4"}, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fake.binary != "ffmpeg" || len(fake.args) != 2 {
		t.Fatalf("fake not invoked as expected: %q %v", fake.binary, fake.args)
	}
	out, err := runner.Output(context.Background(), []string{"-f", "image2pipe"})
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if string(out) != "png" {
		t.Fatalf("unexpected output: %q", out)
	}
}
