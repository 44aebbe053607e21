// --- START OF FINAL REVISED FILE internal/cli/runner/runner.go ---
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/brandonaviram/proof/pkg/proof"
)

const (
	// maxLogOutputBytes limits the size of stderr copied into log records.
	maxLogOutputBytes = 1024
	// maxToolReadBytes caps captured stdout/stderr per invocation.
	maxToolReadBytes = 10 * 1024 * 1024
)

// execToolRunner implements proof.ToolRunner using os/exec.
type execToolRunner struct {
	logger *slog.Logger
}

// NewExecToolRunner creates a runner that executes tools as child processes.
func NewExecToolRunner(loggerHandler slog.Handler) proof.ToolRunner { // minimal comment
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "toolRunner"))
	return &execToolRunner{logger: logger}
}

// Run executes cmd and captures its output. Errors wrap proof.ErrToolNotFound
// when the executable cannot be started, proof.ErrToolCancelled when ctx ends
// first, and proof.ErrToolNonZeroExit (with ExitCode set) on failure exits.
// Captured output is returned in every case.
func (r *execToolRunner) Run(ctx context.Context, cmd proof.ToolCommand) (proof.ToolResult, error) { // minimal comment
	logArgs := []any{slog.String("tool", cmd.Name)}
	if cmd.Dir != "" {
		logArgs = append(logArgs, slog.String("dir", cmd.Dir))
	}
	res := proof.ToolResult{ExitCode: -1}

	if cmd.Name == "" {
		return res, fmt.Errorf("%w: tool name cannot be empty", proof.ErrToolNotFound)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	stdoutPipe, err := c.StdoutPipe()
	if err != nil {
		return res, fmt.Errorf("failed to create stdout pipe for '%s': %w", cmd.Name, err)
	}
	stderrPipe, err := c.StderrPipe()
	if err != nil {
		return res, fmt.Errorf("failed to create stderr pipe for '%s': %w", cmd.Name, err)
	}

	if startErr := c.Start(); startErr != nil {
		r.logger.Debug("Failed to start tool", append(logArgs, slog.Any("error", startErr))...)
		if ctx.Err() != nil {
			return res, fmt.Errorf("%w: '%s': %w", proof.ErrToolCancelled, cmd.Name, ctx.Err())
		}
		return res, fmt.Errorf("%w: '%s': %w", proof.ErrToolNotFound, cmd.Name, startErr)
	}
	r.logger.Debug("Tool process started", append(logArgs, slog.String("args", strings.Join(cmd.Args, " ")))...)

	var wg sync.WaitGroup
	capture := func(src io.Reader, dst *[]byte, stream string) {
		defer wg.Done()
		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(src, maxToolReadBytes))
		if err == nil && n >= maxToolReadBytes {
			r.logger.Warn("Tool output truncated", append(logArgs, slog.String("stream", stream), slog.Int64("limit_bytes", maxToolReadBytes))...)
			// Drain the rest so the process can exit.
			_, _ = io.Copy(io.Discard, src)
		} else if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			r.logger.Warn("Error reading tool output", append(logArgs, slog.String("stream", stream), slog.Any("error", err))...)
		}
		*dst = buf.Bytes()
	}
	wg.Add(2)
	go capture(stdoutPipe, &res.Stdout, "stdout")
	go capture(stderrPipe, &res.Stderr, "stderr")
	// Pipes must be fully read before Wait closes them.
	wg.Wait()
	waitErr := c.Wait()

	if ctx.Err() != nil {
		r.logger.Debug("Tool execution cancelled", append(logArgs, slog.Any("error", ctx.Err()))...)
		return res, fmt.Errorf("%w: '%s': %w", proof.ErrToolCancelled, cmd.Name, ctx.Err())
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
		logArgs = append(logArgs, slog.Int("exitCode", res.ExitCode))
		if stderr := strings.TrimSpace(string(res.Stderr)); stderr != "" {
			logArgs = append(logArgs, slog.String("stderr", truncate(stderr, maxLogOutputBytes)))
		}
		r.logger.Debug("Tool exited with failure", logArgs...)
		return res, fmt.Errorf("%w: '%s' exited with code %d: %w", proof.ErrToolNonZeroExit, cmd.Name, res.ExitCode, waitErr)
	}

	res.ExitCode = 0
	return res, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

// --- END OF FINAL REVISED FILE internal/cli/runner/runner.go ---
