// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/teereader"
)

const (
	maxBufferSize           = 8 * 1024 * 1024 // 8MB
	defaultProgressInterval = 500 * time.Millisecond
	maxProgressLineLength   = 200
)

var (
	// ErrBufferOverflow is returned when the output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToReadBuffer is returned when the buffer from the operating system pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrNonZeroExit is returned when the process exits with a non-zero code.
	ErrNonZeroExit = errors.New("process exited with non-zero code")
	// ErrEmptyPath is returned when the command has no executable path.
	ErrEmptyPath = errors.New("executable path is empty")
)

// commandContext is replaced in tests.
var commandContext = exec.CommandContext

// Command describes a single invocation of an external program.
type Command struct {
	Path string            // The command to run (e.g. executable full path).
	Args []string          // Arguments to the command, do not include the executable name itself.
	Cwd  string            // Working directory, empty for the current directory.
	Env  map[string]string // Extra environment variables, added to the current environment.

	// OnProgress, when set, receives the latest line of standard output whenever it changes,
	// checked every ProgressInterval. It is called from a separate goroutine.
	OnProgress       func(line string)
	ProgressInterval time.Duration
}

// Result represents the outcome of running a command.
type Result struct {
	ExitCode int           // Exit code of the process, -1 if it did not run to completion
	StdOut   []byte        // Captured standard output
	StdErr   []byte        // Captured standard error
	Duration time.Duration // Wall time from start to exit
	Error    error         // Error, if any
}

// StdErrTail returns at most the last n bytes of the trimmed standard error.
func (r *Result) StdErrTail(n int) string {
	s := strings.TrimSpace(string(r.StdErr))
	if len(s) <= n {
		return s
	}

	return s[len(s)-n:]
}

// Run starts the command and waits for it to exit.
// A non-nil Result is always returned; Result.Error is set when the process could not be started,
// exited with a non-zero code, or produced more output than can be captured.
func Run(ctx context.Context, c *Command) *Result {
	logger := ctxlog.Logger(ctx).With("path", c.Path)
	res := &Result{ExitCode: -1}

	if c.Path == "" {
		res.Error = ErrEmptyPath
		return res
	}

	cmd := commandContext(ctx, c.Path, c.Args...) //nolint:gosec
	cmd.Dir = c.Cwd
	cmd.Env = os.Environ()

	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		res.Error = errors.Join(ErrCouldNotStartProcess, err)
		return res
	}

	var (
		stdout   io.Reader = stdoutPipe
		lastLine *teereader.LastLineReader
	)

	if c.OnProgress != nil {
		lastLine = teereader.New(stdoutPipe)
		stdout = lastLine
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		res.Error = errors.Join(ErrCouldNotStartProcess, err)
		return res
	}

	logger.Debug("starting process", "cwd", c.Cwd, "args", c.Args)

	start := time.Now()

	if err := cmd.Start(); err != nil {
		res.Error = errors.Join(ErrCouldNotStartProcess, err)
		return res
	}

	logger.Debug("process started", "pid", cmd.Process.Pid)

	var (
		wg             sync.WaitGroup
		outErr, errErr error
	)

	stopProgress := func() {}

	if lastLine != nil {
		stopProgress = watchProgress(lastLine, c.ProgressInterval, c.OnProgress)
	}

	// Both pipes must be drained before Wait, otherwise a chatty child can block forever.
	wg.Add(2)

	go func() {
		defer wg.Done()

		res.StdOut, outErr = readAllUpToMax(ctx, stdout, maxBufferSize)
	}()

	go func() {
		defer wg.Done()

		res.StdErr, errErr = readAllUpToMax(ctx, stderr, maxBufferSize)
	}()

	wg.Wait()
	stopProgress()

	waitErr := cmd.Wait()
	res.Duration = time.Since(start)
	res.ExitCode = cmd.ProcessState.ExitCode()

	logger.Debug("process finished", "exitCode", res.ExitCode, "duration", res.Duration.String())

	var exitErr *exec.ExitError

	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr) && res.ExitCode > 0:
		res.Error = fmt.Errorf("%w: %d", ErrNonZeroExit, res.ExitCode)
	default:
		res.Error = waitErr
		res.ExitCode = -1
	}

	if outErr != nil || errErr != nil {
		res.Error = errors.Join(res.Error, outErr, errErr)
	}

	return res
}

// watchProgress calls fn with each new last line until the returned stop function is called.
// Stop blocks until fn is no longer running.
func watchProgress(lr *teereader.LastLineReader, interval time.Duration, fn func(string)) func() {
	if interval <= 0 {
		interval = defaultProgressInterval
	}

	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last string

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if line := lr.LastLine(maxProgressLineLength); line != "" && line != last {
					last = line
					fn(line)
				}
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}

// readAllUpToMax reads r until EOF, keeping at most maxBufferSize bytes.
// Any output beyond the limit is discarded so that the writer never blocks.
func readAllUpToMax(ctx context.Context, r io.Reader, maxBufferSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxBufferSize+1)
	if err != nil && err != io.EOF {
		return buf.Bytes(), errors.Join(ErrFailedToReadBuffer, err)
	}

	if n > maxBufferSize {
		ctxlog.Logger(ctx).Debug(
			"buffer overflow in readAllUpToMax",
			"bytesRead", n,
			"maxBytes", maxBufferSize,
		)

		_, _ = io.Copy(io.Discard, r)

		return buf.Bytes()[:maxBufferSize], ErrBufferOverflow
	}

	return buf.Bytes(), nil
}
