// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package procexec

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/teereader"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRun_Success(t *testing.T) {
	skipOnWindows(t)

	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)

	res := Run(ctx, &Command{
		Path: "/bin/echo",
		Args: []string{"hello"},
	})

	require.NoError(t, res.Error)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, string(res.StdOut), "hello")
}

func TestRun_EnvAndCwd(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()

	res := Run(context.Background(), &Command{
		Path: "/bin/sh",
		Args: []string{"-c", `echo "$TREEBATCH_TEST_VAR"; pwd`},
		Cwd:  dir,
		Env:  map[string]string{"TREEBATCH_TEST_VAR": "forest"},
	})

	require.NoError(t, res.Error)

	lines := strings.Split(strings.TrimSpace(string(res.StdOut)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "forest", lines[0])
	assert.Contains(t, lines[1], dir[strings.LastIndex(dir, "/")+1:])
}

func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	res := Run(context.Background(), &Command{
		Path: "/bin/sh",
		Args: []string{"-c", "echo broken >&2; exit 3"},
	})

	require.ErrorIs(t, res.Error, ErrNonZeroExit)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "broken\n", string(res.StdErr))
	assert.Equal(t, "broken", res.StdErrTail(64))
}

func TestResult_StdErrTail(t *testing.T) {
	assert.Equal(t, "abc", (&Result{StdErr: []byte("  abc\n")}).StdErrTail(10))
	assert.Equal(t, "cde", (&Result{StdErr: []byte("abcde")}).StdErrTail(3))
	assert.Empty(t, (&Result{}).StdErrTail(10))
}

func TestRun_NotFound(t *testing.T) {
	res := Run(context.Background(), &Command{
		Path: "/not/a/real/command",
	})

	require.ErrorIs(t, res.Error, ErrCouldNotStartProcess)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRun_EmptyPath(t *testing.T) {
	res := Run(context.Background(), &Command{})

	require.ErrorIs(t, res.Error, ErrEmptyPath)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRun_CommandContextStubbed(t *testing.T) {
	skipOnWindows(t)

	var gotName string

	var gotArgs []string

	stubs := gostub.Stub(&commandContext, func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotName = name
		gotArgs = args

		return exec.CommandContext(ctx, "/bin/sh", "-c", "exit 0")
	})
	defer stubs.Reset()

	res := Run(context.Background(), &Command{
		Path: "ffmpeg",
		Args: []string{"-y", "-i", "in.png"},
	})

	require.NoError(t, res.Error)
	assert.Equal(t, "ffmpeg", gotName)
	assert.Equal(t, []string{"-y", "-i", "in.png"}, gotArgs)
}

func TestReadAllUpToMax(t *testing.T) {
	ctx := context.Background()

	t.Run("within limit", func(t *testing.T) {
		b, err := readAllUpToMax(ctx, strings.NewReader("abc"), 10)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(b))
	})

	t.Run("exactly at limit", func(t *testing.T) {
		b, err := readAllUpToMax(ctx, strings.NewReader("abcde"), 5)
		require.NoError(t, err)
		assert.Equal(t, "abcde", string(b))
	})

	t.Run("overflow", func(t *testing.T) {
		b, err := readAllUpToMax(ctx, strings.NewReader("abcdefgh"), 5)
		require.ErrorIs(t, err, ErrBufferOverflow)
		assert.Equal(t, "abcde", string(b))
	})

	t.Run("read error", func(t *testing.T) {
		_, err := readAllUpToMax(ctx, iotest.ErrReader(errors.New("boom")), 5)
		require.ErrorIs(t, err, ErrFailedToReadBuffer)
	})
}

func TestRun_Progress(t *testing.T) {
	skipOnWindows(t)

	var (
		mu    sync.Mutex
		lines []string
	)

	res := Run(context.Background(), &Command{
		Path:             "/bin/sh",
		Args:             []string{"-c", "echo step 1; sleep 0.2; echo step 2; sleep 0.2"},
		ProgressInterval: 10 * time.Millisecond,
		OnProgress: func(line string) {
			mu.Lock()
			defer mu.Unlock()

			lines = append(lines, line)
		},
	})

	require.NoError(t, res.Error)
	assert.Equal(t, "step 1\nstep 2\n", string(res.StdOut))

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"step 1", "step 2"}, lines)
}

func TestWatchProgress_StopWaits(t *testing.T) {
	lr := teereader.New(strings.NewReader("ready\n"))
	_, err := io.ReadAll(lr)
	require.NoError(t, err)

	var calls atomic.Int32

	stop := watchProgress(lr, time.Millisecond, func(line string) {
		assert.Equal(t, "ready", line)
		calls.Add(1)
	})

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	stop()

	// An unchanged line is reported once.
	assert.Equal(t, int32(1), calls.Load())
}
