package sh

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandError_Describe(t *testing.T) {
	err := &CommandError{
		Args:     []string{"git", "pull", "-q", "--ff-only"},
		ExitCode: 1,
		Output:   "fatal: Not possible to fast-forward, aborting.\n",
	}

	assert.Equal(t, "fatal: Not possible to fast-forward, aborting.\ngit pull exited with 1", err.Describe(false))
	assert.Equal(t, "fatal: Not possible to fast-forward, aborting.\ngit pull -q --ff-only exited with 1", err.Describe(true))
	assert.Equal(t, err.Describe(true), err.Error())

	silent := &CommandError{Args: []string{"git", "fail"}, ExitCode: 0, Output: ""}
	assert.Equal(t, "git fail exited with 0", silent.Describe(false))
}

func TestRun(t *testing.T) {
	requireShell(t)
	ctx := context.Background()
	dir := DirectoryPath(t.TempDir())

	out, err := Run(ctx, dir, "sh", "-c", "echo '  hello  '")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = Run(ctx, dir, "sh", "-c", "echo uh oh >&2; exit 3")
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "uh oh\n", cmdErr.Output)
}

func TestStatus(t *testing.T) {
	requireShell(t)
	ctx := context.Background()
	dir := DirectoryPath(t.TempDir())

	code, err := Status(ctx, dir, "sh", "-c", "exit 1")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	code, err = Status(ctx, dir, "sh", "-c", "exit 0")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	_, err = Status(ctx, dir, "sh", "-c", "echo unexpected")
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "unexpected\n", cmdErr.Output)
}

func TestQuiet(t *testing.T) {
	requireShell(t)
	ctx := context.Background()
	dir := DirectoryPath(t.TempDir())

	require.NoError(t, Quiet(ctx, dir, "sh", "-c", "true"))

	err := Quiet(ctx, dir, "sh", "-c", "echo chatty")
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 0, cmdErr.ExitCode)
}

func TestRun_MissingBinary(t *testing.T) {
	_, err := Run(context.Background(), DirectoryPath(t.TempDir()), "definitely-not-a-real-binary-ghsync")
	require.Error(t, err)
	var cmdErr *CommandError
	assert.False(t, errors.As(err, &cmdErr))
}

func shortWaitDelay(t *testing.T) {
	t.Helper()
	previous := waitDelay
	waitDelay = 200 * time.Millisecond
	t.Cleanup(func() { waitDelay = previous })
}

func TestRun_CancelWithBackgroundChildHoldingOutput(t *testing.T) {
	requireShell(t)
	shortWaitDelay(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()

	_, err := Run(ctx, DirectoryPath(t.TempDir()), "sh", "-c", "sleep 5 & sleep 10")

	assert.Less(t, time.Since(start), 3*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQuiet_BackgroundChildHoldingOutput(t *testing.T) {
	requireShell(t)
	shortWaitDelay(t)
	start := time.Now()

	err := Quiet(context.Background(), DirectoryPath(t.TempDir()), "sh", "-c", "sleep 5 &")

	assert.NoError(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}
