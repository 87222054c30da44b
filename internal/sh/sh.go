package sh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"ghsync/internal/log"
)

type DirectoryPath string

// waitDelay bounds how long a finished or killed command may keep its output pipes
// open through a descendant, such as an ssh ControlMaster forked by git.
var waitDelay = 3 * time.Second

// CommandError describes a subprocess that failed or printed something it should not have.
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	return e.Describe(true)
}

// Describe renders the captured output followed by "<command> exited with <rc>".
// Unless verbose, only the first two words of the command are shown ("git pull").
func (e *CommandError) Describe(verbose bool) string {
	command := e.Args
	if !verbose && len(command) > 2 {
		command = command[:2]
	}
	summary := fmt.Sprintf("%s exited with %d", strings.Join(command, " "), e.ExitCode)
	output := strings.TrimRight(e.Output, "\n")
	if output == "" {
		return summary
	}
	return output + "\n" + summary
}

// Run executes args[0] with the remaining arguments in cwd and returns its trimmed stdout.
// A non-zero exit status is returned as a *CommandError carrying stderr.
func Run(ctx context.Context, cwd DirectoryPath, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	exitCode, err := run(ctx, cwd, &stdout, &stderr, args)
	if err != nil {
		return "", err
	}
	if exitCode != 0 {
		return "", &CommandError{Args: args, ExitCode: exitCode, Output: stderr.String()}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Status executes a command that is expected to be silent and only reports through
// its exit status, e.g. "git diff --quiet".
func Status(ctx context.Context, cwd DirectoryPath, args ...string) (int, error) {
	var output bytes.Buffer
	exitCode, err := run(ctx, cwd, &output, &output, args)
	if err != nil {
		return exitCode, err
	}
	if exitCode > 1 || output.Len() > 0 {
		return exitCode, &CommandError{Args: args, ExitCode: exitCode, Output: output.String()}
	}
	return exitCode, nil
}

// Quiet executes a command that must succeed without printing anything
// (stdout and stderr are combined), e.g. "git clone -q".
func Quiet(ctx context.Context, cwd DirectoryPath, args ...string) error {
	var output bytes.Buffer
	exitCode, err := run(ctx, cwd, &output, &output, args)
	if err != nil {
		return err
	}
	if exitCode != 0 || output.Len() > 0 {
		return &CommandError{Args: args, ExitCode: exitCode, Output: output.String()}
	}
	return nil
}

func run(ctx context.Context, cwd DirectoryPath, stdout, stderr *bytes.Buffer, args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("no command given")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = string(cwd)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	start := time.Now()
	err := cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) && ctx.Err() == nil {
		// the command itself succeeded, only a descendant still holds the pipes
		logger.Log.Debugf("%s left a background process holding its output open", strings.Join(args, " "))
		err = nil
	}
	logger.Log.Debugf("%s in %s: %v (%.2fs)", strings.Join(args, " "), cwd, err, time.Since(start).Seconds())
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return exitErr.ExitCode(), fmt.Errorf("%s: %w", strings.Join(args, " "), ctx.Err())
		}
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return -1, fmt.Errorf("%s: %w", strings.Join(args, " "), ctx.Err())
		}
		return -1, fmt.Errorf("%s: %w", strings.Join(args, " "), err)
	}
	return 0, nil
}
