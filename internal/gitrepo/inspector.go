package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ghsync/internal/color"
	"ghsync/internal/log"
	"ghsync/internal/sh"
)

const interruptedDetail = "interrupted"

type InspectorOptions struct {
	DryRun bool
	// Diagnostics enables the checks that are noisy in day to day use: untracked files and remote URL.
	Diagnostics bool
	// VerboseErrors shows the full command line of a failed git command instead of "git <subcommand>".
	VerboseErrors bool
	// Interrupted is polled between steps; once it returns true the remaining steps are skipped.
	Interrupted func() bool
}

// Inspector brings one working tree up to date and classifies what it finds there.
type Inspector struct {
	git     Git
	options InspectorOptions
	since   func(time.Time) time.Duration
}

func NewInspector(git Git, options InspectorOptions) *Inspector {
	if options.Interrupted == nil {
		options.Interrupted = func() bool { return false }
	}
	return &Inspector{git: git, options: options, since: time.Since}
}

// Sync clones or updates the task's working tree and returns exactly one Outcome.
// Failures never escape, they are reported as Action Failed with a Detail.
func (i *Inspector) Sync(ctx context.Context, task Task) Outcome {
	start := time.Now()
	outcome := Outcome{Name: task.Repository.Name}
	i.sync(ctx, task, &outcome)
	outcome.Elapsed = i.since(start)
	if outcome.Action == Failed {
		logger.Log.Warnf("Sync of %s failed: %s", color.FgRed(task.Repository.Name), outcome.Detail)
	} else {
		logger.Log.Debugf("Sync of %s: %s %s", task.Repository.Name, outcome.Action, outcome.Flags)
	}
	return outcome
}

func (i *Inspector) sync(ctx context.Context, task Task, outcome *Outcome) {
	info, err := os.Stat(task.Directory)
	if errors.Is(err, os.ErrNotExist) {
		i.clone(ctx, task, outcome)
		return
	}
	if err != nil {
		i.fail(outcome, err)
		return
	}
	if !info.IsDir() || !i.git.IsWorkingTree(task.Directory) {
		i.fail(outcome, fmt.Errorf("%s exists but is %w", task.Directory, ErrNotWorkingTree))
		return
	}

	if i.options.Diagnostics {
		if !i.checkRemote(ctx, task, outcome) {
			return
		}
	}

	if !i.options.DryRun {
		if i.options.Interrupted() {
			i.fail(outcome, context.Canceled)
			return
		}
		changed, err := i.git.Pull(ctx, task.Directory)
		switch {
		case err != nil:
			i.fail(outcome, err)
			if isCancellation(err) {
				return
			}
		case changed:
			outcome.Action = Pulled
		}
	}

	i.inspect(ctx, task, outcome)
}

func (i *Inspector) clone(ctx context.Context, task Task, outcome *Outcome) {
	outcome.Action = Cloned
	if i.options.DryRun {
		outcome.WouldClone = true
		return
	}
	if err := i.git.Clone(ctx, task.Repository.CloneURL, task.Directory); err != nil {
		outcome.Action = Failed
		i.fail(outcome, err)
	}
}

func (i *Inspector) checkRemote(ctx context.Context, task Task, outcome *Outcome) bool {
	remote, err := i.git.RemoteURL(ctx, task.Directory)
	if err != nil {
		i.fail(outcome, err)
		return !isCancellation(err)
	}
	if !task.Repository.MatchesRemote(remote) {
		outcome.Flags |= RemoteMismatch
		outcome.RemoteURL = remote
	}
	return true
}

// inspect runs the read-only working tree checks. Each is independent, so a failing
// check is recorded and the others still run.
func (i *Inspector) inspect(ctx context.Context, task Task, outcome *Outcome) {
	dir := task.Directory
	checks := []func() error{
		func() error {
			staged, err := i.git.HasStagedChanges(ctx, dir)
			if staged {
				outcome.Flags |= StagedChanges
			}
			return err
		},
		func() error {
			unstaged, err := i.git.HasUnstagedChanges(ctx, dir)
			if unstaged {
				outcome.Flags |= UnstagedChanges
			}
			return err
		},
		func() error {
			ahead, err := i.git.AheadCount(ctx, dir)
			if ahead > 0 {
				outcome.Flags |= UnpushedCommits
			}
			return err
		},
		func() error {
			if task.Repository.DefaultBranch == "" {
				return nil
			}
			branch, err := i.git.CurrentBranch(ctx, dir)
			if err == nil && branch != task.Repository.DefaultBranch {
				outcome.Flags |= WrongBranch
				outcome.Branch = branch
			}
			return err
		},
		func() error {
			if !i.options.Diagnostics {
				return nil
			}
			files, err := i.git.UntrackedFiles(ctx, dir)
			if len(files) > 0 {
				outcome.Flags |= UntrackedFiles
				outcome.Untracked = files
			}
			return err
		},
	}
	for _, check := range checks {
		if i.options.Interrupted() {
			i.fail(outcome, context.Canceled)
			return
		}
		if err := check(); err != nil {
			i.fail(outcome, err)
			if isCancellation(err) {
				return
			}
		}
	}
}

func (i *Inspector) fail(outcome *Outcome, err error) {
	outcome.Action = Failed
	var cmdErr *sh.CommandError
	switch {
	case isCancellation(err):
		appendDetail(outcome, interruptedDetail)
	case errors.As(err, &cmdErr):
		appendDetail(outcome, cmdErr.Describe(i.options.VerboseErrors))
	default:
		appendDetail(outcome, err.Error())
	}
}

func appendDetail(outcome *Outcome, detail string) {
	if outcome.Detail == "" {
		outcome.Detail = detail
		return
	}
	if strings.Contains(outcome.Detail, detail) {
		return
	}
	outcome.Detail += "\n" + detail
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
