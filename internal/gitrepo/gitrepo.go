package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"ghsync/internal/sh"
)

// Git is the set of version-control primitives the inspector relies on.
type Git interface {
	Clone(ctx context.Context, url, dir string) error
	// Pull integrates upstream changes and reports whether HEAD moved.
	Pull(ctx context.Context, dir string) (changed bool, err error)
	IsWorkingTree(dir string) bool
	CurrentBranch(ctx context.Context, dir string) (string, error)
	HasStagedChanges(ctx context.Context, dir string) (bool, error)
	HasUnstagedChanges(ctx context.Context, dir string) (bool, error)
	UntrackedFiles(ctx context.Context, dir string) ([]string, error)
	AheadCount(ctx context.Context, dir string) (int, error)
	RemoteURL(ctx context.Context, dir string) (string, error)
}

// Shell drives the git binary for anything that talks to the network or compares
// trees, and reads repository metadata directly with go-git.
type Shell struct{}

func NewShell() *Shell {
	return &Shell{}
}

func (Shell) Clone(ctx context.Context, url, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(dir), err)
	}
	return sh.Quiet(ctx, sh.DirectoryPath(filepath.Dir(dir)), "git", "clone", "-q", url, filepath.Base(dir))
}

func (s Shell) Pull(ctx context.Context, dir string) (bool, error) {
	before, err := s.head(ctx, dir)
	if err != nil {
		return false, err
	}
	if err := sh.Quiet(ctx, sh.DirectoryPath(dir), "git", "pull", "-q", "--ff-only"); err != nil {
		return false, err
	}
	after, err := s.head(ctx, dir)
	if err != nil {
		return false, err
	}
	return before != after, nil
}

// head is the checked out commit; Pull reports a change only when it moves.
func (Shell) head(ctx context.Context, dir string) (string, error) {
	return sh.Run(ctx, sh.DirectoryPath(dir), "git", "rev-parse", "HEAD")
}

func (Shell) IsWorkingTree(dir string) bool {
	repo, err := open(dir)
	if err != nil {
		return false
	}
	_, err = repo.Worktree()
	return err == nil
}

// CurrentBranch returns the checked out branch, or "HEAD" when detached.
func (Shell) CurrentBranch(_ context.Context, dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}
	return plumbing.HEAD.String(), nil
}

func (Shell) HasStagedChanges(ctx context.Context, dir string) (bool, error) {
	code, err := sh.Status(ctx, sh.DirectoryPath(dir), "git", "diff-index", "--cached", "--quiet", "HEAD", "--")
	return code != 0, err
}

func (Shell) HasUnstagedChanges(ctx context.Context, dir string) (bool, error) {
	code, err := sh.Status(ctx, sh.DirectoryPath(dir), "git", "diff", "--no-ext-diff", "--quiet", "--exit-code")
	return code != 0, err
}

func (Shell) UntrackedFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := sh.Run(ctx, sh.DirectoryPath(dir), "git", "ls-files", "--others", "--exclude-standard", "--", ":/*")
	if err != nil || out == "" {
		return nil, err
	}
	return strings.Split(out, "\n"), nil
}

// AheadCount counts commits on the current branch that its upstream does not have.
// A branch without an upstream has nothing to compare against and counts as zero.
func (Shell) AheadCount(ctx context.Context, dir string) (int, error) {
	out, err := sh.Run(ctx, sh.DirectoryPath(dir), "git", "rev-list", "--count", "@{u}..")
	var cmdErr *sh.CommandError
	if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Output, "no upstream") {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(out)
}

func (Shell) RemoteURL(_ context.Context, dir string) (string, error) {
	repo, err := open(dir)
	if err != nil {
		return "", err
	}
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return "", fmt.Errorf("failed to read remote %s: %w", git.DefaultRemoteName, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no url", git.DefaultRemoteName)
	}
	return urls[0], nil
}

func open(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotWorkingTree)
	}
	return repo, err
}
