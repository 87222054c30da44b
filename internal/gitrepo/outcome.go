package gitrepo

import (
	"strings"
	"time"
)

type Action int

const (
	Unchanged Action = iota
	Cloned
	Pulled
	Failed
)

func (a Action) String() string {
	switch a {
	case Cloned:
		return "cloned"
	case Pulled:
		return "pulled"
	case Failed:
		return "error"
	default:
		return "unchanged"
	}
}

// Flags is a set of independent conditions found in a working tree.
type Flags uint8

const (
	UntrackedFiles Flags = 1 << iota
	StagedChanges
	UnstagedChanges
	WrongBranch
	UnpushedCommits
	RemoteMismatch
)

// AllFlags lists every flag in display order.
var AllFlags = []Flags{StagedChanges, UnstagedChanges, UnpushedCommits, WrongBranch, RemoteMismatch, UntrackedFiles}

// VerboseFlags are only looked for, and only shown, when extra diagnostics are requested.
const VerboseFlags = UntrackedFiles | RemoteMismatch

func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

func (f Flags) Empty() bool {
	return f == 0
}

func (f Flags) String() string {
	var names []string
	for _, flag := range AllFlags {
		if f.Has(flag) {
			names = append(names, flag.name())
		}
	}
	return strings.Join(names, ",")
}

func (f Flags) name() string {
	switch f {
	case UntrackedFiles:
		return "untracked-files"
	case StagedChanges:
		return "staged-changes"
	case UnstagedChanges:
		return "unstaged-changes"
	case WrongBranch:
		return "wrong-branch"
	case UnpushedCommits:
		return "unpushed-commits"
	case RemoteMismatch:
		return "remote-mismatch"
	}
	return "unknown"
}

// Outcome is the single result of syncing one repository.
type Outcome struct {
	Name       string
	Action     Action
	Flags      Flags
	Detail     string
	WouldClone bool // dry run: the clone was reported, not performed
	Elapsed    time.Duration

	Branch    string   // checked out branch, set with WrongBranch
	RemoteURL string   // configured remote, set with RemoteMismatch
	Untracked []string // set with UntrackedFiles
}

// Clean reports whether the outcome needs no attention from the user.
func (o Outcome) Clean() bool {
	return o.Action == Unchanged && o.Flags.Empty() && o.Detail == ""
}
