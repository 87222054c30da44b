package counter

import (
	"fmt"
	"strings"

	"ghsync/internal/gitrepo"
)

const (
	ExitOK          = 0
	ExitTaskErrors  = 1
	ExitFatal       = 2
	ExitInterrupted = 130
)

// Tally aggregates outcomes for one run. It has a single writer, the goroutine
// consuming worker events, and needs no locking.
type Tally struct {
	total   int
	skipped int
	actions map[gitrepo.Action]int
	flags   map[gitrepo.Flags]int
	dirty   []string
	failed  []string
}

func NewTally(total, skipped int) *Tally {
	return &Tally{
		total:   total,
		skipped: skipped,
		actions: make(map[gitrepo.Action]int),
		flags:   make(map[gitrepo.Flags]int),
	}
}

func (t *Tally) Add(outcome gitrepo.Outcome) {
	t.actions[outcome.Action]++
	for _, flag := range gitrepo.AllFlags {
		if outcome.Flags.Has(flag) {
			t.flags[flag]++
		}
	}
	if !outcome.Flags.Empty() {
		t.dirty = append(t.dirty, outcome.Name)
	}
	if outcome.Action == gitrepo.Failed {
		t.failed = append(t.failed, outcome.Name)
	}
}

func (t *Tally) Total() int {
	return t.total
}

// Completed never exceeds Total.
func (t *Tally) Completed() int {
	n := 0
	for _, count := range t.actions {
		n += count
	}
	return min(n, t.total)
}

func (t *Tally) Count(action gitrepo.Action) int {
	return t.actions[action]
}

func (t *Tally) FlagCount(flag gitrepo.Flags) int {
	return t.flags[flag]
}

func (t *Tally) Dirty() []string {
	return t.dirty
}

func (t *Tally) Failed() []string {
	return t.failed
}

// Summary renders the final tally, e.g.
// "3 repositories: 1 updated, 1 new, 1 unchanged, 0 failed, 1 dirty."
// followed by one line per dirty flag that occurred.
func (t *Tally) Summary(dryRun bool) string {
	newLabel := "new"
	if dryRun {
		newLabel = "would clone"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d repositories: %d updated, %d %s, %d unchanged, %d failed, %d dirty.",
		t.Completed(),
		t.Count(gitrepo.Pulled),
		t.Count(gitrepo.Cloned), newLabel,
		t.Count(gitrepo.Unchanged),
		t.Count(gitrepo.Failed),
		len(t.dirty))
	if t.skipped > 0 {
		fmt.Fprintf(&sb, " %d skipped.", t.skipped)
	}
	if len(t.dirty) > 0 {
		var parts []string
		for _, flag := range gitrepo.AllFlags {
			if n := t.flags[flag]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, flag))
			}
		}
		sb.WriteString("\ndirty: " + strings.Join(parts, ", "))
	}
	return sb.String()
}

// ExitCode maps the run onto a process exit status. Interruption wins over task errors.
func (t *Tally) ExitCode(interrupted bool) int {
	switch {
	case interrupted:
		return ExitInterrupted
	case t.Count(gitrepo.Failed) > 0:
		return ExitTaskErrors
	default:
		return ExitOK
	}
}
