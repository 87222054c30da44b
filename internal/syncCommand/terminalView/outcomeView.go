package terminalView

import (
	"fmt"
	"strings"

	"ghsync/internal/color"
	"ghsync/internal/gitrepo"
)

const (
	detailIndent       = "    "
	untrackedFileLimit = 10
)

// OutcomeView renders the lines printed once a repository is done, e.g.
//
//	+ alpha (updated) (not on main)
//	    branch: feature
type OutcomeView struct {
	Task      gitrepo.Task
	Outcome   gitrepo.Outcome
	Verbosity int
}

func (v OutcomeView) Render(int) string {
	var sb strings.Builder
	sb.WriteString("+ " + v.Task.Repository.Name)
	for _, marker := range v.markers() {
		sb.WriteString(" " + marker)
	}
	sb.WriteString("\n")
	for _, line := range v.details() {
		sb.WriteString(detailIndent + line + "\n")
	}
	return sb.String()
}

func (v OutcomeView) markers() []string {
	var markers []string
	switch v.Outcome.Action {
	case gitrepo.Cloned:
		if v.Outcome.WouldClone {
			markers = append(markers, color.FgCyan("(would clone)"))
		} else {
			markers = append(markers, color.FgCyan("(new)"))
		}
	case gitrepo.Pulled:
		markers = append(markers, color.FgGreen("(updated)"))
	case gitrepo.Failed:
		markers = append(markers, color.FgRed("(failed)"))
	}
	for _, flag := range gitrepo.AllFlags {
		if !v.Outcome.Flags.Has(flag) || !v.showFlag(flag) {
			continue
		}
		markers = append(markers, color.FgYellow("(%s)", v.flagLabel(flag)))
	}
	return markers
}

func (v OutcomeView) showFlag(flag gitrepo.Flags) bool {
	return v.Verbosity >= 1 || gitrepo.VerboseFlags&flag == 0
}

func (v OutcomeView) flagLabel(flag gitrepo.Flags) string {
	switch flag {
	case gitrepo.StagedChanges:
		return "staged changes"
	case gitrepo.UnstagedChanges:
		return "local changes"
	case gitrepo.UnpushedCommits:
		return "local commits"
	case gitrepo.WrongBranch:
		return "not on " + v.Task.Repository.DefaultBranch
	case gitrepo.RemoteMismatch:
		return "wrong remote url"
	case gitrepo.UntrackedFiles:
		return "unknown files"
	}
	return flag.String()
}

func (v OutcomeView) details() []string {
	var lines []string
	if v.Outcome.Detail != "" {
		for _, line := range strings.Split(v.Outcome.Detail, "\n") {
			if v.Outcome.Action == gitrepo.Failed {
				line = color.FgRed(line)
			}
			lines = append(lines, line)
		}
	}
	if v.Verbosity < 2 {
		return lines
	}
	if v.Outcome.Flags.Has(gitrepo.WrongBranch) {
		lines = append(lines, "branch: "+v.Outcome.Branch)
	}
	if v.Outcome.Flags.Has(gitrepo.RemoteMismatch) {
		repo := v.Task.Repository
		lines = append(lines, "remote: "+v.Outcome.RemoteURL, "expected: "+repo.CloneURL)
		for _, alternative := range repo.URLs {
			lines = append(lines, "alternatively: "+alternative)
		}
	}
	if v.Outcome.Flags.Has(gitrepo.UntrackedFiles) {
		files := v.Outcome.Untracked
		if v.Verbosity < 3 && len(files) > untrackedFileLimit {
			files = append(files[:untrackedFileLimit:untrackedFileLimit], fmt.Sprintf("(and %d more)", len(files)-untrackedFileLimit))
		}
		lines = append(lines, files...)
	}
	return lines
}
