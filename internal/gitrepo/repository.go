package gitrepo

import (
	"path/filepath"
	"strings"
)

// Repository is the remote description of one repository, as listed by the hosting service.
// The name doubles as the directory name under the clone root.
type Repository struct {
	Name          string
	CloneURL      string
	URLs          []string // every URL a working tree's remote may legitimately point at
	DefaultBranch string
	Fork          bool
	Archived      bool
	Private       bool
	Disabled      bool
}

// MatchesRemote reports whether a configured remote URL refers to this repository.
func (r Repository) MatchesRemote(remoteURL string) bool {
	normalized := withGitSuffix(strings.TrimSpace(remoteURL))
	for _, candidate := range append([]string{r.CloneURL}, r.URLs...) {
		if candidate != "" && withGitSuffix(candidate) == normalized {
			return true
		}
	}
	return false
}

func withGitSuffix(url string) string {
	if strings.HasSuffix(url, ".git") {
		return url
	}
	return url + ".git"
}

// Task pairs a repository with the working tree it is synced into. Index is the
// repository's position in the sorted listing.
type Task struct {
	Index      int
	Repository Repository
	Directory  string
}

func NewTask(index int, repo Repository, cloneRoot string) Task {
	return Task{
		Index:      index,
		Repository: repo,
		Directory:  filepath.Join(cloneRoot, repo.Name),
	}
}
