package github

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/samber/lo"

	"ghsync/internal/color"
	"ghsync/internal/gitrepo"
	"ghsync/internal/log"
)

type ResourceKind int

const (
	Repositories ResourceKind = iota
	Gists
)

func (k ResourceKind) String() string {
	if k == Gists {
		return "gists"
	}
	return "repositories"
}

// Owner is the user or organization whose repositories are listed. Exactly one is set.
type Owner struct {
	User         string
	Organization string
}

func (o Owner) String() string {
	return lo.Ternary(o.Organization != "", o.Organization, o.User)
}

func (o Owner) Validate(kind ResourceKind) error {
	if (o.User == "") == (o.Organization == "") {
		return ErrInvalidOwner
	}
	if kind == Gists && o.User == "" {
		return ErrGistsNeedUser
	}
	return nil
}

// Filter selects repositories by name and flags. Every predicate must hold.
type Filter struct {
	Pattern         string // shell glob on the repository name, case-sensitive
	IncludeForks    bool
	IncludeArchived bool
	IncludePrivate  bool
	IncludeDisabled bool
}

func DefaultFilter() Filter {
	return Filter{IncludePrivate: true, IncludeDisabled: true}
}

func (f Filter) Validate() error {
	if f.Pattern == "" {
		return nil
	}
	if _, err := path.Match(f.Pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", f.Pattern, err)
	}
	return nil
}

// Matches assumes Validate has passed.
func (f Filter) Matches(repo gitrepo.Repository) bool {
	if f.Pattern != "" {
		if ok, _ := path.Match(f.Pattern, repo.Name); !ok {
			return false
		}
	}
	return (f.IncludeForks || !repo.Fork) &&
		(f.IncludeArchived || !repo.Archived) &&
		(f.IncludePrivate || !repo.Private) &&
		(f.IncludeDisabled || !repo.Disabled)
}

// PageSource is the paged API the Lister walks.
type PageSource interface {
	AuthenticatedLogin(ctx context.Context) (string, error)
	RepositoriesPage(ctx context.Context, owner Owner, own bool, page int) (Page, error)
	GistsPage(ctx context.Context, user string, page int) (Page, error)
}

// Lister produces the complete, filtered, sorted set of repositories for an owner.
type Lister struct {
	api           PageSource
	authenticated bool
	// Progress, if set, is called with the running number of fetched entries after every page.
	Progress func(fetched int)
}

// NewLister takes whether the API is called with a token; without one private
// repositories are never listed.
func NewLister(api PageSource, authenticated bool) *Lister {
	return &Lister{api: api, authenticated: authenticated}
}

func (l *Lister) List(ctx context.Context, owner Owner, kind ResourceKind, filter Filter) ([]gitrepo.Repository, error) {
	if err := owner.Validate(kind); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if !l.authenticated && filter.IncludePrivate {
		logger.Log.Debugf("No token; private %s of %s are not listed", kind, color.FgCyan(owner.String()))
		filter.IncludePrivate = false
	}

	own := false
	if l.authenticated && owner.User != "" && kind == Repositories {
		login, err := l.api.AuthenticatedLogin(ctx)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(login, owner.User) {
			return nil, &tokenMismatchError{user: owner.User, login: login}
		}
		own = true
	}

	all, err := l.fetchAll(ctx, func(page int) (Page, error) {
		if kind == Gists {
			return l.api.GistsPage(ctx, owner.User, page)
		}
		return l.api.RepositoriesPage(ctx, owner, own, page)
	})
	if err != nil {
		return nil, err
	}

	repos := lo.UniqBy(all, func(repo gitrepo.Repository) string { return repo.Name })
	repos = lo.Filter(repos, func(repo gitrepo.Repository, _ int) bool { return filter.Matches(repo) })
	sort.SliceStable(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	logger.Log.Infof("Listed %d %s of %s, %d after filtering", len(all), kind, color.FgCyan(owner.String()), len(repos))
	return repos, nil
}

func (l *Lister) fetchAll(ctx context.Context, fetch func(page int) (Page, error)) ([]gitrepo.Repository, error) {
	var all []gitrepo.Repository
	for page := 1; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := fetch(page)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Repositories...)
		if l.Progress != nil {
			l.Progress(len(all))
		}
		if result.Next <= page || len(result.Repositories) < PerPage {
			return all, nil
		}
		page = result.Next
	}
}
