package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v32/github"

	"ghsync/internal/gitrepo"
	"ghsync/internal/log"
)

const PerPage = 100

// Page is one page of a listing. Next is 0 on the last page.
type Page struct {
	Repositories []gitrepo.Repository
	Next         int
}

/*
APIClient is the boundary to the GitHub REST API. All methods are synchronous and
fetch a single page; paging, filtering and ordering belong to the Lister.
*/
type APIClient struct {
	client   *gh.Client
	useHTTPS bool
}

type ClientOptions struct {
	Token string
	// BaseURL points at a GitHub Enterprise API, e.g. https://github.example.com/api/v3/.
	BaseURL string
	// Transport sits underneath authentication, typically the response cache.
	Transport http.RoundTripper
	// UseHTTPS clones over https instead of ssh.
	UseHTTPS bool
}

func NewAPIClient(options ClientOptions) (*APIClient, error) {
	var transport http.RoundTripper = options.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if options.Token != "" {
		transport = &gh.BasicAuthTransport{Username: "x-access-token", Password: options.Token, Transport: transport}
	}
	client := gh.NewClient(&http.Client{Transport: transport})
	if options.BaseURL != "" {
		base := options.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid API url %s: %w", options.BaseURL, err)
		}
		client.BaseURL = parsed
	}
	return &APIClient{client: client, useHTTPS: options.UseHTTPS}, nil
}

// AuthenticatedLogin returns the login the token belongs to.
func (a *APIClient) AuthenticatedLogin(ctx context.Context) (string, error) {
	user, _, err := a.client.Users.Get(ctx, "")
	if err != nil {
		return "", a.listingError("user", err)
	}
	return user.GetLogin(), nil
}

// RepositoriesPage lists one page of an owner's repositories. With own set the
// authenticated user's repositories are listed instead, which includes private ones.
func (a *APIClient) RepositoriesPage(ctx context.Context, owner Owner, own bool, page int) (Page, error) {
	listOptions := gh.ListOptions{Page: page, PerPage: PerPage}
	var repos []*gh.Repository
	var resp *gh.Response
	var err error
	switch {
	case owner.Organization != "":
		repos, resp, err = a.client.Repositories.ListByOrg(ctx, owner.Organization, &gh.RepositoryListByOrgOptions{ListOptions: listOptions})
	case own:
		repos, resp, err = a.client.Repositories.List(ctx, "", &gh.RepositoryListOptions{Affiliation: "owner", Sort: "full_name", ListOptions: listOptions})
	default:
		repos, resp, err = a.client.Repositories.List(ctx, owner.User, &gh.RepositoryListOptions{Sort: "full_name", ListOptions: listOptions})
	}
	if err != nil {
		return Page{}, a.listingError(owner.String()+" repositories", err)
	}
	result := Page{Next: resp.NextPage}
	for _, repo := range repos {
		result.Repositories = append(result.Repositories, a.toRepository(repo))
	}
	logger.Log.Debugf("Fetched page %d of %s repositories: %d entries", page, owner, len(repos))
	return result, nil
}

func (a *APIClient) GistsPage(ctx context.Context, user string, page int) (Page, error) {
	gists, resp, err := a.client.Gists.List(ctx, user, &gh.GistListOptions{ListOptions: gh.ListOptions{Page: page, PerPage: PerPage}})
	if err != nil {
		return Page{}, a.listingError(user+" gists", err)
	}
	result := Page{Next: resp.NextPage}
	for _, gist := range gists {
		result.Repositories = append(result.Repositories, gitrepo.Repository{
			Name:     gist.GetID(),
			CloneURL: gist.GetGitPullURL(),
			URLs:     []string{gist.GetGitPushURL()},
			Private:  !gist.GetPublic(),
		})
	}
	logger.Log.Debugf("Fetched page %d of %s gists: %d entries", page, user, len(gists))
	return result, nil
}

func (a *APIClient) toRepository(repo *gh.Repository) gitrepo.Repository {
	cloneURL, alternate := repo.GetSSHURL(), repo.GetCloneURL()
	if a.useHTTPS {
		cloneURL, alternate = alternate, cloneURL
	}
	return gitrepo.Repository{
		Name:          repo.GetName(),
		CloneURL:      cloneURL,
		URLs:          []string{alternate},
		DefaultBranch: repo.GetDefaultBranch(),
		Fork:          repo.GetFork(),
		Archived:      repo.GetArchived(),
		Private:       repo.GetPrivate(),
		Disabled:      repo.GetDisabled(),
	}
}

func (a *APIClient) listingError(what string, err error) error {
	listingErr := &ListingError{What: what, Err: err}
	if errResp, ok := err.(*gh.ErrorResponse); ok && errResp.Response != nil && errResp.Response.Request != nil {
		listingErr.URL = errResp.Response.Request.URL.String()
		listingErr.Message = errResp.Message
	}
	return listingErr
}
