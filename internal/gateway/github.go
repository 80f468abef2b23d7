// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-projects/internal/domain"
	"github.com/naka-gawa/github-projects/internal/notebook"
)

const notebookExtension = ".ipynb"

// maxTreeEntries caps the repository tree walk so a pathological tree cannot
// produce an unbounded traversal.
const maxTreeEntries = 10000

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchViewer(ctx context.Context) (domain.User, error)
	FetchRepositories(ctx context.Context, limit int) ([]domain.Repository, error)
	FetchGists(ctx context.Context) ([]domain.Gist, error)
	// FetchNotebookCodeBytes walks the repository tree and counts bytes of
	// code inside notebook code cells.
	FetchNotebookCodeBytes(ctx context.Context, owner, repo string) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// NewTokenGateway creates a gateway authenticated with a personal access token.
func NewTokenGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := newRateLimitWaiter()
	if err != nil {
		return nil, err
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return newGateway(httpClient, logger), nil
}

// NewBasicAuthGateway creates a gateway authenticated with username and
// password, for the interactive login path.
func NewBasicAuthGateway(username, password string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := newRateLimitWaiter()
	if err != nil {
		return nil, err
	}
	transport := &github.BasicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: rateLimitWaiter,
	}
	return newGateway(transport.Client(), logger), nil
}

func newRateLimitWaiter() (http.RoundTripper, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	return rateLimitWaiter, nil
}

func newGateway(httpClient *http.Client, logger *log.Logger) *GitHubGateway {
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}
}

// FetchViewer resolves the authenticated identity with a GraphQL viewer query.
func (g *GitHubGateway) FetchViewer(ctx context.Context) (domain.User, error) {
	g.logger.Println("Resolving authenticated identity...")
	var q struct {
		Viewer struct {
			Login githubv4.String
			URL   githubv4.URI
		}
	}
	if err := g.graphqlClient.Query(ctx, &q, nil); err != nil {
		return domain.User{}, fmt.Errorf("failed to resolve viewer identity: %w", err)
	}
	user := domain.User{Login: string(q.Viewer.Login)}
	if q.Viewer.URL.URL != nil {
		user.URL = q.Viewer.URL.URL.String()
	}
	return user, nil
}

// FetchRepositories lists the repositories the authenticated user has access
// to, populating each with its language byte mapping and contributor logins.
// A positive limit caps enumeration to that many repositories.
func (g *GitHubGateway) FetchRepositories(ctx context.Context, limit int) ([]domain.Repository, error) {
	g.logger.Println("Fetching repositories using REST API...")
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var repos []domain.Repository
	for {
		page, resp, err := g.restClient.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}
		for _, repo := range page {
			if limit > 0 && len(repos) >= limit {
				return repos, nil
			}
			described, err := g.describeRepository(ctx, repo)
			if err != nil {
				return nil, err
			}
			repos = append(repos, described)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of repositories...")
	}
	g.logger.Printf("Completed fetching %d repositories.\n", len(repos))
	return repos, nil
}

// describeRepository resolves the per-repository detail the aggregation pass
// needs: the language byte mapping and the contributor logins.
func (g *GitHubGateway) describeRepository(ctx context.Context, repo *github.Repository) (domain.Repository, error) {
	owner := repo.GetOwner().GetLogin()
	name := repo.GetName()

	languages, _, err := g.restClient.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("failed to list languages for %s/%s: %w", owner, name, err)
	}

	contributors, err := g.listContributorLogins(ctx, owner, name)
	if err != nil {
		return domain.Repository{}, err
	}

	return domain.Repository{
		OwnerLogin:   owner,
		OwnerURL:     repo.GetOwner().GetHTMLURL(),
		Name:         name,
		URL:          repo.GetHTMLURL(),
		FullName:     repo.GetFullName(),
		Description:  repo.GetDescription(),
		Languages:    languages,
		Contributors: contributors,
		Archived:     repo.GetArchived(),
		Private:      repo.GetPrivate(),
		UpdatedAt:    repo.GetUpdatedAt().Time,
	}, nil
}

func (g *GitHubGateway) listContributorLogins(ctx context.Context, owner, name string) ([]string, error) {
	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var logins []string
	for {
		page, resp, err := g.restClient.Repositories.ListContributors(ctx, owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list contributors for %s/%s: %w", owner, name, err)
		}
		for _, contributor := range page {
			logins = append(logins, contributor.GetLogin())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return logins, nil
}

// FetchGists lists the authenticated user's gists.
func (g *GitHubGateway) FetchGists(ctx context.Context) ([]domain.Gist, error) {
	g.logger.Println("Fetching gists using REST API...")
	opts := &github.GistListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var gists []domain.Gist
	for {
		page, resp, err := g.restClient.Gists.List(ctx, "", opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list gists: %w", err)
		}
		for _, gist := range page {
			gists = append(gists, domain.Gist{
				OwnerLogin:  gist.GetOwner().GetLogin(),
				OwnerURL:    gist.GetOwner().GetHTMLURL(),
				Description: gist.GetDescription(),
				URL:         gist.GetHTMLURL(),
				Public:      gist.GetPublic(),
				UpdatedAt:   gist.GetUpdatedAt().Time,
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of gists...")
	}
	return gists, nil
}

// FetchNotebookCodeBytes walks the repository contents tree with an explicit
// worklist, summing bytes of code-cell source from every notebook file. The
// walk is capped at maxTreeEntries; a malformed notebook or a failed fetch
// aborts the whole traversal.
func (g *GitHubGateway) FetchNotebookCodeBytes(ctx context.Context, owner, repo string) (int, error) {
	g.logger.Printf("Walking %s/%s for notebook files...\n", owner, repo)
	queue := []string{""}
	total := 0
	visited := 0
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		_, entries, _, err := g.restClient.Repositories.GetContents(ctx, owner, repo, path, nil)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch contents of %s/%s at %q: %w", owner, repo, path, err)
		}
		for _, entry := range entries {
			visited++
			if visited > maxTreeEntries {
				return 0, fmt.Errorf("tree walk of %s/%s exceeded %d entries", owner, repo, maxTreeEntries)
			}
			switch {
			case entry.GetType() == "dir":
				queue = append(queue, entry.GetPath())
			case strings.HasSuffix(entry.GetName(), notebookExtension):
				count, err := g.notebookCodeBytes(ctx, owner, repo, entry.GetPath())
				if err != nil {
					return 0, err
				}
				total += count
			}
		}
	}
	return total, nil
}

func (g *GitHubGateway) notebookCodeBytes(ctx context.Context, owner, repo, path string) (int, error) {
	file, _, _, err := g.restClient.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch notebook %s/%s %q: %w", owner, repo, path, err)
	}
	if file == nil {
		return 0, fmt.Errorf("notebook %s/%s %q is not a file", owner, repo, path)
	}
	raw, err := decodeContent(file)
	if err != nil {
		return 0, fmt.Errorf("failed to decode notebook %s/%s %q: %w", owner, repo, path, err)
	}
	count, err := notebook.CodeBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("notebook %s/%s %q: %w", owner, repo, path, err)
	}
	return count, nil
}

// decodeContent decodes the stored file content, which the API delivers as
// base64-encoded text.
func decodeContent(file *github.RepositoryContent) ([]byte, error) {
	if file.Content == nil {
		return nil, fmt.Errorf("file content is missing")
	}
	switch file.GetEncoding() {
	case "base64":
		return base64.StdEncoding.DecodeString(*file.Content)
	case "", "none":
		return []byte(*file.Content), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", file.GetEncoding())
	}
}
