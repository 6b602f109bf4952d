// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST client.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-liveness/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching repository activity
// signals from GitHub.
type Fetcher interface {
	FetchLastCommit(ctx context.Context, owner, repo string) (*domain.LastCommit, error)
	FetchCommitCount(ctx context.Context, owner, repo string) (int, error)
	FetchContributorCount(ctx context.Context, owner, repo string) (int, error)
	FetchOpenPRCount(ctx context.Context, owner, repo string) (int, error)
	FetchOpenIssueCount(ctx context.Context, owner, repo string) (int, error)
	FetchLatestRelease(ctx context.Context, owner, repo string) (*domain.LastRelease, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	logger     zerolog.Logger
}

// NewGitHubGateway creates a gateway backed by a rate-limit-aware HTTP client.
// An empty token yields an unauthenticated client.
func NewGitHubGateway(token string, logger zerolog.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	httpClient := &http.Client{Transport: rateLimitWaiter}
	if token != "" {
		httpClient.Transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}
	return &GitHubGateway{
		restClient: github.NewClient(httpClient),
		logger:     logger,
	}, nil
}

// FetchLastCommit returns the most recent commit on the default branch.
// An empty repository is an error, not an empty result.
func (g *GitHubGateway) FetchLastCommit(ctx context.Context, owner, repo string) (*domain.LastCommit, error) {
	g.logger.Debug().Str("repo", owner+"/"+repo).Msg("fetching last commit")
	opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: 1}}
	commits, _, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commits for %s/%s: %w", owner, repo, err)
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("repository %s/%s has no commits", owner, repo)
	}
	commit := commits[0]
	author := commit.GetCommit().GetAuthor()
	return &domain.LastCommit{
		SHA:         commit.GetSHA(),
		AuthorName:  author.GetName(),
		AuthorEmail: author.GetEmail(),
		DateUTC:     author.GetDate().Time.UTC(),
		Message:     firstLine(commit.GetCommit().GetMessage()),
	}, nil
}

// FetchCommitCount resolves the total commit count. The primary strategy
// reads the pagination Link header of a page-size-1 listing; when that is
// inconclusive (0 or 1) the commit search API's total_count is authoritative.
func (g *GitHubGateway) FetchCommitCount(ctx context.Context, owner, repo string) (int, error) {
	g.logger.Debug().Str("repo", owner+"/"+repo).Msg("resolving commit count")
	opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: 1}}
	commits, resp, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch commits for %s/%s: %w", owner, repo, err)
	}
	if count := resolveCount(resp, len(commits)); count > 1 {
		return count, nil
	}

	g.logger.Debug().Str("repo", owner+"/"+repo).Msg("commit count inconclusive, falling back to search API")
	query := fmt.Sprintf("repo:%s/%s", owner, repo)
	result, _, err := g.restClient.Search.Commits(ctx, query, &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}})
	if err != nil {
		return 0, fmt.Errorf("failed to search commits for %s/%s: %w", owner, repo, err)
	}
	return result.GetTotal(), nil
}

// FetchContributorCount approximates the contributor count, anonymous
// contributors included.
func (g *GitHubGateway) FetchContributorCount(ctx context.Context, owner, repo string) (int, error) {
	g.logger.Debug().Str("repo", owner+"/"+repo).Msg("resolving contributor count")
	opts := &github.ListContributorsOptions{Anon: "1", ListOptions: github.ListOptions{PerPage: 1}}
	contributors, resp, err := g.restClient.Repositories.ListContributors(ctx, owner, repo, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch contributors for %s/%s: %w", owner, repo, err)
	}
	return resolveCount(resp, len(contributors)), nil
}

// FetchOpenPRCount approximates the number of open pull requests.
func (g *GitHubGateway) FetchOpenPRCount(ctx context.Context, owner, repo string) (int, error) {
	g.logger.Debug().Str("repo", owner+"/"+repo).Msg("resolving open pull request count")
	opts := &github.PullRequestListOptions{State: "open", ListOptions: github.ListOptions{PerPage: 1}}
	prs, resp, err := g.restClient.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pull requests for %s/%s: %w", owner, repo, err)
	}
	return resolveCount(resp, len(prs)), nil
}

// FetchOpenIssueCount counts open issues via the search API. Issues and pull
// requests share one ticket numbering, so the is:issue qualifier is what keeps
// pull requests out of this count.
func (g *GitHubGateway) FetchOpenIssueCount(ctx context.Context, owner, repo string) (int, error) {
	g.logger.Debug().Str("repo", owner+"/"+repo).Msg("resolving open issue count")
	query := fmt.Sprintf("is:issue is:open repo:%s/%s", owner, repo)
	result, _, err := g.restClient.Search.Issues(ctx, query, &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 1}})
	if err != nil {
		return 0, fmt.Errorf("failed to search issues for %s/%s: %w", owner, repo, err)
	}
	return result.GetTotal(), nil
}

// FetchLatestRelease returns the latest published release, or nil when the
// repository has none (GitHub answers 404 in that case).
func (g *GitHubGateway) FetchLatestRelease(ctx context.Context, owner, repo string) (*domain.LastRelease, error) {
	g.logger.Debug().Str("repo", owner+"/"+repo).Msg("fetching latest release")
	release, resp, err := g.restClient.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch latest release for %s/%s: %w", owner, repo, err)
	}
	result := &domain.LastRelease{
		TagName:      release.GetTagName(),
		Name:         release.Name,
		IsPrerelease: release.GetPrerelease(),
	}
	if release.PublishedAt != nil {
		published := release.PublishedAt.Time.UTC()
		result.DateUTC = &published
	}
	return result, nil
}

// resolveCount turns a page-size-1 listing response into an approximate
// total: the rel="last" page index when present, the lower bound 2 when only
// rel="next" exists (the API omits rel="last" for very large result sets),
// otherwise the number of items on the single page (0 or 1).
func resolveCount(resp *github.Response, items int) int {
	header := resp.Header.Get("Link")
	if n, ok := LastPageCount(header); ok {
		return n
	}
	if _, ok := ParseLinkHeader(header)["next"]; ok {
		return 2
	}
	return items
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSuffix(s[:i], "\r")
	}
	return s
}
