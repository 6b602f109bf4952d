// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-liveness/internal/domain"
	"github.com/naka-gawa/github-liveness/internal/gateway"
	"github.com/naka-gawa/github-liveness/internal/scoring"
)

// Inspector is the use case for inspecting one repository.
// It orchestrates the fetching of activity signals, the scoring, and the
// composition of the immutable report.
type Inspector struct {
	fetcher gateway.Fetcher
	scorer  *scoring.Scorer
	logger  zerolog.Logger
}

// NewInspector creates a new Inspector instance.
func NewInspector(fetcher gateway.Fetcher, scorer *scoring.Scorer, logger zerolog.Logger) *Inspector {
	return &Inspector{
		fetcher: fetcher,
		scorer:  scorer,
		logger:  logger,
	}
}

// Inspect fetches all activity signals concurrently, scores them, and returns
// the report. The lookups are independent reads; only the commit count may
// issue a dependent second request inside its own goroutine. Any lookup
// failure aborts the whole run, there is no partial report.
func (i *Inspector) Inspect(ctx context.Context, owner, repo string, criteria scoring.Criteria) (*domain.Report, error) {
	i.logger.Debug().Str("repo", owner+"/"+repo).Msg("starting inspection")

	var (
		lastCommit   *domain.LastCommit
		lastRelease  *domain.LastRelease
		commits      int
		contributors int
		openPRs      int
		openIssues   int
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var err error
		lastCommit, err = i.fetcher.FetchLastCommit(egCtx, owner, repo)
		return err
	})

	eg.Go(func() error {
		var err error
		commits, err = i.fetcher.FetchCommitCount(egCtx, owner, repo)
		return err
	})

	eg.Go(func() error {
		var err error
		contributors, err = i.fetcher.FetchContributorCount(egCtx, owner, repo)
		return err
	})

	eg.Go(func() error {
		var err error
		openPRs, err = i.fetcher.FetchOpenPRCount(egCtx, owner, repo)
		return err
	})

	eg.Go(func() error {
		var err error
		openIssues, err = i.fetcher.FetchOpenIssueCount(egCtx, owner, repo)
		return err
	})

	if criteria.CheckReleases {
		eg.Go(func() error {
			var err error
			lastRelease, err = i.fetcher.FetchLatestRelease(egCtx, owner, repo)
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	i.logger.Debug().Msg("all signals fetched")

	card := i.scorer.Evaluate(time.Now().UTC(), scoring.Signals{
		LastCommitAt: lastCommit.DateUTC,
		Commits:      commits,
		Contributors: contributors,
		OpenPRs:      openPRs,
		OpenIssues:   openIssues,
		Release:      lastRelease,
	}, criteria)

	i.logger.Debug().
		Float64("recency", card.Recency).
		Float64("commits", card.Commits).
		Float64("contributors", card.Contributors).
		Float64("pull_requests", card.PullRequests).
		Float64("issues", card.Issues).
		Float64("release", card.Release).
		Float64("weighted", card.Weighted).
		Bool("alive", card.Alive).
		Msg("scored repository")

	return &domain.Report{
		Owner:             owner,
		Repo:              repo,
		CommitsTotal:      commits,
		ContributorsTotal: contributors,
		OpenPullRequests:  openPRs,
		OpenIssues:        openIssues,
		LastCommit:        *lastCommit,
		LastRelease:       lastRelease,
		ProjectAlive:      card.Alive,
		Criteria: domain.Criteria{
			MaxDays:         criteria.MaxDays,
			MinContributors: criteria.MinContributors,
			MinCommits:      criteria.MinCommits,
		},
	}, nil
}
