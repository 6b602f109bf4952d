// Package scoring turns raw repository activity signals into a liveness
// verdict: each signal is normalized to [0,1], combined into a weighted sum,
// and compared against an activity threshold, with a recency override.
package scoring

import (
	"time"

	"github.com/naka-gawa/github-liveness/internal/domain"
)

// Weights control how much each normalized signal contributes to the weighted
// activity score. They are tuned to sum to roughly 1 but are not required to.
type Weights struct {
	Recency      float64
	Commits      float64
	Contributors float64
	PullRequests float64
	Issues       float64
	Release      float64
}

// DefaultWeights returns the built-in weight set.
func DefaultWeights() Weights {
	return Weights{
		Recency:      0.40,
		Commits:      0.15,
		Contributors: 0.15,
		PullRequests: 0.15,
		Issues:       0.15,
		Release:      0.15,
	}
}

// Thresholds hold the decision constants of the verdict.
type Thresholds struct {
	// Activity is the minimum weighted score for an "alive" verdict.
	Activity float64
	// StrongRecency short-circuits the weighted score: a recency score at or
	// above it makes the project alive regardless of every other signal, so
	// early-stage but currently active projects are not classified dead by
	// the established-project metrics.
	StrongRecency float64
	// RecencyScaleMultiplier stretches the recency decay past the staleness
	// threshold. A project exactly at max days keeps a partial score instead
	// of hitting a cliff.
	RecencyScaleMultiplier float64
}

// DefaultThresholds returns the built-in thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Activity:               0.50,
		StrongRecency:          0.8,
		RecencyScaleMultiplier: 2.0,
	}
}

// Criteria are the configured limits and scales the scorer normalizes
// against. They are owned by the run's configuration and passed in unchanged.
type Criteria struct {
	MaxDays         int
	MinCommits      int
	MinContributors int
	PRsScale        float64
	IssuesScale     float64
	MaxReleaseDays  int
	CheckReleases   bool
}

// Signals are the raw observations for one repository.
type Signals struct {
	LastCommitAt time.Time
	Commits      int
	Contributors int
	OpenPRs      int
	OpenIssues   int
	Release      *domain.LastRelease
}

// Scorecard is the explained verdict: every normalized sub-score, the
// weighted sum, and the resulting boolean.
type Scorecard struct {
	Recency      float64
	Commits      float64
	Contributors float64
	PullRequests float64
	Issues       float64
	Release      float64
	Weighted     float64
	Alive        bool
}

// Scorer computes liveness verdicts. It has no state beyond its weights and
// thresholds and performs no I/O.
type Scorer struct {
	weights    Weights
	thresholds Thresholds
}

// NewScorer returns a scorer with the default weights and thresholds.
func NewScorer() *Scorer {
	return &Scorer{weights: DefaultWeights(), thresholds: DefaultThresholds()}
}

// Evaluate scores the signals against the criteria. The clock is a parameter
// so the verdict is fully deterministic given its inputs.
func (s *Scorer) Evaluate(now time.Time, sig Signals, c Criteria) Scorecard {
	daysSince := now.Sub(sig.LastCommitAt).Hours() / 24
	recencyScale := float64(c.MaxDays) * s.thresholds.RecencyScaleMultiplier

	card := Scorecard{
		Recency:      clamp01(1.0 - daysSince/recencyScale),
		Commits:      clamp01(float64(sig.Commits) / float64(c.MinCommits)),
		Contributors: clamp01(float64(sig.Contributors) / float64(c.MinContributors)),
		PullRequests: clamp01(float64(sig.OpenPRs) / c.PRsScale),
		Issues:       clamp01(float64(sig.OpenIssues) / c.IssuesScale),
	}

	card.Weighted = card.Recency*s.weights.Recency +
		card.Commits*s.weights.Commits +
		card.Contributors*s.weights.Contributors +
		card.PullRequests*s.weights.PullRequests +
		card.Issues*s.weights.Issues

	if c.CheckReleases {
		card.Release = releaseScore(now, sig.Release, c.MaxReleaseDays)
		card.Weighted += card.Release * s.weights.Release
	}

	card.Alive = card.Weighted >= s.thresholds.Activity ||
		card.Recency >= s.thresholds.StrongRecency
	return card
}

// releaseScore rewards a recent release: linear decay from 1.0 at age zero to
// 0.0 at maxReleaseDays, a flat 0.5 when the release carries no publish date,
// and a 0.7 haircut for prereleases.
func releaseScore(now time.Time, release *domain.LastRelease, maxReleaseDays int) float64 {
	if release == nil {
		return 0.0
	}
	if release.DateUTC == nil {
		return 0.5
	}
	days := now.Sub(*release.DateUTC).Hours() / 24
	score := clamp01(1.0 - days/float64(maxReleaseDays))
	if release.IsPrerelease {
		score *= 0.7
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
