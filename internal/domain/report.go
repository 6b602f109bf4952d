// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Report is the fully resolved result of inspecting one repository.
// It is built once per run and never mutated afterwards, so a persisted
// snapshot can be compared field by field against a later run.
type Report struct {
	Owner             string       `json:"owner"`
	Repo              string       `json:"repo"`
	CommitsTotal      int          `json:"commits_total"`
	ContributorsTotal int          `json:"contributors_total"`
	OpenPullRequests  int          `json:"open_pull_requests"`
	OpenIssues        int          `json:"open_issues"`
	LastCommit        LastCommit   `json:"last_commit"`
	LastRelease       *LastRelease `json:"last_release"`
	ProjectAlive      bool         `json:"project_alive"`
	Criteria          Criteria     `json:"criteria"`
}

// LastCommit holds the metadata of the most recent commit on the default branch.
// Message is only the first line of the full commit message.
type LastCommit struct {
	SHA         string    `json:"sha"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	DateUTC     time.Time `json:"date_utc"`
	Message     string    `json:"message"`
}

// LastRelease holds the metadata of the latest published release, if any.
type LastRelease struct {
	TagName      string     `json:"tag_name"`
	Name         *string    `json:"name"`
	DateUTC      *time.Time `json:"date_utc"`
	IsPrerelease bool       `json:"is_prerelease"`
}

// Criteria records the thresholds that were active when the verdict was
// computed, so two reports scored under different settings stay
// independently interpretable.
type Criteria struct {
	MaxDays         int `json:"max_days"`
	MinContributors int `json:"min_contributors"`
	MinCommits      int `json:"min_commits"`
}
