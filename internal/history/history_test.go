package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-liveness/internal/domain"
	"github.com/naka-gawa/github-liveness/internal/fieldpath"
)

func testReport() *domain.Report {
	return &domain.Report{
		Owner:             "test",
		Repo:              "repo",
		CommitsTotal:      100,
		ContributorsTotal: 10,
		OpenPullRequests:  5,
		OpenIssues:        20,
		LastCommit: domain.LastCommit{
			SHA:         "abc123",
			AuthorName:  "author",
			AuthorEmail: "author@test.com",
			DateUTC:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Message:     "test commit",
		},
		ProjectAlive: true,
		Criteria:     domain.Criteria{MaxDays: 60, MinContributors: 3, MinCommits: 100},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "test_history.json")
	store := NewStore(path, zerolog.Nop())

	report := testReport()
	require.NoError(t, store.Save(report))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, *report, loaded.LastData)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"), zerolog.Nop())
	loaded, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	store := NewStore(path, zerolog.Nop())
	_, err := store.Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse history file")
}

func TestStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	store := NewStore(path, zerolog.Nop())

	first := testReport()
	require.NoError(t, store.Save(first))

	second := testReport()
	second.CommitsTotal = 250
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 250, loaded.LastData.CommitsTotal)
}

func TestChangeMagnitudeIdentity(t *testing.T) {
	report := testReport()
	record := &Record{LastData: *report}

	paths := []string{
		"owner",
		"commits_total",
		"open_issues",
		"project_alive",
		"last_commit.sha",
		"last_commit.date_utc",
		"criteria.max_days",
	}
	for _, path := range paths {
		change, err := record.ChangeMagnitude(report, path)
		require.NoError(t, err, "path %s", path)
		assert.Zero(t, change, "diffing a report against itself must yield 0 for %s", path)
	}
}

func TestChangeMagnitudeNumbers(t *testing.T) {
	prior := testReport()
	prior.CommitsTotal = 90
	record := &Record{LastData: *prior}

	current := testReport()
	current.CommitsTotal = 100

	change, err := record.ChangeMagnitude(current, "commits_total")
	require.NoError(t, err)
	assert.Equal(t, int64(10), change)

	// Symmetry: swapping prior and current yields the same magnitude.
	reversed := &Record{LastData: *current}
	change, err = reversed.ChangeMagnitude(prior, "commits_total")
	require.NoError(t, err)
	assert.Equal(t, int64(10), change)
}

func TestChangeMagnitudeDates(t *testing.T) {
	prior := testReport()
	record := &Record{LastData: *prior}

	current := testReport()
	current.LastCommit.DateUTC = prior.LastCommit.DateUTC.AddDate(0, 0, 10)

	change, err := record.ChangeMagnitude(current, "last_commit.date_utc")
	require.NoError(t, err)
	assert.Equal(t, int64(10), change)
}

func TestChangeMagnitudeBooleans(t *testing.T) {
	prior := testReport()
	record := &Record{LastData: *prior}

	current := testReport()
	current.ProjectAlive = false

	change, err := record.ChangeMagnitude(current, "project_alive")
	require.NoError(t, err)
	assert.Equal(t, int64(1), change)
}

func TestChangeMagnitudeMissingPath(t *testing.T) {
	report := testReport()
	record := &Record{LastData: *report}

	_, err := record.ChangeMagnitude(report, "nonexistent.field")
	require.Error(t, err)

	var notFound *fieldpath.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nonexistent", notFound.Segment)
	assert.Equal(t, "nonexistent.field", notFound.Path)
}

func TestChangeMagnitudeNullAndMismatch(t *testing.T) {
	name := "First"
	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	withRelease := testReport()
	withRelease.LastRelease = &domain.LastRelease{TagName: "v1", Name: &name, DateUTC: &published}
	withoutRelease := testReport()

	// Both absent.
	record := &Record{LastData: *withoutRelease}
	change, err := record.ChangeMagnitude(withoutRelease, "last_release")
	require.NoError(t, err)
	assert.Equal(t, int64(0), change)

	// Exactly one absent.
	change, err = record.ChangeMagnitude(withRelease, "last_release")
	require.NoError(t, err)
	assert.Equal(t, int64(1), change)
}

func TestMagnitudeTable(t *testing.T) {
	testCases := []struct {
		name     string
		current  any
		last     any
		path     string
		expected int64
	}{
		{name: "equal numbers", current: float64(100), last: float64(100), path: "commits_total", expected: 0},
		{name: "number difference truncates", current: float64(100.9), last: float64(90), path: "commits_total", expected: 10},
		{name: "equal strings", current: "same", last: "same", path: "owner", expected: 0},
		{name: "different strings", current: "diff", last: "other", path: "owner", expected: 1},
		{name: "date path with unparsable strings falls back to equality", current: "not-a-date", last: "not-a-date", path: "last_commit.date_utc", expected: 0},
		{name: "date path with one unparsable string", current: "2025-07-01T00:00:00Z", last: "not-a-date", path: "last_commit.date_utc", expected: 1},
		{name: "both null", current: nil, last: nil, path: "last_release", expected: 0},
		{name: "current null only", current: nil, last: "v1", path: "last_release.name", expected: 1},
		{name: "mismatched kinds", current: float64(3), last: "three", path: "anything", expected: 1},
		{name: "bool vs number", current: true, last: float64(1), path: "project_alive", expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, magnitude(tc.current, tc.last, tc.path))
		})
	}
}
