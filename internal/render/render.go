// Package render turns a report into one of the requested output forms:
// an aligned text block, pretty-printed JSON, or a single extracted field.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/naka-gawa/github-liveness/internal/domain"
	"github.com/naka-gawa/github-liveness/internal/fieldpath"
)

// Kind selects one of the output forms.
type Kind int

const (
	KindDefault Kind = iota
	KindJSON
	KindField
)

// Format is a parsed --format value.
type Format struct {
	Kind  Kind
	Field string
}

// ParseFormat understands "default", "json", and "field:NAME".
func ParseFormat(s string) (Format, error) {
	switch {
	case s == "default":
		return Format{Kind: KindDefault}, nil
	case s == "json":
		return Format{Kind: KindJSON}, nil
	case strings.HasPrefix(s, "field:"):
		field := strings.TrimPrefix(s, "field:")
		if field == "" {
			return Format{}, fmt.Errorf("field name cannot be empty, use format: field:field_name")
		}
		return Format{Kind: KindField, Field: field}, nil
	}
	return Format{}, fmt.Errorf("invalid format '%s', use 'default', 'json', or 'field:field_name'", s)
}

func (f Format) String() string {
	switch f.Kind {
	case KindJSON:
		return "json"
	case KindField:
		return "field:" + f.Field
	default:
		return "default"
	}
}

// Render writes the report to w in the given format. maxReleaseDays and now
// only influence the release freshness line of the default text output.
func Render(w io.Writer, format Format, report *domain.Report, maxReleaseDays int, now time.Time) error {
	switch format.Kind {
	case KindJSON:
		return renderJSON(w, report)
	case KindField:
		return renderField(w, report, format.Field)
	default:
		renderDefault(w, report, maxReleaseDays, now)
		return nil
	}
}

func renderJSON(w io.Writer, report *domain.Report) error {
	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	fmt.Fprintln(w, string(content))
	return nil
}

func renderField(w io.Writer, report *domain.Report, path string) error {
	value, err := fieldpath.Extract(report, path)
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case string:
		fmt.Fprintln(w, v)
	case float64:
		fmt.Fprintln(w, strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		fmt.Fprintln(w, strconv.FormatBool(v))
	case nil:
		fmt.Fprintln(w, "null")
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to render field %s: %w", path, err)
		}
		fmt.Fprintln(w, string(encoded))
	}
	return nil
}

func renderDefault(w io.Writer, report *domain.Report, maxReleaseDays int, now time.Time) {
	fmt.Fprintf(w, "Repo: %s/%s\n", report.Owner, report.Repo)
	fmt.Fprintln(w, "-------------------------------------------")
	fmt.Fprintf(w, "Commits total            : %d\n", report.CommitsTotal)
	fmt.Fprintf(w, "Contributors total       : %d\n", report.ContributorsTotal)
	fmt.Fprintf(w, "Open pull requests       : %d\n", report.OpenPullRequests)
	fmt.Fprintf(w, "Open issues (unresolved) : %d\n", report.OpenIssues)
	fmt.Fprintln(w, "Last commit              :")
	fmt.Fprintf(w, "  sha                    : %s\n", report.LastCommit.SHA)
	fmt.Fprintf(w, "  author                 : %s <%s>\n", report.LastCommit.AuthorName, report.LastCommit.AuthorEmail)
	fmt.Fprintf(w, "  date (UTC)             : %s\n", report.LastCommit.DateUTC.Format(time.RFC3339))
	fmt.Fprintf(w, "  message                : %s\n", report.LastCommit.Message)

	if release := report.LastRelease; release != nil {
		fmt.Fprintln(w, "Last release             :")
		fmt.Fprintf(w, "  tag                    : %s\n", release.TagName)
		if release.Name != nil {
			fmt.Fprintf(w, "  name                   : %s\n", *release.Name)
		}
		if release.DateUTC != nil {
			daysSince := int(now.Sub(*release.DateUTC).Hours() / 24)
			fmt.Fprintf(w, "  date (UTC)             : %s\n", release.DateUTC.Format(time.RFC3339))
			fmt.Fprintf(w, "  status                 : %s (%d days ago)\n",
				releaseStatus(release.IsPrerelease, daysSince <= maxReleaseDays), daysSince)
		} else {
			fmt.Fprintln(w, "  date (UTC)             : Not available")
			fmt.Fprintln(w, "  status                 : Unknown age ❓")
		}
		prerelease := "No"
		if release.IsPrerelease {
			prerelease = "Yes"
		}
		fmt.Fprintf(w, "  prerelease             : %s\n", prerelease)
	} else {
		fmt.Fprintln(w, "Last release             : No releases found")
	}

	fmt.Fprintln(w, "-------------------------------------------")
	verdict := "LIKELY DEAD ⚠️"
	if report.ProjectAlive {
		verdict = "ALIVE ✅"
	}
	fmt.Fprintf(w, "Project alive            : %s\n", verdict)
	fmt.Fprintf(w, "Criteria: last ≤ %d days or (contributors ≥ %d and commits ≥ %d)\n",
		report.Criteria.MaxDays, report.Criteria.MinContributors, report.Criteria.MinCommits)
}

func releaseStatus(prerelease, fresh bool) string {
	switch {
	case fresh && prerelease:
		return "Recent prerelease ⚡"
	case fresh:
		return "Fresh release ✅"
	case prerelease:
		return "Stale prerelease ⚠️"
	default:
		return "Stale release ⚠️"
	}
}
