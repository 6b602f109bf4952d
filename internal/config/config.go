// Package config holds the run configuration: command-line values merged over
// an optional YAML file, then over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable of a run. Scoring fields are pointers so Merge
// can distinguish "unset" from a zero value; fields without a yaml mapping are
// settable from the command line only.
type Config struct {
	Owner string `yaml:"-"`
	Repo  string `yaml:"-"`

	Format          *string  `yaml:"format"`
	MinCommits      *int     `yaml:"min_commits"`
	MinContributors *int     `yaml:"min_contributors"`
	MaxDays         *int     `yaml:"max_days"`
	PRsScale        *float64 `yaml:"prs_scale"`
	IssuesScale     *float64 `yaml:"issues_scale"`
	MaxReleaseDays  *int     `yaml:"max_release_days"`
	CheckReleases   *bool    `yaml:"check_releases"`

	HistoryPath string `yaml:"-"`
	CheckField  string `yaml:"-"`
	Verbose     bool   `yaml:"-"`
}

// Load reads a YAML configuration file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge fills unset fields from the file configuration. Command-line values
// keep precedence.
func (c *Config) Merge(file *Config) {
	if c.Format == nil {
		c.Format = file.Format
	}
	if c.MinCommits == nil {
		c.MinCommits = file.MinCommits
	}
	if c.MinContributors == nil {
		c.MinContributors = file.MinContributors
	}
	if c.MaxDays == nil {
		c.MaxDays = file.MaxDays
	}
	if c.PRsScale == nil {
		c.PRsScale = file.PRsScale
	}
	if c.IssuesScale == nil {
		c.IssuesScale = file.IssuesScale
	}
	if c.MaxReleaseDays == nil {
		c.MaxReleaseDays = file.MaxReleaseDays
	}
	if c.CheckReleases == nil {
		c.CheckReleases = file.CheckReleases
	}
}

// WithDefaults fills every remaining unset field with its built-in default.
func (c *Config) WithDefaults() {
	if c.Format == nil {
		v := "default"
		c.Format = &v
	}
	if c.MinCommits == nil {
		v := 100
		c.MinCommits = &v
	}
	if c.MinContributors == nil {
		v := 3
		c.MinContributors = &v
	}
	if c.MaxDays == nil {
		v := 60
		c.MaxDays = &v
	}
	if c.PRsScale == nil {
		v := 10.0
		c.PRsScale = &v
	}
	if c.IssuesScale == nil {
		v := 20.0
		c.IssuesScale = &v
	}
	if c.MaxReleaseDays == nil {
		v := 90
		c.MaxReleaseDays = &v
	}
	if c.CheckReleases == nil {
		v := true
		c.CheckReleases = &v
	}
}

// Validate rejects configurations that cannot produce a run. It is called
// before any network activity.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return errors.New("repository owner is required")
	}
	if c.Repo == "" {
		return errors.New("repository name is required")
	}
	if c.CheckField != "" && c.HistoryPath == "" {
		return errors.New("--check requires --history to be specified")
	}
	return nil
}
