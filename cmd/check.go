// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-liveness/internal/config"
	"github.com/naka-gawa/github-liveness/internal/gateway"
	"github.com/naka-gawa/github-liveness/internal/history"
	"github.com/naka-gawa/github-liveness/internal/render"
	"github.com/naka-gawa/github-liveness/internal/scoring"
	"github.com/naka-gawa/github-liveness/internal/usecase"
)

var checkCmd = &cobra.Command{
	Use:   "check OWNER REPO",
	Short: "Checks whether a repository is actively maintained",
	Long: `Fetches activity signals for OWNER/REPO, scores them into an alive/dead
verdict, and prints the resulting report.

With --history the report is also stored as a snapshot. Adding --check FIELD
compares the named field (dot-separated, e.g. commits_total or
last_commit.date_utc) against the previous snapshot and exits with the change
magnitude as status code. The magnitude is not clamped to the usual 0-255
range, so large numeric diffs wrap on platforms that truncate exit codes.`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("config", "c", "", "Configuration file path (YAML)")
	checkCmd.Flags().String("format", "", "Output format: default, json, or field:field_name")
	checkCmd.Flags().Int("min-commits", 0, "Minimum number of commits for an established project")
	checkCmd.Flags().Int("min-contributors", 0, "Minimum number of contributors for an established project")
	checkCmd.Flags().Int("max-days", 0, "Maximum days since last commit for an active project")
	checkCmd.Flags().Float64("prs-scale", 0, "Scale for open pull requests scoring")
	checkCmd.Flags().Float64("issues-scale", 0, "Scale for open issues scoring")
	checkCmd.Flags().Int("max-release-days", 0, "Maximum release age in days considered fresh")
	checkCmd.Flags().Bool("no-releases", false, "Skip the latest-release lookup and scoring")
	checkCmd.Flags().String("history", "", "History file path for storing last run data")
	checkCmd.Flags().String("check", "", "Compare FIELD against history; exit code = change magnitude")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := configFromFlags(cmd, args)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg.Merge(fileCfg)
	}
	cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := render.ParseFormat(*cfg.Format)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if cfg.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.Disabled)
	}

	gw, err := gateway.NewGitHubGateway(os.Getenv("GITHUB_TOKEN"), logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	criteria := scoring.Criteria{
		MaxDays:         *cfg.MaxDays,
		MinCommits:      *cfg.MinCommits,
		MinContributors: *cfg.MinContributors,
		PRsScale:        *cfg.PRsScale,
		IssuesScale:     *cfg.IssuesScale,
		MaxReleaseDays:  *cfg.MaxReleaseDays,
		CheckReleases:   *cfg.CheckReleases,
	}

	inspector := usecase.NewInspector(gw, scoring.NewScorer(), logger)
	report, err := inspector.Inspect(context.Background(), cfg.Owner, cfg.Repo, criteria)
	if err != nil {
		return err
	}

	if cfg.HistoryPath != "" {
		store := history.NewStore(cfg.HistoryPath, logger)
		previous, err := store.Load()
		if err != nil {
			return err
		}
		// The snapshot is written before any diffing so the store reflects
		// the latest run even if the process exits right after the diff.
		if err := store.Save(report); err != nil {
			return err
		}
		if cfg.CheckField != "" {
			if previous == nil {
				logger.Debug().Msg("no history exists, nothing to compare")
				os.Exit(0)
			}
			change, err := previous.ChangeMagnitude(report, cfg.CheckField)
			if err != nil {
				return err
			}
			logger.Debug().Str("field", cfg.CheckField).Int64("magnitude", change).Msg("computed change magnitude")
			os.Exit(int(change))
		}
	}

	return render.Render(os.Stdout, format, report, *cfg.MaxReleaseDays, time.Now().UTC())
}

// configFromFlags builds the command-line side of the configuration. Only
// flags the user actually set are recorded, so merge precedence over the file
// configuration works.
func configFromFlags(cmd *cobra.Command, args []string) *config.Config {
	cfg := &config.Config{Owner: args[0], Repo: args[1]}
	flags := cmd.Flags()
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		cfg.Format = &v
	}
	if flags.Changed("min-commits") {
		v, _ := flags.GetInt("min-commits")
		cfg.MinCommits = &v
	}
	if flags.Changed("min-contributors") {
		v, _ := flags.GetInt("min-contributors")
		cfg.MinContributors = &v
	}
	if flags.Changed("max-days") {
		v, _ := flags.GetInt("max-days")
		cfg.MaxDays = &v
	}
	if flags.Changed("prs-scale") {
		v, _ := flags.GetFloat64("prs-scale")
		cfg.PRsScale = &v
	}
	if flags.Changed("issues-scale") {
		v, _ := flags.GetFloat64("issues-scale")
		cfg.IssuesScale = &v
	}
	if flags.Changed("max-release-days") {
		v, _ := flags.GetInt("max-release-days")
		cfg.MaxReleaseDays = &v
	}
	if flags.Changed("no-releases") {
		v := false
		cfg.CheckReleases = &v
	}
	cfg.HistoryPath, _ = flags.GetString("history")
	cfg.CheckField, _ = flags.GetString("check")
	cfg.Verbose, _ = cmd.InheritedFlags().GetBool("verbose")
	return cfg
}
