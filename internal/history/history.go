// Package history persists the previous run's report and computes how much a
// single field changed between runs.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/naka-gawa/github-liveness/internal/domain"
	"github.com/naka-gawa/github-liveness/internal/fieldpath"
)

// Record wraps the single stored snapshot. A store holds at most one record
// per path; every save overwrites the previous one.
type Record struct {
	LastData domain.Report `json:"last_data"`
}

// Store reads and writes one record at a fixed path. There is no cross-process
// locking, so two concurrent invocations against the same path can race.
type Store struct {
	path   string
	logger zerolog.Logger
}

// NewStore creates a store bound to the given file path.
func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load returns the stored record, or nil when no history exists yet.
func (s *Store) Load() (*Record, error) {
	content, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug().Str("path", s.path).Msg("history file does not exist")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file %s: %w", s.path, err)
	}
	var record Record
	if err := json.Unmarshal(content, &record); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", s.path, err)
	}
	s.logger.Debug().Str("path", s.path).Int("bytes", len(content)).Msg("loaded history")
	return &record, nil
}

// Save overwrites the store with the given report, creating parent
// directories as needed.
func (s *Store) Save(report *domain.Report) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	content, err := json.MarshalIndent(Record{LastData: *report}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize history data: %w", err)
	}
	if err := os.WriteFile(s.path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write history file %s: %w", s.path, err)
	}
	s.logger.Debug().Str("path", s.path).Int("bytes", len(content)).Msg("saved history")
	return nil
}

// ChangeMagnitude measures how much one field differs between the stored
// report and the current one. The result doubles as a process exit status and
// is deliberately not clamped to the conventional 0-255 range.
func (r *Record) ChangeMagnitude(current *domain.Report, path string) (int64, error) {
	currentValue, err := fieldpath.Extract(current, path)
	if err != nil {
		return 0, err
	}
	lastValue, err := fieldpath.Extract(&r.LastData, path)
	if err != nil {
		return 0, err
	}
	return magnitude(currentValue, lastValue, path), nil
}

// magnitude applies the type-aware change rules to two JSON-decoded values:
// numbers diff by truncated absolute difference, booleans and plain strings
// by equality, timestamps on date-like paths by whole days, and any kind
// mismatch counts as changed.
func magnitude(current, last any, path string) int64 {
	switch curr := current.(type) {
	case float64:
		if prev, ok := last.(float64); ok {
			return int64(math.Abs(curr - prev))
		}
	case bool:
		if prev, ok := last.(bool); ok {
			if curr == prev {
				return 0
			}
			return 1
		}
	case string:
		if prev, ok := last.(string); ok {
			if strings.Contains(path, "date") {
				currTime, currErr := time.Parse(time.RFC3339, curr)
				prevTime, prevErr := time.Parse(time.RFC3339, prev)
				if currErr == nil && prevErr == nil {
					days := int64(currTime.Sub(prevTime).Hours() / 24)
					if days < 0 {
						days = -days
					}
					return days
				}
			}
			if curr == prev {
				return 0
			}
			return 1
		}
	case nil:
		if last == nil {
			return 0
		}
		return 1
	}
	return 1
}
