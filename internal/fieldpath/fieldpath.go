// Package fieldpath resolves dot-separated field paths against the JSON form
// of a value, e.g. "commits_total" or "last_commit.date_utc" against a report.
package fieldpath

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NotFoundError reports a path segment that does not resolve.
type NotFoundError struct {
	Segment string
	Path    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("field '%s' not found in path '%s'", e.Segment, e.Path)
}

// Extract resolves path against doc's JSON representation. The returned leaf
// is whatever encoding/json decodes into an interface value: float64, bool,
// string, nil, or a nested map/slice.
func Extract(doc any, path string) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to project value to JSON: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode projected JSON: %w", err)
	}

	current := tree
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, &NotFoundError{Segment: segment, Path: path}
		}
		current, ok = obj[segment]
		if !ok {
			return nil, &NotFoundError{Segment: segment, Path: path}
		}
	}
	return current, nil
}
