package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLinkHeader(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected map[string]string
	}{
		{
			name:   "next and last relations",
			header: `<https://api.github.com/repositories/1/commits?per_page=1&page=2>; rel="next", <https://api.github.com/repositories/1/commits?per_page=1&page=37>; rel="last"`,
			expected: map[string]string{
				"next": "https://api.github.com/repositories/1/commits?per_page=1&page=2",
				"last": "https://api.github.com/repositories/1/commits?per_page=1&page=37",
			},
		},
		{
			name:     "empty header",
			header:   "",
			expected: map[string]string{},
		},
		{
			name:   "malformed segment is skipped, valid ones kept",
			header: `garbage without brackets; rel="last", <https://example.com?page=5>; rel="next"`,
			expected: map[string]string{
				"next": "https://example.com?page=5",
			},
		},
		{
			name:     "segment without rel parameter",
			header:   `<https://example.com?page=5>`,
			expected: map[string]string{},
		},
		{
			name:     "reversed brackets",
			header:   `>https://example.com?page=5<; rel="last"`,
			expected: map[string]string{},
		},
		{
			name:   "extra parameters around rel",
			header: `<https://example.com?page=9>; type="text/html"; rel="last"`,
			expected: map[string]string{
				"last": "https://example.com?page=9",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLinkHeader(tc.header))
		})
	}
}

func TestLastPageCount(t *testing.T) {
	testCases := []struct {
		name          string
		header        string
		expectedCount int
		expectedOK    bool
	}{
		{
			name:          "last relation with page parameter resolves regardless of anything else",
			header:        `<https://api.github.com/repos/o/r/commits?per_page=1&page=37>; rel="last"`,
			expectedCount: 37,
			expectedOK:    true,
		},
		{
			name:       "no last relation",
			header:     `<https://example.com?page=5>; rel="next"`,
			expectedOK: false,
		},
		{
			name:       "last relation without page parameter",
			header:     `<https://example.com?per_page=1>; rel="last"`,
			expectedOK: false,
		},
		{
			name:       "last relation with non-numeric page",
			header:     `<https://example.com?page=abc>; rel="last"`,
			expectedOK: false,
		},
		{
			name:       "empty header",
			header:     "",
			expectedOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			count, ok := LastPageCount(tc.header)
			assert.Equal(t, tc.expectedOK, ok)
			if tc.expectedOK {
				assert.Equal(t, tc.expectedCount, count)
			}
		})
	}
}
