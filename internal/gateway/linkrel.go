package gateway

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseLinkHeader parses a pagination Link header of the form
//
//	<https://...&page=2>; rel="next", <https://...&page=37>; rel="last"
//
// into a rel name to URL map. Malformed segments are skipped rather than
// failing the whole header.
func ParseLinkHeader(header string) map[string]string {
	rels := make(map[string]string)
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		start := strings.IndexByte(part, '<')
		end := strings.IndexByte(part, '>')
		if start < 0 || end < 0 || end < start {
			continue
		}
		target := part[start+1 : end]
		for _, param := range strings.Split(part[end+1:], ";") {
			param = strings.TrimSpace(param)
			rel, ok := strings.CutPrefix(param, `rel="`)
			if !ok {
				continue
			}
			rel, ok = strings.CutSuffix(rel, `"`)
			if ok && rel != "" {
				rels[rel] = target
			}
		}
	}
	return rels
}

// LastPageCount extracts the page number from the rel="last" URL. With page
// size 1 the last page index equals the item count. Returns false when the
// header carries no usable rel="last" page parameter.
func LastPageCount(header string) (int, bool) {
	last, ok := ParseLinkHeader(header)["last"]
	if !ok {
		return 0, false
	}
	u, err := url.Parse(last)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
