// Package normalize canonicalizes URLs, hosts and timestamps so that
// fingerprinting and comparison are stable across feeds.
package normalize

import (
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// CanonicalURL lowercases a URL, strips its query string, fragment and
// trailing slash. Empty input yields the empty string. Idempotent.
func CanonicalURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimRight(strings.ToLower(u), "/")
}

// DomainFromURL extracts the host of a URL, case-folded and without a
// leading "www.". Returns "" when no host is parseable.
func DomainFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// ParseTimestamp parses a free-text date best-effort, assuming UTC when no
// zone is given. The second return is false when the input is unparseable;
// callers decide between "use now" and "skip".
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
