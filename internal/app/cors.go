package app

import (
	"net/url"
	"strings"
)

// originMatcher checks browser origins against the configured allow-list.
// Patterns match on the host part: exact ("beteiligung.in.berlin.de"),
// subdomain wildcard ("*.liqd.net") or port wildcard ("localhost:*").
type originMatcher struct {
	patterns []string
}

func newOriginMatcher(patterns []string) *originMatcher {
	return &originMatcher{patterns: patterns}
}

// Allow reports whether the origin may use the participation API.
func (m *originMatcher) Allow(origin string) bool {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}
	for _, pattern := range m.patterns {
		if matchHostPattern(pattern, host) {
			return true
		}
	}
	return false
}

func matchHostPattern(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	default:
		return false
	}
}
