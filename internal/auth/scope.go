package auth

import (
	"sort"
	"strings"
)

// CanonicalScope normalizes a space-delimited OAuth2 scope string into a
// stable form: blank tokens dropped, duplicates removed, remaining tokens
// sorted lexicographically.
//
// Spotify treats a byte-different scope string as a changed grant and forces
// re-consent, so every scope that reaches the authorization request or the
// cache comparison goes through here first.
func CanonicalScope(scope string) string {
	parts := strings.Fields(scope)
	if len(parts) == 0 {
		return ""
	}

	seen := make(map[string]struct{}, len(parts))
	unique := make([]string, 0, len(parts))
	for _, p := range parts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}

	sort.Strings(unique)
	return strings.Join(unique, " ")
}

// ScopeCovers reports whether the granted scope string contains every token
// of the requested scope string.
func ScopeCovers(granted, requested string) bool {
	have := make(map[string]struct{})
	for _, s := range strings.Fields(granted) {
		have[s] = struct{}{}
	}

	for _, s := range strings.Fields(requested) {
		if _, ok := have[s]; !ok {
			return false
		}
	}
	return true
}
