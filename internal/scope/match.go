// Package scope implements the glob-based scope guard that classifies file
// changes as ALLOW / ASK_USER / BLOCK.
package scope

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// normalize strips a leading "./" from a path or pattern.
func normalize(p string) string {
	return strings.TrimPrefix(p, "./")
}

// hasWildcard reports whether s contains any glob metacharacter.
func hasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// matches implements the scope guard's per-pattern path-matching algorithm
// (spec §4.2): direct glob match (dotfiles included, via doublestar, which
// matches dotfiles by default unlike some glob libraries); then, for
// wildcard-free or "**"-terminated patterns, a "<pattern>/**" retry; then,
// for directory-like patterns without a file-extension wildcard, a
// path-prefix/equality test.
func matches(candidate, pattern string) bool {
	candidate = normalize(candidate)
	pattern = normalize(pattern)

	if ok, _ := doublestar.Match(pattern, candidate); ok {
		return true
	}

	if !hasWildcard(pattern) || strings.HasSuffix(pattern, "**") {
		nested := strings.TrimSuffix(pattern, "/") + "/**"
		if ok, _ := doublestar.Match(nested, candidate); ok {
			return true
		}
	}

	if isDirectoryLike(pattern) {
		baseDir := strings.TrimSuffix(pattern, "/")
		if candidate == baseDir || strings.HasPrefix(candidate, baseDir+"/") {
			return true
		}
	}

	return false
}

// isDirectoryLike reports whether pattern looks like a directory path
// rather than a file-extension glob: it has no wildcard, or its wildcard is
// not in the final path segment's extension position (e.g. "src/**" is
// directory-like, "src/*.go" is not).
func isDirectoryLike(pattern string) bool {
	if !hasWildcard(pattern) {
		return true
	}
	last := pattern
	if idx := strings.LastIndex(pattern, "/"); idx >= 0 {
		last = pattern[idx+1:]
	}
	return !strings.Contains(last, ".")
}

// matchAny returns whether candidate matches any pattern in patterns, and
// the first matching pattern.
func matchAny(candidate string, patterns []string) (bool, string) {
	for _, p := range patterns {
		if matches(candidate, p) {
			return true, p
		}
	}
	return false, ""
}
