// Package loader parses the engine's declarative Markdown documents (AGENTS,
// role, task, and optional plan) into the typed records of internal/types.
package loader

import (
	"regexp"
	"strings"
)

// normalizeLineEndings converts CRLF/CR to LF, per spec §4.1.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

var headingRe = regexp.MustCompile(`(?m)^##[ \t]+(.+?)[ \t]*$`)

// extractSection returns the body text following a case-insensitive `## name`
// heading, up to the next `## ` boundary (or end of document). Returns ""
// if the heading is not present.
func extractSection(content, name string) string {
	locs := headingRe.FindAllStringSubmatchIndex(content, -1)
	target := strings.ToLower(strings.TrimSpace(name))
	for i, loc := range locs {
		heading := strings.ToLower(strings.TrimSpace(content[loc[2]:loc[3]]))
		// Allow "## Status: BLOCKED" style headings to still match "Status".
		headingKey := heading
		if idx := strings.Index(heading, ":"); idx >= 0 {
			headingKey = strings.TrimSpace(heading[:idx])
		}
		if heading != target && headingKey != target {
			continue
		}
		start := loc[1]
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return strings.TrimSpace(content[start:end])
	}
	return ""
}

// findHeadingLine returns the full raw heading line text (e.g. "## Status:
// BLOCKED") for the first heading whose name-before-colon matches, case
// insensitively. Returns "" if absent.
func findHeadingLine(content, name string) string {
	locs := headingRe.FindAllStringSubmatchIndex(content, -1)
	target := strings.ToLower(strings.TrimSpace(name))
	for _, loc := range locs {
		heading := strings.TrimSpace(content[loc[2]:loc[3]])
		lower := strings.ToLower(heading)
		key := lower
		if idx := strings.Index(lower, ":"); idx >= 0 {
			key = strings.TrimSpace(lower[:idx])
		}
		if key == target {
			return heading
		}
	}
	return ""
}

var subHeadingRe = regexp.MustCompile(`(?m)^###[ \t]+(.+?)[ \t]*$`)

// extractSubsection returns the body following a `### name` heading within
// the given section body, up to the next `### ` boundary.
func extractSubsection(sectionBody, name string) string {
	locs := subHeadingRe.FindAllStringSubmatchIndex(sectionBody, -1)
	target := strings.ToLower(strings.TrimSpace(name))
	for i, loc := range locs {
		heading := strings.ToLower(strings.TrimSpace(sectionBody[loc[2]:loc[3]]))
		if heading != target {
			continue
		}
		start := loc[1]
		end := len(sectionBody)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return strings.TrimSpace(sectionBody[start:end])
	}
	return ""
}

var bulletRe = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+(.+)$`)

// extractBulletList returns the trimmed text of each `-` or `*` bullet line
// in body, at any indentation, in document order.
func extractBulletList(body string) []string {
	matches := bulletRe.FindAllStringSubmatch(body, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

// extractPathList is extractBulletList with surrounding backticks stripped
// from each entry, used for scope glob lists.
func extractPathList(body string) []string {
	items := extractBulletList(body)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, strings.Trim(it, "`"))
	}
	return out
}

var checklistRe = regexp.MustCompile(`(?m)^- \[([ xX])\][ \t]+(.+)$`)

// extractChecklist returns each checklist item's text (marker stripped), in
// document order, for lines matching `- [ ]`/`- [x]` at zero indentation.
func extractChecklist(body string) []string {
	matches := checklistRe.FindAllStringSubmatch(body, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[2]))
	}
	return out
}
