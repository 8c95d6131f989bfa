package skill

import (
	"strings"

	"github.com/aidf-dev/aidf/internal/types"
)

// scan runs the closed pattern set against body (with fenced code blocks
// blanked out) and returns one warning per matched pattern, tagged with the
// first-occurrence line number.
func scan(body string) []types.SkillWarning {
	stripped := stripFencedCode(body)
	lines := strings.Split(stripped, "\n")

	var warnings []types.SkillWarning
	for _, p := range patterns {
		for lineNum, line := range lines {
			if p.re.MatchString(line) {
				warnings = append(warnings, types.SkillWarning{
					Severity: string(p.severity),
					Pattern:  p.label,
					Line:     lineNum + 1,
				})
				break
			}
		}
	}
	return warnings
}

// hasDanger reports whether any warning is DANGER-severity.
func hasDanger(warnings []types.SkillWarning) bool {
	for _, w := range warnings {
		if w.Severity == string(SeverityDanger) {
			return true
		}
	}
	return false
}
