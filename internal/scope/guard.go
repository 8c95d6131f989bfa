package scope

import (
	"fmt"
	"strings"

	"github.com/aidf-dev/aidf/internal/types"
)

// Mode is the scope-enforcement mode.
type Mode string

const (
	ModeStrict     Mode = "strict"
	ModeAsk        Mode = "ask"
	ModePermissive Mode = "permissive"
)

// CheckFileChange classifies a single file change against scope under mode,
// per the §4.2 precedence: forbidden > ask_before > allowed > default-allow.
func CheckFileChange(file string, s types.Scope, mode Mode) types.ScopeDecision {
	if ok, _ := matchAny(file, s.Forbidden); ok {
		return types.Block([]string{file}, "in forbidden scope")
	}

	if ok, _ := matchAny(file, s.AskBefore); ok {
		if mode == ModePermissive {
			return types.Allow()
		}
		return types.AskUser([]string{file}, "in ask-before scope")
	}

	if len(s.Allowed) > 0 {
		if ok, _ := matchAny(file, s.Allowed); !ok {
			switch mode {
			case ModeStrict:
				return types.Block([]string{file}, "outside allowed scope")
			case ModeAsk:
				return types.AskUser([]string{file}, "outside allowed scope")
			default: // permissive
				return types.Allow()
			}
		}
	}

	return types.Allow()
}

// CheckFileChanges classifies a batch of file changes. BLOCK decisions take
// precedence over ASK_USER; the offender list is deduplicated, preserving
// input order.
func CheckFileChanges(files []string, s types.Scope, mode Mode) types.ScopeDecision {
	var blocked, asked []string
	seenBlocked := map[string]bool{}
	seenAsked := map[string]bool{}
	blockReason, askReason := "", ""

	for _, f := range files {
		d := CheckFileChange(f, s, mode)
		switch d.Kind {
		case types.ScopeBlock:
			if !seenBlocked[f] {
				seenBlocked[f] = true
				blocked = append(blocked, f)
				blockReason = d.Reason
			}
		case types.ScopeAskUser:
			if !seenAsked[f] {
				seenAsked[f] = true
				asked = append(asked, f)
				askReason = d.Reason
			}
		}
	}

	if len(blocked) > 0 {
		return types.Block(blocked, blockReason)
	}
	if len(asked) > 0 {
		return types.AskUser(asked, askReason)
	}
	return types.Allow()
}

// Guard retains the mutable set of user-approved paths for one executor run.
type Guard struct {
	approved map[string]bool
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{approved: map[string]bool{}}
}

// Approve marks paths as user-approved, exempting them from future revert
// lists even if they remain BLOCK under scope.
func (g *Guard) Approve(paths ...string) {
	for _, p := range paths {
		g.approved[p] = true
	}
}

// GetChangesToRevert returns the subset of changes that are currently BLOCK
// under scope and not in the approved set.
func (g *Guard) GetChangesToRevert(changes []string, s types.Scope, mode Mode) []string {
	var out []string
	for _, f := range changes {
		if g.approved[f] {
			continue
		}
		if CheckFileChange(f, s, mode).Kind == types.ScopeBlock {
			out = append(out, f)
		}
	}
	return out
}

// GenerateViolationReport produces a human-readable Markdown report listing
// action, reason, and the scope configuration, for injection as executor
// retry feedback.
func GenerateViolationReport(changes []string, s types.Scope, mode Mode) string {
	var sb strings.Builder
	sb.WriteString("## Scope Violation\n\n")
	for _, f := range changes {
		d := CheckFileChange(f, s, mode)
		action := "ALLOW"
		switch d.Kind {
		case types.ScopeBlock:
			action = "BLOCK"
		case types.ScopeAskUser:
			action = "ASK_USER"
		}
		fmt.Fprintf(&sb, "- `%s`: %s (%s)\n", f, action, d.Reason)
	}
	sb.WriteString("\n### Scope Configuration\n\n")
	fmt.Fprintf(&sb, "- Mode: %s\n", mode)
	fmt.Fprintf(&sb, "- Allowed: %s\n", strings.Join(s.Allowed, ", "))
	fmt.Fprintf(&sb, "- Forbidden: %s\n", strings.Join(s.Forbidden, ", "))
	fmt.Fprintf(&sb, "- Ask Before: %s\n", strings.Join(s.AskBefore, ", "))
	return sb.String()
}
