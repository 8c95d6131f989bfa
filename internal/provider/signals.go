package provider

import "strings"

// completionSignals is the closed, ordered list of completion markers. The
// first substring match in provider output wins (spec §4.3).
var completionSignals = []string{
	"<TASK_COMPLETE>",
	"<DONE>",
	"## Task Complete",
	"✅ All done",
	"Definition of Done: All criteria met",
}

// DetectCompletionSignal scans output for the first matching marker in
// completionSignals, returning it and true. Absence returns ("", false).
func DetectCompletionSignal(output string) (string, bool) {
	for _, sig := range completionSignals {
		if strings.Contains(output, sig) {
			return sig, true
		}
	}
	return "", false
}

// blockedMarker is the literal substring that, per spec §4.5 step 6,
// signals the provider considers the task blocked.
const blockedMarker = "BLOCKED:"

// DetectBlockedSignal reports whether output contains the blocked marker.
func DetectBlockedSignal(output string) bool {
	return strings.Contains(output, blockedMarker)
}
