package loader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aidf-dev/aidf/internal/types"
)

var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\n(.*?)```")

var boldFieldRe = regexp.MustCompile(`(?m)^\*\*([^:*]+):\*\*[ \t]*(.*)$`)

var filesModifiedLineRe = regexp.MustCompile("(?m)^- `([^`]+)`$")

// parseBlockedStatus extracts a types.BlockedStatus from task content, when
// a `## Status:` heading whose value contains "BLOCKED" is present.
func parseBlockedStatus(content string) *types.BlockedStatus {
	statusHeading := findHeadingLine(content, "Status")
	if statusHeading == "" || !strings.Contains(strings.ToUpper(statusHeading), "BLOCKED") {
		return nil
	}

	statusBody := extractSection(content, "Status")

	execLog := extractSubsection(statusBody, "Execution Log")
	fields := map[string]string{}
	for _, m := range boldFieldRe.FindAllStringSubmatch(execLog, -1) {
		key := strings.ToLower(strings.TrimSpace(m[1]))
		fields[key] = strings.TrimSpace(m[2])
	}

	iteration := 0
	if v, ok := fields["iterations"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			iteration = n
		}
	}

	blockingIssue := extractSubsection(statusBody, "Blocking Issue")
	if m := fencedBlockRe.FindStringSubmatch(blockingIssue); m != nil {
		blockingIssue = strings.TrimSpace(m[1])
	} else {
		blockingIssue = strings.TrimSpace(blockingIssue)
	}

	filesBody := extractSubsection(statusBody, "Files Modified")
	var files []string
	if strings.TrimSpace(filesBody) != "_None_" {
		for _, m := range filesModifiedLineRe.FindAllStringSubmatch(filesBody, -1) {
			files = append(files, m[1])
		}
	}

	return &types.BlockedStatus{
		PreviousIteration: iteration,
		FilesModified:     files,
		BlockingIssue:     blockingIssue,
		StartedAt:         fields["started"],
		BlockedAt:         fields["blocked at"],
	}
}
