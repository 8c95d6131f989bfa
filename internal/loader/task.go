package loader

import (
	"os"
	"strings"

	"github.com/aidf-dev/aidf/internal/aidferr"
	"github.com/aidf-dev/aidf/internal/types"
)

// ParseTask parses a task Markdown file into a types.Task. Returns a
// ConfigMissing error when the file does not exist.
func ParseTask(taskPath string) (types.Task, error) {
	raw, err := os.ReadFile(taskPath)
	if err != nil {
		return types.Task{}, aidferr.ConfigMissing("task file not found: "+taskPath, err)
	}
	content := normalizeLineEndings(string(raw))

	task := types.Task{
		FilePath:         taskPath,
		Goal:             extractSection(content, "Goal"),
		TaskType:         types.ParseTaskType(strings.TrimSpace(extractSection(content, "Task Type"))),
		SuggestedRoles:   extractBulletList(extractSection(content, "Suggested Roles")),
		Requirements:     extractSection(content, "Requirements"),
		DefinitionOfDone: extractChecklist(extractSection(content, "Definition of Done")),
	}

	scopeBody := extractSection(content, "Scope")
	task.Scope = types.Scope{
		Allowed:   extractPathList(extractSubsection(scopeBody, "Allowed")),
		Forbidden: extractPathList(extractSubsection(scopeBody, "Forbidden")),
		AskBefore: extractPathList(extractSubsection(scopeBody, "Ask Before")),
	}

	if blocked := parseBlockedStatus(content); blocked != nil {
		task.BlockedStatus = blocked
	}

	return task, nil
}
