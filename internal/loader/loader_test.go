package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aidf-dev/aidf/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseTask(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ai", "AGENTS.md"), "## Project Overview\nA demo app.\n")
	taskPath := filepath.Join(dir, ".ai", "tasks", "pending", "add-widget.md")
	writeFile(t, taskPath, `## Goal
Add a widget.

## Task Type
component

## Scope

### Allowed
- `+"`src/**`"+`

### Forbidden
- `+"`node_modules/**`"+`

## Definition of Done
- [ ] Widget renders
- [x] Tests pass
`)

	task, err := ParseTask(taskPath)
	require.NoError(t, err)
	require.Equal(t, "Add a widget.", task.Goal)
	require.Equal(t, types.TaskTypeComponent, task.TaskType)
	require.Equal(t, []string{"src/**"}, task.Scope.Allowed)
	require.Equal(t, []string{"node_modules/**"}, task.Scope.Forbidden)
	require.Equal(t, []string{"Widget renders", "Tests pass"}, task.DefinitionOfDone)
	require.Nil(t, task.BlockedStatus)
}

func TestParseTaskUnknownTypeDefaultsToComponent(t *testing.T) {
	dir := t.TempDir()
	taskPath := filepath.Join(dir, "t.md")
	writeFile(t, taskPath, "## Task Type\nnonsense\n")

	task, err := ParseTask(taskPath)
	require.NoError(t, err)
	require.Equal(t, types.TaskTypeComponent, task.TaskType)
}

func TestParseTaskMissingFile(t *testing.T) {
	_, err := ParseTask(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
}

func TestParseBlockedStatus(t *testing.T) {
	content := "## Status: BLOCKED\n\n" +
		"### Execution Log\n" +
		"**Started:** 2026-01-01T00:00:00Z\n" +
		"**Iterations:** 5\n" +
		"**Blocked at:** 2026-01-01T01:00:00Z\n\n" +
		"### Blocking Issue\n```\nMissing API key\n```\n\n" +
		"### Files Modified\n" +
		"- `src/api/client.ts`\n" +
		"- `src/config/settings.ts`\n"

	bs := parseBlockedStatus(content)
	require.NotNil(t, bs)
	require.Equal(t, 5, bs.PreviousIteration)
	require.Equal(t, "Missing API key", bs.BlockingIssue)
	require.Equal(t, []string{"src/api/client.ts", "src/config/settings.ts"}, bs.FilesModified)
}

func TestParseBlockedStatusNoneFiles(t *testing.T) {
	content := "## Status: BLOCKED\n\n### Files Modified\n_None_\n"
	bs := parseBlockedStatus(content)
	require.NotNil(t, bs)
	require.Empty(t, bs.FilesModified)
}

func TestEstimateTokens(t *testing.T) {
	require.Equal(t, 0, EstimateTokens(""))
	require.Equal(t, 1, EstimateTokens("a"))
	require.Equal(t, 1, EstimateTokens("abcd"))
	require.Equal(t, 2, EstimateTokens("abcde"))
}
