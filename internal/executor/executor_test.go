package executor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aidf-dev/aidf/internal/provider"
	"github.com/aidf-dev/aidf/internal/scope"
	"github.com/aidf-dev/aidf/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setupProject writes a minimal AGENTS.md, developer role, and task file
// under a fresh temp directory and returns the project root and task path.
func setupProject(t *testing.T, taskBody string) (string, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".ai", "AGENTS.md"), "## Project Overview\nA demo app.\n")
	writeFile(t, filepath.Join(root, ".ai", "roles", "developer.md"), "## Identity\nYou write code.\n")
	taskPath := filepath.Join(root, ".ai", "tasks", "pending", "task.md")
	writeFile(t, taskPath, taskBody)
	return root, taskPath
}

// scriptedProvider returns a fixed sequence of results, one per call to
// Execute, and records every prompt it was given.
type scriptedProvider struct {
	results []provider.ExecutionResult
	errs    []error
	calls   int
	prompts []string
}

func (p *scriptedProvider) Name() string                 { return "scripted" }
func (p *scriptedProvider) Variant() provider.VariantKind { return provider.VariantCLISubprocess }
func (p *scriptedProvider) IsAvailable() bool             { return true }

func (p *scriptedProvider) Execute(ctx context.Context, prompt string, opts provider.Options) (provider.ExecutionResult, error) {
	p.prompts = append(p.prompts, prompt)
	i := p.calls
	p.calls++
	var err error
	if i < len(p.errs) {
		err = p.errs[i]
	}
	if i < len(p.results) {
		return p.results[i], err
	}
	return provider.ExecutionResult{}, err
}

func baseConfig() Config {
	return Config{
		MaxIterations:          50,
		MaxConsecutiveFailures: 3,
		ScopeMode:              scope.ModeAsk,
	}
}

func TestRunHappyPathOneIteration(t *testing.T) {
	root, taskPath := setupProject(t, "## Goal\nDo the thing.\n")
	p := &scriptedProvider{
		results: []provider.ExecutionResult{
			{Success: true, Output: "<TASK_COMPLETE>", IterationComplete: true, CompletionSignal: "<TASK_COMPLETE>"},
		},
	}
	e := New(p, nil, root, baseConfig(), Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath})
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, result.State.Status)
	require.Equal(t, 1, result.State.Iteration)
}

func TestRunRetriesOnFailingValidationThenBlocksAtMaxFailures(t *testing.T) {
	root, taskPath := setupProject(t, "## Goal\nDo the thing.\n")
	cfg := baseConfig()
	cfg.MaxConsecutiveFailures = 3
	cfg.PreCommitCommands = []string{"grep -q NEEDLE " + filepath.Join(root, "marker.txt")}
	writeFile(t, filepath.Join(root, "marker.txt"), "no match here")

	completeResult := provider.ExecutionResult{Success: true, IterationComplete: true, CompletionSignal: "<TASK_COMPLETE>"}
	p := &scriptedProvider{
		results: []provider.ExecutionResult{completeResult, completeResult, completeResult},
	}
	e := New(p, nil, root, cfg, Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath})
	require.NoError(t, err)
	require.Equal(t, types.StatusBlocked, result.State.Status)
	require.Equal(t, 3, result.State.Iteration)
	require.Len(t, p.prompts, 3)
	require.NotContains(t, p.prompts[0], "Previous Validation Error")
	require.Contains(t, p.prompts[1], "Previous Validation Error")
	require.Contains(t, p.prompts[1], "failed")
}

func TestRunScopeViolationBlocksMidRun(t *testing.T) {
	root, taskPath := setupProject(t, `## Goal
Do the thing.

## Scope

### Forbidden
- `+"`secrets/**`"+`
`)
	p := &scriptedProvider{
		results: []provider.ExecutionResult{
			{Success: true, FilesChanged: []string{"secrets/key.pem"}, IterationComplete: false},
		},
	}
	e := New(p, nil, root, baseConfig(), Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath})
	require.NoError(t, err)
	require.Equal(t, types.StatusBlocked, result.State.Status)
	require.Contains(t, result.Report.BlockedReason, "scope violation")
}

func TestRunCompletionOverridesScopeBlock(t *testing.T) {
	root, taskPath := setupProject(t, `## Goal
Do the thing.

## Scope

### Forbidden
- `+"`secrets/**`"+`
`)
	p := &scriptedProvider{
		results: []provider.ExecutionResult{
			{Success: true, FilesChanged: []string{"secrets/key.pem"}, IterationComplete: true, CompletionSignal: "<TASK_COMPLETE>"},
		},
	}
	e := New(p, nil, root, baseConfig(), Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath})
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, result.State.Status)
}

func TestRunResumeBlockedTaskBuildsResumePrompt(t *testing.T) {
	root, taskPath := setupProject(t, `## Goal
Do the thing.

## Status: BLOCKED

### Execution Log
**Started:** 2026-01-01T00:00:00Z
**Iterations:** 5
**Blocked at:** 2026-01-01T01:00:00Z

### Blocking Issue
`+"```"+`
Missing API key
`+"```"+`

### Files Modified
- `+"`src/a.ts`"+`
`)
	p := &scriptedProvider{
		results: []provider.ExecutionResult{
			{Success: true, IterationComplete: true, CompletionSignal: "<TASK_COMPLETE>"},
		},
	}
	e := New(p, nil, root, baseConfig(), Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath, Resume: true})
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, result.State.Status)
	require.Len(t, p.prompts, 1)
	require.Contains(t, p.prompts[0], "Resuming Blocked Task")
	require.Contains(t, p.prompts[0], "iteration 5")
	require.Contains(t, p.prompts[0], "Missing API key")
}

func TestRunResumeWithoutBlockedStatusFails(t *testing.T) {
	root, taskPath := setupProject(t, "## Goal\nDo the thing.\n")
	p := &scriptedProvider{}
	e := New(p, nil, root, baseConfig(), Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath, Resume: true})
	require.Error(t, err)
	require.Equal(t, types.StatusFailed, result.State.Status)
}

func TestRunMaxIterationsReachedIsBlocked(t *testing.T) {
	root, taskPath := setupProject(t, "## Goal\nDo the thing.\n")
	cfg := baseConfig()
	cfg.MaxIterations = 1
	p := &scriptedProvider{
		results: []provider.ExecutionResult{
			{Success: true, Output: "still working", IterationComplete: false},
		},
	}
	e := New(p, nil, root, cfg, Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath})
	require.NoError(t, err)
	require.Equal(t, types.StatusBlocked, result.State.Status)
	require.Contains(t, strings.ToLower(result.Report.BlockedReason), "max iterations")
}

func TestRunMaxConsecutiveFailuresIsBlocked(t *testing.T) {
	root, taskPath := setupProject(t, "## Goal\nDo the thing.\n")
	cfg := baseConfig()
	cfg.MaxConsecutiveFailures = 1
	p := &scriptedProvider{
		errs: []error{context.DeadlineExceeded},
	}
	e := New(p, nil, root, cfg, Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath})
	require.NoError(t, err)
	require.Equal(t, types.StatusBlocked, result.State.Status)
	require.Equal(t, 1, result.State.Iteration)
}

func TestRunSecretInContextFailsPreFlight(t *testing.T) {
	root, taskPath := setupProject(t, "## Goal\nUse key sk-abcdefghijklmnopqrstuvwxyz1234.\n")
	p := &scriptedProvider{}
	e := New(p, nil, root, baseConfig(), Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath})
	require.Error(t, err)
	require.Equal(t, types.StatusFailed, result.State.Status)
	require.Equal(t, 0, p.calls)

	_, statErr := os.Stat(taskPath)
	require.NoError(t, statErr, "task file must not be moved when PreFlight itself failed")
}

func TestRunTaskBlockedSignalTerminatesImmediately(t *testing.T) {
	root, taskPath := setupProject(t, "## Goal\nDo the thing.\n")
	p := &scriptedProvider{
		results: []provider.ExecutionResult{
			{Success: false, Error: "BLOCKED: missing API credentials", FilesChanged: []string{"src/a.ts"}},
		},
	}
	e := New(p, nil, root, baseConfig(), Observer{})

	result, err := e.Run(context.Background(), RunOptions{TaskPath: taskPath})
	require.NoError(t, err)
	require.Equal(t, types.StatusBlocked, result.State.Status)
	require.Equal(t, 1, result.State.Iteration)
	require.Contains(t, result.Report.BlockedReason, "missing API credentials")
	require.Contains(t, result.State.FilesModified, "src/a.ts")
}
