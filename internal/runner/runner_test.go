package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aidf-dev/aidf/internal/plan"
	"github.com/aidf-dev/aidf/internal/types"
)

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunEmptyPlanSucceedsWithoutInvokingExecutor(t *testing.T) {
	invoked := false
	exec := func(ctx context.Context, task types.PlanTask) (types.Status, error) {
		invoked = true
		return types.StatusCompleted, nil
	}

	result, err := Run(context.Background(), "", nil, exec, Options{})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0, result.TotalTasks)
	require.False(t, invoked)
}

func TestRunMarksCompletedTasksAndStopsOnFailure(t *testing.T) {
	path := writePlanFile(t, "- [ ] `a.md` — first\n- [ ] `b.md` — second (wave: 2)\n")
	tasks, err := plan.ParseFile(path, nil)
	require.NoError(t, err)

	exec := func(ctx context.Context, task types.PlanTask) (types.Status, error) {
		if task.Filename == "a.md" {
			return types.StatusCompleted, nil
		}
		return types.StatusFailed, nil
	}

	result, err := Run(context.Background(), path, tasks, exec, Options{})
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Len(t, result.Waves, 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "- [x] `a.md`")
	require.Contains(t, string(data), "- [ ] `b.md`")
}

func TestRunContinuesPastFailedWaveWhenConfigured(t *testing.T) {
	path := writePlanFile(t, "- [ ] `a.md` — first\n- [ ] `b.md` — second (wave: 2)\n")
	tasks, err := plan.ParseFile(path, nil)
	require.NoError(t, err)

	exec := func(ctx context.Context, task types.PlanTask) (types.Status, error) {
		if task.Filename == "a.md" {
			return types.StatusFailed, nil
		}
		return types.StatusCompleted, nil
	}

	result, err := Run(context.Background(), path, tasks, exec, Options{ContinueOnError: true})
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Len(t, result.Waves, 2)
}

func TestRunDryRunDoesNotInvokeExecutor(t *testing.T) {
	path := writePlanFile(t, "- [ ] `a.md` — first\n")
	tasks, err := plan.ParseFile(path, nil)
	require.NoError(t, err)

	invoked := false
	exec := func(ctx context.Context, task types.PlanTask) (types.Status, error) {
		invoked = true
		return types.StatusCompleted, nil
	}

	result, err := Run(context.Background(), path, tasks, exec, Options{DryRun: true})
	require.NoError(t, err)
	require.False(t, invoked)
	require.Equal(t, 1, result.TotalTasks)
}

func TestRunWaveWithConcurrencyRunsAllTasks(t *testing.T) {
	path := writePlanFile(t, "- [ ] `a.md` — x (wave: 1)\n- [ ] `b.md` — y (wave: 1)\n- [ ] `c.md` — z (wave: 1)\n")
	tasks, err := plan.ParseFile(path, nil)
	require.NoError(t, err)

	exec := func(ctx context.Context, task types.PlanTask) (types.Status, error) {
		return types.StatusCompleted, nil
	}

	result, err := Run(context.Background(), path, tasks, exec, Options{Concurrency: 2})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Waves[0].Results, 3)
}
