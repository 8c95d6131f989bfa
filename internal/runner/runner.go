// Package runner executes a parsed plan wave by wave, running each wave's
// tasks through a caller-supplied single-task executor (spec §4.6).
package runner

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/aidf-dev/aidf/internal/plan"
	"github.com/aidf-dev/aidf/internal/types"
)

// TaskExecutor runs a single plan task to completion and reports its
// terminal status. It is supplied by the caller (the executor package in
// the full binary); the runner itself has no opinion on what "running a
// task" means.
type TaskExecutor func(ctx context.Context, task types.PlanTask) (types.Status, error)

// Options configures a Runner.
type Options struct {
	Concurrency     int  // max parallel tasks within one wave; default 3
	ContinueOnError bool // proceed to next wave even if this wave had failures
	DryRun          bool // return the planned waves without executing anything
}

func (o Options) concurrencyOrDefault() int {
	if o.Concurrency <= 0 {
		return 3
	}
	return o.Concurrency
}

// TaskResult is one task's outcome within a wave.
type TaskResult struct {
	Task   types.PlanTask
	Status types.Status
	Err    error
}

// WaveResult is one wave's outcomes.
type WaveResult struct {
	Number  int
	Results []TaskResult
}

// PlanExecutionResult is the overall outcome across every wave.
type PlanExecutionResult struct {
	Success    bool
	TotalTasks int
	Waves      []WaveResult
}

// Run executes every wave of tasks in ascending order, sequentially across
// waves. Within a wave of size 1 the executor is invoked directly; within a
// wave of size > 1, up to opts.Concurrency tasks run concurrently. An empty
// plan returns {Success: true, TotalTasks: 0} without invoking exec.
func Run(ctx context.Context, planPath string, tasks []types.PlanTask, exec TaskExecutor, opts Options) (PlanExecutionResult, error) {
	result := PlanExecutionResult{Success: true, TotalTasks: len(tasks)}
	if len(tasks) == 0 {
		return result, nil
	}

	waves := plan.GroupWaves(tasks)
	if opts.DryRun {
		for _, w := range waves {
			for _, t := range w.Tasks {
				result.Waves = append(result.Waves, WaveResult{Number: w.Number, Results: []TaskResult{{Task: t}}})
			}
		}
		return result, nil
	}

	editor := newCheckboxEditor(planPath)

	for _, wave := range waves {
		waveResult, err := runWave(ctx, wave, exec, opts, editor)
		if err != nil {
			return result, err
		}
		result.Waves = append(result.Waves, waveResult)

		failed := false
		for _, r := range waveResult.Results {
			if r.Status == types.StatusFailed || r.Err != nil {
				failed = true
			}
		}
		if failed {
			result.Success = false
			if !opts.ContinueOnError {
				return result, nil
			}
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
	}

	return result, nil
}

func runWave(ctx context.Context, wave types.PlanWave, exec TaskExecutor, opts Options, editor *checkboxEditor) (WaveResult, error) {
	wr := WaveResult{Number: wave.Number}

	if len(wave.Tasks) == 1 {
		t := wave.Tasks[0]
		status, err := exec(ctx, t)
		markIfTerminal(editor, t, status, err)
		wr.Results = append(wr.Results, TaskResult{Task: t, Status: status, Err: err})
		return wr, nil
	}

	p := pool.NewWithResults[TaskResult]().WithContext(ctx).WithMaxGoroutines(opts.concurrencyOrDefault())
	for _, t := range wave.Tasks {
		t := t
		p.Go(func(ctx context.Context) (TaskResult, error) {
			status, err := exec(ctx, t)
			markIfTerminal(editor, t, status, err)
			return TaskResult{Task: t, Status: status, Err: err}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return wr, fmt.Errorf("running wave %d: %w", wave.Number, err)
	}
	wr.Results = results
	return wr, nil
}

func markIfTerminal(editor *checkboxEditor, t types.PlanTask, status types.Status, err error) {
	if err != nil || status != types.StatusCompleted {
		return
	}
	_ = editor.MarkDone(t.LineNumber)
}
