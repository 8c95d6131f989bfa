package executor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aidf-dev/aidf/internal/report"
	"github.com/aidf-dev/aidf/internal/types"
)

// postFlight moves the task file into its terminal directory, stages it,
// persists the report, and optionally commits/pushes/delivers a webhook.
// Every collaborator failure here is swallowed and logged to the observer
// rather than altered into the run's own result, per spec §4.5 PostFlight.
// skipMove suppresses the task file move entirely; PreFlight failures must
// never move the task file, since it was never validated (spec §4.5).
func (e *Executor) postFlight(ctx context.Context, pf preflightResult, state *types.ExecutorState, skipMove bool) Result {
	pf.collector.StartPhase("postflight")
	defer pf.collector.EndPhase("postflight")
	e.Observer.phase("postflight", state.Iteration)

	if !skipMove {
		e.moveTaskFile(ctx, pf, state)
	}

	rep := pf.collector.ToReport()
	result := Result{State: state, Report: rep}

	if e.Config.ReportWriter != nil {
		path, err := e.Config.ReportWriter.Write(rep)
		if err != nil {
			e.Observer.output(fmt.Sprintf("failed to persist report: %v", err))
		} else {
			result.ReportPath = path
		}
	}

	if state.Status == types.StatusCompleted {
		e.commitAndPush(ctx, pf)
	}

	if e.Config.Webhook.Enabled {
		for _, attempt := range report.Deliver(ctx, http.DefaultClient, rep, e.Config.Webhook) {
			if attempt.Err != nil {
				e.Observer.output(fmt.Sprintf("webhook delivery attempt %d failed: %v", attempt.Attempt, attempt.Err))
			}
		}
	}

	e.Observer.phase("done", state.Iteration)
	return result
}

func (e *Executor) moveTaskFile(ctx context.Context, pf preflightResult, state *types.ExecutorState) {
	if pf.taskPath == "" {
		return
	}

	var destDir string
	switch state.Status {
	case types.StatusCompleted:
		destDir = e.Config.CompletedDir
	case types.StatusBlocked, types.StatusFailed:
		destDir = e.Config.BlockedDir
	default:
		return
	}
	if destDir == "" {
		return
	}

	dest := filepath.Join(destDir, filepath.Base(pf.taskPath))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		e.Observer.output(fmt.Sprintf("failed to create %s: %v", destDir, err))
		return
	}
	if err := os.Rename(pf.taskPath, dest); err != nil {
		e.Observer.output(fmt.Sprintf("failed to move task file to %s: %v", destDir, err))
		return
	}

	if e.Git != nil {
		if err := e.Git.Stage(ctx, pf.taskPath, dest); err != nil {
			e.Observer.output(fmt.Sprintf("failed to stage task file move: %v", err))
		}
	}
}

func (e *Executor) commitAndPush(ctx context.Context, pf preflightResult) {
	if e.Git == nil || !e.Config.AutoCommit {
		return
	}

	if err := e.Git.Stage(ctx, "."); err != nil {
		e.Observer.output(fmt.Sprintf("failed to stage changes: %v", err))
		return
	}

	message := e.Config.CommitMessagePrefix
	if message == "" {
		message = "chore"
	}
	message = fmt.Sprintf("%s: complete %s", message, filepath.Base(pf.taskPath))

	if err := e.Git.Commit(ctx, message); err != nil {
		e.Observer.output(fmt.Sprintf("failed to commit: %v", err))
		return
	}

	if e.Config.AutoPush {
		if err := e.Git.Push(ctx); err != nil {
			e.Observer.output(fmt.Sprintf("failed to push: %v", err))
		}
	}
}
