package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/aidf-dev/aidf/internal/metrics"
	"github.com/aidf-dev/aidf/internal/provider"
	"github.com/aidf-dev/aidf/internal/scope"
	"github.com/aidf-dev/aidf/internal/types"
	"github.com/aidf-dev/aidf/internal/validator"
)

// iterate runs the executor's main loop until a terminal status is reached,
// mutating state in place. It never returns an error directly; every
// failure is recorded onto state/collector instead (spec §4.5).
func (e *Executor) iterate(ctx context.Context, pf preflightResult, state *types.ExecutorState) {
	maxIterations := e.Config.maxIterationsOrDefault()
	maxFailures := e.Config.maxConsecutiveFailuresOrDefault()

	consecutiveFailures := 0
	var previousValidationError string
	var previousOutputTail string
	var conversationState any

	for state.Iteration < maxIterations {
		state.Iteration++
		iterStart := time.Now()

		e.Observer.phase("iterating", state.Iteration)
		pf.collector.StartPhase("iterate")

		var prompt string
		if state.Iteration == 1 || !e.Config.SessionContinuation {
			prompt = buildFullPrompt(pf.loaded, pf.blocked, previousValidationError)
		} else {
			prompt = buildContinuationPrompt(state.Iteration, previousOutputTail, previousValidationError)
		}
		previousValidationError = ""

		execOpts := provider.Options{
			Timeout:                    e.Config.TimeoutPerIteration,
			DangerouslySkipPermissions: e.Config.DangerouslySkipPermissions,
			OnOutput:                   e.Observer.output,
			SessionContinuation:        e.Config.SessionContinuation && state.Iteration > 1,
			ConversationState:          conversationState,
			WorkDir:                    e.ProjectRoot,
		}

		result, err := e.Provider.Execute(ctx, prompt, execOpts)
		pf.collector.EndPhase("iterate")
		pf.collector.RecordIteration(state.Iteration, time.Since(iterStart))
		e.Observer.iteration(state)

		if !result.Success && provider.DetectBlockedSignal(result.Error) {
			state.MergeModifiedFiles(result.FilesChanged)
			for _, f := range result.FilesChanged {
				pf.collector.RecordFileChange(metrics.FileModified, f)
			}
			pf.collector.SetConsecutiveFailures(consecutiveFailures)
			e.terminateBlocked(state, pf, result.Error)
			return
		}

		if err != nil || !result.Success {
			consecutiveFailures++
			pf.collector.RecordError(err)
			if consecutiveFailures >= maxFailures {
				pf.collector.SetConsecutiveFailures(consecutiveFailures)
				e.terminateBlocked(state, pf, "max consecutive failures reached: "+result.Error)
				return
			}
			continue
		}

		consecutiveFailures = 0
		previousOutputTail = result.Output
		conversationState = result.ConversationState
		if result.TokenUsage != nil {
			pf.collector.RecordTokenUsage(state.Iteration, result.TokenUsage.InputTokens, result.TokenUsage.OutputTokens)
		}

		state.MergeModifiedFiles(result.FilesChanged)
		for _, f := range result.FilesChanged {
			pf.collector.RecordFileChange(metrics.FileModified, f)
		}

		decision := scope.CheckFileChanges(result.FilesChanged, pf.loaded.Task.Scope, e.Config.ScopeMode)
		if decision.Kind != types.ScopeAllow {
			e.Observer.output(scope.GenerateViolationReport(decision.Files, pf.loaded.Task.Scope, e.Config.ScopeMode))
			for _, f := range decision.Files {
				pf.collector.RecordScopeViolation(f)
			}
		}

		if decision.Kind == types.ScopeAskUser {
			if e.Observer.askUser(decision.Files, decision.Reason) {
				pf.guard.Approve(decision.Files...)
				for _, f := range decision.Files {
					pf.collector.RecordScopeApproval(f)
				}
			} else {
				pf.collector.SetConsecutiveFailures(consecutiveFailures)
				e.terminateBlocked(state, pf, "scope approval denied: "+decision.Reason)
				return
			}
		} else if decision.Kind == types.ScopeBlock && !result.IterationComplete {
			// completion overrides a scope block only when the run is
			// otherwise done (spec §9(a)); mid-run blocks stop the loop.
			pf.collector.SetConsecutiveFailures(consecutiveFailures)
			e.terminateBlocked(state, pf, "scope violation: "+decision.Reason)
			return
		}

		if provider.DetectBlockedSignal(result.Output) {
			pf.collector.SetConsecutiveFailures(consecutiveFailures)
			e.terminateBlocked(state, pf, result.CompletionSignal)
			return
		}

		if !result.IterationComplete {
			continue
		}

		results := e.runValidation(ctx)
		for _, r := range results {
			pf.collector.RecordValidation(r)
		}
		if validator.AllPassed(results) {
			e.terminateCompleted(state, pf)
			return
		}

		// Completion signaled but validation failed: clear the signal
		// locally and retry with feedback rather than terminating.
		previousValidationError = validationFeedback(results)
		consecutiveFailures++
		if consecutiveFailures >= maxFailures {
			pf.collector.SetConsecutiveFailures(consecutiveFailures)
			e.terminateBlocked(state, pf, "validation kept failing after max consecutive failures")
			return
		}
	}

	pf.collector.SetConsecutiveFailures(consecutiveFailures)
	e.terminateBlocked(state, pf, "max iterations reached")
}

func (e *Executor) runValidation(ctx context.Context) []types.ValidationResult {
	if len(e.Config.PreCommitCommands) == 0 {
		return nil
	}
	return validator.RunPhase(ctx, e.Config.PreCommitCommands, e.ProjectRoot, e.Config.ValidationTimeout, validator.StopOnFirstFailure)
}

func (e *Executor) terminateCompleted(state *types.ExecutorState, pf preflightResult) {
	state.Status = types.StatusCompleted
	now := time.Now()
	state.CompletedAt = &now
	pf.collector.SetStatus(types.StatusCompleted)
	e.Observer.phase("completed", state.Iteration)
}

func (e *Executor) terminateBlocked(state *types.ExecutorState, pf preflightResult, reason string) {
	state.Status = types.StatusBlocked
	now := time.Now()
	state.CompletedAt = &now
	pf.collector.SetStatus(types.StatusBlocked)
	pf.collector.SetBlockedReason(reason)
	e.Observer.phase("blocked: "+reason, state.Iteration)
}

func validationFeedback(results []types.ValidationResult) string {
	var feedback string
	for _, r := range results {
		if r.Passed {
			continue
		}
		feedback += fmt.Sprintf("Command `%s` failed (exit %d):\n%s\n\n", r.Command, r.ExitCode, r.Output)
	}
	return feedback
}
