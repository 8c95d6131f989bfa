package executor

import (
	"context"
	"fmt"

	"github.com/aidf-dev/aidf/internal/aidferr"
	"github.com/aidf-dev/aidf/internal/loader"
	"github.com/aidf-dev/aidf/internal/metrics"
	"github.com/aidf-dev/aidf/internal/scope"
	"github.com/aidf-dev/aidf/internal/types"
)

// preflightResult carries everything PreFlight produces forward into the
// iteration loop and PostFlight.
type preflightResult struct {
	collector *metrics.Collector
	loaded    types.LoadedContext
	guard     *scope.Guard
	blocked   *types.BlockedStatus
	taskPath  string
}

// preFlight loads context, validates it, and (on resume) recovers the
// blocked state a previous run left behind, per spec §4.5 PreFlight.
func (e *Executor) preFlight(ctx context.Context, opts RunOptions, state *types.ExecutorState) (preflightResult, error) {
	providerInfo := types.ProviderInfo{Type: string(e.Provider.Variant()), Model: e.Provider.Name()}
	collector := metrics.New(opts.TaskPath, e.Config.maxIterationsOrDefault(), providerInfo)
	collector.SetCostRates(e.Config.CostRates)
	collector.SetStatus(types.StatusRunning)

	pf := preflightResult{collector: collector, guard: scope.NewGuard(), taskPath: opts.TaskPath}

	collector.StartPhase("preflight")
	defer collector.EndPhase("preflight")

	e.Observer.phase("preflight", 0)

	loaded, err := loader.LoadContext(opts.TaskPath, opts.Skills)
	if err != nil {
		return pf, err
	}
	if opts.Plan != nil {
		loaded.Plan = opts.Plan
	}
	pf.loaded = loaded

	collector.SetTaskInfo(loaded.Task.Goal, string(loaded.Task.TaskType), loaded.Role.Name)

	total, breakdown := loader.EstimateContextSize(loaded)
	state.ContextTokens = &total
	state.ContextBreakdown = breakdown
	collector.SetContextTokens(total, breakdown)

	if err := validateNoSecrets(loaded); err != nil {
		return pf, err
	}

	if opts.Resume {
		if loaded.Task.BlockedStatus == nil {
			return pf, aidferr.ConfigInvalid(fmt.Sprintf("task %s is not blocked, cannot resume", opts.TaskPath))
		}
		pf.blocked = loaded.Task.BlockedStatus
		state.Iteration = pf.blocked.PreviousIteration
		state.MergeModifiedFiles(pf.blocked.FilesModified)
	}

	return pf, nil
}
