// Package metrics implements the executor's passive metrics accumulator:
// the executor calls its record/start/end methods, and it performs no I/O
// of its own (spec §4.8).
package metrics

import (
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/aidf-dev/aidf/internal/types"
)

// CostRates are the $/1M-token rates for one model, used by toReport's cost
// computation. A zero-value CostRates (both fields 0) means "no rates
// supplied" and the report's Cost field is omitted entirely.
type CostRates struct {
	InputPer1M  float64
	OutputPer1M float64
	Currency    string
}

// Collector is a pure accumulator: the executor is its sole caller, and it
// mutates no state shared with any other collaborator.
type Collector struct {
	runID   string
	startAt time.Time

	taskPath string
	taskGoal string
	taskType string
	roleName string
	provider types.ProviderInfo

	maxIterations       int
	iterations          int
	consecutiveFailures *int

	phaseOpen map[string]time.Time
	phaseSum  map[string]time.Duration

	tokensInput  int
	tokensOutput int
	perIterTok   []types.IterationTokens
	perIterTime  []types.IterationTiming
	contextTok   *int
	contextBrk   types.ContextBreakdown
	costRates    CostRates

	modified map[string]bool
	created  map[string]bool
	deleted  map[string]bool
	modOrder []string
	creOrder []string
	delOrder []string

	validation []types.ValidationResult
	scopeViol  []string
	scopeAppr  []string

	status        types.Status
	blockedReason string
	lastErr       string
}

// New constructs a Collector with a fresh run UUID.
func New(taskPath string, maxIterations int, providerInfo types.ProviderInfo) *Collector {
	return &Collector{
		runID:         uuid.NewString(),
		startAt:       time.Now(),
		taskPath:      taskPath,
		maxIterations: maxIterations,
		provider:      providerInfo,
		phaseOpen:     map[string]time.Time{},
		phaseSum:      map[string]time.Duration{},
		modified:      map[string]bool{},
		created:       map[string]bool{},
		deleted:       map[string]bool{},
		status:        types.StatusIdle,
	}
}

// RunID returns the 128-bit UUID for this run.
func (c *Collector) RunID() string { return c.runID }

// SetTaskInfo records the task's goal/type/role for report summarization.
func (c *Collector) SetTaskInfo(goal, taskType, roleName string) {
	c.taskGoal, c.taskType, c.roleName = goal, taskType, roleName
}

// SetCostRates configures the cost rates used by toReport.
func (c *Collector) SetCostRates(rates CostRates) { c.costRates = rates }

// StartPhase begins timing a named phase. Repeated start/end pairs with the
// same name accumulate.
func (c *Collector) StartPhase(name string) { c.phaseOpen[name] = time.Now() }

// EndPhase closes a named phase's timing, adding its duration to the
// running total for that name.
func (c *Collector) EndPhase(name string) {
	start, ok := c.phaseOpen[name]
	if !ok {
		return
	}
	c.phaseSum[name] += time.Since(start)
	delete(c.phaseOpen, name)
}

// RecordIteration sets the iteration counter to iteration and records its
// duration.
func (c *Collector) RecordIteration(iteration int, duration time.Duration) {
	c.iterations = iteration
	c.perIterTime = append(c.perIterTime, types.IterationTiming{
		Iteration: iteration, DurationMs: duration.Milliseconds(),
	})
}

// RecordTokenUsage accumulates input/output token counts for one iteration.
func (c *Collector) RecordTokenUsage(iteration, input, output int) {
	c.tokensInput += input
	c.tokensOutput += output
	c.perIterTok = append(c.perIterTok, types.IterationTokens{
		Iteration: iteration, InputTokens: input, OutputTokens: output,
	})
}

// RecordValidation appends one validation command result.
func (c *Collector) RecordValidation(r types.ValidationResult) {
	c.validation = append(c.validation, r)
}

// RecordScopeViolation records a file that was blocked or asked-about.
func (c *Collector) RecordScopeViolation(file string) { c.scopeViol = append(c.scopeViol, file) }

// RecordScopeApproval records a file the operator approved after ASK_USER.
func (c *Collector) RecordScopeApproval(file string) { c.scopeAppr = append(c.scopeAppr, file) }

// FileChangeKind tags whether a recorded file change is a modification,
// creation, or deletion.
type FileChangeKind string

const (
	FileModified FileChangeKind = "modified"
	FileCreated  FileChangeKind = "created"
	FileDeleted  FileChangeKind = "deleted"
)

// RecordFileChange records one file change of the given kind, deduplicated
// and insertion-ordered within its kind.
func (c *Collector) RecordFileChange(kind FileChangeKind, path string) {
	switch kind {
	case FileCreated:
		if !c.created[path] {
			c.created[path] = true
			c.creOrder = append(c.creOrder, path)
		}
	case FileDeleted:
		if !c.deleted[path] {
			c.deleted[path] = true
			c.delOrder = append(c.delOrder, path)
		}
	default:
		if !c.modified[path] {
			c.modified[path] = true
			c.modOrder = append(c.modOrder, path)
		}
	}
}

// RecordError records the final error message for the run.
func (c *Collector) RecordError(err error) {
	if err != nil {
		c.lastErr = err.Error()
	}
}

// SetStatus records the run's terminal (or in-flight) status.
func (c *Collector) SetStatus(s types.Status) { c.status = s }

// SetBlockedReason records why a run was blocked.
func (c *Collector) SetBlockedReason(reason string) { c.blockedReason = reason }

// SetConsecutiveFailures records the final consecutive-failure count.
func (c *Collector) SetConsecutiveFailures(n int) { c.consecutiveFailures = &n }

// SetContextTokens records PreFlight's context token estimate and breakdown.
func (c *Collector) SetContextTokens(total int, breakdown types.ContextBreakdown) {
	c.contextTok = &total
	c.contextBrk = breakdown
}

// ToReport snapshots every accumulator into an immutable ExecutionReport.
func (c *Collector) ToReport() types.ExecutionReport {
	now := time.Now()

	totalCount := len(c.modOrder) + len(c.creOrder) + len(c.delOrder)

	phases := map[string]int64{}
	for name, d := range c.phaseSum {
		phases[name] = d.Milliseconds()
	}

	estimated := c.contextTok != nil
	tokens := types.Tokens{
		ContextTokens: c.contextTok,
		TotalInput:    c.tokensInput,
		TotalOutput:   c.tokensOutput,
		TotalTokens:   c.tokensInput + c.tokensOutput,
		PerIteration:  c.perIterTok,
		Breakdown:     types.TokenBreakdown(c.contextBrk),
	}
	if estimated {
		tokens.Estimated = &estimated
	}

	var cost *types.Cost
	if c.costRates.InputPer1M > 0 || c.costRates.OutputPer1M > 0 {
		inputCost := float64(c.tokensInput) / 1e6 * c.costRates.InputPer1M
		outputCost := float64(c.tokensOutput) / 1e6 * c.costRates.OutputPer1M
		cost = &types.Cost{
			EstimatedTotal: inputCost + outputCost,
			Currency:       firstNonEmpty(c.costRates.Currency, "USD"),
			Rates: types.CostRates{
				InputPer1M:  c.costRates.InputPer1M,
				OutputPer1M: c.costRates.OutputPer1M,
			},
		}
	}

	var scope *types.ScopeReport
	if len(c.scopeViol) > 0 || len(c.scopeAppr) > 0 {
		scope = &types.ScopeReport{Violations: c.scopeViol, Approved: c.scopeAppr}
	}

	var validation *types.ValidationReport
	if len(c.validation) > 0 {
		validation = &types.ValidationReport{Results: c.validation}
	}

	return types.ExecutionReport{
		RunID:               c.runID,
		Timestamp:           now,
		TaskPath:            c.taskPath,
		TaskGoal:            c.taskGoal,
		TaskType:            c.taskType,
		RoleName:            c.roleName,
		Provider:            c.provider,
		Status:              c.status,
		Iterations:          c.iterations,
		MaxIterations:       c.maxIterations,
		ConsecutiveFailures: c.consecutiveFailures,
		Error:               c.lastErr,
		BlockedReason:       c.blockedReason,
		Tokens:              tokens,
		Cost:                cost,
		Timing: types.Timing{
			StartedAt:       c.startAt,
			CompletedAt:     now,
			TotalDurationMs: now.Sub(c.startAt).Milliseconds(),
			Phases:          phases,
			PerIteration:    c.perIterTime,
		},
		Files: types.Files{
			Modified:   c.modOrder,
			Created:    c.creOrder,
			Deleted:    c.delOrder,
			TotalCount: totalCount,
		},
		Validation: validation,
		Scope:      scope,
		Environment: types.Environment{
			OS: runtime.GOOS,
			CI: isCI(),
		},
	}
}

func firstNonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
