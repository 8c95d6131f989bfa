// Package executor implements the PreFlight/iterate/PostFlight state
// machine that drives one task through a provider to completion, blocked,
// or failed (spec §4.5).
package executor

import (
	"context"
	"time"

	"github.com/aidf-dev/aidf/internal/conversation"
	"github.com/aidf-dev/aidf/internal/metrics"
	"github.com/aidf-dev/aidf/internal/provider"
	"github.com/aidf-dev/aidf/internal/report"
	"github.com/aidf-dev/aidf/internal/scope"
	"github.com/aidf-dev/aidf/internal/types"
	"github.com/aidf-dev/aidf/internal/vcs"
)

const (
	defaultMaxIterations          = 50
	defaultMaxConsecutiveFailures = 3
)

// Config holds everything about how a run should behave, independent of
// which task it runs (spec §6).
type Config struct {
	MaxIterations              int
	MaxConsecutiveFailures     int
	TimeoutPerIteration        time.Duration // 0 leaves provider.DefaultTimeout (600 s) in force
	SessionContinuation        bool
	ScopeMode                  scope.Mode
	DangerouslySkipPermissions bool
	WarnOnSkip                 bool
	AutoCommit                 bool
	AutoPush                   bool
	CommitMessagePrefix        string
	PreCommitCommands          []string
	ValidationTimeout          time.Duration
	CostRates                  metrics.CostRates
	PendingDir                 string
	BlockedDir                 string
	CompletedDir               string
	Conversation               conversation.Config
	ReportWriter               *report.Writer
	Webhook                    report.WebhookConfig
}

func (c Config) maxIterationsOrDefault() int {
	if c.MaxIterations <= 0 {
		return defaultMaxIterations
	}
	return c.MaxIterations
}

func (c Config) maxConsecutiveFailuresOrDefault() int {
	if c.MaxConsecutiveFailures <= 0 {
		return defaultMaxConsecutiveFailures
	}
	return c.MaxConsecutiveFailures
}

// RunOptions configures a single call to Run.
type RunOptions struct {
	TaskPath string
	Resume   bool
	Plan     *string
	Skills   []types.Skill
}

// Result is everything a caller needs after a run finishes.
type Result struct {
	State      *types.ExecutorState
	Report     types.ExecutionReport
	ReportPath string
}

// Executor runs one task to completion, blocked, or failed against a
// Provider, recording everything through a metrics.Collector.
type Executor struct {
	Provider    provider.Provider
	Git         *vcs.Git
	ProjectRoot string
	Config      Config
	Observer    Observer
}

// New constructs an Executor.
func New(p provider.Provider, git *vcs.Git, projectRoot string, cfg Config, obs Observer) *Executor {
	return &Executor{Provider: p, Git: git, ProjectRoot: projectRoot, Config: cfg, Observer: obs}
}

// Run drives opts.TaskPath through PreFlight, the iteration loop, and
// PostFlight, always returning a Result even when the run ends in failure.
func (e *Executor) Run(ctx context.Context, opts RunOptions) (Result, error) {
	state := types.NewExecutorState()
	if err := state.Transition(types.StatusRunning); err != nil {
		return Result{State: state}, err
	}

	pf, err := e.preFlight(ctx, opts, state)
	if err != nil {
		state.Status = types.StatusFailed
		state.LastError = err
		pf.collector.SetStatus(types.StatusFailed)
		pf.collector.RecordError(err)
		return e.postFlight(ctx, pf, state, true), err
	}

	e.iterate(ctx, pf, state)

	return e.postFlight(ctx, pf, state, false), nil
}
