package types

import "time"

// ProviderInfo identifies which provider variant and model executed a run.
type ProviderInfo struct {
	Type  string `json:"type"`
	Model string `json:"model,omitempty"`
}

// TokenBreakdown mirrors ContextBreakdown but embedded under tokens for report serialization.
type TokenBreakdown map[string]int

// IterationTokens is one iteration's token usage, recorded in PerIteration.
type IterationTokens struct {
	Iteration    int `json:"iteration"`
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Tokens is the report's token accounting. Invariant: TotalTokens =
// TotalInput + TotalOutput.
type Tokens struct {
	ContextTokens *int              `json:"contextTokens,omitempty"`
	TotalInput    int               `json:"totalInput"`
	TotalOutput   int               `json:"totalOutput"`
	TotalTokens   int               `json:"totalTokens"`
	Estimated     *bool             `json:"estimated,omitempty"`
	PerIteration  []IterationTokens `json:"perIteration,omitempty"`
	Breakdown     TokenBreakdown    `json:"breakdown,omitempty"`
}

// CostRates are the per-model $/1M-token rates used to compute Cost.
type CostRates struct {
	InputPer1M  float64 `json:"inputPer1M"`
	OutputPer1M float64 `json:"outputPer1M"`
}

// IterationCost is one iteration's estimated cost.
type IterationCost struct {
	Iteration int     `json:"iteration"`
	Cost      float64 `json:"cost"`
}

// Cost is the report's cost accounting; omitted entirely when no rates were configured.
type Cost struct {
	EstimatedTotal float64         `json:"estimatedTotal"`
	Currency       string          `json:"currency"`
	Rates          CostRates       `json:"rates"`
	PerIteration   []IterationCost `json:"perIteration,omitempty"`
}

// IterationTiming is one iteration's wall-clock duration.
type IterationTiming struct {
	Iteration  int   `json:"iteration"`
	DurationMs int64 `json:"durationMs"`
}

// Timing is the report's phase/iteration timing breakdown.
type Timing struct {
	StartedAt      time.Time          `json:"startedAt"`
	CompletedAt    time.Time          `json:"completedAt"`
	TotalDurationMs int64             `json:"totalDurationMs"`
	Phases         map[string]int64   `json:"phases"`
	PerIteration   []IterationTiming  `json:"perIteration,omitempty"`
}

// Files is the report's file-change accounting. Invariant: TotalCount =
// len(Modified) + len(Created) + len(Deleted).
type Files struct {
	Modified   []string `json:"modified"`
	Created    []string `json:"created"`
	Deleted    []string `json:"deleted"`
	TotalCount int      `json:"totalCount"`
}

// Environment records the host environment a run executed in.
type Environment struct {
	NodeVersion string `json:"nodeVersion,omitempty"`
	OS          string `json:"os"`
	CI          bool   `json:"ci"`
	CIProvider  string `json:"ciProvider,omitempty"`
	CIBuildID   string `json:"ciBuildId,omitempty"`
	CIBranch    string `json:"ciBranch,omitempty"`
	CICommit    string `json:"ciCommit,omitempty"`
}

// ScopeReport summarizes scope decisions recorded during a run.
type ScopeReport struct {
	Violations []string `json:"violations,omitempty"`
	Approved   []string `json:"approved,omitempty"`
}

// ValidationReport summarizes validation results across the run.
type ValidationReport struct {
	Results []ValidationResult `json:"results,omitempty"`
}

// ExecutionReport is the append-only, write-once-on-disk record of one run.
type ExecutionReport struct {
	RunID              string            `json:"runId"`
	Timestamp          time.Time         `json:"timestamp"`
	TaskPath           string            `json:"taskPath"`
	TaskGoal           string            `json:"taskGoal,omitempty"`
	TaskType           string            `json:"taskType,omitempty"`
	RoleName           string            `json:"roleName,omitempty"`
	Provider           ProviderInfo      `json:"provider"`
	Status             Status            `json:"status"`
	Iterations         int               `json:"iterations"`
	MaxIterations       int              `json:"maxIterations"`
	ConsecutiveFailures *int             `json:"consecutiveFailures,omitempty"`
	Error              string            `json:"error,omitempty"`
	BlockedReason      string            `json:"blockedReason,omitempty"`
	Tokens             Tokens            `json:"tokens"`
	Cost               *Cost             `json:"cost,omitempty"`
	Timing             Timing            `json:"timing"`
	Files              Files             `json:"files"`
	Validation         *ValidationReport `json:"validation,omitempty"`
	Scope              *ScopeReport      `json:"scope,omitempty"`
	Environment        Environment       `json:"environment"`
}
