// Package provider defines the uniform contract over CLI-subprocess and
// API-tool-use backends, plus the shared completion-signal detection and
// fixed tool set used by API-mode variants.
package provider

import (
	"context"
	"time"

	"github.com/aidf-dev/aidf/internal/aidferr"
)

// VariantKind tags which of the two provider families a Provider belongs
// to, replacing the source's open dynamic-dispatch plugin model with a
// small fixed set (spec §9).
type VariantKind string

const (
	VariantCLISubprocess VariantKind = "cli-subprocess"
	VariantAPIToolUse    VariantKind = "api-tool-use"
)

// DefaultTimeout is applied when Options.Timeout is zero.
const DefaultTimeout = 600 * time.Second

// TokenUsage reports one invocation's token accounting.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	Estimated    bool
}

// ExecutionResult is the mandatory result shape every provider variant
// returns, per spec §4.3.
type ExecutionResult struct {
	Success             bool
	Output              string
	FilesChanged        []string
	IterationComplete   bool
	CompletionSignal    string
	Error               string
	ErrorCategory       aidferr.Category
	ErrorCode           string
	TokenUsage          *TokenUsage
	ConversationState   any // opaque to the executor
	ConversationMetrics any
}

// Options configures one provider invocation.
type Options struct {
	Model                      string
	Timeout                    time.Duration
	MaxTokens                  int
	DangerouslySkipPermissions bool
	OnOutput                   func(chunk string)
	SessionContinuation        bool
	ConversationState          any
	WorkDir                    string
	ContextFiles               []string
	AllowedTools               []string
}

// TimeoutOrDefault returns o.Timeout, or DefaultTimeout when unset.
func (o Options) TimeoutOrDefault() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Provider is the polymorphic contract every variant implements.
type Provider interface {
	Name() string
	Variant() VariantKind
	IsAvailable() bool
	Execute(ctx context.Context, prompt string, opts Options) (ExecutionResult, error)
}
