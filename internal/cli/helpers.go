package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aidf-dev/aidf/internal/config"
	"github.com/aidf-dev/aidf/internal/conversation"
	"github.com/aidf-dev/aidf/internal/display"
	"github.com/aidf-dev/aidf/internal/executor"
	"github.com/aidf-dev/aidf/internal/loader"
	"github.com/aidf-dev/aidf/internal/metrics"
	"github.com/aidf-dev/aidf/internal/provider"
	"github.com/aidf-dev/aidf/internal/report"
	"github.com/aidf-dev/aidf/internal/scope"
	"github.com/aidf-dev/aidf/internal/vcs"
)

func exitError(msg string) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	os.Exit(1)
}

// projectRoot resolves the .ai/ project root from the current directory,
// exiting with a helpful message if none is found.
func projectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitError(err.Error())
	}
	root := loader.FindProjectRoot(cwd)
	if root == "" {
		exitError("no .ai/AGENTS.md found in this directory or any parent; run 'aidf init' first")
	}
	return root
}

// buildProvider constructs the provider.Provider named by cfg, resolving
// API keys from the environment. Unknown provider types exit with an error
// rather than silently falling back (spec §6).
func buildProvider(cfg *config.Config, root string) provider.Provider {
	switch cfg.Provider.Type {
	case "cli-subprocess":
		switch cfg.Provider.Model {
		case "cursor-agent":
			return provider.NewCursorAgentCLI("", os.Getenv("CURSOR_API_KEY"), root)
		default:
			return provider.NewClaudeCLI("", root)
		}
	case "api-tool-use":
		tools := provider.NewToolbox(root, provider.AllowAllCommands)
		window := conversation.NewWindow(toConversationConfig(cfg.Conversation), nil)
		switch cfg.Provider.Model {
		case "openai", "gpt-4", "gpt-5":
			return provider.NewOpenAIAPI(os.Getenv("OPENAI_API_KEY"), cfg.Provider.Model, tools, window)
		default:
			return provider.NewAnthropicAPI(os.Getenv("ANTHROPIC_API_KEY"), cfg.Provider.Model, tools, window)
		}
	default:
		exitError(fmt.Sprintf("unknown provider.type %q in config", cfg.Provider.Type))
		return nil
	}
}

func toConversationConfig(c config.ConversationConfig) conversation.Config {
	return conversation.Config{
		MaxMessages:     c.MaxMessages,
		PreserveFirstN:  c.PreserveFirstN,
		PreserveLastN:   c.PreserveLastN,
		SummarizeOnTrim: c.SummarizeOnTrim,
	}
}

func toScopeMode(s string) scope.Mode {
	switch s {
	case "strict":
		return scope.ModeStrict
	case "permissive":
		return scope.ModePermissive
	default:
		return scope.ModeAsk
	}
}

func toCostRates(cfg *config.Config, model string) metrics.CostRates {
	rate, ok := cfg.Cost[model]
	if !ok {
		return metrics.CostRates{}
	}
	return metrics.CostRates{InputPer1M: rate.InputPer1M, OutputPer1M: rate.OutputPer1M}
}

func toWebhookConfig(c config.WebhookConfig) report.WebhookConfig {
	return report.WebhookConfig{
		Enabled:           c.Enabled,
		URL:               c.URL,
		Events:            c.Events,
		Headers:           c.Headers,
		Retry:             c.Retry,
		Timeout:           time.Duration(c.Timeout) * time.Second,
		IncludeIterations: c.IncludeIterations,
	}
}

func newDisplay() *display.Display {
	return display.New(false)
}

// buildExecutorConfig translates the viper/TOML-facing config.Config into
// the executor's own run configuration.
func buildExecutorConfig(cfg *config.Config, root string) executor.Config {
	return executor.Config{
		MaxIterations:              cfg.Execution.MaxIterations,
		MaxConsecutiveFailures:     cfg.Execution.MaxConsecutiveFailures,
		TimeoutPerIteration:        time.Duration(cfg.Execution.TimeoutPerIteration) * time.Second,
		SessionContinuation:        cfg.Execution.SessionContinuation,
		ScopeMode:                  toScopeMode(cfg.Permissions.ScopeEnforcement),
		DangerouslySkipPermissions: cfg.Security.SkipPermissions,
		WarnOnSkip:                 cfg.Security.WarnOnSkip,
		AutoCommit:                 cfg.Permissions.AutoCommit,
		AutoPush:                   cfg.Permissions.AutoPush,
		CommitMessagePrefix:        "aidf",
		PreCommitCommands:          cfg.Validation.PreCommit,
		ValidationTimeout:          30 * time.Second,
		CostRates:                  toCostRates(cfg, cfg.Provider.Model),
		PendingDir:                 filepath.Join(root, ".ai", "tasks", "pending"),
		BlockedDir:                 filepath.Join(root, ".ai", "tasks", "blocked"),
		CompletedDir:               filepath.Join(root, ".ai", "tasks", "completed"),
		Conversation:               toConversationConfig(cfg.Conversation),
		ReportWriter:               report.NewWriter(filepath.Join(root, ".aidf", "reports")),
		Webhook:                    toWebhookConfig(cfg.Notifications.Webhook),
	}
}

// buildGit returns a vcs.Git rooted at root, or nil when auto-commit is off
// (a run with no git collaborator simply never stages or commits).
func buildGit(cfg *config.Config, root string) *vcs.Git {
	if !cfg.Permissions.AutoCommit {
		return nil
	}
	return vcs.New(root)
}
