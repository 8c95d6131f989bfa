// Package config loads the executor's configuration per the table in spec
// §6, using viper for discovery/merging and BurntSushi/toml to register TOML
// as a first-class format alongside YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config is the full executor configuration tree.
type Config struct {
	Execution     ExecutionConfig           `mapstructure:"execution"`
	Permissions   PermissionsConfig         `mapstructure:"permissions"`
	Security      SecurityConfig            `mapstructure:"security"`
	Validation    ValidationConfig          `mapstructure:"validation"`
	Provider      ProviderConfig            `mapstructure:"provider"`
	Conversation  ConversationConfig        `mapstructure:"conversation"`
	Skills        SkillsConfig              `mapstructure:"skills"`
	Cost          map[string]CostRateConfig `mapstructure:"cost"`
	Notifications NotificationsConfig       `mapstructure:"notifications"`
}

type ExecutionConfig struct {
	MaxIterations          int  `mapstructure:"max_iterations"`
	MaxConsecutiveFailures int  `mapstructure:"max_consecutive_failures"`
	TimeoutPerIteration    int  `mapstructure:"timeout_per_iteration"` // seconds; 0 leaves the provider's default timeout in force
	SessionContinuation    bool `mapstructure:"session_continuation"`
}

type PermissionsConfig struct {
	ScopeEnforcement string `mapstructure:"scope_enforcement"` // strict / ask / permissive
	AutoCommit       bool   `mapstructure:"auto_commit"`
	AutoPush         bool   `mapstructure:"auto_push"`
}

type SecurityConfig struct {
	SkipPermissions bool `mapstructure:"skip_permissions"`
	WarnOnSkip      bool `mapstructure:"warn_on_skip"`
}

type ValidationConfig struct {
	PreCommit []string `mapstructure:"pre_commit"`
	PrePush   []string `mapstructure:"pre_push"`
	PrePR     []string `mapstructure:"pre_pr"`
}

type ProviderConfig struct {
	Type  string `mapstructure:"type"`
	Model string `mapstructure:"model"`
}

type ConversationConfig struct {
	MaxMessages     int  `mapstructure:"max_messages"`
	PreserveFirstN  int  `mapstructure:"preserve_first_n"`
	PreserveLastN   int  `mapstructure:"preserve_last_n"`
	SummarizeOnTrim bool `mapstructure:"summarize_on_trim"`
}

type SkillsConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Directories     []string `mapstructure:"directories"`
	BlockSuspicious bool     `mapstructure:"block_suspicious"`
}

type CostRateConfig struct {
	InputPer1M  float64 `mapstructure:"input_per_1m"`
	OutputPer1M float64 `mapstructure:"output_per_1m"`
}

type WebhookConfig struct {
	Enabled           bool              `mapstructure:"enabled"`
	URL               string            `mapstructure:"url"`
	Events            []string          `mapstructure:"events"`
	Headers           map[string]string `mapstructure:"headers"`
	Retry             int               `mapstructure:"retry"`
	Timeout           int               `mapstructure:"timeout"` // seconds
	IncludeIterations bool              `mapstructure:"include_iterations"`
}

type NotificationsConfig struct {
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// DefaultConfig returns a config with every spec-mandated default applied.
func DefaultConfig() *Config {
	return &Config{
		Execution: ExecutionConfig{
			MaxIterations:          50,
			MaxConsecutiveFailures: 3,
			TimeoutPerIteration:    0,
			SessionContinuation:    true,
		},
		Permissions: PermissionsConfig{
			ScopeEnforcement: "ask",
		},
		Security: SecurityConfig{
			SkipPermissions: true,
			WarnOnSkip:      true,
		},
		Provider: ProviderConfig{
			Type:  "cli-subprocess",
			Model: "claude",
		},
		Conversation: ConversationConfig{
			MaxMessages:     100,
			PreserveFirstN:  1,
			PreserveLastN:   20,
			SummarizeOnTrim: false,
		},
		Skills: SkillsConfig{
			Enabled:         true,
			BlockSuspicious: true,
		},
		Cost: map[string]CostRateConfig{},
	}
}

// Load reads configuration for projectRoot, trying `.aidf/config.toml` then
// `.aidf/config.yaml`. Returns defaults, not an error, if neither exists.
func Load(projectRoot string) (*Config, error) {
	tomlPath := filepath.Join(projectRoot, ".aidf", "config.toml")
	yamlPath := filepath.Join(projectRoot, ".aidf", "config.yaml")

	if _, err := os.Stat(tomlPath); err == nil {
		return loadTOML(tomlPath)
	}
	if _, err := os.Stat(yamlPath); err == nil {
		return loadViper(yamlPath, "yaml")
	}
	return DefaultConfig(), nil
}

func loadTOML(path string) (*Config, error) {
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("parsing TOML config %s: %w", path, err)
	}
	v := viper.New()
	if err := v.MergeConfigMap(raw); err != nil {
		return nil, fmt.Errorf("parsing TOML config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing TOML config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func loadViper(path, format string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(format)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	d := DefaultConfig()
	if cfg.Execution.MaxIterations == 0 {
		cfg.Execution.MaxIterations = d.Execution.MaxIterations
	}
	if cfg.Execution.MaxConsecutiveFailures == 0 {
		cfg.Execution.MaxConsecutiveFailures = d.Execution.MaxConsecutiveFailures
	}
	if cfg.Permissions.ScopeEnforcement == "" {
		cfg.Permissions.ScopeEnforcement = d.Permissions.ScopeEnforcement
	}
	if cfg.Provider.Type == "" {
		cfg.Provider.Type = d.Provider.Type
	}
	if cfg.Conversation.MaxMessages == 0 {
		cfg.Conversation.MaxMessages = d.Conversation.MaxMessages
	}
	if cfg.Conversation.PreserveFirstN == 0 {
		cfg.Conversation.PreserveFirstN = d.Conversation.PreserveFirstN
	}
	if cfg.Conversation.PreserveLastN == 0 {
		cfg.Conversation.PreserveLastN = d.Conversation.PreserveLastN
	}
	if cfg.Cost == nil {
		cfg.Cost = map[string]CostRateConfig{}
	}
}
