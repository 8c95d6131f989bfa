package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingConfigReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Execution.MaxIterations)
	require.Equal(t, "ask", cfg.Permissions.ScopeEnforcement)
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".aidf"), 0o755))
	toml := `[execution]
max_iterations = 5

[permissions]
scope_enforcement = "strict"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".aidf", "config.toml"), []byte(toml), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Execution.MaxIterations)
	require.Equal(t, "strict", cfg.Permissions.ScopeEnforcement)
	require.Equal(t, 3, cfg.Execution.MaxConsecutiveFailures)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".aidf"), 0o755))
	yaml := "execution:\n  max_iterations: 7\nprovider:\n  type: api-tool-use\n  model: gpt-5\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".aidf", "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(root)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Execution.MaxIterations)
	require.Equal(t, "api-tool-use", cfg.Provider.Type)
	require.Equal(t, "gpt-5", cfg.Provider.Model)
}
