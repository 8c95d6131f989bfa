package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

const defaultAgents = `## Project Overview

Describe what this project does and why.

## Architecture

Describe the major components and how they fit together.

## Technology Stack

List the languages, frameworks, and key libraries in use.

## Conventions

Describe naming, formatting, and structural conventions contributors follow.

## Boundaries

### Never Modify

### Never Do

### Requires Discussion
`

const defaultRole = `## Identity

You are a software engineer working on this codebase.

## Responsibilities

- Implement the task's Definition of Done
- Keep changes within the declared scope

## Constraints

- Follow the project's existing conventions

## Output Format

Make the code changes directly; do not describe them without applying them.
`

const defaultConfig = `[execution]
max_iterations = 50
max_consecutive_failures = 3
session_continuation = true

[permissions]
scope_enforcement = "ask"

[security]
skip_permissions = true
warn_on_skip = true

[provider]
type = "cli-subprocess"
model = "claude"

[skills]
enabled = true
block_suspicious = true
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a new .ai/ project in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		agentsPath := filepath.Join(cwd, ".ai", "AGENTS.md")
		if _, err := os.Stat(agentsPath); err == nil && !initForce {
			return fmt.Errorf(".ai/AGENTS.md already exists (use --force to overwrite)")
		}

		dirs := []string{
			filepath.Join(cwd, ".ai", "roles"),
			filepath.Join(cwd, ".ai", "tasks", "pending"),
			filepath.Join(cwd, ".ai", "tasks", "blocked"),
			filepath.Join(cwd, ".ai", "tasks", "completed"),
			filepath.Join(cwd, ".ai", "skills"),
			filepath.Join(cwd, ".aidf"),
		}
		for _, dir := range dirs {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}

		files := map[string]string{
			agentsPath: defaultAgents,
			filepath.Join(cwd, ".ai", "roles", "developer.md"): defaultRole,
			filepath.Join(cwd, ".aidf", "config.toml"):         defaultConfig,
		}
		for path, content := range files {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
		}

		disp := newDisplay()
		disp.Success("initialized .ai/ project in " + cwd)
		disp.Info("Next", "write a task under .ai/tasks/pending/ and run 'aidf run <task.md>'")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing .ai/AGENTS.md")
	rootCmd.AddCommand(initCmd)
}
