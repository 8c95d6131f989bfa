package provider

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/aidf-dev/aidf/internal/aidferr"
	"github.com/aidf-dev/aidf/internal/vcs"
)

// CursorAgentCLI is the second cli-subprocess provider variant, wrapping
// the Cursor agent CLI binary.
type CursorAgentCLI struct {
	BinaryPath string
	APIKey     string
	Git        *vcs.Git
}

// NewCursorAgentCLI resolves binaryPath and constructs a CursorAgentCLI
// rooted at workDir.
func NewCursorAgentCLI(binaryPath, apiKey, workDir string) *CursorAgentCLI {
	if binaryPath == "" {
		binaryPath = "cursor-agent"
	}
	return &CursorAgentCLI{BinaryPath: resolveCursorBinary(binaryPath), APIKey: apiKey, Git: vcs.New(workDir)}
}

func resolveCursorBinary(binaryPath string) string {
	if filepath.IsAbs(binaryPath) {
		return binaryPath
	}
	if path, err := exec.LookPath(binaryPath); err == nil {
		return path
	}
	home, _ := os.UserHomeDir()
	for _, p := range []string{
		filepath.Join(home, ".cursor-agent", "local", "cursor-agent"),
		"/usr/local/bin/cursor-agent",
		"/opt/homebrew/bin/cursor-agent",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return binaryPath
}

func (c *CursorAgentCLI) Name() string         { return "cursor-agent" }
func (c *CursorAgentCLI) Variant() VariantKind { return VariantCLISubprocess }

func (c *CursorAgentCLI) IsAvailable() bool {
	_, err := exec.LookPath(c.BinaryPath)
	if err == nil {
		return true
	}
	_, statErr := os.Stat(c.BinaryPath)
	return statErr == nil
}

func (c *CursorAgentCLI) buildArgs(prompt string, opts Options) []string {
	var args []string
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if prompt != "" {
		args = append(args, "--prompt", prompt)
	}
	if len(opts.AllowedTools) > 0 {
		args = append(args, "--tools", strings.Join(opts.AllowedTools, ","))
	}
	args = append(args, opts.ContextFiles...)
	return args
}

// Execute mirrors ClaudeCLI's dirty-file-diff semantics, with the agent's
// API key passed by environment variable rather than a CLI flag.
func (c *CursorAgentCLI) Execute(ctx context.Context, prompt string, opts Options) (ExecutionResult, error) {
	if !c.IsAvailable() {
		return ExecutionResult{}, aidferr.ProviderNotAvailable("cursor-agent binary not found: "+c.BinaryPath, nil)
	}

	var before []string
	if c.Git != nil {
		before, _ = c.Git.DirtyFiles(ctx)
	}

	timeout := opts.TimeoutOrDefault()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := c.buildArgs(prompt, opts)
	cmd := exec.CommandContext(runCtx, c.BinaryPath, args...)
	cmd.Dir = opts.WorkDir
	cmd.Env = append(os.Environ(), fmt.Sprintf("CURSOR_API_KEY=%s", c.APIKey))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := stdout.String()
	if opts.OnOutput != nil && output != "" {
		opts.OnOutput(output)
	}

	if runCtx.Err() != nil {
		return ExecutionResult{
			Success:       false,
			Output:        output,
			Error:         "provider execution timed out",
			ErrorCategory: aidferr.CategoryTimeout,
			ErrorCode:     "TIMEOUT",
		}, aidferr.TimeoutOperation("cursor-agent execution exceeded " + timeout.String())
	}

	var filesChanged []string
	if c.Git != nil {
		after, gitErr := c.Git.DirtyFiles(ctx)
		if gitErr == nil {
			filesChanged = vcs.DiffFiles(before, after)
		}
	}

	if err != nil {
		if _, ok := err.(*exec.ExitError); ok && stderr.Len() > 0 {
			return ExecutionResult{
				Success:       false,
				Output:        output,
				FilesChanged:  filesChanged,
				Error:         stderr.String(),
				ErrorCategory: aidferr.CategoryProvider,
				ErrorCode:     "PROVIDER_API_ERROR",
			}, aidferr.ProviderAPIError(fmt.Sprintf("cursor-agent exited non-zero: %v", err), true, err)
		}
		return ExecutionResult{}, aidferr.ProviderCrash("cursor-agent process failed", err)
	}

	signal, complete := DetectCompletionSignal(output)
	return ExecutionResult{
		Success:           true,
		Output:            output,
		FilesChanged:      filesChanged,
		IterationComplete: complete,
		CompletionSignal:  signal,
	}, nil
}
