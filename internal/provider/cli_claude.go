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

// ClaudeCLI is the cli-subprocess provider variant wrapping the Claude Code
// CLI binary.
type ClaudeCLI struct {
	BinaryPath string
	Git        *vcs.Git
}

// NewClaudeCLI resolves binaryPath (falling back to PATH lookup and common
// install locations) and constructs a ClaudeCLI rooted at workDir for
// dirty-file diffing.
func NewClaudeCLI(binaryPath, workDir string) *ClaudeCLI {
	if binaryPath == "" {
		binaryPath = "claude"
	}
	return &ClaudeCLI{BinaryPath: resolveClaudeBinary(binaryPath), Git: vcs.New(workDir)}
}

func resolveClaudeBinary(binaryPath string) string {
	if filepath.IsAbs(binaryPath) {
		return binaryPath
	}
	if path, err := exec.LookPath(binaryPath); err == nil {
		return path
	}
	home, _ := os.UserHomeDir()
	for _, p := range []string{
		filepath.Join(home, ".claude", "local", "claude"),
		"/usr/local/bin/claude",
		"/opt/homebrew/bin/claude",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return binaryPath
}

func (c *ClaudeCLI) Name() string          { return "claude" }
func (c *ClaudeCLI) Variant() VariantKind  { return VariantCLISubprocess }

func (c *ClaudeCLI) IsAvailable() bool {
	_, err := exec.LookPath(c.BinaryPath)
	if err == nil {
		return true
	}
	_, statErr := os.Stat(c.BinaryPath)
	return statErr == nil
}

func (c *ClaudeCLI) buildArgs(prompt string, opts Options) []string {
	var args []string
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	if prompt != "" {
		args = append(args, "-p", prompt)
	}
	if len(opts.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(opts.AllowedTools, ","))
	}
	if opts.DangerouslySkipPermissions {
		args = append(args, "--dangerously-skip-permissions")
	}
	args = append(args, "--output-format", "stream-json", "--verbose")
	args = append(args, opts.ContextFiles...)
	return args
}

// Execute spawns the CLI, recording filesBefore via git dirty-file
// enumeration, then recomputes filesAfter on exit and reports the set
// difference as FilesChanged, per spec §4.3's cli-subprocess semantics.
func (c *ClaudeCLI) Execute(ctx context.Context, prompt string, opts Options) (ExecutionResult, error) {
	if !c.IsAvailable() {
		return ExecutionResult{}, aidferr.ProviderNotAvailable("claude binary not found: "+c.BinaryPath, nil)
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
		}, aidferr.TimeoutOperation("claude execution exceeded " + timeout.String())
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
			}, aidferr.ProviderAPIError(fmt.Sprintf("claude exited non-zero: %v", err), true, err)
		}
		return ExecutionResult{}, aidferr.ProviderCrash("claude process failed", err)
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
