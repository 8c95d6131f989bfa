// Package vcs is the version-control collaborator: dirty-file enumeration
// for provider before/after diffing, staging, commit, push, and revert.
package vcs

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/aidf-dev/aidf/internal/aidferr"
)

// Git wraps the git CLI for one working directory.
type Git struct {
	WorkDir string
}

// New returns a Git collaborator rooted at workDir.
func New(workDir string) *Git {
	return &Git{WorkDir: workDir}
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.WorkDir
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return "", aidferr.GitStatusFailed(err)
	}
	return out.String(), nil
}

// DirtyFiles returns the set of paths git reports as modified, added, or
// untracked, relative to WorkDir. Used by cli-subprocess providers to
// compute filesBefore/filesAfter diffs (spec §4.3).
func (g *Git) DirtyFiles(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 4 {
			continue
		}
		files = append(files, strings.TrimSpace(line[3:]))
	}
	return files, nil
}

// DiffFiles returns the set difference after-minus-before, used to compute
// filesChanged around a single provider invocation.
func DiffFiles(before, after []string) []string {
	seen := map[string]bool{}
	for _, f := range before {
		seen[f] = true
	}
	var out []string
	for _, f := range after {
		if !seen[f] {
			out = append(out, f)
		}
	}
	return out
}

// Stage adds paths to the index.
func (g *Git) Stage(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add"}, paths...)
	_, err := g.run(ctx, args...)
	if err != nil {
		return err
	}
	return nil
}

// Unstage removes paths from the index without touching the working tree.
func (g *Git) Unstage(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"restore", "--staged"}, paths...)
	_, err := g.run(ctx, args...)
	return err
}

// Commit creates a commit with message. Wraps failures as GitCommitFailed.
func (g *Git) Commit(ctx context.Context, message string) error {
	if _, err := g.run(ctx, "commit", "-m", message); err != nil {
		return aidferr.GitCommitFailed(err)
	}
	return nil
}

// Push pushes the current branch. Wraps failures as GitPushFailed.
func (g *Git) Push(ctx context.Context) error {
	if _, err := g.run(ctx, "push"); err != nil {
		return aidferr.GitPushFailed(err)
	}
	return nil
}

// Revert discards working-tree changes to paths. Wraps failures as
// GitRevertFailed (never retryable, per the error taxonomy).
func (g *Git) Revert(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"checkout", "--"}, paths...)
	if _, err := g.run(ctx, args...); err != nil {
		return aidferr.GitRevertFailed(err)
	}
	return nil
}
