package provider

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ToolName enumerates the closed set of six tools an api-tool-use provider
// may invoke (spec §6).
type ToolName string

const (
	ToolReadFile     ToolName = "read_file"
	ToolWriteFile    ToolName = "write_file"
	ToolListFiles    ToolName = "list_files"
	ToolRunCommand   ToolName = "run_command"
	ToolTaskComplete ToolName = "task_complete"
	ToolTaskBlocked  ToolName = "task_blocked"
)

// CommandPolicy decides whether a run_command invocation is permitted.
// Returning false denies the command; reason is echoed back to the model.
type CommandPolicy func(command string) (allowed bool, reason string)

// AllowAllCommands is the permissive default policy.
func AllowAllCommands(string) (bool, string) { return true, "" }

// DenyCommandPrefixes returns a policy that blocks any command beginning
// with one of the given prefixes (after leading whitespace is trimmed).
func DenyCommandPrefixes(prefixes ...string) CommandPolicy {
	return func(command string) (bool, string) {
		trimmed := strings.TrimSpace(command)
		for _, p := range prefixes {
			if strings.HasPrefix(trimmed, p) {
				return false, fmt.Sprintf("command prefix %q is denied by policy", p)
			}
		}
		return true, ""
	}
}

// Toolbox implements the six fixed tools against one project root.
type Toolbox struct {
	ProjectRoot   string
	CommandPolicy CommandPolicy
}

// NewToolbox returns a Toolbox rooted at projectRoot with policy (defaults
// to AllowAllCommands when nil).
func NewToolbox(projectRoot string, policy CommandPolicy) *Toolbox {
	if policy == nil {
		policy = AllowAllCommands
	}
	return &Toolbox{ProjectRoot: projectRoot, CommandPolicy: policy}
}

// resolveUnderRoot resolves path under the project root, returning an error
// if it escapes via ".." or an absolute path.
func (t *Toolbox) resolveUnderRoot(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("Path traversal blocked: %q resolves outside project root", path)
	}
	joined := filepath.Join(t.ProjectRoot, path)
	cleanRoot := filepath.Clean(t.ProjectRoot)
	cleanJoined := filepath.Clean(joined)
	if cleanJoined != cleanRoot && !strings.HasPrefix(cleanJoined, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("Path traversal blocked: %q resolves outside project root", path)
	}
	return cleanJoined, nil
}

// ReadFile returns the file's contents, or an error string on failure.
func (t *Toolbox) ReadFile(path string) string {
	resolved, err := t.resolveUnderRoot(path)
	if err != nil {
		return err.Error()
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return fmt.Sprintf("error reading %q: %v", path, err)
	}
	return string(data)
}

// WriteFile writes content to path under the project root.
func (t *Toolbox) WriteFile(path, content string) string {
	resolved, err := t.resolveUnderRoot(path)
	if err != nil {
		return err.Error()
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Sprintf("error creating directories for %q: %v", path, err)
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("error writing %q: %v", path, err)
	}
	return fmt.Sprintf("wrote %d bytes to %s", len(content), path)
}

// ListFiles lists entries directly under path (optionally glob-filtered by
// pattern), under the project root.
func (t *Toolbox) ListFiles(path, pattern string) string {
	resolved, err := t.resolveUnderRoot(path)
	if err != nil {
		return err.Error()
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return fmt.Sprintf("error listing %q: %v", path, err)
	}
	var names []string
	for _, e := range entries {
		if pattern != "" {
			if ok, _ := filepath.Match(pattern, e.Name()); !ok {
				continue
			}
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return strings.Join(names, "\n")
}

// RunCommand runs command in the project root, subject to CommandPolicy.
func (t *Toolbox) RunCommand(command string) string {
	if allowed, reason := t.CommandPolicy(command); !allowed {
		return fmt.Sprintf("Command blocked by policy: %s", reason)
	}
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = t.ProjectRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Sprintf("command failed: %v\n%s", err, out)
	}
	return string(out)
}
