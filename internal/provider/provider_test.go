package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectCompletionSignalFirstMatchWins(t *testing.T) {
	sig, ok := DetectCompletionSignal("work done\n<TASK_COMPLETE>\n## Task Complete\n")
	require.True(t, ok)
	require.Equal(t, "<TASK_COMPLETE>", sig)
}

func TestDetectCompletionSignalAbsent(t *testing.T) {
	_, ok := DetectCompletionSignal("still working")
	require.False(t, ok)
}

func TestToolboxWriteAndReadFile(t *testing.T) {
	dir := t.TempDir()
	tb := NewToolbox(dir, nil)

	result := tb.WriteFile("src/a.ts", "hello")
	require.Contains(t, result, "wrote")

	content := tb.ReadFile("src/a.ts")
	require.Equal(t, "hello", content)
}

func TestToolboxBlocksPathTraversal(t *testing.T) {
	dir := t.TempDir()
	tb := NewToolbox(dir, nil)

	result := tb.WriteFile("../../etc/passwd", "x")
	require.Contains(t, result, "Path traversal blocked")

	_, err := os.Stat(filepath.Join(dir, "..", "..", "etc", "passwd"))
	require.True(t, os.IsNotExist(err))
}

func TestToolboxDeniesCommandByPolicy(t *testing.T) {
	tb := NewToolbox(t.TempDir(), DenyCommandPrefixes("rm -rf"))
	result := tb.RunCommand("rm -rf /")
	require.Contains(t, result, "Command blocked by")
}
