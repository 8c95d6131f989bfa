package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFileAssignsExplicitWaves(t *testing.T) {
	path := writePlan(t, "- [ ] `a.md` — do a (wave: 2)\n- [ ] `b.md` — do b\n")
	tasks, err := ParseFile(path, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, 2, tasks[0].Wave)
	require.Equal(t, 1, tasks[1].Wave)
}

func TestParseFileResolvesDependencyWaves(t *testing.T) {
	path := writePlan(t, "- [ ] `a.md` — first\n- [ ] `b.md` — second (depends: a.md)\n- [ ] `c.md` — third (depends: b.md)\n")
	tasks, err := ParseFile(path, nil)
	require.NoError(t, err)

	byName := map[string]int{}
	for _, t := range tasks {
		byName[t.Filename] = t.Wave
	}
	require.Equal(t, 1, byName["a.md"])
	require.Equal(t, 2, byName["b.md"])
	require.Equal(t, 3, byName["c.md"])
}

func TestParseFileIgnoresMissingDependency(t *testing.T) {
	path := writePlan(t, "- [ ] `a.md` — first (depends: ghost.md)\n")
	tasks, err := ParseFile(path, nil)
	require.NoError(t, err)
	require.Equal(t, 1, tasks[0].Wave)
}

func TestParseFileDetectsCycle(t *testing.T) {
	path := writePlan(t, "- [ ] `a.md` — first (depends: b.md)\n- [ ] `b.md` — second (depends: a.md)\n")
	_, err := ParseFile(path, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "cycle")
	require.Contains(t, err.Error(), "a.md")
	require.Contains(t, err.Error(), "b.md")
}

func TestParseFileParsesCompletedCheckbox(t *testing.T) {
	path := writePlan(t, "- [x] `a.md` — done already\n")
	tasks, err := ParseFile(path, nil)
	require.NoError(t, err)
	require.True(t, tasks[0].Completed)
}

func TestParseFileEmptyPlanYieldsNoTasks(t *testing.T) {
	path := writePlan(t, "# Just a heading\n\nNo task lines here.\n")
	tasks, err := ParseFile(path, nil)
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestGroupWavesOrdersAscending(t *testing.T) {
	path := writePlan(t, "- [ ] `a.md` — x (wave: 3)\n- [ ] `b.md` — y (wave: 1)\n")
	tasks, err := ParseFile(path, nil)
	require.NoError(t, err)

	waves := GroupWaves(tasks)
	require.Len(t, waves, 2)
	require.Equal(t, 1, waves[0].Number)
	require.Equal(t, 3, waves[1].Number)
}
