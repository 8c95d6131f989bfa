// Package plan implements the plan parser: a Markdown task DAG with wave
// assignment and cycle detection (spec §4.6). Executing the waves is the
// job of internal/runner.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aidf-dev/aidf/internal/aidferr"
	"github.com/aidf-dev/aidf/internal/types"
)

// taskLine matches `- [ ] `file.md` — description (wave: N, depends: a.md,b.md)`.
// The dash between filename and description may be an em dash, en dash, or
// hyphen; the metadata group is optional.
var taskLine = regexp.MustCompile(`^\s*-\s*\[([ xX])\]\s*` + "`" + `([^` + "`" + `]+\.md)` + "`" + `\s*[—–-]\s*(.+?)(?:\s*\(([^)]*)\))?\s*$`)

var waveMeta = regexp.MustCompile(`wave:\s*(\d+)`)
var dependsMeta = regexp.MustCompile(`depends:\s*([^,)]+(?:,\s*[^,)]+)*)`)

// ParseFile reads a plan Markdown file and returns its task lines with
// waves assigned. taskSearchDirs lists directories to search (in order)
// when resolving a task's filename to an on-disk path; see resolvePath.
func ParseFile(path string, taskSearchDirs []string) ([]types.PlanTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	tasks, err := parseLines(string(data), taskSearchDirs)
	if err != nil {
		return nil, err
	}
	if err := assignWaves(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func parseLines(content string, taskSearchDirs []string) ([]types.PlanTask, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	var tasks []types.PlanTask
	for i, line := range lines {
		m := taskLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		completed := strings.EqualFold(m[1], "x")
		filename := strings.TrimSpace(m[2])
		description := strings.TrimSpace(m[3])
		meta := m[4]

		wave := 0
		if wm := waveMeta.FindStringSubmatch(meta); wm != nil {
			fmt.Sscanf(wm[1], "%d", &wave)
		}

		var dependsOn []string
		if dm := dependsMeta.FindStringSubmatch(meta); dm != nil {
			for _, d := range strings.Split(dm[1], ",") {
				if d = strings.TrimSpace(d); d != "" {
					dependsOn = append(dependsOn, d)
				}
			}
		}

		tasks = append(tasks, types.PlanTask{
			Filename:    filename,
			TaskPath:    resolvePath(filename, taskSearchDirs),
			Description: description,
			Wave:        wave,
			DependsOn:   dependsOn,
			Completed:   completed,
			LineNumber:  i + 1,
		})
	}
	return tasks, nil
}

// resolvePath looks up filename in each of taskSearchDirs in order,
// returning the first one that exists. If none exist, it returns the path
// under the first directory (the task may not exist yet).
func resolvePath(filename string, taskSearchDirs []string) string {
	for _, dir := range taskSearchDirs {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if len(taskSearchDirs) > 0 {
		return filepath.Join(taskSearchDirs[0], filename)
	}
	return filename
}

// DefaultSearchDirs returns the standard pending/blocked/completed search
// order for a project rooted at projectRoot, per spec §4.6.
func DefaultSearchDirs(projectRoot string) []string {
	base := filepath.Join(projectRoot, ".ai", "tasks")
	return []string{
		filepath.Join(base, "pending"),
		filepath.Join(base, "blocked"),
		filepath.Join(base, "completed"),
		base,
	}
}

// assignWaves implements the two-pass wave assignment with memoized
// recursive resolution and DFS cycle detection described in spec §4.6.
// Missing dependencies are ignored, treated as already-satisfied wave-0
// prerequisites (spec §9 open question (b), preserved deliberately).
func assignWaves(tasks []types.PlanTask) error {
	byName := make(map[string]*types.PlanTask, len(tasks))
	for i := range tasks {
		byName[tasks[i].Filename] = &tasks[i]
	}

	for i := range tasks {
		if tasks[i].Wave == 0 && len(tasks[i].DependsOn) == 0 {
			tasks[i].Wave = 1
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(tasks))
	var path []string

	var resolve func(name string) (int, error)
	resolve = func(name string) (int, error) {
		t, ok := byName[name]
		if !ok {
			return 0, nil // missing dependency: treated as wave-0 prerequisite
		}
		if t.Wave > 0 {
			return t.Wave, nil
		}
		switch state[name] {
		case visiting:
			cyclePath := append(append([]string{}, path...), name)
			return 0, aidferr.ConfigInvalid(fmt.Sprintf("Dependency cycle detected: %s", strings.Join(cyclePath, " → ")))
		case visited:
			return t.Wave, nil
		}

		state[name] = visiting
		path = append(path, name)

		maxDep := 0
		for _, dep := range t.DependsOn {
			w, err := resolve(dep)
			if err != nil {
				return 0, err
			}
			if w > maxDep {
				maxDep = w
			}
		}

		t.Wave = maxDep + 1
		state[name] = visited
		path = path[:len(path)-1]
		return t.Wave, nil
	}

	for i := range tasks {
		if tasks[i].Wave == 0 {
			if _, err := resolve(tasks[i].Filename); err != nil {
				return err
			}
		}
	}

	// Final pass: anything still unresolved (isolated missing-dep chains
	// that never hit the recursion) gets wave 1.
	for i := range tasks {
		if tasks[i].Wave == 0 {
			tasks[i].Wave = 1
		}
	}
	return nil
}

// GroupWaves buckets tasks by wave number in ascending order.
func GroupWaves(tasks []types.PlanTask) []types.PlanWave {
	byWave := map[int][]types.PlanTask{}
	maxWave := 0
	for _, t := range tasks {
		byWave[t.Wave] = append(byWave[t.Wave], t)
		if t.Wave > maxWave {
			maxWave = t.Wave
		}
	}

	waves := make([]types.PlanWave, 0, maxWave)
	for n := 1; n <= maxWave; n++ {
		if ts, ok := byWave[n]; ok {
			waves = append(waves, types.PlanWave{Number: n, Tasks: ts})
		}
	}
	return waves
}
