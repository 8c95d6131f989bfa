package runner

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// checkboxEditor serializes checkbox-update writes to a single plan file so
// concurrent wave execution never loses an update (spec §5).
type checkboxEditor struct {
	mu   sync.Mutex
	path string
}

func newCheckboxEditor(path string) *checkboxEditor {
	return &checkboxEditor{path: path}
}

// MarkDone rewrites the `- [ ]` at lineNumber (1-based) to `- [x]`,
// preserving the rest of the line. Marking an already-checked line a
// second time is a no-op.
func (e *checkboxEditor) MarkDone(lineNumber int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := os.ReadFile(e.path)
	if err != nil {
		return fmt.Errorf("reading plan file for checkbox update: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	idx := lineNumber - 1
	if idx < 0 || idx >= len(lines) {
		return fmt.Errorf("line %d out of range", lineNumber)
	}

	lines[idx] = strings.Replace(lines[idx], "- [ ]", "- [x]", 1)

	return os.WriteFile(e.path, []byte(strings.Join(lines, "\n")), 0o644)
}
