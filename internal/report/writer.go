// Package report implements the dated JSON report store: write, list, read,
// aggregate, and webhook delivery (spec §4.8).
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aidf-dev/aidf/internal/types"
)

// Writer persists ExecutionReports under a dated directory layout.
type Writer struct {
	BaseDir string
}

// NewWriter returns a Writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{BaseDir: baseDir}
}

func datedDir(baseDir string, ts time.Time) string {
	return filepath.Join(baseDir, ts.Format("2006-01-02"))
}

func reportFilename(runID string) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("run-%s.json", short)
}

// Write creates the dated directory for r.Timestamp, writes the
// pretty-printed JSON (with a terminating newline), and returns the
// absolute path.
func (w *Writer) Write(r types.ExecutionReport) (string, error) {
	dir := datedDir(w.BaseDir, r.Timestamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, reportFilename(r.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// ListFilter narrows List results. Zero values mean "no filter" for that
// field.
type ListFilter struct {
	Since  time.Time
	Until  time.Time
	Status types.Status
	Task   string
}

// List scans every dated subdirectory of BaseDir, applies filter, and
// returns matching reports sorted by timestamp descending.
func (w *Writer) List(filter ListFilter) ([]types.ExecutionReport, error) {
	entries, err := os.ReadDir(w.BaseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []types.ExecutionReport
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dayDir := filepath.Join(w.BaseDir, e.Name())
		files, err := os.ReadDir(dayDir)
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			r, err := readReportFile(filepath.Join(dayDir, f.Name()))
			if err != nil {
				continue
			}
			if !matchesFilter(r, filter) {
				continue
			}
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func matchesFilter(r types.ExecutionReport, f ListFilter) bool {
	if !f.Since.IsZero() && r.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && r.Timestamp.After(f.Until) {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Task != "" && r.TaskPath != f.Task {
		return false
	}
	return true
}

// Read returns the first report whose RunID begins with prefix (>=4
// chars).
func (w *Writer) Read(prefix string) (types.ExecutionReport, error) {
	if len(prefix) < 4 {
		return types.ExecutionReport{}, fmt.Errorf("run ID prefix must be at least 4 characters")
	}

	entries, err := os.ReadDir(w.BaseDir)
	if err != nil {
		return types.ExecutionReport{}, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dayDir := filepath.Join(w.BaseDir, e.Name())
		files, err := os.ReadDir(dayDir)
		if err != nil {
			continue
		}
		for _, f := range files {
			r, err := readReportFile(filepath.Join(dayDir, f.Name()))
			if err != nil {
				continue
			}
			if strings.HasPrefix(r.RunID, prefix) {
				return r, nil
			}
		}
	}
	return types.ExecutionReport{}, fmt.Errorf("no report found with run ID prefix %q", prefix)
}

func readReportFile(path string) (types.ExecutionReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ExecutionReport{}, err
	}
	var r types.ExecutionReport
	if err := json.Unmarshal(data, &r); err != nil {
		return types.ExecutionReport{}, err
	}
	return r, nil
}
