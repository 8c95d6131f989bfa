// Package display renders executor and plan-runner progress to the
// terminal, separating run orchestration messages from provider output.
package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/aidf-dev/aidf/internal/types"
)

const defaultWidth = 80

// Display handles all CLI output with visual hierarchy.
type Display struct {
	theme     *Theme
	termWidth int
}

// New returns a Display whose theme is chosen by whether stdout is a
// color-capable terminal, honoring an explicit noColor override.
func New(noColor bool) *Display {
	d := &Display{termWidth: defaultWidth}
	if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		d.theme = NoColorTheme()
	} else {
		d.theme = DefaultTheme()
	}
	return d
}

func (d *Display) padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Box prints a titled box of lines, in the teacher's boxed-orchestration
// style.
func (d *Display) Box(title string, lines ...string) {
	if len(lines) == 0 {
		return
	}
	width := d.termWidth - 2
	remaining := width - (len(title) + 4)
	if remaining < 0 {
		remaining = 0
	}

	top := BoxTopLeft + BoxHorizontal + " " + title + " " + strings.Repeat(BoxHorizontal, remaining) + BoxTopRight
	fmt.Println(d.theme.Border(top))
	for _, line := range lines {
		fmt.Println(d.theme.Border(BoxVertical) + " " + d.theme.Text(d.padRight(line, width-2)) + " " + d.theme.Border(BoxVertical))
	}
	fmt.Println(d.theme.Border(BoxBottomLeft + strings.Repeat(BoxHorizontal, width) + BoxBottomRight))
}

func (d *Display) status(symbol, message string) {
	fmt.Printf("%s %s %s\n", d.theme.Dim(time.Now().Format("[15:04:05]")), symbol, d.theme.Text(message))
}

// Phase announces an executor phase transition (PreFlight, iterating,
// validating, PostFlight, ...).
func (d *Display) Phase(iteration int, phase string) {
	d.status(d.theme.Info(SymbolRunning), fmt.Sprintf("iteration %d: %s", iteration, phase))
}

// Output streams one line of raw provider output, visually subdued
// relative to orchestration messages.
func (d *Display) Output(line string) {
	fmt.Println(d.theme.Dim("  ") + d.theme.Text(line))
}

// ScopeViolation renders a scope guard decision that blocked or
// ask-user'd a file change.
func (d *Display) ScopeViolation(decision types.ScopeDecision) {
	switch decision.Kind {
	case types.ScopeBlock:
		d.status(d.theme.Error(SymbolError), fmt.Sprintf("scope blocked: %s (%s)", strings.Join(decision.Files, ", "), decision.Reason))
	case types.ScopeAskUser:
		d.status(d.theme.Warning(SymbolWarning), fmt.Sprintf("scope needs approval: %s (%s)", strings.Join(decision.Files, ", "), decision.Reason))
	}
}

// Terminal announces the executor's final status.
func (d *Display) Terminal(status types.Status, reason string) {
	switch status {
	case types.StatusCompleted:
		d.status(d.theme.Success(SymbolSuccess), "completed: "+reason)
	case types.StatusBlocked:
		d.status(d.theme.Warning(SymbolBlocked), "blocked: "+reason)
	case types.StatusFailed:
		d.status(d.theme.Error(SymbolError), "failed: "+reason)
	default:
		d.status(d.theme.Info(SymbolPending), reason)
	}
}

// WaveProgress announces the start of a plan wave.
func (d *Display) WaveProgress(wave types.PlanWave) {
	names := make([]string, len(wave.Tasks))
	for i, t := range wave.Tasks {
		names[i] = t.Filename
	}
	d.status(d.theme.Label(fmt.Sprintf("wave %d", wave.Number)), strings.Join(names, ", "))
}

// Success prints a green checkmark status line.
func (d *Display) Success(message string) { d.status(d.theme.Success(SymbolSuccess), message) }

// Error prints a red X status line.
func (d *Display) Error(message string) { d.status(d.theme.Error(SymbolError), message) }

// Warning prints a yellow triangle status line.
func (d *Display) Warning(message string) { d.status(d.theme.Warning(SymbolWarning), message) }

// Info prints a labeled informational status line.
func (d *Display) Info(label, message string) {
	d.status(d.theme.Info(label+":"), message)
}
