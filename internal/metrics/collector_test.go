package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aidf-dev/aidf/internal/types"
)

func TestToReportInvariants(t *testing.T) {
	c := New("task.md", 10, types.ProviderInfo{Type: "cli-subprocess", Model: "sonnet"})
	c.RecordTokenUsage(1, 100, 50)
	c.RecordFileChange(FileModified, "src/a.ts")
	c.RecordFileChange(FileCreated, "src/b.ts")
	c.RecordFileChange(FileDeleted, "src/c.ts")
	c.RecordError(errors.New("boom"))
	c.SetStatus(types.StatusCompleted)

	report := c.ToReport()
	require.Equal(t, report.Tokens.TotalInput+report.Tokens.TotalOutput, report.Tokens.TotalTokens)
	require.Equal(t, len(report.Files.Modified)+len(report.Files.Created)+len(report.Files.Deleted), report.Files.TotalCount)
	require.Equal(t, "boom", report.Error)
	require.Equal(t, types.StatusCompleted, report.Status)
}

func TestCostOmittedWithoutRates(t *testing.T) {
	c := New("task.md", 10, types.ProviderInfo{Type: "cli-subprocess"})
	report := c.ToReport()
	require.Nil(t, report.Cost)
}

func TestCostComputedWithRates(t *testing.T) {
	c := New("task.md", 10, types.ProviderInfo{Type: "cli-subprocess"})
	c.SetCostRates(CostRates{InputPer1M: 3, OutputPer1M: 15})
	c.RecordTokenUsage(1, 1_000_000, 1_000_000)
	report := c.ToReport()
	require.NotNil(t, report.Cost)
	require.InDelta(t, 18.0, report.Cost.EstimatedTotal, 0.0001)
}

func TestPhaseTimingAccumulatesAcrossStartEndPairs(t *testing.T) {
	c := New("task.md", 10, types.ProviderInfo{})
	c.StartPhase("executing")
	time.Sleep(5 * time.Millisecond)
	c.EndPhase("executing")
	c.StartPhase("executing")
	time.Sleep(5 * time.Millisecond)
	c.EndPhase("executing")

	report := c.ToReport()
	require.GreaterOrEqual(t, report.Timing.Phases["executing"], int64(8))
}
