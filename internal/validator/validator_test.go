package validator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunPassingCommand(t *testing.T) {
	r := Run(context.Background(), "exit 0", t.TempDir(), time.Second)
	require.True(t, r.Passed)
	require.Equal(t, 0, r.ExitCode)
}

func TestRunFailingCommand(t *testing.T) {
	r := Run(context.Background(), "echo error TS2345 && exit 1", t.TempDir(), time.Second)
	require.False(t, r.Passed)
	require.Equal(t, 1, r.ExitCode)
	require.Contains(t, r.Output, "error TS2345")
}

func TestRunPhaseStopsOnFirstFailure(t *testing.T) {
	results := RunPhase(context.Background(), []string{"exit 1", "exit 0"}, t.TempDir(), time.Second, StopOnFirstFailure)
	require.Len(t, results, 1)
	require.False(t, AllPassed(results))
}

func TestRunPhaseContinuesThroughAll(t *testing.T) {
	results := RunPhase(context.Background(), []string{"exit 1", "exit 0"}, t.TempDir(), time.Second, ContinueThroughAll)
	require.Len(t, results, 2)
}
