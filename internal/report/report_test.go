package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aidf-dev/aidf/internal/types"
)

func sampleReport(runID string, status types.Status) types.ExecutionReport {
	return types.ExecutionReport{
		RunID:     runID,
		Timestamp: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		TaskPath:  "task.md",
		Status:    status,
		Tokens:    types.Tokens{TotalInput: 10, TotalOutput: 5, TotalTokens: 15},
		Files:     types.Files{Modified: []string{"a.go"}, TotalCount: 1},
	}
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	w := NewWriter(t.TempDir())
	r := sampleReport("0123456789abcdef", types.StatusCompleted)

	path, err := w.Write(r)
	require.NoError(t, err)
	require.FileExists(t, path)

	got, err := w.Read("01234567")
	require.NoError(t, err)
	require.Equal(t, r.RunID, got.RunID)
	require.Equal(t, r.Status, got.Status)
}

func TestListFiltersByStatus(t *testing.T) {
	w := NewWriter(t.TempDir())
	_, err := w.Write(sampleReport("aaaa1111", types.StatusCompleted))
	require.NoError(t, err)
	_, err = w.Write(sampleReport("bbbb2222", types.StatusBlocked))
	require.NoError(t, err)

	results, err := w.List(ListFilter{Status: types.StatusBlocked})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "bbbb2222", results[0].RunID)
}

func TestAggregateEmptyIsAllZero(t *testing.T) {
	agg := ComputeAggregate(nil)
	require.Equal(t, 0, agg.TotalRuns)
	require.Equal(t, 0.0, agg.SuccessRate)
}

func TestAggregateComputesSuccessRateAndTopFiles(t *testing.T) {
	reports := []types.ExecutionReport{
		sampleReport("1", types.StatusCompleted),
		sampleReport("2", types.StatusBlocked),
	}
	agg := ComputeAggregate(reports)
	require.Equal(t, 2, agg.TotalRuns)
	require.Equal(t, 0.5, agg.SuccessRate)
	require.Len(t, agg.MostModifiedFiles, 1)
	require.Equal(t, "a.go", agg.MostModifiedFiles[0].File)
	require.Equal(t, 2, agg.MostModifiedFiles[0].Count)
}

func TestDeliverRetriesUntilSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		require.Equal(t, "application/json", req.Header.Get("Content-Type"))
		require.NotEmpty(t, req.Header.Get("X-AIDF-Event"))
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := WebhookConfig{Enabled: true, URL: srv.URL, Retry: 2}
	attempts := Deliver(context.Background(), srv.Client(), sampleReport("x", types.StatusCompleted), cfg)
	require.Len(t, attempts, 3)
	require.Equal(t, http.StatusOK, attempts[2].StatusCode)

	require.InDelta(t, 100*time.Millisecond, attempts[0].Backoff, float64(15*time.Millisecond))
	require.InDelta(t, 200*time.Millisecond, attempts[1].Backoff, float64(25*time.Millisecond))
}

func TestDeliverSkippedWhenEventNotWhitelisted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		t.Fatal("should not be called")
	}))
	defer srv.Close()

	cfg := WebhookConfig{Enabled: true, URL: srv.URL, Events: []string{"blocked"}}
	attempts := Deliver(context.Background(), srv.Client(), sampleReport("x", types.StatusCompleted), cfg)
	require.Nil(t, attempts)
}
