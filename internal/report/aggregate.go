package report

import (
	"sort"

	"github.com/aidf-dev/aidf/internal/types"
)

// FileCount pairs a file path with the number of reports that touched it.
type FileCount struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// Aggregate summarizes a set of reports.
type Aggregate struct {
	TotalRuns         int               `json:"totalRuns"`
	SuccessRate       float64           `json:"successRate"`
	TotalTokens       int               `json:"totalTokens"`
	TotalCost         float64           `json:"totalCost"`
	AverageIterations float64           `json:"averageIterations"`
	AverageDuration   float64           `json:"averageDuration"`
	ByStatus          map[string]int    `json:"byStatus"`
	MostModifiedFiles []FileCount       `json:"mostModifiedFiles"`
}

// ComputeAggregate reduces reports into an Aggregate. All numeric fields
// are 0 for empty input.
func ComputeAggregate(reports []types.ExecutionReport) Aggregate {
	agg := Aggregate{ByStatus: map[string]int{}}
	if len(reports) == 0 {
		return agg
	}

	agg.TotalRuns = len(reports)
	completed := 0
	var totalIterations, totalTokens int
	var totalCost float64
	var totalDurationMs int64
	fileCounts := map[string]int{}

	for _, r := range reports {
		if r.Status == types.StatusCompleted {
			completed++
		}
		agg.ByStatus[string(r.Status)]++
		totalIterations += r.Iterations
		totalTokens += r.Tokens.TotalTokens
		if r.Cost != nil {
			totalCost += r.Cost.EstimatedTotal
		}
		totalDurationMs += r.Timing.TotalDurationMs
		for _, f := range r.Files.Modified {
			fileCounts[f]++
		}
	}

	agg.SuccessRate = float64(completed) / float64(agg.TotalRuns)
	agg.TotalTokens = totalTokens
	agg.TotalCost = totalCost
	agg.AverageIterations = float64(totalIterations) / float64(agg.TotalRuns)
	agg.AverageDuration = float64(totalDurationMs) / float64(agg.TotalRuns)

	counts := make([]FileCount, 0, len(fileCounts))
	for f, c := range fileCounts {
		counts = append(counts, FileCount{File: f, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].File < counts[j].File
	})
	if len(counts) > 10 {
		counts = counts[:10]
	}
	agg.MostModifiedFiles = counts

	return agg
}
