package loader

import (
	"fmt"
	"math"

	"github.com/aidf-dev/aidf/internal/types"
)

// EstimateTokens is the deterministic token estimator used throughout the
// engine: ceil(|text|/4), 0 for the empty string, non-negative, and
// monotone in string length.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(math.Ceil(float64(len(text)) / 4.0))
}

// EstimateContextSize sums the estimated token cost of every layer in ctx
// and returns the total plus a per-layer breakdown.
func EstimateContextSize(ctx types.LoadedContext) (int, types.ContextBreakdown) {
	breakdown := types.ContextBreakdown{}
	breakdown["agents"] = EstimateTokens(fmt.Sprintf("%+v", ctx.Agents))
	breakdown["role"] = EstimateTokens(fmt.Sprintf("%+v", ctx.Role))
	breakdown["task"] = EstimateTokens(fmt.Sprintf("%+v", ctx.Task))
	if ctx.Plan != nil {
		breakdown["plan"] = EstimateTokens(*ctx.Plan)
	}
	if len(ctx.Skills) > 0 {
		total := 0
		for _, s := range ctx.Skills {
			total += len(s.Body)
		}
		breakdown["skills"] = int(math.Ceil(float64(total) / 4.0))
	}

	sum := 0
	for _, v := range breakdown {
		sum += v
	}
	return sum, breakdown
}
