package executor

import (
	"fmt"
	"strings"

	"github.com/aidf-dev/aidf/internal/skill"
	"github.com/aidf-dev/aidf/internal/types"
)

// continuationTailChars bounds how much of the previous iteration's output
// is carried into a continuation prompt (spec §4.5 step 3).
const continuationTailChars = 2000

// buildFullPrompt assembles the complete iteration-1 prompt: AGENTS, role,
// task, optional plan, optional skills, optional resume context, optional
// previous validation feedback.
func buildFullPrompt(ctx types.LoadedContext, blocked *types.BlockedStatus, previousValidationError string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Project Context\n\n%s\n\n", ctx.Agents.ProjectOverview)
	if ctx.Agents.Architecture != "" {
		fmt.Fprintf(&b, "## Architecture\n\n%s\n\n", ctx.Agents.Architecture)
	}
	if ctx.Agents.TechnologyStack != "" {
		fmt.Fprintf(&b, "## Technology Stack\n\n%s\n\n", ctx.Agents.TechnologyStack)
	}
	if ctx.Agents.Conventions != "" {
		fmt.Fprintf(&b, "## Conventions\n\n%s\n\n", ctx.Agents.Conventions)
	}
	if len(ctx.Agents.Boundaries.NeverModify) > 0 {
		fmt.Fprintf(&b, "## Never Modify\n\n- %s\n\n", strings.Join(ctx.Agents.Boundaries.NeverModify, "\n- "))
	}

	fmt.Fprintf(&b, "# Role: %s\n\n%s\n\n", ctx.Role.Name, ctx.Role.Identity)
	if len(ctx.Role.Responsibilities) > 0 {
		fmt.Fprintf(&b, "## Responsibilities\n\n- %s\n\n", strings.Join(ctx.Role.Responsibilities, "\n- "))
	}
	if len(ctx.Role.Constraints) > 0 {
		fmt.Fprintf(&b, "## Constraints\n\n- %s\n\n", strings.Join(ctx.Role.Constraints, "\n- "))
	}

	fmt.Fprintf(&b, "# Task\n\n## Goal\n\n%s\n\n", ctx.Task.Goal)
	if ctx.Task.Requirements != "" {
		fmt.Fprintf(&b, "## Requirements\n\n%s\n\n", ctx.Task.Requirements)
	}
	if len(ctx.Task.DefinitionOfDone) > 0 {
		fmt.Fprintf(&b, "## Definition of Done\n\n- [ ] %s\n\n", strings.Join(ctx.Task.DefinitionOfDone, "\n- [ ] "))
	}
	fmt.Fprintf(&b, "## Scope\n\n- Allowed: %s\n- Forbidden: %s\n- Ask Before: %s\n\n",
		strings.Join(ctx.Task.Scope.Allowed, ", "), strings.Join(ctx.Task.Scope.Forbidden, ", "), strings.Join(ctx.Task.Scope.AskBefore, ", "))

	if ctx.Plan != nil {
		fmt.Fprintf(&b, "# Plan\n\n%s\n\n", *ctx.Plan)
	}

	if block := skill.RenderPromptBlock(ctx.Skills); block != "" {
		fmt.Fprintf(&b, "%s\n\n", block)
	}

	if blocked != nil {
		fmt.Fprintf(&b, "# Resuming Blocked Task\n\nThis task was previously blocked at iteration %d.\n\nBlocking issue: %s\n\n",
			blocked.PreviousIteration, blocked.BlockingIssue)
	}

	if previousValidationError != "" {
		fmt.Fprintf(&b, "# Previous Validation Error\n\n%s\n\n", previousValidationError)
	}

	return b.String()
}

// buildContinuationPrompt assembles a minimal prompt for iterations after
// the first when session continuation is active (spec §4.5 step 3).
func buildContinuationPrompt(iteration int, previousOutputTail, previousValidationError string) string {
	tail := previousOutputTail
	if len(tail) > continuationTailChars {
		tail = tail[len(tail)-continuationTailChars:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Continuation (iteration %d)\n\n## Previous Output (tail)\n\n%s\n\n", iteration, tail)
	if previousValidationError != "" {
		fmt.Fprintf(&b, "## Previous Validation Error\n\n%s\n\n", previousValidationError)
	}
	return b.String()
}
