package types

// ContextBreakdown reports the estimated-token cost of each layer composed
// into a LoadedContext, keyed by layer name ("agents", "role", "task",
// "plan", "skills").
type ContextBreakdown map[string]int

// LoadedContext is the immutable tuple PreFlight produces. Plan and Skills
// are tagged-optional: nil means "absent", not "empty".
type LoadedContext struct {
	Agents Agents
	Role   Role
	Task   Task
	Plan   *string
	Skills []Skill
}
