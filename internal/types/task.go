// Package types holds the closed set of data-model records shared by every
// engine component: tasks, roles, project context, executor state, scope
// decisions, execution reports, skills, and plan records.
package types

// TaskType classifies the kind of work a task describes. Unknown values
// encountered while parsing fall back to TaskTypeComponent rather than
// failing (see internal/loader).
type TaskType string

const (
	TaskTypeComponent     TaskType = "component"
	TaskTypeRefactor      TaskType = "refactor"
	TaskTypeTest          TaskType = "test"
	TaskTypeDocs          TaskType = "docs"
	TaskTypeArchitecture  TaskType = "architecture"
	TaskTypeBugfix        TaskType = "bugfix"
)

// Scope is the triple of glob sequences that bounds which files a task may
// touch, enforced by internal/scope.
type Scope struct {
	Allowed   []string
	Forbidden []string
	AskBefore []string
}

// BlockedStatus records the resumable state embedded in a task file's
// `## Status: BLOCKED` section.
type BlockedStatus struct {
	PreviousIteration int
	FilesModified     []string
	BlockingIssue     string
	StartedAt         string
	BlockedAt         string
}

// Task is the parsed record of one task Markdown file.
type Task struct {
	FilePath         string
	Goal             string
	TaskType         TaskType
	SuggestedRoles   []string
	Scope            Scope
	Requirements     string
	DefinitionOfDone []string
	BlockedStatus    *BlockedStatus
}

// ParseTaskType maps a raw heading value to a TaskType, defaulting to
// TaskTypeComponent for any value outside the closed set.
func ParseTaskType(raw string) TaskType {
	switch TaskType(raw) {
	case TaskTypeComponent, TaskTypeRefactor, TaskTypeTest, TaskTypeDocs, TaskTypeArchitecture, TaskTypeBugfix:
		return TaskType(raw)
	default:
		return TaskTypeComponent
	}
}
