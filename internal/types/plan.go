package types

// PlanTask is one task line parsed from a plan Markdown file.
type PlanTask struct {
	Filename    string
	TaskPath    string
	Description string
	Wave        int
	DependsOn   []string
	Completed   bool
	LineNumber  int // 1-based
}

// PlanWave groups the plan tasks assigned to the same wave number.
type PlanWave struct {
	Number int
	Tasks  []PlanTask
}
