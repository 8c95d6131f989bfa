package loader

import (
	"path/filepath"
	"strings"

	"github.com/aidf-dev/aidf/internal/types"
)

const defaultRole = "developer"

// LoadContext composes Agents, Role, and Task into an immutable
// LoadedContext. When task.SuggestedRoles is empty, role "developer" is
// used. discoveredSkills is filtered to those whose name ends with
// "-<roleName>" (e.g. "aidf-developer" for role "developer"); when none
// match, Skills is left nil (absent, not empty).
func LoadContext(taskPath string, discoveredSkills []types.Skill) (types.LoadedContext, error) {
	projectRoot := FindProjectRoot(filepath.Dir(taskPath))

	agents, err := ParseAgents(projectRoot)
	if err != nil {
		return types.LoadedContext{}, err
	}

	task, err := ParseTask(taskPath)
	if err != nil {
		return types.LoadedContext{}, err
	}

	roleName := defaultRole
	if len(task.SuggestedRoles) > 0 && task.SuggestedRoles[0] != "" {
		roleName = task.SuggestedRoles[0]
	}

	role, err := ParseRole(projectRoot, roleName)
	if err != nil {
		return types.LoadedContext{}, err
	}

	ctx := types.LoadedContext{Agents: agents, Role: role, Task: task}

	suffix := "-" + roleName
	var matched []types.Skill
	for _, s := range discoveredSkills {
		if strings.HasSuffix(s.Name, suffix) {
			matched = append(matched, s)
		}
	}
	if len(matched) > 0 {
		ctx.Skills = matched
	}

	return ctx, nil
}
