package loader

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aidf-dev/aidf/internal/aidferr"
	"github.com/aidf-dev/aidf/internal/types"
)

// commandLineRe matches "<cmd>  #<description>" with a >=2-space separator.
var commandLineRe = regexp.MustCompile(`^(\S.*?)[ \t]{2,}#(.*)$`)

// ParseAgents parses `.ai/AGENTS.md` within projectRoot.
func ParseAgents(projectRoot string) (types.Agents, error) {
	path := filepath.Join(projectRoot, ".ai", "AGENTS.md")
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Agents{}, aidferr.ConfigMissing("AGENTS.md not found: "+path, err)
	}
	content := normalizeLineEndings(string(raw))

	boundariesBody := extractSection(content, "Boundaries")
	commandsBody := extractSection(content, "Commands")

	return types.Agents{
		ProjectOverview:  extractSection(content, "Project Overview"),
		Architecture:     extractSection(content, "Architecture"),
		TechnologyStack:  extractSection(content, "Technology Stack"),
		Conventions:      extractSection(content, "Conventions"),
		QualityStandards: extractSection(content, "Quality Standards"),
		Boundaries: types.Boundaries{
			NeverModify:        extractBulletList(extractSubsection(boundariesBody, "Never Modify")),
			NeverDo:            extractBulletList(extractSubsection(boundariesBody, "Never Do")),
			RequiresDiscussion: extractBulletList(extractSubsection(boundariesBody, "Requires Discussion")),
		},
		DevelopmentCmds: parseCommandBlock(extractSubsection(commandsBody, "Development")),
		QualityCmds:     parseCommandBlock(extractSubsection(commandsBody, "Quality")),
		BuildCmds:       parseCommandBlock(extractSubsection(commandsBody, "Build")),
	}, nil
}

// parseCommandBlock parses the fenced code block within a command
// subsection into a command -> description mapping.
func parseCommandBlock(body string) types.Commands {
	cmds := types.Commands{}
	m := fencedBlockRe.FindStringSubmatch(body)
	if m == nil {
		return cmds
	}
	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		if cm := commandLineRe.FindStringSubmatch(line); cm != nil {
			cmds[strings.TrimSpace(cm[1])] = strings.TrimSpace(cm[2])
		}
	}
	return cmds
}
