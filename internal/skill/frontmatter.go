package skill

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// rawFrontmatter is the parsed YAML frontmatter block of a SKILL.md file,
// plus its remaining body text.
type rawFrontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
	Author      string `yaml:"author"`
	Tags        commaList `yaml:"tags"`
	Globs       commaList `yaml:"globs"`
	body        string
}

// commaList decodes either a comma-separated scalar ("go, lint") or a YAML
// sequence into a list of trimmed, non-empty entries.
type commaList []string

func (l *commaList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return n.Decode((*[]string)(l))
	}
	for _, part := range strings.Split(n.Value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// parseFrontmatter extracts and decodes the YAML block between two `---`
// delimiters at the top of a SKILL.md file. Returns ok=false if the file
// has no frontmatter block, or the block doesn't parse as YAML.
func parseFrontmatter(content string) (rawFrontmatter, bool) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) < 3 || strings.TrimSpace(lines[0]) != "---" {
		return rawFrontmatter{}, false
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return rawFrontmatter{}, false
	}

	var fm rawFrontmatter
	block := strings.Join(lines[1:end], "\n")
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return rawFrontmatter{}, false
	}

	fm.body = strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
	return fm, true
}
