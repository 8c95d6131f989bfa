package loader

import (
	"os"
	"path/filepath"

	"github.com/aidf-dev/aidf/internal/aidferr"
	"github.com/aidf-dev/aidf/internal/types"
)

// ParseRole parses `.ai/roles/<name>.md` within projectRoot.
func ParseRole(projectRoot, name string) (types.Role, error) {
	path := filepath.Join(projectRoot, ".ai", "roles", name+".md")
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Role{}, aidferr.ConfigMissing("role file not found: "+path, err)
	}
	content := normalizeLineEndings(string(raw))

	return types.Role{
		Name:             name,
		Identity:         extractSection(content, "Identity"),
		Expertise:        extractBulletList(extractSection(content, "Expertise")),
		Responsibilities: extractBulletList(extractSection(content, "Responsibilities")),
		Constraints:      extractBulletList(extractSection(content, "Constraints")),
		QualityCriteria:  extractBulletList(extractSection(content, "Quality Criteria")),
		OutputFormat:     extractSection(content, "Output Format"),
	}, nil
}
