package skill

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aidf-dev/aidf/internal/types"
)

// parseFile reads and parses a single SKILL.md file and attaches the
// security scan's warnings. It does not apply the block_suspicious policy;
// Discover does that.
func parseFile(path string) (types.Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Skill{}, fmt.Errorf("reading skill file: %w", err)
	}

	fm, ok := parseFrontmatter(string(data))
	if !ok {
		return types.Skill{}, fmt.Errorf("no frontmatter found in %s", path)
	}

	s := types.Skill{
		Name:        fm.Name,
		Description: fm.Description,
		Version:     fm.Version,
		Author:      fm.Author,
		Tags:        fm.Tags,
		Globs:       fm.Globs,
		Body:        fm.body,
		FilePath:    path,
	}
	if s.Name == "" || s.Description == "" {
		return types.Skill{}, fmt.Errorf("skill at %s missing required name/description", path)
	}

	s.Warnings = scan(s.Body)
	return s, nil
}

// Discover walks projectRoot/.ai/skills, <home>/.aidf/skills, and any extra
// directories in order, collecting one skill per immediate subdirectory
// that contains a SKILL.md. Directories that don't exist are skipped, not
// errors. blockSuspicious drops any skill carrying a DANGER warning from the
// returned set (spec §4.9); it still reports those skills in dropped.
func Discover(projectRoot string, extraDirs []string, blockSuspicious bool) (loaded []types.Skill, dropped []types.Skill, err error) {
	home, _ := os.UserHomeDir()
	roots := []string{filepath.Join(projectRoot, ".ai", "skills")}
	if home != "" {
		roots = append(roots, filepath.Join(home, ".aidf", "skills"))
	}
	roots = append(roots, extraDirs...)

	seen := map[string]bool{}
	for _, root := range roots {
		entries, readErr := os.ReadDir(root)
		if os.IsNotExist(readErr) {
			continue
		}
		if readErr != nil {
			return nil, nil, fmt.Errorf("reading skills directory %s: %w", root, readErr)
		}

		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			skillFile := filepath.Join(root, e.Name(), "SKILL.md")
			if _, statErr := os.Stat(skillFile); statErr != nil {
				continue
			}
			s, parseErr := parseFile(skillFile)
			if parseErr != nil {
				continue
			}
			if seen[s.Name] {
				continue
			}
			seen[s.Name] = true

			if blockSuspicious && hasDanger(s.Warnings) {
				dropped = append(dropped, s)
				continue
			}
			loaded = append(loaded, s)
		}
	}
	return loaded, dropped, nil
}
