package loader

import (
	"os"
	"path/filepath"
)

// FindProjectRoot walks parents of startDir until `<dir>/.ai/AGENTS.md`
// exists, returning that directory. Returns "" (not an error) when no
// ancestor has the marker file.
func FindProjectRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		marker := filepath.Join(dir, ".ai", "AGENTS.md")
		if _, err := os.Stat(marker); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
