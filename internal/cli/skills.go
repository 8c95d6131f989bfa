package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidf-dev/aidf/internal/config"
	"github.com/aidf-dev/aidf/internal/skill"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Inspect available skills",
}

var skillsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills discoverable from this project",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := projectRoot()
		cfg, err := config.Load(root)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		loaded, dropped, err := skill.Discover(root, cfg.Skills.Directories, cfg.Skills.BlockSuspicious)
		if err != nil {
			return err
		}

		disp := newDisplay()
		if len(loaded) == 0 {
			disp.Info("Skills", "none found")
		}
		for _, s := range loaded {
			disp.Info(s.Name, s.Description)
		}
		for _, s := range dropped {
			disp.Warning(fmt.Sprintf("%s dropped: security scan flagged its body", s.Name))
		}
		return nil
	},
}

func init() {
	skillsCmd.AddCommand(skillsListCmd)
	rootCmd.AddCommand(skillsCmd)
}
