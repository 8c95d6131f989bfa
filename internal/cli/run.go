package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidf-dev/aidf/internal/config"
	"github.com/aidf-dev/aidf/internal/executor"
	"github.com/aidf-dev/aidf/internal/skill"
	"github.com/aidf-dev/aidf/internal/types"
)

var runResume bool

var runCmd = &cobra.Command{
	Use:   "run <task.md>",
	Short: "Execute one task file to completion, blocked, or failed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := projectRoot()
		cfg, err := config.Load(root)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		var skills []types.Skill
		if cfg.Skills.Enabled {
			loaded, dropped, err := skill.Discover(root, cfg.Skills.Directories, cfg.Skills.BlockSuspicious)
			if err != nil {
				return fmt.Errorf("discovering skills: %w", err)
			}
			for _, d := range dropped {
				newDisplay().Warning(fmt.Sprintf("skill %q dropped: security scan flagged its body", d.Name))
			}
			skills = loaded
		}

		p := buildProvider(cfg, root)
		git := buildGit(cfg, root)
		execCfg := buildExecutorConfig(cfg, root)

		disp := newDisplay()
		obs := executor.Observer{
			OnPhase:  func(phase string, iteration int) { disp.Phase(iteration, phase) },
			OnOutput: func(chunk string) { disp.Output(chunk) },
		}

		e := executor.New(p, git, root, execCfg, obs)
		result, err := e.Run(context.Background(), executor.RunOptions{
			TaskPath: args[0],
			Resume:   runResume,
			Skills:   skills,
		})

		disp.Terminal(result.State.Status, result.Report.BlockedReason)
		if result.ReportPath != "" {
			disp.Info("Report", result.ReportPath)
		}
		if err != nil {
			return err
		}
		if result.State.Status != types.StatusCompleted {
			return fmt.Errorf("task ended %s", result.State.Status)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runResume, "resume", false, "resume a previously blocked task")
	rootCmd.AddCommand(runCmd)
}
