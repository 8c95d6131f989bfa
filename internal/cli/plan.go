package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidf-dev/aidf/internal/config"
	"github.com/aidf-dev/aidf/internal/executor"
	"github.com/aidf-dev/aidf/internal/plan"
	"github.com/aidf-dev/aidf/internal/runner"
	"github.com/aidf-dev/aidf/internal/skill"
	"github.com/aidf-dev/aidf/internal/types"
)

var (
	planConcurrency int
	planContinue    bool
	planDryRun      bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run every task named in a plan file",
}

var planRunCmd = &cobra.Command{
	Use:   "run <plan.md>",
	Short: "Execute a plan's tasks wave by wave",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := projectRoot()
		cfg, err := config.Load(root)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		searchDirs := plan.DefaultSearchDirs(root)
		tasks, err := plan.ParseFile(args[0], searchDirs)
		if err != nil {
			return fmt.Errorf("parsing plan: %w", err)
		}

		var skills []types.Skill
		if cfg.Skills.Enabled {
			loaded, _, err := skill.Discover(root, cfg.Skills.Directories, cfg.Skills.BlockSuspicious)
			if err != nil {
				return fmt.Errorf("discovering skills: %w", err)
			}
			skills = loaded
		}

		disp := newDisplay()
		p := buildProvider(cfg, root)
		git := buildGit(cfg, root)
		execCfg := buildExecutorConfig(cfg, root)

		taskExec := func(ctx context.Context, task types.PlanTask) (types.Status, error) {
			obs := executor.Observer{
				OnPhase: func(phase string, iteration int) { disp.Phase(iteration, fmt.Sprintf("%s: %s", task.Filename, phase)) },
			}
			e := executor.New(p, git, root, execCfg, obs)
			result, err := e.Run(ctx, executor.RunOptions{TaskPath: task.TaskPath, Skills: skills})
			if err != nil {
				return types.StatusFailed, err
			}
			return result.State.Status, nil
		}

		opts := runner.Options{Concurrency: planConcurrency, ContinueOnError: planContinue, DryRun: planDryRun}
		for _, wave := range plan.GroupWaves(tasks) {
			disp.WaveProgress(wave)
		}

		result, err := runner.Run(context.Background(), args[0], tasks, taskExec, opts)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("plan run finished with failures across %d tasks", result.TotalTasks)
		}
		disp.Success(fmt.Sprintf("plan complete: %d tasks", result.TotalTasks))
		return nil
	},
}

func init() {
	planRunCmd.Flags().IntVar(&planConcurrency, "concurrency", 3, "max parallel tasks within one wave")
	planRunCmd.Flags().BoolVar(&planContinue, "continue-on-error", false, "proceed to the next wave even if this wave had failures")
	planRunCmd.Flags().BoolVar(&planDryRun, "dry-run", false, "print the plan without executing anything")
	planCmd.AddCommand(planRunCmd)
	rootCmd.AddCommand(planCmd)
}
