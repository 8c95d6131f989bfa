package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set by goreleaser via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "aidf",
	Short: "Autonomous task execution engine",
	Long: `aidf drives a single Markdown task file through an LLM provider to
completion, iterating prompt, execution, and validation until the task's
Definition of Done is both signaled and independently verified.

  aidf run <task>          Execute one task file
  aidf plan run <plan>      Execute every task in a plan, wave by wave
  aidf init                 Scaffold a new .ai/ project
  aidf report list|show     Inspect past execution reports
  aidf skills list           List discoverable skills`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("aidf version %s\n", Version))
}
