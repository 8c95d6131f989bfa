package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aidf-dev/aidf/internal/report"
	"github.com/aidf-dev/aidf/internal/types"
)

var (
	reportStatusFilter string
	reportTaskFilter   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect past execution reports",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List execution reports, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := report.NewWriter(filepath.Join(projectRoot(), ".aidf", "reports"))
		reports, err := w.List(report.ListFilter{Status: types.Status(reportStatusFilter), Task: reportTaskFilter})
		if err != nil {
			return err
		}
		disp := newDisplay()
		if len(reports) == 0 {
			disp.Info("Reports", "none found")
			return nil
		}
		for _, r := range reports {
			disp.Info(r.RunID[:8], fmt.Sprintf("%s  %s  iterations=%d  status=%s", r.Timestamp.Format("2006-01-02 15:04"), r.TaskPath, r.Iterations, r.Status))
		}
		return nil
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show <run-id-prefix>",
	Short: "Print one report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := report.NewWriter(filepath.Join(projectRoot(), ".aidf", "reports"))
		r, err := w.Read(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	},
}

var reportAggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Summarize all execution reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := report.NewWriter(filepath.Join(projectRoot(), ".aidf", "reports"))
		reports, err := w.List(report.ListFilter{})
		if err != nil {
			return err
		}
		agg := report.ComputeAggregate(reports)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(agg)
	},
}

func init() {
	reportListCmd.Flags().StringVar(&reportStatusFilter, "status", "", "filter by status (completed, blocked, failed)")
	reportListCmd.Flags().StringVar(&reportTaskFilter, "task", "", "filter by exact task path")
	reportCmd.AddCommand(reportListCmd, reportShowCmd, reportAggregateCmd)
	rootCmd.AddCommand(reportCmd)
}
