package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gohome/internal/core/model"
	"gohome/internal/core/store"
	"gohome/internal/core/timekeeper"
	"gohome/internal/storage"
)

var estimateFile string

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Project the finish time of a plan file",
	Long: `Add every event of a YAML plan at the current time and print the batch
plan with the projected finish time.

Example plan:
  events:
    - name: laundry
      duration: 45
    - name: bread
      duration: 20
      loops: 3
      order: 1
`,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&estimateFile, "file", "f", "", "Plan file (YAML)")
	_ = estimateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	params, err := storage.LoadPlanFile(estimateFile)
	if err != nil {
		return err
	}

	events := store.New()
	now := time.Now()
	for _, entry := range params {
		if _, err := events.Add(now, entry); err != nil {
			return err
		}
	}

	printReport(cmd.OutOrStdout(), timekeeper.BuildReport(events.Snapshot(), now))
	return nil
}

func printReport(out io.Writer, report timekeeper.Report) {
	if !report.HasWork {
		fmt.Fprintln(out, "nothing to do")
		return
	}

	names := make(map[model.EventID]string, len(report.Statuses))
	for _, status := range report.Statuses {
		names[status.ID] = status.Name
	}

	for _, plan := range report.Batches {
		members := make([]string, 0, len(plan.EventIDs))
		for _, id := range plan.EventIDs {
			members = append(members, names[id])
		}
		fmt.Fprintf(out, "batch %d  %s - %s  %s\n",
			plan.Order,
			plan.Start.Local().Format("15:04:05"),
			plan.End.Local().Format("15:04:05"),
			strings.Join(members, ", "))
	}
	fmt.Fprintf(out, "finish at %s (in %s)\n",
		report.Completion.Local().Format("15:04:05"),
		report.Remaining().Round(time.Second))
}
