package cmd

import (
	"github.com/huangsam/runmatrix/core"
	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/spf13/cobra"
)

// summaryCmd prints headline statistics.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize fetched runs.",
	Long: `Show total runs, distinct flows, the status distribution, the busiest
projects, the overall success rate and the time span of the fetched runs.

Examples:
  runmatrix summary
  runmatrix summary --source csv --csv-dir ./exports
  runmatrix summary --output csv --output-file summary.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runWithSource(core.ExecuteSummary); err != nil {
			contract.LogFatal("Cannot summarize runs", err)
		}
	},
}
