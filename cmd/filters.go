package cmd

import (
	"github.com/huangsam/runmatrix/core"
	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/spf13/cobra"
)

// filtersCmd lists the selectable projects and statuses.
var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the project and status values accepted by matrix.",
	Long: `Show the values that --project and --status accept for the fetched runs.

Examples:
  runmatrix filters
  runmatrix filters --day 2025-03-10 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runWithSource(core.ExecuteFilters); err != nil {
			contract.LogFatal("Cannot list filters", err)
		}
	},
}
