package cmd

import (
	"github.com/huangsam/runmatrix/core"
	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/spf13/cobra"
)

// matrixCmd builds the hourly status matrix.
var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the hourly status matrix of automation runs.",
	Long: `Fetch run history and show one row per owner, project and flow with one
column per hour of the day.

Each cell holds the most important status seen in that hour, so a single
failure is never hidden behind later successes. Rows are ordered by how
interesting they are: failures first, then running flows, then overall activity.

Examples:
  # Show every run from the default source
  runmatrix matrix

  # Show one project on a specific day
  runmatrix matrix --day 2025-03-10 --project AMZ

  # Compare several days side by side
  runmatrix matrix --day 2025-03-09 --day 2025-03-10

  # Export the cells to parquet for later analysis
  runmatrix matrix --output parquet --output-file cells.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runWithSource(core.ExecuteMatrix); err != nil {
			contract.LogFatal("Cannot build run matrix", err)
		}
	},
}
