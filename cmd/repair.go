package cmd

import (
	"github.com/huangsam/runmatrix/core"
	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/spf13/cobra"
)

// repairCmd validates and repairs a saved matrix document.
var repairCmd = &cobra.Command{
	Use:   "repair FILE",
	Short: "Validate and repair a JSON matrix document.",
	Long: `Read a JSON document with "cells", "entities" and "hours" keys and bring
it into a displayable shape.

Missing cells are filled with "No Run" and a malformed hour axis falls back
to 0..23. When the entity list is missing it is recovered from the cells. The
verdict says whether anything is left to show.

Examples:
  runmatrix repair matrix.json
  runmatrix repair matrix.json --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteRepair(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Cannot repair matrix", err)
		}
	},
}
