package cmd

import (
	"io"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/huangsam/runmatrix/internal/mcp"
	"github.com/huangsam/runmatrix/internal/metrics"
	"github.com/huangsam/runmatrix/internal/source"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the runmatrix MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents read run matrices,
filter options and summaries through standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		src, err := source.New(cfg)
		if err != nil {
			return err
		}
		if closer, ok := src.(io.Closer); ok {
			defer func() { _ = closer.Close() }()
		}

		rec := metrics.NewRecorder()
		if cfg.MetricsFile != "" {
			defer func() {
				if err := rec.WriteFile(cfg.MetricsFile); err != nil {
					contract.LogWarn("Cannot write metrics", err)
				}
			}()
		}
		return mcp.StartMCPServer(rootCtx, cfg, src, rec)
	},
}
