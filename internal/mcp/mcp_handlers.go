package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/runmatrix/core"
	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	src     contract.RunSource
	rec     contract.MetricsRecorder
}

// requestConfig clones the base config and applies the request's filters.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateMatrix(cfg,
		request.GetString("day", ""),
		request.GetString("project", ""),
		request.GetString("status", ""),
		request.GetInt("max_entities", 0),
	)
	return cfg, err
}

func (h *toolHandler) handleGetRunMatrix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid matrix parameters: %v", err)), nil
	}

	reports, err := core.BuildReports(ctx, cfg, h.src, h.rec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("matrix build failed: %v", err)), nil
	}

	var payload any = reports
	if len(reports) == 1 {
		payload = reports[0]
	}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFilterOptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filter parameters: %v", err)), nil
	}

	report, err := core.BuildOverview(ctx, cfg, h.src, h.rec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("filter lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report.Selectors, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRunSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid summary parameters: %v", err)), nil
	}

	report, err := core.BuildOverview(ctx, cfg, h.src, h.rec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report.Summary, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
