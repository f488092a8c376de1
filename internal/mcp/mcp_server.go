// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/runmatrix/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the runmatrix MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, src contract.RunSource, rec contract.MetricsRecorder) *server.MCPServer {
	s := server.NewMCPServer(
		"Run Matrix Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		src:     src,
		rec:     rec,
	}

	// --- 1. Tool: get_run_matrix ---
	s.AddTool(mcp.NewTool("get_run_matrix",
		mcp.WithDescription("Build the hourly status matrix of automation runs, one row per owner, project and flow."),
		mcp.WithString("day", mcp.Description("Calendar day to show (YYYY-MM-DD). Defaults to every fetched day.")),
		mcp.WithString("project", mcp.Description("Only show runs of this project. Defaults to 'All Projects'.")),
		mcp.WithString("status", mcp.Description("Only show runs with this status. Defaults to 'All Statuses'.")),
		mcp.WithNumber("max_entities", mcp.Description("Maximum number of rows, most active first.")),
	), h.handleGetRunMatrix)

	// --- 2. Tool: get_filter_options ---
	s.AddTool(mcp.NewTool("get_filter_options",
		mcp.WithDescription("List the project and status values accepted by get_run_matrix."),
		mcp.WithString("day", mcp.Description("Calendar day to inspect (YYYY-MM-DD).")),
	), h.handleGetFilterOptions)

	// --- 3. Tool: get_run_summary ---
	s.AddTool(mcp.NewTool("get_run_summary",
		mcp.WithDescription("Summarize fetched runs: totals, status distribution, top projects, success rate and time span."),
		mcp.WithString("day", mcp.Description("Calendar day to summarize (YYYY-MM-DD).")),
	), h.handleGetRunSummary)

	return s
}

// StartMCPServer starts the runmatrix MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, src contract.RunSource, rec contract.MetricsRecorder) error {
	s := NewMCPServer(baseCfg, src, rec)
	return server.ServeStdio(s)
}
