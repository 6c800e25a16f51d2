// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/chatstats/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// reportOptions are the arguments shared by every tool.
func reportOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("archive_path", mcp.Description("Path to the chat export (.zip or unpacked directory). Defaults to the server's archive.")),
		mcp.WithString("start", mcp.Description("Only include messages at or after this time (ISO8601 or 'N units ago').")),
		mcp.WithString("end", mcp.Description("Only include messages at or before this time (ISO8601 or 'N units ago').")),
		mcp.WithString("period", mcp.Description("Width of each period bucket (e.g., '30 days', '1 week').")),
		mcp.WithNumber("period_top", mcp.Description("Keep only this many words per period table (0 keeps all).")),
	}
}

// NewMCPServer initializes and configures the chatstats MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Chatstats Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_report_summary ---
	s.AddTool(mcp.NewTool("get_report_summary",
		append([]mcp.ToolOption{
			mcp.WithDescription("Summarize a chat archive: message and word totals, averages, and overall sentiment."),
		}, reportOptions()...)...,
	), h.handleGetReportSummary)

	// --- 2. Tool: get_periods ---
	s.AddTool(mcp.NewTool("get_periods",
		append([]mcp.ToolOption{
			mcp.WithDescription("Break a chat archive into fixed-width periods with per-period activity, sentiment, and top word."),
		}, reportOptions()...)...,
	), h.handleGetPeriods)

	// --- 3. Tool: get_top_words ---
	s.AddTool(mcp.NewTool("get_top_words",
		append([]mcp.ToolOption{
			mcp.WithDescription("List the most frequent words or profanity matches of a chat archive."),
			mcp.WithString("kind", mcp.Description("Which table to list. Defaults to 'words'."), mcp.Enum("words", "profanity")),
			mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		}, reportOptions()...)...,
	), h.handleGetTopWords)

	return s
}

// StartMCPServer starts the chatstats MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
