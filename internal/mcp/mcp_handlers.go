package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/chatstats/core"
	"github.com/huangsam/chatstats/internal/contract"
	"github.com/huangsam/chatstats/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// reportConfig clones the base config and applies the request arguments.
func (h *toolHandler) reportConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	err := contract.ApplyOverrides(cfg, contract.ReportOverrides{
		ArchivePath: request.GetString("archive_path", ""),
		Start:       request.GetString("start", ""),
		End:         request.GetString("end", ""),
		Period:      request.GetString("period", ""),
		PeriodTop:   request.GetInt("period_top", 0),
		Limit:       request.GetInt("limit", 0),
	})
	return cfg, err
}

// report validates the request and builds the report for it.
func (h *toolHandler) report(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, *schema.Report, *mcp.CallToolResult) {
	cfg, err := h.reportConfig(request)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err))
	}
	report, err := core.GetReport(core.WithSuppressProgress(ctx), cfg, h.mgr)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err))
	}
	return cfg, report, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetReportSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, report, errResult := h.report(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	type summaryResult struct {
		schema.ReportSummary
		SentimentLabel string `json:"sentimentLabel"`
	}
	return jsonResult(summaryResult{
		ReportSummary:  report.Summary(),
		SentimentLabel: contract.GetPlainLabel(report.AverageSentiment),
	})
}

func (h *toolHandler) handleGetPeriods(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, report, errResult := h.report(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(report.PeriodRows())
}

func (h *toolHandler) handleGetTopWords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := schema.FrequencyKind(request.GetString("kind", string(schema.WordKind)))
	if _, ok := schema.ValidFrequencyKinds[kind]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid kind %q", kind)), nil
	}

	cfg, report, errResult := h.report(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(core.TopWords(report, kind, cfg.ResultLimit))
}
