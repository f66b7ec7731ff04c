package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names
const (
	ToolScanProfile     = "scan_profile"
	ToolCompareProfiles = "compare_profiles"
	ToolProfileHistory  = "profile_history"
)

// ToolDefinitions returns the tools the server always exposes
func ToolDefinitions() []mcp.Tool {
	return []mcp.Tool{
		toolScanProfile(),
		toolCompareProfiles(),
	}
}

func toolScanProfile() mcp.Tool {
	return mcp.NewTool(ToolScanProfile,
		mcp.WithDescription(`Scan a public Instagram profile and report engagement statistics.

Reads up to "limit" recent posts with a pause of a few seconds between each, so a full scan takes minutes. Returns the report as JSON unless another format is requested.`),
		mcp.WithString("username",
			mcp.Description("Instagram username, with or without @"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of recent posts to read (default 40)"),
		),
		mcp.WithString("format",
			mcp.Description("Report format: json, yaml or text (default json)"),
		),
	)
}

func toolCompareProfiles() mcp.Tool {
	return mcp.NewTool(ToolCompareProfiles,
		mcp.WithDescription("Scan a profile and a competitor one after the other and report how they compare, with recommendations."),
		mcp.WithString("username",
			mcp.Description("Your Instagram username"),
			mcp.Required(),
		),
		mcp.WithString("competitor",
			mcp.Description("Competitor Instagram username"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of recent posts to read from each profile (default 40)"),
		),
		mcp.WithString("format",
			mcp.Description("Report format: json, yaml or text (default json)"),
		),
	)
}

func toolProfileHistory() mcp.Tool {
	return mcp.NewTool(ToolProfileHistory,
		mcp.WithDescription("List earlier scans of a profile, newest first, with the change since the previous scan."),
		mcp.WithString("username",
			mcp.Description("Instagram username"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of snapshots (default 10)"),
		),
	)
}
