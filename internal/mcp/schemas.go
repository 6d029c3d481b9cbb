package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// rankDocumentsTool returns the tool definition for rank_documents
func rankDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rank_documents",
		Description: "Rank the pages of the documents in a directory by relevance to a persona and their job to be done",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a directory of PDF, DOCX, TXT, Markdown or HTML documents",
				},
				"persona": map[string]interface{}{
					"type":        "string",
					"description": "Who is reading, e.g. 'Travel Planner'",
				},
				"job": map[string]interface{}{
					"type":        "string",
					"description": "What the persona needs to accomplish",
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of sections to report (1-100)",
					"default":     5,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"path", "persona", "job"},
		},
	}
}

// getReportTool returns the tool definition for get_report
func getReportTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_report",
		Description: "Fetch a stored ranking report by id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Report id returned by rank_documents or list_reports",
				},
			},
			Required: []string{"id"},
		},
	}
}

// listReportsTool returns the tool definition for list_reports
func listReportsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_reports",
		Description: "List stored ranking reports, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of reports to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}
