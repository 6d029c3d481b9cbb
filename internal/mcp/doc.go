// Package mcp implements the Model Context Protocol (MCP) server for docrank.
//
// The server exposes three tools:
//   - rank_documents: rank the pages of a directory of documents for a persona and job
//   - get_report: fetch a stored report
//   - list_reports: list stored reports, newest first
//
// # Protocol Overview
//
// MCP is JSON-RPC 2.0 over stdio:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries protocol messages only; logs go to stderr.
//
// # Basic Usage
//
//	docrank mcp
//
// # Tool: rank_documents
//
//	Request:
//	{
//	  "path": "/abs/path/to/docs",
//	  "persona": "Travel Planner",
//	  "job": "Plan a trip of 4 days for a group of 10 college friends",
//	  "top_k": 5
//	}
//
//	Response:
//	{
//	  "id": "3f0c...",
//	  "report": {
//	    "metadata": {...},
//	    "extracted_sections": [...],
//	    "subsection_analysis": [...]
//	  },
//	  "section_count": 42,
//	  "failures": [{"document": "broken.pdf", "stage": "open", "error": "..."}],
//	  "duration_ms": 812
//	}
//
// The id is empty when report history is disabled.
//
// # Tools: get_report, list_reports
//
// Both read the report history and fail with ErrorCodeStorageUnavailable
// when it is disabled.
//
// # Error Codes
//
//	-32602  Invalid params (missing persona, bad top_k, relative path)
//	-32603  Internal error
//	-32001  No supported documents in the directory
//	-32002  A run is already ranking that directory
//	-32003  Report not found
//	-32005  Embedding provider failed
//	-32006  Report history disabled
package mcp
