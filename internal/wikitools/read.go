package wikitools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/axatbhardwaj/context-tracker/internal/wiki"
)

const enrichmentHint = "_Architecture or Patterns is still empty; " +
	"add them with wiki_update when this session learns them._"

// ReadTool handles the wiki_read MCP tool.
type ReadTool struct {
	recorder Recorder
	reader   DocumentReader
}

// NewReadTool creates a ReadTool.
func NewReadTool(recorder Recorder, reader DocumentReader) *ReadTool {
	return &ReadTool{recorder: recorder, reader: reader}
}

// Definition returns the MCP tool definition for wiki_read.
func (t *ReadTool) Definition() mcp.Tool {
	return mcp.NewTool("wiki_read",
		mcp.WithDescription(
			"Read the project's context wiki: architecture, decisions, patterns, issues and recent work. "+
				"Call this at the start of a session to pick up where the last one left off.",
		),
		mcp.WithString("cwd",
			mcp.Description("Project working directory; the wiki location is derived from it"),
		),
		mcp.WithString("path",
			mcp.Description("Explicit wiki file path (overrides cwd)"),
		),
		mcp.WithString("format",
			mcp.Description("markdown (default) or json"),
		),
	)
}

// Handle processes the wiki_read tool call.
func (t *ReadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		cwd := req.GetString("cwd", "")
		if cwd == "" {
			return mcp.NewToolResultError("'cwd' or 'path' is required"), nil
		}
		path = t.recorder.Locate(cwd).Document
	}

	doc, text, err := t.reader.Read(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read failed: %v", err)), nil
	}
	if text == "" {
		return mcp.NewToolResultText(fmt.Sprintf("No context recorded yet at %s.", path)), nil
	}

	switch req.GetString("format", "markdown") {
	case "json":
		b, err := json.MarshalIndent(wiki.Annotate(doc), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	case "markdown", "":
		if wiki.HasEmptySections(doc) {
			text += "\n" + enrichmentHint + "\n"
		}
		return mcp.NewToolResultText(text), nil
	default:
		return mcp.NewToolResultError("'format' must be markdown or json"), nil
	}
}
