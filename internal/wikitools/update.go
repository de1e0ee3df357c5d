package wikitools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/axatbhardwaj/context-tracker/internal/model"
	"github.com/axatbhardwaj/context-tracker/internal/tracker"
)

// UpdateTool handles the wiki_update MCP tool.
type UpdateTool struct {
	recorder Recorder
}

// NewUpdateTool creates an UpdateTool.
func NewUpdateTool(recorder Recorder) *UpdateTool {
	return &UpdateTool{recorder: recorder}
}

// Definition returns the MCP tool definition for wiki_update.
func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("wiki_update",
		mcp.WithDescription(
			"Record what was learned in this session into the project's context wiki. "+
				"Near-duplicates of existing entries are dropped, so it is safe to repeat facts.",
		),
		mcp.WithString("cwd",
			mcp.Required(),
			mcp.Description("Project working directory the session ran in"),
		),
		mcp.WithString("summary",
			mcp.Description("One-line summary of the work done; becomes the Recent Work entry"),
		),
		mcp.WithArray("decisions",
			mcp.Description("Decisions made, with their reason"),
			stringItems(),
		),
		mcp.WithArray("patterns",
			mcp.Description("Conventions or patterns established"),
			stringItems(),
		),
		mcp.WithArray("issues",
			mcp.Description("Known issues or gotchas discovered"),
			stringItems(),
		),
		mcp.WithString("architecture",
			mcp.Description("Architecture overview; only used while the wiki has none"),
		),
		mcp.WithArray("topics",
			mcp.Description("Topics touched, used as tags and in the commit message"),
			stringItems(),
		),
		mcp.WithString("session_id",
			mcp.Description("Session identifier for the ledger"),
		),
		mcp.WithString("session_log",
			mcp.Description("Optional full session log in markdown, stored under history/"),
		),
	)
}

// Handle processes the wiki_update tool call.
func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cwd := req.GetString("cwd", "")
	if cwd == "" {
		return mcp.NewToolResultError("'cwd' is required"), nil
	}

	out, err := t.recorder.Record(ctx, tracker.Session{
		Cwd:          cwd,
		SessionID:    req.GetString("session_id", ""),
		Summary:      req.GetString("summary", ""),
		Decisions:    stringsArg(req, "decisions"),
		Patterns:     stringsArg(req, "patterns"),
		Issues:       stringsArg(req, "issues"),
		Architecture: req.GetString("architecture", ""),
		Topics:       stringsArg(req, "topics"),
		SessionLog:   req.GetString("session_log", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
	}

	if out.Skipped {
		return mcp.NewToolResultText(fmt.Sprintf("Nothing recorded for %s: %s.", cwd, out.Reason)), nil
	}

	res := out.Result
	var b strings.Builder
	if !res.Changed {
		fmt.Fprintf(&b, "No changes to %s (everything already recorded).\n", res.Path)
	} else if res.Created {
		fmt.Fprintf(&b, "Created %s\n", res.Path)
	} else {
		fmt.Fprintf(&b, "Updated %s\n", res.Path)
	}
	fmt.Fprintf(&b, "  decisions +%d, patterns +%d, issues +%d, suppressed %d\n",
		res.Report.AddedCount(model.KindDecision),
		res.Report.AddedCount(model.KindPattern),
		res.Report.AddedCount(model.KindIssue),
		res.Report.Suppressed)
	if res.Report.ArchitectureSet {
		b.WriteString("  architecture set\n")
	}
	if res.Report.RecentEntry != "" {
		fmt.Fprintf(&b, "  recent: %s\n", res.Report.RecentEntry)
	}
	if out.LogPath != "" {
		fmt.Fprintf(&b, "  session log: %s\n", out.LogPath)
	}
	for _, w := range out.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	return mcp.NewToolResultText(b.String()), nil
}
