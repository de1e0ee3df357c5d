package wikitools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/axatbhardwaj/context-tracker/internal/model"
	"github.com/axatbhardwaj/context-tracker/internal/store"
)

const maxHistory = 50

// HistoryTool handles the wiki_history MCP tool.
type HistoryTool struct {
	ledger store.Ledger
}

// NewHistoryTool creates a HistoryTool.
func NewHistoryTool(ledger store.Ledger) *HistoryTool {
	return &HistoryTool{ledger: ledger}
}

// Definition returns the MCP tool definition for wiki_history.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("wiki_history",
		mcp.WithDescription(
			"List past wiki updates, newest first. With a query, searches recent-work entries, "+
				"topics and stored session logs.",
		),
		mcp.WithString("query",
			mcp.Description("Substring to search for"),
		),
		mcp.WithString("project",
			mcp.Description("Filter by project name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max entries (default: 10, max: 50)"),
		),
	)
}

// Handle processes the wiki_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	project := req.GetString("project", "")
	limit := intArg(req, "limit", 10)
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}

	var (
		results []store.SearchResult
		err     error
	)
	if strings.TrimSpace(query) != "" {
		results, err = t.ledger.Search(ctx, store.SearchParams{Query: query, Project: project, Limit: limit})
	} else {
		var entries []model.Entry
		entries, err = t.ledger.List(ctx, store.ListParams{Project: project, Limit: limit})
		for _, e := range entries {
			results = append(results, store.SearchResult{Entry: e})
		}
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No wiki updates found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d updates:\n\n", len(results))
	for i, r := range results {
		e := r.Entry
		state := "unchanged"
		if e.Changed {
			state = "changed"
		}
		fmt.Fprintf(&b, "[%d] %s %s (%s) %s\n    +%d decisions, +%d patterns, +%d issues, %d suppressed\n",
			i+1, e.CreatedAt.Format("2006-01-02 15:04"), e.Project, state, e.Path,
			e.AddedDecisions, e.AddedPatterns, e.AddedIssues, e.Suppressed)
		if e.RecentEntry != "" {
			fmt.Fprintf(&b, "    %s\n", e.RecentEntry)
		}
		if e.LogPath != "" {
			fmt.Fprintf(&b, "    log: %s\n", e.LogPath)
		}
		if r.Match != nil {
			fmt.Fprintf(&b, "    match (lines %d-%d):\n%s\n", r.Match.StartLine, r.Match.EndLine,
				indent(truncate(r.Match.Text, 300), "      "))
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
