// Package wikitools provides the MCP tool handlers for the project wiki.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema and a Handle() method.
package wikitools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/axatbhardwaj/context-tracker/internal/locator"
	"github.com/axatbhardwaj/context-tracker/internal/model"
	"github.com/axatbhardwaj/context-tracker/internal/tracker"
)

// Recorder records sessions and resolves working directories.
type Recorder interface {
	Record(ctx context.Context, sess tracker.Session) (*tracker.Outcome, error)
	Locate(cwd string) locator.Target
}

// DocumentReader loads a wiki document without modifying it.
type DocumentReader interface {
	Read(ctx context.Context, path string) (model.Document, string, error)
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// stringsArg extracts a list of strings. A plain string is split on newlines
// so clients without array support can still pass several items.
func stringsArg(req mcp.CallToolRequest, key string) []string {
	var out []string
	switch v := req.GetArguments()[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, line := range strings.Split(v, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*"))
			if line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

func stringItems() mcp.PropertyOption {
	return mcp.Items(map[string]interface{}{"type": "string"})
}
