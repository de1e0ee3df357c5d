package server

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axatbhardwaj/context-tracker/internal/config"
	"github.com/axatbhardwaj/context-tracker/internal/store"
	"github.com/axatbhardwaj/context-tracker/internal/tracker"
)

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	home := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ContextRoot = filepath.Join(home, "context")
	cfg.DataDir = filepath.Join(home, ".context-tracker")
	cfg.ExcludedPaths = nil
	cfg.Git.AutoCommit = false
	return cfg, home
}

func listTools(t *testing.T, c *Components) string {
	t.Helper()
	s := New(c)
	ctx := context.Background()
	s.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(b)
}

func TestWire_AllTools(t *testing.T) {
	cfg, home := testConfig(t)
	c, cleanup := Wire(cfg, home, zerolog.Nop())
	defer cleanup()

	require.NotNil(t, c.Ledger)
	assert.FileExists(t, cfg.LedgerPath())

	tools := listTools(t, c)
	assert.Contains(t, tools, `"wiki_update"`)
	assert.Contains(t, tools, `"wiki_read"`)
	assert.Contains(t, tools, `"wiki_history"`)
}

func TestWire_LedgerFailureDisablesHistory(t *testing.T) {
	openLedger = func(string) (*store.SQLiteStore, error) { return nil, errors.New("disk on fire") }
	t.Cleanup(func() { openLedger = store.NewSQLiteStore })

	cfg, home := testConfig(t)
	c, cleanup := Wire(cfg, home, zerolog.Nop())
	defer cleanup()

	assert.Nil(t, c.Ledger)
	tools := listTools(t, c)
	assert.Contains(t, tools, `"wiki_update"`)
	assert.NotContains(t, tools, `"wiki_history"`)

	// Merges still work without the ledger.
	out, err := c.Tracker.Record(context.Background(), tracker.Session{
		Cwd:       filepath.Join(home, "code", "api"),
		Decisions: []string{"Use Postgres"},
	})
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)
	assert.FileExists(t, out.Target.Document)
}

func TestWire_RecordsToLedger(t *testing.T) {
	cfg, home := testConfig(t)
	c, cleanup := Wire(cfg, home, zerolog.Nop())
	defer cleanup()

	out, err := c.Tracker.Record(context.Background(), tracker.Session{
		Cwd:     filepath.Join(home, "code", "api"),
		Summary: "Initial import",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.EntryID)

	entry, err := c.Ledger.Get(context.Background(), out.EntryID)
	require.NoError(t, err)
	assert.Equal(t, "api", entry.Project)
	assert.Contains(t, entry.RecentEntry, "Initial import")
}
