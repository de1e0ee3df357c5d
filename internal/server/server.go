// Package server wires the wiki components and creates the MCP server.
//
// This is the composition root: it builds the concrete updater, ledger, git
// syncer and tracker from the configuration and hands them to the tools and
// CLI commands. No business logic lives here.
package server

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/axatbhardwaj/context-tracker/internal/config"
	"github.com/axatbhardwaj/context-tracker/internal/gitsync"
	"github.com/axatbhardwaj/context-tracker/internal/merger"
	"github.com/axatbhardwaj/context-tracker/internal/store"
	"github.com/axatbhardwaj/context-tracker/internal/tracker"
	"github.com/axatbhardwaj/context-tracker/internal/updater"
	"github.com/axatbhardwaj/context-tracker/internal/wikitools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// openLedger is swapped in tests to simulate an unavailable ledger.
var openLedger = store.NewSQLiteStore

// Components are the wired services shared by the CLI and the MCP server.
type Components struct {
	Config  *config.Config
	Updater *updater.Updater
	Tracker *tracker.Service
	// Ledger is nil when the database could not be opened.
	Ledger *store.SQLiteStore
}

// Wire builds the components for cfg. The ledger is an independent
// subsystem: if it fails to open, a warning is logged and merges still
// work without history.
//
// The returned cleanup function is always non-nil and closes the ledger.
func Wire(cfg *config.Config, home string, log zerolog.Logger) (*Components, func()) {
	up := updater.New(updater.Options{
		Merge: merger.Options{
			MaxRecent:          cfg.Wiki.MaxRecent,
			DuplicateThreshold: cfg.Wiki.DuplicateThreshold,
		},
		LockDir: cfg.LockDir(),
		Logger:  log,
	})

	c := &Components{Config: cfg, Updater: up}
	opts := tracker.Options{
		Config:  cfg,
		Home:    home,
		Updater: up,
		Git: gitsync.New(gitsync.Options{
			Dir:        cfg.ContextRoot,
			AutoCommit: cfg.Git.AutoCommit,
			AutoPush:   cfg.Git.AutoPush,
			Template:   cfg.Git.CommitMessageTemplate,
			Locker:     up,
			Logger:     log,
		}),
		Logger: log,
	}

	cleanup := noop
	ledger, err := openLedger(cfg.LedgerPath())
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.LedgerPath()).Msg("ledger disabled")
	} else {
		c.Ledger = ledger
		opts.Ledger = ledger
		cleanup = func() {
			if err := ledger.Close(); err != nil {
				log.Warn().Err(err).Msg("ledger close")
			}
		}
	}

	c.Tracker = tracker.New(opts)
	return c, cleanup
}

// New creates the MCP server with every tool registered. wiki_history is
// only available when the ledger is.
func New(c *Components) *server.MCPServer {
	s := server.NewMCPServer(
		"context-tracker",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	updateTool := wikitools.NewUpdateTool(c.Tracker)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	readTool := wikitools.NewReadTool(c.Tracker, c.Updater)
	s.AddTool(readTool.Definition(), readTool.Handle)

	if c.Ledger != nil {
		historyTool := wikitools.NewHistoryTool(c.Ledger)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	return s
}

// noop is the cleanup used when the ledger is disabled.
func noop() {}

const serverInstructions = `You have access to a per-project context wiki.

- At the start of a session, call wiki_read with the working directory to load
  the project's architecture, decisions, patterns, known issues and recent work.
- At the end of a session, call wiki_update with a one-line summary plus any new
  decisions, patterns and issues. Repeating known facts is harmless: near-duplicates
  are dropped.
- Use wiki_history to see past updates or search old session logs.`
