// Package cli implements the context-tracker CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axatbhardwaj/context-tracker/internal/config"
	"github.com/axatbhardwaj/context-tracker/internal/logger"
	"github.com/axatbhardwaj/context-tracker/internal/server"
	"github.com/axatbhardwaj/context-tracker/internal/store"
)

var (
	configPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:     "context-tracker",
	Short:   "Per-project knowledge wiki for coding agents",
	Long:    "Merges what agents learn in each session into a markdown wiki per project. Text in, text out. Single binary.",
	Version: server.Version,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONTEXT_TRACKER_CONFIG or ~/.context-tracker/config.json)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// newLogger builds the process logger. Console output goes to stderr only
// when asked, so hook and MCP stdout stay clean.
func newLogger(cfg *config.Config, console bool) *logger.Logger {
	l, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		// Fall back to stderr only; a broken log file must not stop a merge.
		l, _ = logger.New(logger.Config{Level: cfg.Logging.Level, Console: true, Pretty: cfg.Logging.Pretty})
	}
	return l
}

// setup loads config, logger and wired components for a command.
func setup(console bool) (*server.Components, func()) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	log := newLogger(cfg, console)
	c, cleanup := server.Wire(cfg, config.UserHome(), log.Logger)
	return c, func() {
		cleanup()
		log.Close()
	}
}

func openStore() (*store.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(cfg.LedgerPath())
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
