// Package config loads context-tracker settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the full context-tracker configuration.
type Config struct {
	// Root of the context repository that holds every project's wiki.
	ContextRoot string `json:"context_root" mapstructure:"context_root"`

	// Ledger database, lock files and default log file live here.
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	WorkPathPatterns []string `json:"work_path_patterns" mapstructure:"work_path_patterns"`
	ExcludedPaths    []string `json:"excluded_paths" mapstructure:"excluded_paths"`

	Wiki    WikiConfig    `json:"wiki" mapstructure:"wiki"`
	Git     GitConfig     `json:"git" mapstructure:"git"`
	Session SessionConfig `json:"session" mapstructure:"session"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// WikiConfig tunes the merge.
type WikiConfig struct {
	MaxRecent          int     `json:"max_recent" mapstructure:"max_recent"`
	DuplicateThreshold float64 `json:"duplicate_threshold" mapstructure:"duplicate_threshold"`
	FileName           string  `json:"file_name" mapstructure:"file_name"`
}

// GitConfig controls publishing of the context repository.
type GitConfig struct {
	AutoCommit            bool   `json:"auto_commit" mapstructure:"auto_commit"`
	AutoPush              bool   `json:"auto_push" mapstructure:"auto_push"`
	CommitMessageTemplate string `json:"commit_message_template" mapstructure:"commit_message_template"`
}

// SessionConfig filters sessions not worth recording.
type SessionConfig struct {
	MinFacts int `json:"min_facts" mapstructure:"min_facts"`
}

// LoggingConfig mirrors logger.Config.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	File   string `json:"file" mapstructure:"file"`
	Pretty bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ContextRoot:      "~/context",
		DataDir:          "~/.context-tracker",
		WorkPathPatterns: []string{},
		ExcludedPaths:    []string{"/tmp/", "~/.cache/"},
		Wiki: WikiConfig{
			MaxRecent:          5,
			DuplicateThreshold: 0.8,
			FileName:           "context.md",
		},
		Git: GitConfig{
			AutoCommit:            true,
			AutoPush:              true,
			CommitMessageTemplate: "Context update: {project} - {topics}",
		},
		Session: SessionConfig{MinFacts: 1},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ContextRoot) == "" {
		return fmt.Errorf("context_root is required")
	}
	if c.Wiki.MaxRecent <= 0 {
		return fmt.Errorf("wiki.max_recent must be positive, got %d", c.Wiki.MaxRecent)
	}
	if c.Wiki.DuplicateThreshold <= 0 || c.Wiki.DuplicateThreshold > 1 {
		return fmt.Errorf("wiki.duplicate_threshold must be in (0, 1], got %v", c.Wiki.DuplicateThreshold)
	}
	if c.Wiki.FileName == "" || strings.ContainsRune(c.Wiki.FileName, filepath.Separator) {
		return fmt.Errorf("wiki.file_name must be a plain file name, got %q", c.Wiki.FileName)
	}
	if c.Session.MinFacts < 0 {
		return fmt.Errorf("session.min_facts must not be negative, got %d", c.Session.MinFacts)
	}
	return nil
}

// LedgerPath is the SQLite ledger location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// LockDir holds cross-process document locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.DataDir, "locks")
}

// expandPaths resolves "~" in every path-valued field.
func (c *Config) expandPaths(home string) {
	c.ContextRoot = ExpandHome(c.ContextRoot, home)
	c.DataDir = ExpandHome(c.DataDir, home)
	c.Logging.File = ExpandHome(c.Logging.File, home)
	for i, p := range c.WorkPathPatterns {
		c.WorkPathPatterns[i] = ExpandHome(p, home)
	}
	for i, p := range c.ExcludedPaths {
		c.ExcludedPaths[i] = ExpandHome(p, home)
	}
}

// ExpandHome replaces a leading "~" with home. Trailing separators are kept.
func ExpandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return home + p[1:]
	}
	return p
}

// UserHome returns the current user's home directory, or "." if unknown.
func UserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
