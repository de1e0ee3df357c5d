package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CONTEXT_TRACKER_WIKI_MAX_RECENT.
const EnvPrefix = "CONTEXT_TRACKER"

// Loader handles configuration loading.
type Loader struct {
	configPath string
	home       string
}

// NewLoader creates a loader. An empty configPath selects
// $CONTEXT_TRACKER_CONFIG, then ~/.context-tracker/config.json.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath, home: UserHome()}
}

// Path returns the config file that Load reads.
func (l *Loader) Path() string {
	if l.configPath != "" {
		return l.configPath
	}
	if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
		return env
	}
	return filepath.Join(l.home, ".context-tracker", "config.json")
}

// Load reads the config file if present, applies environment overrides on
// top of the defaults, expands "~" and validates the result.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	path := l.Path()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	// Every key has a registered default, so start from an empty struct:
	// decoding into pre-filled slices would keep stale default elements.
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.expandPaths(l.home)
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.DataDir, "context-tracker.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Load is a convenience wrapper around NewLoader(path).Load().
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// setDefaults registers every key so AutomaticEnv can override it even when
// no config file exists.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("context_root", d.ContextRoot)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("work_path_patterns", d.WorkPathPatterns)
	v.SetDefault("excluded_paths", d.ExcludedPaths)
	v.SetDefault("wiki.max_recent", d.Wiki.MaxRecent)
	v.SetDefault("wiki.duplicate_threshold", d.Wiki.DuplicateThreshold)
	v.SetDefault("wiki.file_name", d.Wiki.FileName)
	v.SetDefault("git.auto_commit", d.Git.AutoCommit)
	v.SetDefault("git.auto_push", d.Git.AutoPush)
	v.SetDefault("git.commit_message_template", d.Git.CommitMessageTemplate)
	v.SetDefault("session.min_facts", d.Session.MinFacts)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.pretty", d.Logging.Pretty)
}
