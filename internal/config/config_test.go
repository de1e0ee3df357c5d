package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoader(t *testing.T, path string) *Loader {
	t.Helper()
	l := NewLoader(path)
	l.home = "/home/tester"
	return l
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := testLoader(t, filepath.Join(t.TempDir(), "absent.json")).Load()
	require.NoError(t, err)

	assert.Equal(t, "/home/tester/context", cfg.ContextRoot)
	assert.Equal(t, "/home/tester/.context-tracker", cfg.DataDir)
	assert.Equal(t, []string{"/tmp/", "/home/tester/.cache/"}, cfg.ExcludedPaths)
	assert.Equal(t, 5, cfg.Wiki.MaxRecent)
	assert.Equal(t, 0.8, cfg.Wiki.DuplicateThreshold)
	assert.Equal(t, "context.md", cfg.Wiki.FileName)
	assert.True(t, cfg.Git.AutoCommit)
	assert.Equal(t, "/home/tester/.context-tracker/context-tracker.log", cfg.Logging.File)
	assert.Equal(t, "/home/tester/.context-tracker/ledger.db", cfg.LedgerPath())
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"context_root": "/srv/context",
		"excluded_paths": ["/scratch/"],
		"wiki": {"max_recent": 8},
		"git": {"auto_push": false}
	}`), 0o644))

	cfg, err := testLoader(t, path).Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/context", cfg.ContextRoot)
	assert.Equal(t, []string{"/scratch/"}, cfg.ExcludedPaths)
	assert.Equal(t, 8, cfg.Wiki.MaxRecent)
	assert.Equal(t, 0.8, cfg.Wiki.DuplicateThreshold, "unset nested keys keep defaults")
	assert.True(t, cfg.Git.AutoCommit)
	assert.False(t, cfg.Git.AutoPush)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CONTEXT_TRACKER_WIKI_MAX_RECENT", "9")
	cfg, err := testLoader(t, filepath.Join(t.TempDir(), "absent.json")).Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Wiki.MaxRecent)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"wiki": {"duplicate_threshold": 1.5}}`), 0o644))

	_, err := testLoader(t, path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate_threshold")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := testLoader(t, path).Load()
	assert.Error(t, err)
}

func TestLoader_PathFromEnv(t *testing.T) {
	t.Setenv("CONTEXT_TRACKER_CONFIG", "/etc/ct.json")
	assert.Equal(t, "/etc/ct.json", testLoader(t, "").Path())
	assert.Equal(t, "/explicit.json", testLoader(t, "/explicit.json").Path())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Wiki.MaxRecent = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Wiki.FileName = "nested/context.md"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ContextRoot = " "
	assert.Error(t, cfg.Validate())
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/h", ExpandHome("~", "/h"))
	assert.Equal(t, "/h/x/", ExpandHome("~/x/", "/h"))
	assert.Equal(t, "/abs", ExpandHome("/abs", "/h"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x", "/h"))
}
