package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axatbhardwaj/context-tracker/internal/config"
	"github.com/axatbhardwaj/context-tracker/internal/merger"
	"github.com/axatbhardwaj/context-tracker/internal/model"
	"github.com/axatbhardwaj/context-tracker/internal/store"
	"github.com/axatbhardwaj/context-tracker/internal/updater"
	"github.com/axatbhardwaj/context-tracker/internal/wiki"
)

var fixedNow = time.Date(2026, 10, 19, 15, 4, 0, 0, time.UTC)

type fakeLedger struct {
	recorded []store.RecordParams
	err      error
}

func (f *fakeLedger) Record(_ context.Context, p store.RecordParams) (*model.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, p)
	return &model.Entry{ID: "01TEST"}, nil
}

type fakeGit struct {
	calls  int
	topics []string
	err    error
}

func (f *fakeGit) Sync(_ context.Context, _ string, topics []string) (bool, error) {
	f.calls++
	f.topics = topics
	return f.err == nil, f.err
}

type fixture struct {
	svc    *Service
	cfg    *config.Config
	home   string
	ledger *fakeLedger
	git    *fakeGit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	home := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ContextRoot = filepath.Join(home, "context")
	cfg.DataDir = filepath.Join(home, ".context-tracker")
	cfg.WorkPathPatterns = []string{filepath.Join(home, "work") + "/"}
	cfg.ExcludedPaths = []string{filepath.Join(home, "scratch") + "/"}

	f := &fixture{cfg: cfg, home: home, ledger: &fakeLedger{}, git: &fakeGit{}}
	f.svc = New(Options{
		Config: cfg,
		Home:   home,
		Updater: updater.New(updater.Options{
			Merge:  merger.Options{MaxRecent: cfg.Wiki.MaxRecent, DuplicateThreshold: cfg.Wiki.DuplicateThreshold},
			Now:    func() time.Time { return fixedNow },
			Logger: zerolog.Nop(),
		}),
		Ledger: f.ledger,
		Git:    f.git,
		Now:    func() time.Time { return fixedNow },
		Logger: zerolog.Nop(),
	})
	return f
}

func TestRecord_FullSession(t *testing.T) {
	f := newFixture(t)
	cwd := filepath.Join(f.home, "code", "api")

	out, err := f.svc.Record(context.Background(), Session{
		Cwd:          cwd,
		SessionID:    "s1",
		Summary:      "Set up auth",
		Decisions:    []string{"Use JWT with 24h expiry"},
		Patterns:     []string{"Handlers return typed errors"},
		Architecture: "Gateway in front of three services.",
		Topics:       []string{"Auth Flow", "jwt"},
		SessionLog:   "# Session\n\nLong transcript",
	})
	require.NoError(t, err)
	assert.False(t, out.Skipped)
	assert.Equal(t, "personal", out.Target.Classification)
	assert.Equal(t, filepath.Join(f.cfg.ContextRoot, "personal", "code", "api", "context.md"), out.Target.Document)
	assert.Equal(t, "01TEST", out.EntryID)
	assert.True(t, out.Committed)

	wantLog := filepath.Join(out.Target.HistoryDir, "2026-10-19_15-04_auth-flow.md")
	assert.Equal(t, wantLog, out.LogPath)
	logData, err := os.ReadFile(wantLog)
	require.NoError(t, err)
	assert.Equal(t, "# Session\n\nLong transcript\n", string(logData))

	data, err := os.ReadFile(out.Target.Document)
	require.NoError(t, err)
	doc := wiki.Parse(string(data))
	assert.Equal(t, "Gateway in front of three services.", doc.Architecture)
	assert.Equal(t, []string{"Use JWT with 24h expiry"}, doc.Decisions)
	assert.Equal(t, []string{"Handlers return typed errors"}, doc.Patterns)
	assert.Equal(t, []string{
		"[2026-10-19] Set up auth (Auth Flow, jwt) [log](history/2026-10-19_15-04_auth-flow.md)",
	}, doc.RecentWork)

	require.Len(t, f.ledger.recorded, 1)
	rec := f.ledger.recorded[0]
	assert.Equal(t, "api", rec.Project)
	assert.Equal(t, 1, rec.AddedDecisions)
	assert.True(t, rec.ArchitectureSet)
	assert.Equal(t, "# Session\n\nLong transcript", rec.SessionLog)
	assert.Equal(t, []string{"Auth Flow", "jwt"}, f.git.topics)
}

func TestRecord_WorkClassification(t *testing.T) {
	f := newFixture(t)
	out, err := f.svc.Record(context.Background(), Session{
		Cwd:       filepath.Join(f.home, "work", "billing"),
		Decisions: []string{"Invoices are immutable"},
	})
	require.NoError(t, err)
	assert.Equal(t, "work", out.Target.Classification)
	assert.FileExists(t, out.Target.Document)
}

func TestRecord_ExcludedPath(t *testing.T) {
	f := newFixture(t)
	out, err := f.svc.Record(context.Background(), Session{
		Cwd:       filepath.Join(f.home, "scratch", "tmp"),
		Decisions: []string{"anything"},
	})
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Equal(t, "excluded path", out.Reason)
	assert.NoFileExists(t, out.Target.Document)
	assert.Zero(t, f.git.calls)
}

func TestRecord_BelowMinFacts(t *testing.T) {
	f := newFixture(t)
	f.cfg.Session.MinFacts = 2
	out, err := f.svc.Record(context.Background(), Session{
		Cwd:       filepath.Join(f.home, "code", "api"),
		Decisions: []string{"only one", "   "},
	})
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Equal(t, 1, out.Facts)
	assert.NoFileExists(t, out.Target.Document)
}

func TestRecord_EmptySessionSkipped(t *testing.T) {
	f := newFixture(t)
	f.cfg.Session.MinFacts = 0
	out, err := f.svc.Record(context.Background(), Session{Cwd: filepath.Join(f.home, "code", "api")})
	require.NoError(t, err)
	assert.True(t, out.Skipped)
}

func TestRecord_MissingCwd(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Record(context.Background(), Session{Summary: "x"})
	assert.Error(t, err)
}

func TestRecord_LedgerAndGitFailuresAreWarnings(t *testing.T) {
	f := newFixture(t)
	f.ledger.err = errors.New("database is locked")
	f.git.err = errors.New("push rejected")

	out, err := f.svc.Record(context.Background(), Session{
		Cwd:     filepath.Join(f.home, "code", "api"),
		Summary: "Refactor",
	})
	require.NoError(t, err)
	assert.Len(t, out.Warnings, 2)
	assert.Empty(t, out.EntryID)
	assert.False(t, out.Committed)
	assert.FileExists(t, out.Target.Document)
}

func TestRecord_UnchangedSkipsGit(t *testing.T) {
	f := newFixture(t)
	sess := Session{Cwd: filepath.Join(f.home, "code", "api"), Decisions: []string{"Use Postgres"}}

	_, err := f.svc.Record(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, 1, f.git.calls)

	out, err := f.svc.Record(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, out.Result.Changed)
	assert.Equal(t, 1, f.git.calls)
	assert.Equal(t, 1, out.Result.Report.Suppressed)
}

func TestRecord_SessionLogNameCollision(t *testing.T) {
	f := newFixture(t)
	sess := Session{
		Cwd:        filepath.Join(f.home, "code", "api"),
		Summary:    "first",
		SessionLog: "log one",
	}
	first, err := f.svc.Record(context.Background(), sess)
	require.NoError(t, err)

	sess.Summary, sess.SessionLog = "second", "log two"
	second, err := f.svc.Record(context.Background(), sess)
	require.NoError(t, err)

	assert.NotEqual(t, first.LogPath, second.LogPath)
	assert.Equal(t, "2026-10-19_15-04_session-2.md", filepath.Base(second.LogPath))
	data, _ := os.ReadFile(first.LogPath)
	assert.Equal(t, "log one\n", string(data))
}

func TestRecord_FailedCycleRemovesSessionLog(t *testing.T) {
	f := newFixture(t)
	sess := Session{
		Cwd:        filepath.Join(f.home, "code", "api"),
		Summary:    "Set up auth",
		Topics:     []string{"auth"},
		SessionLog: "full log",
	}
	target := f.svc.Locate(sess.Cwd)
	// A directory where the document should be makes the cycle fail.
	require.NoError(t, os.MkdirAll(target.Document, 0o755))

	for i := 0; i < 2; i++ {
		_, err := f.svc.Record(context.Background(), sess)
		require.ErrorIs(t, err, updater.ErrRetryable)
	}

	entries, err := os.ReadDir(target.HistoryDir)
	if !errors.Is(err, os.ErrNotExist) {
		require.NoError(t, err)
	}
	assert.Empty(t, entries)
	assert.Empty(t, f.ledger.recorded)
	assert.Zero(t, f.git.calls)
}

func TestBuildFacts(t *testing.T) {
	facts := BuildFacts(Session{
		Summary:   "did things",
		Decisions: []string{"a", ""},
		Issues:    []string{"b"},
		Facts: []model.Fact{
			{Kind: model.KindPattern, Text: "c"},
			{Kind: model.KindPattern, Text: " "},
		},
		Topics: []string{"t"},
	}, fixedNow)

	require.Len(t, facts, 4)
	assert.Equal(t, model.KindRecentWork, facts[0].Kind)
	require.NotNil(t, facts[0].Timestamp)
	assert.Equal(t, fixedNow, *facts[0].Timestamp)
	assert.Equal(t, []string{"t"}, facts[0].Tags)
	assert.Equal(t, model.KindDecision, facts[1].Kind)
	assert.Equal(t, model.KindIssue, facts[2].Kind)
	assert.Equal(t, model.KindPattern, facts[3].Kind)
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Auth Flow":         "auth-flow",
		"  --weird__name!!": "weird-name",
		"":                  "session",
		"日本語":               "session",
		"a very long topic name that keeps going and going": "a-very-long-topic-name-that-keeps-going",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), "Slug(%q)", in)
	}
}
