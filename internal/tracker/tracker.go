// Package tracker records one agent session into its project's wiki.
//
// A session goes through the same steps whether it arrives from the stop
// hook or the MCP server: exclusion and size checks, locating the document,
// storing the full session log, the merge cycle itself, the ledger entry and
// finally the git commit of the context repository.
package tracker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/axatbhardwaj/context-tracker/internal/config"
	"github.com/axatbhardwaj/context-tracker/internal/locator"
	"github.com/axatbhardwaj/context-tracker/internal/model"
	"github.com/axatbhardwaj/context-tracker/internal/store"
	"github.com/axatbhardwaj/context-tracker/internal/updater"
)

// Session is what an agent reports at the end of a session.
type Session struct {
	Cwd          string       `json:"cwd" yaml:"cwd"`
	SessionID    string       `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Summary      string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Decisions    []string     `json:"decisions,omitempty" yaml:"decisions,omitempty"`
	Patterns     []string     `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Issues       []string     `json:"issues,omitempty" yaml:"issues,omitempty"`
	Architecture string       `json:"architecture,omitempty" yaml:"architecture,omitempty"`
	Facts        []model.Fact `json:"facts,omitempty" yaml:"facts,omitempty"`
	Topics       []string     `json:"topics,omitempty" yaml:"topics,omitempty"`
	SessionLog   string       `json:"session_log,omitempty" yaml:"session_log,omitempty"`
}

// Outcome reports what Record did.
type Outcome struct {
	Skipped   bool            `json:"skipped"`
	Reason    string          `json:"reason,omitempty"`
	Target    locator.Target  `json:"target"`
	Facts     int             `json:"facts"`
	Result    *updater.Result `json:"result,omitempty"`
	LogPath   string          `json:"log_path,omitempty"`
	EntryID   string          `json:"entry_id,omitempty"`
	Committed bool            `json:"committed"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// Ledger is the part of the merge ledger the tracker writes to.
type Ledger interface {
	Record(ctx context.Context, p store.RecordParams) (*model.Entry, error)
}

// Syncer publishes the context repository.
type Syncer interface {
	Sync(ctx context.Context, project string, topics []string) (bool, error)
}

// Options wires a Service. Ledger and Git are optional.
type Options struct {
	Config  *config.Config
	Home    string
	Updater *updater.Updater
	Ledger  Ledger
	Git     Syncer
	Now     func() time.Time
	Logger  zerolog.Logger
}

// Service records sessions.
type Service struct {
	cfg     *config.Config
	home    string
	updater *updater.Updater
	ledger  Ledger
	git     Syncer
	now     func() time.Time
	log     zerolog.Logger
}

// New creates a Service.
func New(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		cfg:     opts.Config,
		home:    opts.Home,
		updater: opts.Updater,
		ledger:  opts.Ledger,
		git:     opts.Git,
		now:     opts.Now,
		log:     opts.Logger.With().Str("component", "tracker").Logger(),
	}
}

// Locate returns the document target for cwd.
func (s *Service) Locate(cwd string) locator.Target {
	return locator.Resolve(locator.Options{
		ContextRoot:      s.cfg.ContextRoot,
		FileName:         s.cfg.Wiki.FileName,
		WorkPathPatterns: s.cfg.WorkPathPatterns,
	}, cwd, s.home)
}

// Record merges a session into its project's document. Only a failed merge
// cycle is an error; ledger and git failures are logged and reported as
// warnings.
func (s *Service) Record(ctx context.Context, sess Session) (*Outcome, error) {
	cwd := strings.TrimSpace(sess.Cwd)
	if cwd == "" {
		return nil, fmt.Errorf("session cwd is required")
	}
	cwd = filepath.Clean(config.ExpandHome(cwd, s.home))

	out := &Outcome{Target: s.Locate(cwd)}
	if locator.IsExcluded(cwd, s.cfg.ExcludedPaths) {
		s.log.Info().Str("cwd", cwd).Msg("skipping excluded path")
		out.Skipped, out.Reason = true, "excluded path"
		return out, nil
	}

	now := s.now()
	facts := BuildFacts(sess, now)
	out.Facts = len(facts)
	if len(facts) == 0 || len(facts) < s.cfg.Session.MinFacts {
		s.log.Info().Str("cwd", cwd).Int("facts", len(facts)).Msg("no significant changes")
		out.Skipped, out.Reason = true, "not enough facts"
		return out, nil
	}

	if strings.TrimSpace(sess.SessionLog) != "" {
		logPath, err := s.writeSessionLog(out.Target, sess, now)
		if err != nil {
			return nil, err
		}
		out.LogPath = logPath
		ref := filepath.ToSlash(filepath.Join(locator.HistoryDirName, filepath.Base(logPath)))
		attachReference(facts, ref)
	}

	res, err := s.updater.Update(ctx, out.Target.Document, facts)
	if err != nil {
		// Nothing references the log; a retried session writes it again.
		if out.LogPath != "" {
			if rmErr := os.Remove(out.LogPath); rmErr != nil {
				s.log.Warn().Err(rmErr).Str("path", out.LogPath).Msg("remove orphaned session log")
			}
		}
		return nil, err
	}
	out.Result = res

	if s.ledger != nil {
		entry, err := s.ledger.Record(ctx, recordParams(out, sess))
		if err != nil {
			s.log.Warn().Err(err).Str("path", res.Path).Msg("ledger record failed")
			out.Warnings = append(out.Warnings, "ledger: "+err.Error())
		} else {
			out.EntryID = entry.ID
		}
	}

	if s.git != nil && (res.Changed || out.LogPath != "") {
		committed, err := s.git.Sync(ctx, out.Target.Project, sess.Topics)
		if err != nil {
			s.log.Warn().Err(err).Msg("git sync failed")
			out.Warnings = append(out.Warnings, "git: "+err.Error())
		}
		out.Committed = committed
	}

	return out, nil
}

// BuildFacts turns a session into merge facts: the summary becomes the
// session's Recent Work fact, then list sections, architecture and any
// explicit facts follow. Facts with blank text are dropped.
func BuildFacts(sess Session, now time.Time) []model.Fact {
	var facts []model.Fact
	add := func(k model.Kind, text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		facts = append(facts, model.Fact{Kind: k, Text: text})
	}

	if strings.TrimSpace(sess.Summary) != "" {
		ts := now
		facts = append(facts, model.Fact{
			Kind:      model.KindRecentWork,
			Text:      sess.Summary,
			Timestamp: &ts,
			Tags:      sess.Topics,
		})
	}
	for _, d := range sess.Decisions {
		add(model.KindDecision, d)
	}
	for _, p := range sess.Patterns {
		add(model.KindPattern, p)
	}
	for _, i := range sess.Issues {
		add(model.KindIssue, i)
	}
	add(model.KindArchitecture, sess.Architecture)
	for _, f := range sess.Facts {
		if strings.TrimSpace(f.Text) != "" {
			facts = append(facts, f)
		}
	}
	return facts
}

// attachReference points the session's first Recent Work fact at its log.
func attachReference(facts []model.Fact, ref string) {
	for i := range facts {
		if facts[i].Kind == model.KindRecentWork {
			if facts[i].Reference == "" {
				facts[i].Reference = ref
			}
			return
		}
	}
}

const logTimeLayout = "2006-01-02_15-04"

// writeSessionLog stores the full log as history/<time>_<topic>.md. An
// existing log with the same name is never overwritten.
func (s *Service) writeSessionLog(t locator.Target, sess Session, now time.Time) (string, error) {
	topic := "session"
	if len(sess.Topics) > 0 {
		topic = sess.Topics[0]
	}
	base := now.Format(logTimeLayout) + "_" + Slug(topic)

	path := filepath.Join(t.HistoryDir, base+".md")
	for n := 2; fileExists(path); n++ {
		path = filepath.Join(t.HistoryDir, fmt.Sprintf("%s-%d.md", base, n))
	}

	content := sess.SessionLog
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := updater.WriteFileAtomic(path, []byte(content)); err != nil {
		return "", &updater.RetryableError{Op: "write session log", Path: path, Err: err}
	}
	s.log.Debug().Str("path", path).Msg("session log written")
	return path, nil
}

func recordParams(out *Outcome, sess Session) store.RecordParams {
	res := out.Result
	p := store.RecordParams{
		Path:            res.Path,
		Project:         out.Target.Project,
		SessionID:       sess.SessionID,
		Topics:          sess.Topics,
		AddedDecisions:  res.Report.AddedCount(model.KindDecision),
		AddedPatterns:   res.Report.AddedCount(model.KindPattern),
		AddedIssues:     res.Report.AddedCount(model.KindIssue),
		Suppressed:      res.Report.Suppressed,
		Ignored:         res.Report.Ignored,
		RecentEntry:     res.Report.RecentEntry,
		ArchitectureSet: res.Report.ArchitectureSet,
		Changed:         res.Changed,
		Bytes:           len(res.Text),
		LogPath:         out.LogPath,
	}
	if out.LogPath != "" {
		p.SessionLog = sess.SessionLog
	}
	return p
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlug = 40

// Slug makes a lowercase, dash-separated file name fragment.
func Slug(s string) string {
	s = strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if len(s) > maxSlug {
		s = strings.TrimRight(s[:maxSlug], "-")
	}
	if s == "" {
		return "session"
	}
	return s
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
