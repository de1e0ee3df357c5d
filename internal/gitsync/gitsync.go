// Package gitsync commits and pushes the context root after a merge cycle.
package gitsync

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultTemplate is the commit message used when none is configured.
const DefaultTemplate = "Context update: {project} - {topics}"

// maxTopics is how many topics are named in a commit message.
const maxTopics = 3

// Runner runs a command in dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Locker serializes work on a key across sessions.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Options configures a Syncer. Locker is optional; when set, Sync holds the
// lock on Dir so concurrent sessions do not share the git index.
type Options struct {
	Dir        string
	AutoCommit bool
	AutoPush   bool
	Template   string
	Runner     Runner
	Locker     Locker
	Logger     zerolog.Logger
}

// Syncer stages, commits and optionally pushes a git working tree.
type Syncer struct {
	opts Options
	log  zerolog.Logger
}

// New creates a Syncer. A nil Runner uses ExecRunner.
func New(opts Options) *Syncer {
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	return &Syncer{
		opts: opts,
		log:  opts.Logger.With().Str("component", "gitsync").Logger(),
	}
}

// Sync commits all changes under Dir. It reports whether a commit was made;
// a clean tree is not an error. Disabled auto-commit is a no-op.
func (s *Syncer) Sync(ctx context.Context, project string, topics []string) (bool, error) {
	if !s.opts.AutoCommit {
		return false, nil
	}
	if s.opts.Locker != nil {
		release, err := s.opts.Locker.Lock(ctx, s.opts.Dir)
		if err != nil {
			return false, fmt.Errorf("lock %s: %w", s.opts.Dir, err)
		}
		defer release()
	}

	if out, err := s.git(ctx, "add", "."); err != nil {
		return false, fmt.Errorf("git add: %w: %s", err, strings.TrimSpace(string(out)))
	}

	msg := Message(s.opts.Template, project, topics)
	out, err := s.git(ctx, "commit", "-m", msg)
	if err != nil {
		if nothingToCommit(out) {
			s.log.Debug().Str("dir", s.opts.Dir).Msg("nothing to commit")
			return false, nil
		}
		return false, fmt.Errorf("git commit: %w: %s", err, strings.TrimSpace(string(out)))
	}
	s.log.Info().Str("dir", s.opts.Dir).Str("message", msg).Msg("context committed")

	if s.opts.AutoPush {
		if out, err := s.git(ctx, "push"); err != nil {
			return true, fmt.Errorf("git push: %w: %s", err, strings.TrimSpace(string(out)))
		}
		s.log.Info().Str("dir", s.opts.Dir).Msg("context pushed")
	}
	return true, nil
}

func (s *Syncer) git(ctx context.Context, args ...string) ([]byte, error) {
	return s.opts.Runner.Run(ctx, s.opts.Dir, "git", args...)
}

// Message fills the {project} and {topics} placeholders of tmpl. Only the
// first three topics are named; the rest are counted as "+N more".
func Message(tmpl, project string, topics []string) string {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	named := topics
	if len(named) > maxTopics {
		named = named[:maxTopics]
	}
	topicStr := strings.Join(named, ", ")
	if extra := len(topics) - maxTopics; extra > 0 {
		topicStr += fmt.Sprintf(" +%d more", extra)
	}
	return strings.NewReplacer("{project}", project, "{topics}", topicStr).Replace(tmpl)
}

func nothingToCommit(out []byte) bool {
	s := string(out)
	return strings.Contains(s, "nothing to commit") || strings.Contains(s, "no changes added to commit")
}
