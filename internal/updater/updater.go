// Package updater runs merge cycles: load a wiki document, fold facts into it
// and write it back atomically, one cycle at a time per document.
package updater

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/axatbhardwaj/context-tracker/internal/merger"
	"github.com/axatbhardwaj/context-tracker/internal/model"
	"github.com/axatbhardwaj/context-tracker/internal/wiki"
)

// ErrRetryable matches (errors.Is) every failure that left the document
// untouched and may succeed if the cycle is run again.
var ErrRetryable = errors.New("retryable")

// RetryableError is an I/O, lock or timeout failure of a cycle.
type RetryableError struct {
	Op   string
	Path string
	Err  error
}

func (e *RetryableError) Error() string {
	err := e.Err
	var pe *fs.PathError
	if errors.As(err, &pe) && pe.Path == e.Path {
		err = pe.Err
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRetryable) true.
func (e *RetryableError) Is(target error) bool { return target == ErrRetryable }

// DefaultConcurrency bounds UpdateMany.
const DefaultConcurrency = 4

// Options configures an Updater.
type Options struct {
	Merge merger.Options
	// LockDir enables cross-process locking when set.
	LockDir     string
	Concurrency int
	Now         func() time.Time
	Logger      zerolog.Logger
}

// Updater performs merge cycles. It is safe for concurrent use; cycles on
// the same path are serialized, different paths run independently.
type Updater struct {
	opts  Options
	locks *pathLocks
	log   zerolog.Logger
}

// Result is the outcome of one cycle.
type Result struct {
	Path     string         `json:"path"`
	Document model.Document `json:"document"`
	Text     string         `json:"-"`
	Created  bool           `json:"created"`
	Changed  bool           `json:"changed"`
	Report   merger.Report  `json:"report"`
}

// New creates an Updater.
func New(opts Options) *Updater {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Updater{
		opts:  opts,
		locks: newPathLocks(),
		log:   opts.Logger.With().Str("component", "updater").Logger(),
	}
}

// Update runs one merge cycle for the document at path. A missing document
// starts empty. On error the file on disk is unchanged.
func (u *Updater) Update(ctx context.Context, path string, facts []model.Fact) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", path, err)
	}

	release, err := u.lock(ctx, abs)
	if err != nil {
		return nil, &RetryableError{Op: "lock", Path: abs, Err: err}
	}
	defer release()

	old, existed, err := readText(abs)
	if err != nil {
		return nil, &RetryableError{Op: "read", Path: abs, Err: err}
	}

	doc := safeParse(old, u.log)
	mopts := u.opts.Merge
	mopts.Now = u.opts.Now()
	merged, rep := merger.MergeWithReport(doc, facts, mopts)

	text, err := render(merged)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", abs, err)
	}

	res := &Result{Path: abs, Document: merged, Text: text, Created: !existed, Report: rep}
	if existed && text == old {
		u.log.Debug().Str("path", abs).Int("facts", len(facts)).Msg("document unchanged")
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, &RetryableError{Op: "write", Path: abs, Err: err}
	}
	if err := WriteFileAtomic(abs, []byte(text)); err != nil {
		return nil, &RetryableError{Op: "write", Path: abs, Err: err}
	}
	res.Changed = true

	u.log.Info().
		Str("path", abs).
		Int("facts", len(facts)).
		Int("added_decisions", rep.AddedCount(model.KindDecision)).
		Int("added_patterns", rep.AddedCount(model.KindPattern)).
		Int("added_issues", rep.AddedCount(model.KindIssue)).
		Int("suppressed", rep.Suppressed).
		Int("ignored", rep.Ignored).
		Bool("created", res.Created).
		Msg("document merged")

	return res, nil
}

// UpdateMany merges the same batch into several documents in parallel.
// Results are in input order; the first error is returned.
func (u *Updater) UpdateMany(ctx context.Context, paths []string, facts []model.Fact) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Concurrency)

	for i, p := range paths {
		g.Go(func() error {
			res, err := u.Update(gctx, p, facts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	return results, g.Wait()
}

// Read loads and parses a document without modifying it.
func (u *Updater) Read(ctx context.Context, path string) (model.Document, string, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, "", err
	}
	text, _, err := readText(path)
	if err != nil {
		return model.Document{}, "", &RetryableError{Op: "read", Path: path, Err: err}
	}
	return safeParse(text, u.log), text, nil
}

// Lock takes the same in-process and cross-process lock a merge cycle holds,
// for any other work that must not overlap on key (a path).
func (u *Updater) Lock(ctx context.Context, key string) (func(), error) {
	abs, err := filepath.Abs(key)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", key, err)
	}
	return u.lock(ctx, abs)
}

func (u *Updater) lock(ctx context.Context, path string) (func(), error) {
	releaseLocal, err := u.locks.acquire(ctx, path)
	if err != nil {
		return nil, err
	}
	releaseFile, err := acquireFileLock(ctx, u.opts.LockDir, path)
	if err != nil {
		releaseLocal()
		return nil, err
	}
	return func() {
		releaseFile()
		releaseLocal()
	}, nil
}

func readText(path string) (string, bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

// safeParse guards the cycle even if the parser breaks its no-panic contract.
func safeParse(text string, log zerolog.Logger) (doc model.Document) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("parse failed, starting from an empty document")
			doc = model.NewDocument()
		}
	}()
	return wiki.Parse(text)
}

// render turns a serializer panic into an error. It means the document broke
// its own invariants, so the cycle is aborted rather than retried.
func render(doc model.Document) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid document: %v", r)
		}
	}()
	return wiki.Serialize(doc), nil
}
