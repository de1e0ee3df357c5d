package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/axatbhardwaj/context-tracker/internal/model"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("entry not found")

// SQLiteStore implements Ledger using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	mu      sync.Mutex // guards entropy
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id               TEXT PRIMARY KEY,
		path             TEXT NOT NULL,
		project          TEXT NOT NULL DEFAULT '',
		session_id       TEXT NOT NULL DEFAULT '',
		topics           TEXT,
		added_decisions  INTEGER NOT NULL DEFAULT 0,
		added_patterns   INTEGER NOT NULL DEFAULT 0,
		added_issues     INTEGER NOT NULL DEFAULT 0,
		suppressed       INTEGER NOT NULL DEFAULT 0,
		ignored          INTEGER NOT NULL DEFAULT 0,
		recent_entry     TEXT NOT NULL DEFAULT '',
		architecture_set INTEGER NOT NULL DEFAULT 0,
		changed          INTEGER NOT NULL DEFAULT 0,
		bytes            INTEGER NOT NULL DEFAULT 0,
		log_path         TEXT NOT NULL DEFAULT '',
		session_log      TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_path ON entries(path, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_project ON entries(project, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

const entryColumns = `id, path, project, session_id, topics, added_decisions, added_patterns,
	added_issues, suppressed, ignored, recent_entry, architecture_set, changed, bytes,
	log_path, session_log, created_at`

func (s *SQLiteStore) Record(ctx context.Context, p RecordParams) (*model.Entry, error) {
	if p.Path == "" {
		return nil, fmt.Errorf("record: path is required")
	}
	at := p.At
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC().Truncate(time.Second)

	var topicsJSON *string
	if len(p.Topics) > 0 {
		b, _ := json.Marshal(p.Topics)
		s := string(b)
		topicsJSON = &s
	}

	e := &model.Entry{
		ID:              s.newID(at),
		Path:            p.Path,
		Project:         p.Project,
		SessionID:       p.SessionID,
		Topics:          p.Topics,
		AddedDecisions:  p.AddedDecisions,
		AddedPatterns:   p.AddedPatterns,
		AddedIssues:     p.AddedIssues,
		Suppressed:      p.Suppressed,
		Ignored:         p.Ignored,
		RecentEntry:     p.RecentEntry,
		ArchitectureSet: p.ArchitectureSet,
		Changed:         p.Changed,
		Bytes:           p.Bytes,
		LogPath:         p.LogPath,
		SessionLog:      p.SessionLog,
		CreatedAt:       at,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Path, e.Project, e.SessionID, topicsJSON,
		e.AddedDecisions, e.AddedPatterns, e.AddedIssues, e.Suppressed, e.Ignored,
		e.RecentEntry, e.ArchitectureSet, e.Changed, e.Bytes,
		e.LogPath, e.SessionLog, at.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Entry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	var args []interface{}
	if p.Path != "" {
		where = append(where, "path = ?")
		args = append(args, p.Path)
	}
	if p.Project != "" {
		where = append(where, "project = ?")
		args = append(args, p.Project)
	}

	query := fmt.Sprintf(`SELECT %s FROM entries WHERE %s
		ORDER BY created_at DESC, id DESC LIMIT ?`, entryColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.queryEntries(ctx, query, args...)
}

// Prune hard-deletes entries older than the given TTL ("30d", "12h").
// Returns the number of removed entries.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan string) (int64, error) {
	d, err := parseTTL(olderThan)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl: %w", err)
	}
	cutoff := time.Now().UTC().Add(-d).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryEntries(ctx context.Context, query string, args ...interface{}) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.Entry, error) {
	var e model.Entry
	var topicsJSON sql.NullString
	var createdAt string

	err := row.Scan(
		&e.ID, &e.Path, &e.Project, &e.SessionID, &topicsJSON,
		&e.AddedDecisions, &e.AddedPatterns, &e.AddedIssues, &e.Suppressed, &e.Ignored,
		&e.RecentEntry, &e.ArchitectureSet, &e.Changed, &e.Bytes,
		&e.LogPath, &e.SessionLog, &createdAt,
	)
	if err != nil {
		return e, err
	}

	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if topicsJSON.Valid {
		json.Unmarshal([]byte(topicsJSON.String), &e.Topics)
	}
	return e, nil
}

// parseTTL parses a TTL string like "7d", "24h", "30m" into a time.Duration.
var ttlRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

func parseTTL(s string) (time.Duration, error) {
	m := ttlRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid format %q (use e.g. 7d, 24h, 30m, 60s)", s)
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("unknown unit %q", m[2])
}
