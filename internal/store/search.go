package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/axatbhardwaj/context-tracker/internal/chunker"
	"github.com/axatbhardwaj/context-tracker/internal/model"
)

// SearchParams holds parameters for searching the ledger.
type SearchParams struct {
	Query   string
	Project string
	Limit   int
}

// SearchResult wraps an entry with the matching part of its session log.
// The full log is left out; Get returns it.
type SearchResult struct {
	model.Entry
	Match *chunker.Section `json:"match,omitempty"`
}

// Search finds entries whose recent-work line, topics, path or session log
// contain the query substring (case-insensitive for ASCII).
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	if strings.TrimSpace(p.Query) == "" {
		return nil, fmt.Errorf("search: empty query")
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + escapeLike(p.Query) + "%"

	where := []string{`(recent_entry LIKE ? ESCAPE '\' OR topics LIKE ? ESCAPE '\'
		OR path LIKE ? ESCAPE '\' OR session_log LIKE ? ESCAPE '\')`}
	args := []interface{}{query, query, query, query}

	if p.Project != "" {
		where = append(where, "project = ?")
		args = append(args, p.Project)
	}

	sql := fmt.Sprintf(`SELECT %s FROM entries WHERE %s
		ORDER BY created_at DESC, id DESC LIMIT ?`, entryColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	entries, err := s.queryEntries(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		r := SearchResult{Entry: e}
		if sec, ok := chunker.Find(e.SessionLog, p.Query, chunker.DefaultOptions()); ok {
			r.Match = &sec
		}
		r.SessionLog = ""
		results = append(results, r)
	}
	return results, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
