package store

import (
	"context"
	"os"
)

// Stats holds ledger statistics.
type Stats struct {
	DBPath        string         `json:"db_path"`
	DBSizeBytes   int64          `json:"db_size_bytes"`
	TotalEntries  int            `json:"total_entries"`
	ChangedCycles int            `json:"changed_cycles"`
	SessionLogs   int            `json:"session_logs"`
	Documents     int            `json:"documents"`
	Projects      []ProjectStats `json:"projects"`
}

// ProjectStats holds per-project counts.
type ProjectStats struct {
	Project        string `json:"project"`
	Count          int    `json:"count"`
	AddedDecisions int    `json:"added_decisions"`
	AddedPatterns  int    `json:"added_patterns"`
	AddedIssues    int    `json:"added_issues"`
	LastUpdate     string `json:"last_update"`
}

// Stats returns ledger statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path, Projects: []ProjectStats{}}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&st.TotalEntries)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE changed = 1`).Scan(&st.ChangedCycles)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE session_log != ''`).Scan(&st.SessionLogs)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT path) FROM entries`).Scan(&st.Documents)

	rows, err := s.db.QueryContext(ctx, `
		SELECT project, COUNT(*) AS cnt,
		       SUM(added_decisions), SUM(added_patterns), SUM(added_issues),
		       MAX(created_at)
		FROM entries
		GROUP BY project ORDER BY cnt DESC, project`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ps ProjectStats
		if err := rows.Scan(&ps.Project, &ps.Count, &ps.AddedDecisions, &ps.AddedPatterns,
			&ps.AddedIssues, &ps.LastUpdate); err != nil {
			return st, err
		}
		st.Projects = append(st.Projects, ps)
	}

	return st, rows.Err()
}
