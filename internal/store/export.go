package store

import (
	"context"

	"github.com/axatbhardwaj/context-tracker/internal/model"
)

// ExportAll returns every entry in chronological order, optionally filtered
// by project.
func (s *SQLiteStore) ExportAll(ctx context.Context, project string) ([]model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries`
	var args []interface{}
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at, id`
	return s.queryEntries(ctx, query, args...)
}

// Import stores entries from an export, keeping their ids and timestamps.
// Entries whose id already exists are skipped. Returns how many were added.
func (s *SQLiteStore) Import(ctx context.Context, entries []model.Entry) (int, error) {
	imported := 0
	for _, e := range entries {
		p := RecordParams{
			Path:            e.Path,
			Project:         e.Project,
			SessionID:       e.SessionID,
			Topics:          e.Topics,
			AddedDecisions:  e.AddedDecisions,
			AddedPatterns:   e.AddedPatterns,
			AddedIssues:     e.AddedIssues,
			Suppressed:      e.Suppressed,
			Ignored:         e.Ignored,
			RecentEntry:     e.RecentEntry,
			ArchitectureSet: e.ArchitectureSet,
			Changed:         e.Changed,
			Bytes:           e.Bytes,
			LogPath:         e.LogPath,
			SessionLog:      e.SessionLog,
			At:              e.CreatedAt,
		}
		if e.ID != "" {
			var n int
			s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE id = ?`, e.ID).Scan(&n)
			if n > 0 {
				continue
			}
		}
		rec, err := s.Record(ctx, p)
		if err != nil {
			return imported, err
		}
		if e.ID != "" && rec.ID != e.ID {
			if _, err := s.db.ExecContext(ctx, `UPDATE entries SET id = ? WHERE id = ?`, e.ID, rec.ID); err != nil {
				return imported, err
			}
		}
		imported++
	}
	return imported, nil
}
