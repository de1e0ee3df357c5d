// Package store provides the merge ledger interface and its SQLite implementation.
package store

import (
	"context"
	"time"

	"github.com/axatbhardwaj/context-tracker/internal/model"
)

// RecordParams holds one finished merge cycle.
type RecordParams struct {
	Path            string
	Project         string
	SessionID       string
	Topics          []string
	AddedDecisions  int
	AddedPatterns   int
	AddedIssues     int
	Suppressed      int
	Ignored         int
	RecentEntry     string
	ArchitectureSet bool
	Changed         bool
	Bytes           int
	LogPath         string
	SessionLog      string
	At              time.Time // zero means now
}

// ListParams holds parameters for listing ledger entries.
type ListParams struct {
	Path    string
	Project string
	Limit   int
}

// Ledger defines the merge history interface.
type Ledger interface {
	// Record appends a merge cycle. Returns the stored entry.
	Record(ctx context.Context, p RecordParams) (*model.Entry, error)

	// Get retrieves one entry by id.
	Get(ctx context.Context, id string) (*model.Entry, error)

	// List lists entries, newest first.
	List(ctx context.Context, p ListParams) ([]model.Entry, error)

	// Search matches entries and their session logs by substring.
	Search(ctx context.Context, p SearchParams) ([]SearchResult, error)

	// Close closes the ledger.
	Close() error
}

var _ Ledger = (*SQLiteStore)(nil)
