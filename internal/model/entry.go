package model

import "time"

// Entry is one recorded merge cycle in the ledger.
type Entry struct {
	ID              string    `json:"id"`
	Path            string    `json:"path"`
	Project         string    `json:"project,omitempty"`
	SessionID       string    `json:"session_id,omitempty"`
	Topics          []string  `json:"topics,omitempty"`
	AddedDecisions  int       `json:"added_decisions"`
	AddedPatterns   int       `json:"added_patterns"`
	AddedIssues     int       `json:"added_issues"`
	Suppressed      int       `json:"suppressed"`
	Ignored         int       `json:"ignored"`
	RecentEntry     string    `json:"recent_entry,omitempty"`
	ArchitectureSet bool      `json:"architecture_set"`
	Changed         bool      `json:"changed"`
	Bytes           int       `json:"bytes"`
	LogPath         string    `json:"log_path,omitempty"`
	SessionLog      string    `json:"session_log,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
