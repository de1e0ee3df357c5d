// Package model defines the core wiki data types.
package model

import "slices"

const (
	// DefaultMaxRecent is the size of the Recent Work window.
	DefaultMaxRecent = 5
	// DefaultDuplicateThreshold is the similarity at which two entries are the same fact.
	DefaultDuplicateThreshold = 0.8
)

// Document is the five-section knowledge wiki of one project.
// Sections are never nil; an empty section is an empty string or slice.
type Document struct {
	Architecture string   `json:"architecture"`
	Decisions    []string `json:"decisions"`
	Patterns     []string `json:"patterns"`
	Issues       []string `json:"issues"`
	RecentWork   []string `json:"recent_work"`
}

// NewDocument returns the zero Document with all sections empty.
func NewDocument() Document {
	return Document{
		Decisions:  []string{},
		Patterns:   []string{},
		Issues:     []string{},
		RecentWork: []string{},
	}
}

// Clone returns a deep copy with nil sections replaced by empty ones.
func (d Document) Clone() Document {
	return Document{
		Architecture: d.Architecture,
		Decisions:    cloneList(d.Decisions),
		Patterns:     cloneList(d.Patterns),
		Issues:       cloneList(d.Issues),
		RecentWork:   cloneList(d.RecentWork),
	}
}

// Equal compares section contents. Nil and empty sections are equal.
func (d Document) Equal(o Document) bool {
	return d.Architecture == o.Architecture &&
		slices.Equal(d.Decisions, o.Decisions) &&
		slices.Equal(d.Patterns, o.Patterns) &&
		slices.Equal(d.Issues, o.Issues) &&
		slices.Equal(d.RecentWork, o.RecentWork)
}

// IsEmpty reports whether every section is empty.
func (d Document) IsEmpty() bool {
	return d.Architecture == "" &&
		len(d.Decisions) == 0 &&
		len(d.Patterns) == 0 &&
		len(d.Issues) == 0 &&
		len(d.RecentWork) == 0
}

// Section returns the list for a list-valued kind, or nil for the others.
func (d *Document) Section(k Kind) *[]string {
	switch k {
	case KindDecision:
		return &d.Decisions
	case KindPattern:
		return &d.Patterns
	case KindIssue:
		return &d.Issues
	case KindRecentWork:
		return &d.RecentWork
	}
	return nil
}

func cloneList(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}
