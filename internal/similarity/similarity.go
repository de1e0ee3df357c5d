// Package similarity scores how close two short strings are, for duplicate detection.
//
// The score is a character-level sequence ratio (2*M/T over the matching
// blocks found by difflib's SequenceMatcher), computed case-insensitively.
// It catches near-verbatim restatements, not paraphrases.
package similarity

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns a score in [0,1]. Ratio(a, a) is 1 and Ratio(a, b) == Ratio(b, a).
func Ratio(a, b string) float64 {
	ra := runes(strings.ToLower(a))
	rb := runes(strings.ToLower(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}

	// SequenceMatcher is not strictly symmetric (junk heuristics and tie
	// breaking depend on which side is b); take the larger of both orders.
	fwd := difflib.NewMatcher(ra, rb).Ratio()
	rev := difflib.NewMatcher(rb, ra).Ratio()
	if rev > fwd {
		return rev
	}
	return fwd
}

// IsDuplicate reports whether a and b score at or above threshold.
func IsDuplicate(a, b string, threshold float64) bool {
	return Ratio(a, b) >= threshold
}

// AnyDuplicate reports whether s duplicates any of items.
func AnyDuplicate(s string, items []string, threshold float64) bool {
	for _, it := range items {
		if IsDuplicate(s, it, threshold) {
			return true
		}
	}
	return false
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
