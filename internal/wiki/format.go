// Package wiki converts between the markdown context document and model.Document.
//
// The format is a fixed title line followed by five "## " sections in a fixed
// order. Headers are the parse anchors: renaming or reordering them is not
// supported, and any other "## " header is skipped together with its content.
package wiki

import (
	"regexp"
	"strings"

	"github.com/axatbhardwaj/context-tracker/internal/model"
)

// Title is the first line of every serialized document.
const Title = "# Project Context"

type section struct {
	name        string
	kind        model.Kind
	placeholder string
}

// sections is the canonical order.
var sections = []section{
	{name: "Architecture", kind: model.KindArchitecture, placeholder: "_No architecture documented yet._"},
	{name: "Decisions", kind: model.KindDecision, placeholder: "_No decisions recorded yet._"},
	{name: "Patterns", kind: model.KindPattern, placeholder: "_No patterns recorded yet._"},
	{name: "Issues", kind: model.KindIssue, placeholder: "_No issues recorded yet._"},
	{name: "Recent Work", kind: model.KindRecentWork, placeholder: "_No recent work recorded yet._"},
}

// space matches every rune unicode.IsSpace accepts, so header detection
// agrees with strings.TrimSpace. \s alone is ASCII only.
const space = `[\s\v\x{85}\p{Z}]`

var (
	headerRe = regexp.MustCompile(`^` + space + `*##` + space + `+(.+?)` + space + `*$`)
	bulletRe = regexp.MustCompile(`^[-*]\s+(.+)$`)

	// placeholderRe matches the whole of an "empty section" marker such as
	// "_No decisions recorded yet._". It is anchored at both ends so that
	// ordinary content starting with "No " is kept.
	placeholderRe = regexp.MustCompile(`^_No [A-Za-z][A-Za-z -]* yet\._$`)
)

// IsPlaceholder reports whether s is an empty-section marker.
func IsPlaceholder(s string) bool {
	return placeholderRe.MatchString(strings.TrimSpace(s))
}

// IsHeaderLine reports whether line would be read as a section header.
func IsHeaderLine(line string) bool {
	return headerRe.MatchString(line)
}

// HasEmptySections reports whether Architecture or Patterns still need content.
func HasEmptySections(doc model.Document) bool {
	return doc.Architecture == "" || IsPlaceholder(doc.Architecture) || len(doc.Patterns) == 0
}

// Annotated is a Document with its enrichment state, as shown to readers.
type Annotated struct {
	model.Document
	NeedsEnrichment bool `json:"needs_enrichment"`
}

// Annotate wraps doc with HasEmptySections.
func Annotate(doc model.Document) Annotated {
	return Annotated{Document: doc, NeedsEnrichment: HasEmptySections(doc)}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func lookupSection(name string) (int, bool) {
	n := normalizeName(name)
	for i, s := range sections {
		if normalizeName(s.name) == n {
			return i, true
		}
	}
	return -1, false
}
