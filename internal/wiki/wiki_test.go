package wiki

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axatbhardwaj/context-tracker/internal/model"
)

const sample = `# Project Context

## Architecture

Go service with a SQLite ledger.

### Layers
cmd -> internal/cli -> internal/updater

## Decisions

- Use JWT with 24h expiry
* Bcrypt cost factor 12
not a bullet, ignored

## Patterns

_No patterns recorded yet._

## Issues

-   Fixed race in watcher

## Recent Work

- [2026-10-19] Added login endpoint
- [2026-10-18] Initial scaffold
`

func TestParse_Sample(t *testing.T) {
	doc := Parse(sample)

	assert.Equal(t, "Go service with a SQLite ledger.\n\n### Layers\ncmd -> internal/cli -> internal/updater", doc.Architecture)
	assert.Equal(t, []string{"Use JWT with 24h expiry", "Bcrypt cost factor 12"}, doc.Decisions)
	assert.Equal(t, []string{}, doc.Patterns)
	assert.Equal(t, []string{"Fixed race in watcher"}, doc.Issues)
	assert.Equal(t, []string{"[2026-10-19] Added login endpoint", "[2026-10-18] Initial scaffold"}, doc.RecentWork)
}

func TestParse_EmptyInput(t *testing.T) {
	doc := Parse("")
	assert.True(t, doc.Equal(model.NewDocument()))
	assert.NotNil(t, doc.Decisions)
	assert.NotNil(t, doc.RecentWork)
}

func TestParse_ReorderedAndCustomHeaders(t *testing.T) {
	text := `# Notes

## Recent Work
- [2026-10-19] Did things

## Custom
- custom item that must not leak
Some custom prose.

## decisions
- Prefer composition

##   Architecture
Monolith.

## Issues
- Flaky test
`
	doc := Parse(text)
	assert.Equal(t, "Monolith.", doc.Architecture)
	assert.Equal(t, []string{"Prefer composition"}, doc.Decisions)
	assert.Equal(t, []string{"Flaky test"}, doc.Issues)
	assert.Equal(t, []string{"[2026-10-19] Did things"}, doc.RecentWork)
	assert.Empty(t, doc.Patterns)
}

func TestParse_MissingHeaders(t *testing.T) {
	doc := Parse("## Decisions\n- only this\n")
	assert.Equal(t, []string{"only this"}, doc.Decisions)
	assert.Equal(t, "", doc.Architecture)
	assert.Equal(t, []string{}, doc.Issues)
}

func TestParse_SubHeadersAreContent(t *testing.T) {
	doc := Parse("## Decisions\n### Auth\n- a\n### Storage\n- b\n")
	assert.Equal(t, []string{"a", "b"}, doc.Decisions)
}

func TestParse_IndentedBulletsIgnored(t *testing.T) {
	doc := Parse("## Issues\n- top\n  - nested detail\n")
	assert.Equal(t, []string{"top"}, doc.Issues)
}

func TestParse_RepeatedHeaderFirstWins(t *testing.T) {
	doc := Parse("## Decisions\n- first\n## Decisions\n- second\n")
	assert.Equal(t, []string{"first"}, doc.Decisions)
}

func TestParse_CRLF(t *testing.T) {
	doc := Parse("## Decisions\r\n- windows line\r\n")
	assert.Equal(t, []string{"windows line"}, doc.Decisions)
}

func TestParse_Placeholders(t *testing.T) {
	text := "## Architecture\n\n_No architecture documented yet._\n\n## Decisions\n\n_No decisions recorded yet._\n\n## Issues\n- _No issues found yet._\n"
	doc := Parse(text)
	assert.Equal(t, "", doc.Architecture)
	assert.Empty(t, doc.Decisions)
	assert.Empty(t, doc.Issues)
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder("_No decisions recorded yet._"))
	assert.True(t, IsPlaceholder("  _No recent work recorded yet._ "))
	assert.True(t, IsPlaceholder("_No key symbols documented yet._"))

	assert.False(t, IsPlaceholder("No caching yet; revisit after launch"))
	assert.False(t, IsPlaceholder("No ORM. Plain SQL only."))
	assert.False(t, IsPlaceholder("_No decisions recorded yet._ but one pending"))
}

func TestSerialize_Empty(t *testing.T) {
	want := `# Project Context

## Architecture

_No architecture documented yet._

## Decisions

_No decisions recorded yet._

## Patterns

_No patterns recorded yet._

## Issues

_No issues recorded yet._

## Recent Work

_No recent work recorded yet._
`
	assert.Equal(t, want, Serialize(model.NewDocument()))
}

func TestSerialize_NormalizesBullets(t *testing.T) {
	out := Serialize(Parse("## Decisions\n* star bullet\n"))
	assert.Contains(t, out, "\n- star bullet\n")
	assert.NotContains(t, out, "* star")
}

func TestRoundTrip(t *testing.T) {
	docs := []model.Document{
		model.NewDocument(),
		{
			Architecture: "Layered.\n\n### Notes\n- bullets inside prose are kept",
			Decisions:    []string{"Use JWT with 24h expiry", "No ORM, plain SQL"},
			Patterns:     []string{"Table-driven tests"},
			Issues:       []string{"* literal star in text"},
			RecentWork:   []string{"[2026-10-19] Did a thing (auth) [log](history/a.md)"},
		},
	}
	for _, d := range docs {
		got := Parse(Serialize(d))
		assert.True(t, got.Equal(d), "round trip changed document:\nwant %#v\ngot  %#v", d, got)
	}
}

func TestRoundTrip_UnicodeIndentedHeader(t *testing.T) {
	text := "# Project Context\n\n## Architecture\n\n\u00a0## Decisions\nHand-curated overview\n\n## Decisions\n- Keep it\n"

	d := Parse(text)
	assert.Equal(t, "", d.Architecture)
	assert.Empty(t, d.Decisions)
	got := Parse(Serialize(d))
	assert.True(t, got.Equal(d), "round trip changed document:\nwant %#v\ngot  %#v", d, got)

	assert.True(t, IsHeaderLine("\u2003##\u00a0Patterns\u00a0"))
	assert.False(t, IsHeaderLine("#\u00a0# Patterns"))
}

func TestSerialize_Stable(t *testing.T) {
	once := Serialize(Parse(sample))
	twice := Serialize(Parse(once))
	require.Equal(t, once, twice)
	assert.True(t, strings.HasSuffix(once, "\n"))
	assert.False(t, strings.HasSuffix(once, "\n\n"))
}

func TestHasEmptySections(t *testing.T) {
	assert.True(t, HasEmptySections(model.NewDocument()))
	assert.True(t, HasEmptySections(model.Document{Architecture: "x"}))
	assert.False(t, HasEmptySections(model.Document{Architecture: "x", Patterns: []string{"p"}}))
}

func TestAnnotate(t *testing.T) {
	a := Annotate(model.Document{Architecture: "x", Patterns: []string{"p"}})
	assert.False(t, a.NeedsEnrichment)
	assert.Equal(t, "x", a.Architecture)
	assert.True(t, Annotate(model.NewDocument()).NeedsEnrichment)
}
