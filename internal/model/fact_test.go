package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"decision":          KindDecision,
		"Decision":          KindDecision,
		"patterns":          KindPattern,
		"problem":           KindIssue,
		"recent-work":       KindRecentWork,
		"Recent Work":       KindRecentWork,
		"summary":           KindRecentWork,
		"architecture_note": KindArchitecture,
		"key_symbol":        KindUnknown,
		"":                  KindUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseKind(in), "ParseKind(%q)", in)
	}
}

func TestKind_JSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(Fact{Text: "Use JWT", Kind: KindDecision})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"decision"`)

	var f Fact
	require.NoError(t, json.Unmarshal([]byte(`{"text":"x","kind":"telemetry"}`), &f))
	assert.Equal(t, KindUnknown, f.Kind, "unknown kinds decode without error")
}

func TestDecodeFacts_YAMLList(t *testing.T) {
	in := `
- text: Use JWT with 24h expiry
  kind: decision
  tags: [auth]
- text: Added login endpoint
  kind: recent_work
  timestamp: 2026-10-19T09:30:00Z
  reference: history/2026-10-19_09-30_auth.md
`
	facts, err := DecodeFacts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, facts, 2)

	assert.Equal(t, KindDecision, facts[0].Kind)
	assert.Equal(t, []string{"auth"}, facts[0].Tags)
	assert.Equal(t, KindRecentWork, facts[1].Kind)
	require.NotNil(t, facts[1].Timestamp)
	assert.True(t, facts[1].Timestamp.Equal(time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, "history/2026-10-19_09-30_auth.md", facts[1].Reference)
}

func TestDecodeFacts_JSONObject(t *testing.T) {
	in := `{"facts": [{"text": "Retry on 503", "kind": "pattern"}]}`
	facts, err := DecodeFacts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, KindPattern, facts[0].Kind)
	assert.Equal(t, "Retry on 503", facts[0].Text)
}

func TestDecodeFacts_Empty(t *testing.T) {
	facts, err := DecodeFacts(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.NotNil(t, facts)
	assert.Empty(t, facts)
}

func TestDecodeFacts_Scalar(t *testing.T) {
	_, err := DecodeFacts(strings.NewReader("just a string"))
	assert.Error(t, err)
}

func TestDocument_CloneAndEqual(t *testing.T) {
	d := Document{Architecture: "arch", Decisions: []string{"a"}}
	c := d.Clone()
	assert.True(t, d.Equal(c))
	assert.NotNil(t, c.Patterns)

	c.Decisions[0] = "changed"
	assert.Equal(t, "a", d.Decisions[0], "clone must not share storage")
	assert.False(t, d.Equal(c))
}

func TestDocument_IsEmpty(t *testing.T) {
	assert.True(t, NewDocument().IsEmpty())
	assert.False(t, Document{Issues: []string{"x"}}.IsEmpty())
}
