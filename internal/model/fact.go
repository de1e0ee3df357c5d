package model

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind says which wiki section a fact belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindDecision
	KindPattern
	KindIssue
	KindRecentWork
	KindArchitecture
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindDecision:     "decision",
	KindPattern:      "pattern",
	KindIssue:        "issue",
	KindRecentWork:   "recent_work",
	KindArchitecture: "architecture",
}

// kindAliases maps every accepted spelling to its Kind.
var kindAliases = map[string]Kind{
	"decision":          KindDecision,
	"decisions":         KindDecision,
	"pattern":           KindPattern,
	"patterns":          KindPattern,
	"issue":             KindIssue,
	"issues":            KindIssue,
	"problem":           KindIssue,
	"recent_work":       KindRecentWork,
	"recent":            KindRecentWork,
	"summary":           KindRecentWork,
	"architecture":      KindArchitecture,
	"architecture_note": KindArchitecture,
}

// ParseKind resolves a kind name. Unrecognized names give KindUnknown so
// newer producers can send kinds this version does not know about.
func ParseKind(s string) Kind {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	return kindAliases[key]
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

// Fact is one atomic piece of knowledge extracted from a session.
type Fact struct {
	Text      string     `json:"text" yaml:"text"`
	Kind      Kind       `json:"kind" yaml:"kind"`
	Timestamp *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Reference string     `json:"reference,omitempty" yaml:"reference,omitempty"`
	Tags      []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// factsFile is the document shape accepted by DecodeFacts besides a bare list.
type factsFile struct {
	Facts []Fact `yaml:"facts"`
}

// DecodeFacts reads a facts batch in YAML or JSON. Both a top-level list and
// an object with a "facts" key are accepted. Empty input is an empty batch.
func DecodeFacts(r io.Reader) ([]Fact, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read facts: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Fact{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse facts: %w", err)
	}
	if len(node.Content) == 0 {
		return []Fact{}, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var facts []Fact
		if err := root.Decode(&facts); err != nil {
			return nil, fmt.Errorf("decode facts: %w", err)
		}
		return nonNil(facts), nil
	case yaml.MappingNode:
		var f factsFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode facts: %w", err)
		}
		return nonNil(f.Facts), nil
	default:
		return nil, fmt.Errorf("decode facts: expected a list or an object with \"facts\", got %s", root.Tag)
	}
}

func nonNil(facts []Fact) []Fact {
	if facts == nil {
		return []Fact{}
	}
	return facts
}
