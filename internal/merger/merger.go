// Package merger folds a batch of session facts into a wiki Document.
//
// Merge is a pure function: the input Document is never modified, there is
// no hidden state, and the only time it uses is the one passed in Options.
package merger

import (
	"strings"
	"time"
	"unicode"

	"github.com/axatbhardwaj/context-tracker/internal/model"
	"github.com/axatbhardwaj/context-tracker/internal/similarity"
	"github.com/axatbhardwaj/context-tracker/internal/wiki"
)

// DateLayout is the date prefix format of Recent Work entries.
const DateLayout = "2006-01-02"

// Options tunes a merge. Zero values select the defaults.
type Options struct {
	MaxRecent          int
	DuplicateThreshold float64
	// Now dates the Recent Work entry when no fact carries a timestamp.
	Now time.Time
}

// DefaultOptions returns the default merge options with no clock.
func DefaultOptions() Options {
	return Options{
		MaxRecent:          model.DefaultMaxRecent,
		DuplicateThreshold: model.DefaultDuplicateThreshold,
	}
}

func (o Options) normalized() Options {
	if o.MaxRecent <= 0 {
		o.MaxRecent = model.DefaultMaxRecent
	}
	if o.DuplicateThreshold <= 0 || o.DuplicateThreshold > 1 {
		o.DuplicateThreshold = model.DefaultDuplicateThreshold
	}
	return o
}

// Report describes what a merge did.
type Report struct {
	Added           map[model.Kind]int `json:"added"`
	Suppressed      int                `json:"suppressed"`
	Ignored         int                `json:"ignored"`
	RecentEntry     string             `json:"recent_entry,omitempty"`
	Dropped         []string           `json:"dropped,omitempty"`
	ArchitectureSet bool               `json:"architecture_set"`
}

// AddedCount returns how many facts of kind k were inserted.
func (r Report) AddedCount(k model.Kind) int {
	return r.Added[k]
}

// Merge returns doc with facts folded in.
func Merge(doc model.Document, facts []model.Fact, opts Options) model.Document {
	out, _ := MergeWithReport(doc, facts, opts)
	return out
}

// MergeWithReport is Merge plus a summary of the changes.
//
// Decisions, Patterns and Issues: a fact is dropped if it is a near-duplicate
// of any entry already in the section (including ones inserted earlier in
// the same batch); otherwise it goes to the front. Architecture is only set
// while empty. All Recent Work facts of the batch become one dated entry at
// the front, and the section is cut to MaxRecent.
func MergeWithReport(doc model.Document, facts []model.Fact, opts Options) (model.Document, Report) {
	opts = opts.normalized()
	out := doc.Clone()
	rep := Report{Added: map[model.Kind]int{}}

	var recent []model.Fact
	for _, f := range facts {
		f.Text = normalizeText(f.Kind, f.Text)
		if f.Text == "" || wiki.IsPlaceholder(f.Text) {
			rep.Ignored++
			continue
		}

		switch f.Kind {
		case model.KindArchitecture:
			if out.Architecture == "" || wiki.IsPlaceholder(out.Architecture) {
				out.Architecture = f.Text
				rep.ArchitectureSet = true
			} else {
				rep.Suppressed++
			}
		case model.KindDecision, model.KindPattern, model.KindIssue:
			section := out.Section(f.Kind)
			if similarity.AnyDuplicate(f.Text, *section, opts.DuplicateThreshold) {
				rep.Suppressed++
				continue
			}
			*section = prepend(*section, f.Text)
			rep.Added[f.Kind]++
		case model.KindRecentWork:
			recent = append(recent, f)
		default:
			rep.Ignored++
		}
	}

	if len(recent) > 0 {
		entry := recentEntry(recent, opts.Now)
		out.RecentWork = prepend(out.RecentWork, entry)
		rep.RecentEntry = entry
		rep.Added[model.KindRecentWork] = 1
	}
	if len(out.RecentWork) > opts.MaxRecent {
		rep.Dropped = append([]string(nil), out.RecentWork[opts.MaxRecent:]...)
		out.RecentWork = out.RecentWork[:opts.MaxRecent]
	}

	return out, rep
}

// recentEntry consolidates a batch's Recent Work facts into one line:
// "[2006-01-02] text; text (tag, tag) [log](ref)".
func recentEntry(facts []model.Fact, now time.Time) string {
	var (
		texts []string
		tags  []string
		ref   string
		date  time.Time
	)
	seenTag := map[string]bool{}
	for _, f := range facts {
		texts = append(texts, f.Text)
		for _, t := range f.Tags {
			t = strings.Join(strings.Fields(t), " ")
			if t != "" && !seenTag[t] {
				seenTag[t] = true
				tags = append(tags, t)
			}
		}
		if ref == "" {
			ref = strings.Join(strings.Fields(f.Reference), "")
		}
		if date.IsZero() && f.Timestamp != nil {
			date = *f.Timestamp
		}
	}
	if date.IsZero() {
		date = now
	}

	var b strings.Builder
	if !date.IsZero() {
		b.WriteString("[")
		b.WriteString(date.Format(DateLayout))
		b.WriteString("] ")
	}
	b.WriteString(strings.Join(texts, "; "))
	if len(tags) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(tags, ", "))
		b.WriteString(")")
	}
	if ref != "" {
		b.WriteString(" [log](")
		b.WriteString(ref)
		b.WriteString(")")
	}
	return b.String()
}

// normalizeText makes fact text safe to serialize: list items become a single
// line, and architecture prose keeps its lines but cannot open a new section.
func normalizeText(k model.Kind, s string) string {
	if k != model.KindArchitecture {
		return strings.Join(strings.Fields(s), " ")
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if wiki.IsHeaderLine(line) {
			line = "###" + strings.TrimPrefix(strings.TrimLeftFunc(line, unicode.IsSpace), "##")
		}
		lines[i] = line
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func prepend(items []string, s string) []string {
	out := make([]string, 0, len(items)+1)
	out = append(out, s)
	return append(out, items...)
}
