// Package chunker splits session logs into sections so a search hit can be
// shown as a short excerpt instead of the whole log.
package chunker

import (
	"strings"
)

const (
	DefaultTargetSize = 400
	DefaultMaxSize    = 600
)

// Options configures chunking behavior.
type Options struct {
	TargetSize int
	MaxSize    int
}

// DefaultOptions returns default chunking options.
func DefaultOptions() Options {
	return Options{TargetSize: DefaultTargetSize, MaxSize: DefaultMaxSize}
}

// Section is a piece of a log with its 1-based line range.
type Section struct {
	Text      string `json:"text"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Split cuts text on headings and paragraph breaks, then packs neighbouring
// pieces up to TargetSize. Text no longer than MaxSize stays whole.
func Split(text string, opts Options) []Section {
	if opts.TargetSize <= 0 || opts.MaxSize <= 0 {
		opts = DefaultOptions()
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil
	}
	if len(text) <= opts.MaxSize {
		return []Section{{Text: text, StartLine: 1, EndLine: strings.Count(text, "\n") + 1}}
	}
	return pack(pieces(text), opts)
}

// Find returns the first section containing query, case-insensitively.
func Find(text, query string, opts Options) (Section, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Section{}, false
	}
	for _, s := range Split(text, opts) {
		if strings.Contains(strings.ToLower(s.Text), q) {
			return s, true
		}
	}
	return Section{}, false
}

// pieces breaks text before every heading and at every blank line.
func pieces(text string) []Section {
	var out []Section
	var cur []string
	start := 1

	emit := func(end int) {
		if t := strings.TrimSpace(strings.Join(cur, "\n")); t != "" {
			out = append(out, Section{Text: t, StartLine: start, EndLine: end})
		}
		cur = nil
	}

	for i, line := range strings.Split(text, "\n") {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			emit(n - 1)
			continue
		case strings.HasPrefix(trimmed, "#") && len(cur) > 0:
			emit(n - 1)
			start = n
		case len(cur) == 0:
			start = n
		}
		cur = append(cur, line)
	}
	emit(strings.Count(text, "\n") + 1)
	return out
}

// pack joins small pieces and breaks oversized ones on line boundaries.
func pack(in []Section, opts Options) []Section {
	var out []Section
	var acc *Section

	flush := func() {
		if acc == nil {
			return
		}
		if len(acc.Text) > opts.MaxSize {
			out = append(out, breakLines(*acc, opts.TargetSize)...)
		} else {
			out = append(out, *acc)
		}
		acc = nil
	}

	for _, p := range in {
		if acc != nil && len(acc.Text)+2+len(p.Text) <= opts.TargetSize {
			acc.Text += "\n\n" + p.Text
			acc.EndLine = p.EndLine
			continue
		}
		flush()
		p := p
		acc = &p
	}
	flush()
	return out
}

func breakLines(s Section, target int) []Section {
	var out []Section
	var cur []string
	size := 0
	start := s.StartLine

	for i, line := range strings.Split(s.Text, "\n") {
		if size+len(line) > target && len(cur) > 0 {
			if t := strings.TrimSpace(strings.Join(cur, "\n")); t != "" {
				out = append(out, Section{Text: t, StartLine: start, EndLine: s.StartLine + i - 1})
			}
			cur, size, start = nil, 0, s.StartLine+i
		}
		cur = append(cur, line)
		size += len(line) + 1
	}
	if t := strings.TrimSpace(strings.Join(cur, "\n")); t != "" {
		out = append(out, Section{Text: t, StartLine: start, EndLine: s.EndLine})
	}
	return out
}
