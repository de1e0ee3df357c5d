package wiki

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/axatbhardwaj/context-tracker/internal/model"
)

// Parse reads a context document. It never fails: unexpected input degrades
// to empty sections, and an internal failure yields the zero Document so a
// broken file never blocks new knowledge from being written.
func Parse(text string) (doc model.Document) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("wiki parse failed, using empty document")
			doc = model.NewDocument()
		}
	}()
	return parse(text)
}

func parse(text string) model.Document {
	bodies := splitSections(text)
	doc := model.NewDocument()

	for i, s := range sections {
		lines, ok := bodies[i]
		if !ok {
			continue
		}
		if s.kind == model.KindArchitecture {
			arch := strings.TrimSpace(strings.Join(lines, "\n"))
			if !IsPlaceholder(arch) {
				doc.Architecture = arch
			}
			continue
		}
		*doc.Section(s.kind) = listItems(lines)
	}
	return doc
}

// splitSections groups body lines by known section index. Unknown headers
// and repeated known headers swallow their content.
func splitSections(text string) map[int][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	bodies := make(map[int][]string, len(sections))
	current := -1

	for _, line := range strings.Split(text, "\n") {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			idx, known := lookupSection(m[1])
			if _, seen := bodies[idx]; known && !seen {
				current = idx
				bodies[idx] = []string{}
			} else {
				current = -1
			}
			continue
		}
		if current >= 0 {
			bodies[current] = append(bodies[current], line)
		}
	}
	return bodies
}

func listItems(lines []string) []string {
	items := []string{}
	for _, line := range lines {
		m := bulletRe.FindStringSubmatch(strings.TrimRight(line, " \t"))
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		if item == "" || IsPlaceholder(item) {
			continue
		}
		items = append(items, item)
	}
	return items
}
