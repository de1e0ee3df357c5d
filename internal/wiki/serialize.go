package wiki

import (
	"strings"

	"github.com/axatbhardwaj/context-tracker/internal/model"
)

// Serialize renders doc in canonical form: fixed title, the five sections in
// order, "-" bullets, and a placeholder sentence for every empty section.
// Parse(Serialize(d)) equals d for any Document built by Parse or the merger.
func Serialize(doc model.Document) string {
	var b strings.Builder
	b.WriteString(Title)
	b.WriteString("\n")

	for _, s := range sections {
		b.WriteString("\n## ")
		b.WriteString(s.name)
		b.WriteString("\n\n")

		if s.kind == model.KindArchitecture {
			arch := strings.TrimSpace(doc.Architecture)
			if arch == "" {
				arch = s.placeholder
			}
			b.WriteString(arch)
			b.WriteString("\n")
			continue
		}

		items := *doc.Section(s.kind)
		if len(items) == 0 {
			b.WriteString(s.placeholder)
			b.WriteString("\n")
			continue
		}
		for _, it := range items {
			b.WriteString("- ")
			b.WriteString(it)
			b.WriteString("\n")
		}
	}
	return b.String()
}
