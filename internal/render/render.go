package render

import (
	"sort"
	"strings"
)

// Item is one downloadable result row shown to the user.
type Item struct {
	Label    string
	Filename string
}

// displayLabels maps an artifact type to its human label.
var displayLabels = map[string]string{
	"transcript": "Transcript",
	"blog":       "Blog Post",
	"seo":        "SEO Elements",
	"faq":        "FAQ Section",
	"social":     "Social Media Posts",
	"newsletter": "Newsletter",
	"quotes":     "Quotes",
}

// canonicalOrder fixes the display order of known artifact types.
var canonicalOrder = []string{"blog", "transcript", "seo", "faq", "social", "newsletter", "quotes"}

// Items turns the artifact map of a completed job into an ordered display
// list. Keys carry an opaque job prefix; the segment after the last
// underscore is the artifact type. Unknown types render with the raw type
// text and sort after all known ones, alphabetically so the order is
// deterministic.
func Items(files map[string]string) []Item {
	type entry struct {
		item Item
		typ  string
		rank int
	}

	entries := make([]entry, 0, len(files))
	for key, filename := range files {
		typ := typeSuffix(key)
		label, ok := displayLabels[typ]
		if !ok {
			label = typ
		}
		entries = append(entries, entry{
			item: Item{Label: label, Filename: filename},
			typ:  typ,
			rank: rankOf(typ),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].rank != entries[j].rank {
			return entries[i].rank < entries[j].rank
		}
		// both unknown, or duplicate types from distinct keys
		if entries[i].typ != entries[j].typ {
			return entries[i].typ < entries[j].typ
		}
		return entries[i].item.Filename < entries[j].item.Filename
	})

	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	return items
}

// typeSuffix extracts the artifact type from a key like "abc123_blog".
// A key without a separator is treated as being all type.
func typeSuffix(key string) string {
	if i := strings.LastIndex(key, "_"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// rankOf returns the canonical position of a type, or a rank past the
// canonical list for unknown types.
func rankOf(typ string) int {
	for i, known := range canonicalOrder {
		if typ == known {
			return i
		}
	}
	return len(canonicalOrder)
}
