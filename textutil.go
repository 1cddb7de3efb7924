package mdhtml

import (
	"maps"
	"slices"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func truncateWithEllipsis(text string, limit int) string {
	if ansi.PrintableRuneWidth(text) <= limit {
		return text
	}
	if limit <= 0 {
		return ""
	}
	if limit == 1 {
		return "…"
	}
	return truncate.StringWithTail(text, uint(limit), "…")
}

// lower case-folds s. A Caser keeps state, so one is made per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func foldLabel(label string) string {
	return lower(label)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
