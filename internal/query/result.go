package query

import (
	"sort"

	"github.com/reflexsearch/reflex/internal/symbols"
)

// SearchResult is one match row (spec section 4.7's output shape).
type SearchResult struct {
	FileID   int64
	Path     string
	Language symbols.Language
	Kind     *symbols.Kind
	Symbol   string
	Span     symbols.Span
	Preview  string
}

// sortResults orders results by path ascending, then start line, then
// start column, with symbol kind ordinal breaking remaining ties (spec
// section 4.7's total order).
func sortResults(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Span.StartLine != b.Span.StartLine {
			return a.Span.StartLine < b.Span.StartLine
		}
		if a.Span.StartCol != b.Span.StartCol {
			return a.Span.StartCol < b.Span.StartCol
		}
		return kindOrdinal(a.Kind) < kindOrdinal(b.Kind)
	})
}

func kindOrdinal(k *symbols.Kind) int {
	if k == nil {
		return -1
	}
	return int(*k)
}
