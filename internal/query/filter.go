// Package query implements reflex's search strategy dispatch: literal
// substring, regular expression, and symbol lookup, all backed by the
// read-only mmapped stores built by internal/indexer (spec section 4.7).
package query

import "github.com/reflexsearch/reflex/internal/symbols"

// Filter is the query engine's input shape, mirroring spec.md section
// 4.7's enumerated filter options exactly.
type Filter struct {
	SymbolsMode     bool
	Kind            *symbols.Kind
	Language        *symbols.Language
	UseRegex        bool
	GlobInclude     []string
	GlobExclude     []string
	CaseInsensitive bool
	PathsOnly       bool
	MaxResults      int
}

// DefaultMaxResults caps unbounded queries at a sane page size when the
// caller doesn't specify one.
const DefaultMaxResults = 1000

func (f Filter) maxResults() int {
	if f.MaxResults > 0 {
		return f.MaxResults
	}
	return DefaultMaxResults
}
