package query

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/reflexsearch/reflex/internal/cache"
	"github.com/reflexsearch/reflex/internal/config"
	"github.com/reflexsearch/reflex/internal/rerrors"
	"github.com/reflexsearch/reflex/internal/store"
	"github.com/reflexsearch/reflex/internal/symbols"
	"github.com/reflexsearch/reflex/internal/trigram"
)

const symbolPrefix = "symbol:"

// Engine holds the read-only handles a query session needs: the mmapped
// content and trigram stores, the symbol-cache reader, and meta.db
// itself (spec section 5.7). One Engine serves any number of concurrent
// Search calls; none of its handles are writable.
type Engine struct {
	cache    *cache.Cache
	content  *store.Store
	trigrams *trigram.Store
	symbols  *symbols.Reader
	branch   string
	maxPerm  int
}

// Open memory-maps root's .reflex cache directory for querying. Callers
// get a NotIndexedError if root has never been indexed, and a
// SchemaMismatchError if the binary's schema hash doesn't match the
// cache's (spec section 4.8).
func Open(root, branch, builtSchemaHash string) (*Engine, error) {
	cacheDir := config.CacheDir(root)
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		return nil, &rerrors.NotIndexedError{Root: root}
	}

	c, err := cache.Open(cacheDir)
	if err != nil {
		return nil, err
	}
	if builtSchemaHash != "" {
		stored, err := c.SchemaHash()
		if err != nil {
			c.Close()
			return nil, err
		}
		if err := schemaCheck(builtSchemaHash, stored); err != nil {
			c.Close()
			return nil, err
		}
	}

	contentStore, err := store.Open(filepath.Join(cacheDir, "content.bin"))
	if err != nil {
		c.Close()
		return nil, err
	}
	trigramStore, err := trigram.Open(filepath.Join(cacheDir, "trigrams.bin"))
	if err != nil {
		contentStore.Close()
		c.Close()
		return nil, err
	}
	symbolsReader, err := symbols.OpenReader(filepath.Join(cacheDir, "symbols.bin"))
	if err != nil {
		trigramStore.Close()
		contentStore.Close()
		c.Close()
		return nil, err
	}

	if branch == "" {
		branch = "main"
	}
	return &Engine{
		cache:    c,
		content:  contentStore,
		trigrams: trigramStore,
		symbols:  symbolsReader,
		branch:   branch,
		maxPerm:  8,
	}, nil
}

// Close releases every mmap/handle the Engine holds.
func (e *Engine) Close() error {
	e.symbols.Close()
	e.trigrams.Close()
	e.content.Close()
	return e.cache.Close()
}

// Search dispatches pattern+filter to the literal, regex, or symbol
// strategy per spec.md section 4.7's rules, then sorts and caps the
// output.
func (e *Engine) Search(pattern string, filter Filter) ([]SearchResult, error) {
	symbolsMode := filter.SymbolsMode
	needle := pattern
	if strings.HasPrefix(pattern, symbolPrefix) {
		symbolsMode = true
		needle = strings.TrimPrefix(pattern, symbolPrefix)
	}

	keywordShortcut := false
	if symbolsMode && filter.Kind == nil {
		if kw, ok := symbols.ParseKind(needle); ok {
			filter.Kind = &kw
			keywordShortcut = true
		}
	}

	var (
		results []SearchResult
		err     error
	)
	switch {
	case symbolsMode:
		results, err = e.searchSymbols(needle, filter, keywordShortcut)
	case filter.UseRegex:
		results, err = e.searchRegex(needle, filter)
	default:
		results, err = e.searchLiteral(needle, filter)
	}
	if err != nil {
		return nil, err
	}

	filtered := results[:0]
	for _, r := range results {
		if !matchesGlobs(r.Path, filter.GlobInclude, filter.GlobExclude) {
			continue
		}
		if filter.Language != nil && r.Language != *filter.Language {
			continue
		}
		filtered = append(filtered, r)
	}
	results = filtered

	sortResults(results)

	if filter.PathsOnly {
		results = dedupeByPath(results)
	}

	if max := filter.maxResults(); len(results) > max {
		results = results[:max]
	}
	return results, nil
}

func dedupeByPath(results []SearchResult) []SearchResult {
	seen := make(map[string]bool, len(results))
	out := results[:0]
	for _, r := range results {
		if seen[r.Path] {
			continue
		}
		seen[r.Path] = true
		out = append(out, r)
	}
	return out
}

func schemaCheck(built, stored string) error {
	if stored == "" || built != stored {
		return &rerrors.SchemaMismatchError{Want: built, Got: stored}
	}
	return nil
}
