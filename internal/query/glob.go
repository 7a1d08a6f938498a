package query

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// matchesGlobs applies include/exclude path globs to path. An empty
// include list matches everything; exclude wins on overlap (SPEC_FULL's
// resolution of the open question left implicit by spec.md section 4.7 —
// see DESIGN.md), grounded on mehmetkoksal-w-mind-palace's
// MatchesGuardrail pattern.
func matchesGlobs(path string, include, exclude []string) bool {
	path = filepath.ToSlash(path)

	for _, g := range exclude {
		if g == "" {
			continue
		}
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, g := range include {
		if g == "" {
			continue
		}
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
	}
	return false
}
