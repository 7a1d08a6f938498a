// Package deps extracts import/require/use/include edges from source
// files, reusing the symbol extractor's import captures rather than
// running a second parse pass (spec section 5.9, SPEC_FULL supplemented
// feature ported from the original Rust `src/context/structure.rs`).
package deps

import (
	"regexp"
	"strings"

	"github.com/reflexsearch/reflex/internal/cache"
	"github.com/reflexsearch/reflex/internal/symbols"
)

// kindForLanguage maps a language to the dependency edge kind its import
// syntax represents, per spec section 9's edge kind enum.
func kindForLanguage(lang symbols.Language) string {
	switch lang {
	case symbols.LangRust:
		return "use"
	case symbols.LangGo:
		return "import"
	case symbols.LangC, symbols.LangCPP:
		return "include"
	case symbols.LangPHP:
		return "use"
	default:
		return "import"
	}
}

// Extract reuses syms (already produced by the symbols package for this
// same file, avoiding a second parse) and returns one DepEdge per
// KindImport symbol. Imports whose path starts with "." or "/" (".",
// "..", "./foo", "/abs") are marked Resolved; the target's existence is
// not checked. Anything else is recorded unresolved.
func Extract(lang symbols.Language, content []byte, syms []symbols.Symbol) []cache.DepEdge {
	kind := kindForLanguage(lang)

	var out []cache.DepEdge
	for _, s := range syms {
		if s.Kind != symbols.KindImport {
			continue
		}
		raw := textForSpan(content, s.Span)
		path := extractImportPath(raw)
		if path == "" {
			continue
		}
		out = append(out, cache.DepEdge{
			ImportedPath: path,
			Kind:         kind,
			Resolved:     looksRelative(path),
		})
	}
	return out
}

func textForSpan(content []byte, span symbols.Span) string {
	lines := strings.Split(string(content), "\n")
	if span.StartLine < 1 || span.StartLine > len(lines) {
		return ""
	}
	if span.StartLine == span.EndLine {
		line := lines[span.StartLine-1]
		if span.StartCol < len(line) && span.EndCol <= len(line) && span.StartCol <= span.EndCol {
			return line[span.StartCol:span.EndCol]
		}
		return line
	}
	var b strings.Builder
	for i := span.StartLine - 1; i < span.EndLine && i < len(lines); i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	return b.String()
}

// extractImportPath pulls the quoted or angle-bracketed module path out
// of a raw import statement's text. Grammars differ enough (Go's
// `import "fmt"`, C's `#include <stdio.h>`, PHP's `use Foo\Bar;`) that
// this stays a light regex scan rather than a per-language parser.
var pathPattern = regexp.MustCompile(`["'<]([^"'>]+)["'>]`)

func extractImportPath(raw string) string {
	if m := pathPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	// No quotes/brackets: PHP `use`, Rust `use`, Java import, C# using —
	// path is the remaining identifier chain after the keyword.
	fields := strings.Fields(raw)
	for _, f := range fields {
		f = strings.TrimSuffix(f, ";")
		if f == "" || isImportKeyword(f) {
			continue
		}
		return f
	}
	return ""
}

func isImportKeyword(s string) bool {
	switch s {
	case "import", "use", "using", "require", "include", "namespace", "from", "package":
		return true
	default:
		return false
	}
}

func looksRelative(path string) bool {
	return strings.HasPrefix(path, ".") || strings.HasPrefix(path, "/")
}
