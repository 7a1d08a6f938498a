package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// identifiers collects every non-empty symbol identifier of kind from syms.
func identifiers(syms []Symbol, kind Kind) []string {
	var out []string
	for _, s := range syms {
		if s.Kind == kind && s.Identifier != "" {
			out = append(out, s.Identifier)
		}
	}
	return out
}

// Ported from original_source's tests/corpus/edge_cases/keywords_in_strings.rs:
// keywords appearing inside string and comment literals must never be
// mistaken for declarations, since the concrete-syntax grammar (unlike a
// naive text search) already knows those bytes aren't code.
func TestExtractIgnoresKeywordsInStringsAndComments(t *testing.T) {
	src := []byte(`
fn test_keywords_in_strings() {
    let msg = "struct Point { x: i32, y: i32 }";
    let code = "fn main() { println!(\"hello\"); }";
}

// struct Foo - this is NOT a struct definition
/* enum Bar - this is NOT an enum */
fn keywords_in_comments() {
    println!("Comments should not trigger keyword detection");
}
`)
	syms, diag := ExtractAll(1, "edge.rs", LangRust, src)
	require.Nil(t, diag)
	require.ElementsMatch(t, []string{"test_keywords_in_strings", "keywords_in_comments"}, identifiers(syms, KindFunction))
	require.Empty(t, identifiers(syms, KindStruct))
	require.Empty(t, identifiers(syms, KindEnum))
}

// Ported from edge_cases/keywords_mixed_case.rs: keyword-shaped queries are
// a query-engine concern (internal/query's ParseKind), not an extraction
// concern — the extractor must emit a real struct symbol regardless of
// whether its name happens to collide with a lowercase keyword spelling.
func TestExtractKeepsIdentifiersShapedLikeKeywords(t *testing.T) {
	src := []byte(`
struct StructBuilder {
    name: String,
}

fn fn_pointer() -> fn() {
    || println!("closure")
}
`)
	syms, diag := ExtractAll(1, "mixed.rs", LangRust, src)
	require.Nil(t, diag)
	require.Contains(t, identifiers(syms, KindStruct), "StructBuilder")
	require.Contains(t, identifiers(syms, KindFunction), "fn_pointer")
}

// Ported from rust/unicode_identifiers.rs, restricted to the identifiers
// that are valid under Rust's own XID_Start/XID_Continue identifier
// grammar (unlike the original corpus, tree-sitter-rust's grammar rejects
// emoji identifiers as a parse error, since real rustc does too).
func TestExtractHandlesUnicodeIdentifiers(t *testing.T) {
	src := []byte(`
pub fn café() {
    println!("Coffee shop");
}

pub fn 你好() {
    println!("Hello in Chinese");
}
`)
	syms, diag := ExtractAll(1, "unicode.rs", LangRust, src)
	require.Nil(t, diag)
	require.ElementsMatch(t, []string{"café", "你好"}, identifiers(syms, KindFunction))
}

func TestExtractGoExportedVisibility(t *testing.T) {
	src := []byte(`
package main

func Exported() {}
func unexported() {}
`)
	syms, diag := ExtractAll(1, "main.go", LangGo, src)
	require.Nil(t, diag)

	var exported, unexported bool
	for _, s := range syms {
		if s.Kind != KindFunction {
			continue
		}
		switch s.Identifier {
		case "Exported":
			exported = s.Exported
		case "unexported":
			unexported = s.Exported
		}
	}
	require.True(t, exported)
	require.False(t, unexported)
}

func TestExtractFallbackForUngrammaredLanguage(t *testing.T) {
	src := []byte(`
class Greeter
  def initialize(name)
    @name = name
  end
end
`)
	syms, diag := ExtractAll(1, "greeter.rb", LangRuby, src)
	require.Nil(t, diag)
	require.Contains(t, identifiers(syms, KindClass), "Greeter")
	require.Contains(t, identifiers(syms, KindMethod), "initialize")
}

func TestExtractToleratesBinaryGarbage(t *testing.T) {
	// ExtractAll must never propagate a panic past a single file's
	// boundary; malformed input degrades to zero symbols, not a crash.
	require.NotPanics(t, func() {
		ExtractAll(1, "weird.go", LangGo, []byte{0xff, 0xfe, 0x00, 0x01})
	})
}

func TestSpanContains(t *testing.T) {
	outer := Span{StartLine: 1, StartCol: 0, EndLine: 10, EndCol: 1}
	inner := Span{StartLine: 2, StartCol: 4, EndLine: 4, EndCol: 1}
	require.True(t, outer.Contains(inner))
	require.False(t, inner.Contains(outer))
}
