package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reflexsearch/reflex/internal/indexer"
	"github.com/reflexsearch/reflex/internal/rerrors"
	"github.com/reflexsearch/reflex/internal/symbols"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"main.go": "package main\n\nfunc Greet(name string) string {\n\treturn \"hello \" + name\n}\n\nfunc main() {\n\tprintln(Greet(\"world\"))\n}\n",
		"util.go": "package main\n\ntype Widget struct {\n\tName string\n}\n\nfunc NewWidget(n string) Widget {\n\treturn Widget{Name: n}\n}\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	_, diags, err := indexer.Index(context.Background(), root, indexer.Options{SchemaHash: "test"})
	require.NoError(t, err)
	require.Empty(t, diags)

	return root
}

func TestSearchLiteralFindsSubstring(t *testing.T) {
	root := buildFixture(t)
	e, err := Open(root, "main", "test")
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search("hello", Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "main.go", results[0].Path)
}

func TestSearchLiteralCaseInsensitive(t *testing.T) {
	root := buildFixture(t)
	e, err := Open(root, "main", "test")
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search("HELLO", Filter{CaseInsensitive: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearchRegexMatchesAcrossFiles(t *testing.T) {
	root := buildFixture(t)
	e, err := Open(root, "main", "test")
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search(`func New\w+`, Filter{UseRegex: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "util.go", results[0].Path)
}

func TestSearchSymbolsByIdentifier(t *testing.T) {
	root := buildFixture(t)
	e, err := Open(root, "main", "test")
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search("symbol:Greet", Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "main.go", results[0].Path)
	require.NotNil(t, results[0].Kind)
	require.Equal(t, symbols.KindFunction, *results[0].Kind)
}

func TestSearchGlobFilter(t *testing.T) {
	root := buildFixture(t)
	e, err := Open(root, "main", "test")
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search("func", Filter{GlobInclude: []string{"util.go"}})
	require.NoError(t, err)
	for _, r := range results {
		require.Equal(t, "util.go", r.Path)
	}
}

// buildStructFixture writes two structs whose names collide with the
// "struct" keyword under different casing, plus a file where "struct"
// only appears inside a string literal — the spec section 8 scenario 3
// fixture.
func buildStructFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"lower.go": "package main\n\ntype lowercase_struct struct {\n\tN int\n}\n",
		"upper.go": "package main\n\ntype UPPERCASE_STRUCT struct {\n\tN int\n}\n",
		"note.go":  "package main\n\nfunc Note() string {\n\treturn \"struct keyword mentioned here\"\n}\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	_, diags, err := indexer.Index(context.Background(), root, indexer.Options{SchemaHash: "test"})
	require.NoError(t, err)
	require.Empty(t, diags)

	return root
}

// TestSearchSymbolsKeywordShortcutListsAllOfKind covers spec.md section 8
// scenario 3: "struct" (the bare lowercase keyword) with --symbols must
// list every struct regardless of what it's named, not exact-match
// "struct" as a literal identifier.
func TestSearchSymbolsKeywordShortcutListsAllOfKind(t *testing.T) {
	root := buildStructFixture(t)
	e, err := Open(root, "main", "test")
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search("struct", Filter{SymbolsMode: true})
	require.NoError(t, err)

	var names []string
	for _, r := range results {
		names = append(names, r.Symbol)
	}
	require.ElementsMatch(t, []string{"lowercase_struct", "UPPERCASE_STRUCT"}, names)
}

// TestSearchSymbolsExactCaseSkipsKeywordShortcut covers spec.md section
// 8 scenario 3's other half: "STRUCT" is not the lowercase keyword, so
// it must take the symbol-by-trigram (substring) path instead of the
// keyword shortcut, matching only the struct whose name contains
// "STRUCT".
func TestSearchSymbolsExactCaseSkipsKeywordShortcut(t *testing.T) {
	root := buildStructFixture(t)
	e, err := Open(root, "main", "test")
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search("STRUCT", Filter{SymbolsMode: true})
	require.NoError(t, err)

	var names []string
	for _, r := range results {
		names = append(names, r.Symbol)
	}
	require.Equal(t, []string{"UPPERCASE_STRUCT"}, names)
}

// TestSearchSymbolsSubstringFindsRealStructNotStringMention checks that a
// symbol-name search finds the real struct in lower.go and returns
// nothing from note.go, whose string literal mentions structs.
func TestSearchSymbolsSubstringFindsRealStructNotStringMention(t *testing.T) {
	root := buildStructFixture(t)
	e, err := Open(root, "main", "test")
	require.NoError(t, err)
	defer e.Close()

	results, err := e.Search("symbol:lowercase_struct", Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "lower.go", results[0].Path)

	for _, r := range results {
		require.NotEqual(t, "note.go", r.Path)
	}
}

func TestOpenNotIndexedReturnsTypedError(t *testing.T) {
	root := t.TempDir()
	_, err := Open(root, "main", "test")
	require.Error(t, err)
	var nie *rerrors.NotIndexedError
	require.ErrorAs(t, err, &nie)
}
