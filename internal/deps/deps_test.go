package deps

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reflexsearch/reflex/internal/symbols"
)

func TestExtractGoImport(t *testing.T) {
	content := []byte(`import "fmt"` + "\n")
	syms := []symbols.Symbol{
		{Kind: symbols.KindImport, Span: symbols.Span{StartLine: 1, EndLine: 1, StartCol: 0, EndCol: len(content) - 1}},
	}
	edges := Extract(symbols.LangGo, content, syms)
	require.Len(t, edges, 1)
	require.Equal(t, "fmt", edges[0].ImportedPath)
	require.Equal(t, "import", edges[0].Kind)
	require.False(t, edges[0].Resolved)
}

func TestExtractRelativeImport(t *testing.T) {
	content := []byte(`import "./util"` + "\n")
	syms := []symbols.Symbol{
		{Kind: symbols.KindImport, Span: symbols.Span{StartLine: 1, EndLine: 1, StartCol: 0, EndCol: len(content) - 1}},
	}
	edges := Extract(symbols.LangJavaScript, content, syms)
	require.Len(t, edges, 1)
	require.True(t, edges[0].Resolved)
}

func TestExtractIgnoresNonImportSymbols(t *testing.T) {
	content := []byte(`func Foo() {}` + "\n")
	syms := []symbols.Symbol{
		{Kind: symbols.KindFunction, Identifier: "Foo", Span: symbols.Span{StartLine: 1, EndLine: 1}},
	}
	edges := Extract(symbols.LangGo, content, syms)
	require.Empty(t, edges)
}
