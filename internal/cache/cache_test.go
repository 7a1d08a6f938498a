package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reflexsearch/reflex/internal/symbols"
)

func TestInitAndUpsertFile(t *testing.T) {
	dir := t.TempDir()

	c, err := Init(dir, "abc123")
	require.NoError(t, err)
	defer c.Close()

	hash, err := c.SchemaHash()
	require.NoError(t, err)
	require.Equal(t, "abc123", hash)

	id, err := c.UpsertFile(FileRecord{
		Path:          "main.go",
		Branch:        "main",
		Language:      "go",
		ContentHash:   "deadbeef",
		SizeBytes:     128,
		ContentOffset: 6,
		ContentLength: 130,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := c.GetFile("main.go", "main")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "deadbeef", got.ContentHash)

	files, err := c.ListFiles("main")
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestReplaceSymbolsAndFind(t *testing.T) {
	dir := t.TempDir()
	c, err := Init(dir, "h")
	require.NoError(t, err)
	defer c.Close()

	id, err := c.UpsertFile(FileRecord{Path: "a.go", Branch: "main", ContentHash: "x"})
	require.NoError(t, err)

	err = c.ReplaceSymbols(id, []symbols.Symbol{
		{FileID: id, Kind: symbols.KindFunction, Identifier: "DoThing", Span: symbols.Span{StartLine: 1, EndLine: 3}, Exported: true},
	})
	require.NoError(t, err)

	rows, err := c.FindSymbolsByIdentifier("main", "DoThing", -1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "a.go", rows[0].Path)
}

func TestBranchHashesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Init(dir, "h")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.RecordBranchFile("main", "a.go", "h1"))
	require.NoError(t, c.RecordBranchFile("main", "b.go", "h2"))

	hashes, err := c.LoadHashesForBranch("main")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a.go": "h1", "b.go": "h2"}, hashes)

	require.NoError(t, c.WriteHashesMirror("main"))
}

func TestWriteLockExclusive(t *testing.T) {
	dir := t.TempDir()

	l1, err := Lock(context.Background(), dir)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	_, err = Lock(ctx, dir)
	require.Error(t, err)

	require.NoError(t, l1.Unlock())

	l2, err := Lock(context.Background(), dir)
	require.NoError(t, err)
	require.NoError(t, l2.Unlock())
}

func TestClearRemovesContentsButNotLock(t *testing.T) {
	dir := t.TempDir()
	c, err := Init(dir, "h")
	require.NoError(t, err)
	c.Close()

	require.NoError(t, Clear(dir))

	_, err = Open(filepath.Join(dir))
	require.NoError(t, err) // Open recreates meta.db fresh
}
