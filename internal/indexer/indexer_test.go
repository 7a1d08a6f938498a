package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reflexsearch/reflex/internal/cache"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIndexBuildsStores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "pkg/util.go", "package pkg\n\nfunc Helper() int { return 1 }\n")

	stats, diags, err := Index(context.Background(), root, Options{Branch: "main", SchemaHash: "test"})
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Equal(t, 2, stats.FilesTotal)
	require.Equal(t, 2, stats.FilesIndexed)
	require.Zero(t, stats.FilesReused)

	for _, f := range []string{"content.bin", "trigrams.bin", "symbols.bin", "meta.db"} {
		_, err := os.Stat(filepath.Join(root, ".reflex", f))
		require.NoError(t, err, "missing %s", f)
	}
}

func TestIndexSkipsUnchangedOnSecondRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n\nfunc A() {}\n")

	_, _, err := Index(context.Background(), root, Options{Branch: "main", SchemaHash: "test"})
	require.NoError(t, err)

	stores := []string{"content.bin", "trigrams.bin", "symbols.bin"}
	before := make(map[string]time.Time, len(stores))
	for _, f := range stores {
		info, err := os.Stat(filepath.Join(root, ".reflex", f))
		require.NoError(t, err)
		before[f] = info.ModTime()
	}

	stats, _, err := Index(context.Background(), root, Options{Branch: "main", SchemaHash: "test"})
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesTotal)
	require.Equal(t, 1, stats.FilesReused)
	require.Zero(t, stats.FilesIndexed)
	require.Zero(t, stats.FilesRemoved)

	for _, f := range stores {
		info, err := os.Stat(filepath.Join(root, ".reflex", f))
		require.NoError(t, err)
		require.Equal(t, before[f], info.ModTime(), "%s was rewritten on a no-change run", f)
	}
}

// TestIndexKeepsFileIDsStableAcrossIncrementalRun asserts spec section
// 6's ID-stability rule: adding a new file on an incremental run must
// not renumber files that didn't change.
func TestIndexKeepsFileIDsStableAcrossIncrementalRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "b.go", "package b\n")

	_, _, err := Index(context.Background(), root, Options{Branch: "main", SchemaHash: "test"})
	require.NoError(t, err)

	c, err := cache.Open(filepath.Join(root, ".reflex"))
	require.NoError(t, err)
	before, err := c.ListFiles("main")
	require.NoError(t, err)
	c.Close()
	idBefore := make(map[string]int64, len(before))
	for _, r := range before {
		idBefore[r.Path] = r.ID
	}

	writeFile(t, root, "c.go", "package c\n")
	_, _, err = Index(context.Background(), root, Options{Branch: "main", SchemaHash: "test"})
	require.NoError(t, err)

	c2, err := cache.Open(filepath.Join(root, ".reflex"))
	require.NoError(t, err)
	defer c2.Close()
	after, err := c2.ListFiles("main")
	require.NoError(t, err)
	require.Len(t, after, 3)
	for _, r := range after {
		if id, ok := idBefore[r.Path]; ok {
			require.Equal(t, id, r.ID, "%s's file ID changed on an incremental run", r.Path)
		}
	}
}

func TestIndexDropsDeletedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "b.go", "package b\n")

	_, _, err := Index(context.Background(), root, Options{Branch: "main", SchemaHash: "test"})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "b.go")))

	stats, _, err := Index(context.Background(), root, Options{Branch: "main", SchemaHash: "test"})
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesTotal)
	require.Equal(t, 1, stats.FilesRemoved)

	c, err := cache.Open(filepath.Join(root, ".reflex"))
	require.NoError(t, err)
	defer c.Close()

	files, err := c.ListFiles("main")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "a.go", files[0].Path)
}

func TestIndexRespectsExcludeDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "node_modules/dep/index.go", "package dep\n")

	stats, _, err := Index(context.Background(), root, Options{Branch: "main", SchemaHash: "test"})
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesTotal)
}
