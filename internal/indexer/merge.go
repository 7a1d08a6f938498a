package indexer

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/reflexsearch/reflex/internal/cache"
	"github.com/reflexsearch/reflex/internal/rerrors"
	"github.com/reflexsearch/reflex/internal/store"
	"github.com/reflexsearch/reflex/internal/symbols"
	"github.com/reflexsearch/reflex/internal/trigram"
)

// merge is the single writer-lock critical section (spec section 6):
// it assigns file IDs, rewrites content.bin/symbols.bin/trigrams.bin
// atomically (temp file + rename), and updates meta.db and
// hashes.json to match. Index already holds the cache's write lock when
// this runs.
//
// Nothing in results changed relative to the last run (no new/modified
// file, nothing removed) is the no-op case spec section 8 requires: zero
// writes to content.bin/trigrams.bin/symbols.bin and meta.db. That check
// runs before anything is opened for writing.
//
// File IDs are only reassigned from scratch in sorted-path order on a
// full reindex (opts.Force, or a never-before-indexed branch) — spec
// section 6's determinism requirement is about that full-rebuild case
// being schedule-order independent, not about renumbering unrelated
// files on every incremental run. On an incremental run, a file that
// already had an ID keeps it; only genuinely new paths get freshly
// allocated IDs.
func merge(c *cache.Cache, cacheDir string, opts Options, results []extracted, oldHashes map[string]string, oldRecords map[string]cache.FileRecord, filesRemoved int) (Stats, error) {
	indexedCount := 0
	reusedCount := 0
	symbolCount := 0
	for _, e := range results {
		symbolCount += len(e.syms)
		if e.reused {
			reusedCount++
		} else {
			indexedCount++
		}
	}

	if indexedCount == 0 && filesRemoved == 0 {
		postings, _ := c.GetStatistic("total_postings")
		trigramCount, _ := strconv.Atoi(postings)
		return Stats{
			FilesTotal:   len(results),
			FilesIndexed: 0,
			FilesReused:  reusedCount,
			FilesRemoved: 0,
			TrigramCount: trigramCount,
			SymbolCount:  symbolCount,
		}, nil
	}

	contentPath := filepath.Join(cacheDir, contentFile)
	symbolsPath := filepath.Join(cacheDir, symbolsFile)
	trigramPath := filepath.Join(cacheDir, trigramFile)

	contentW, err := store.NewWriter(contentPath + ".tmp")
	if err != nil {
		return Stats{}, err
	}
	symbolsW, err := symbols.NewWriter(symbolsPath + ".tmp")
	if err != nil {
		contentW.Close()
		return Stats{}, err
	}

	builder := trigram.NewBuilder()
	records := make([]cache.FileRecord, 0, len(results))

	fullReindex := opts.Force || len(oldRecords) == 0
	var nextID int64 = 1
	if !fullReindex {
		for _, r := range oldRecords {
			if r.ID >= nextID {
				nextID = r.ID + 1
			}
		}
	}

	for i, e := range results {
		var fileID int64
		switch {
		case fullReindex:
			fileID = int64(i + 1)
		default:
			if old, ok := oldRecords[e.relPath]; ok {
				fileID = old.ID
			} else {
				fileID = nextID
				nextID++
			}
		}

		offset, length, err := contentW.Append(e.content)
		if err != nil {
			contentW.Close()
			symbolsW.Close()
			return Stats{}, err
		}
		builder.AddFile(uint32(fileID), boundaryWrap(e.content))

		for j := range e.syms {
			e.syms[j].FileID = fileID
		}
		block, err := symbolsW.Append(e.syms)
		if err != nil {
			contentW.Close()
			symbolsW.Close()
			return Stats{}, err
		}

		records = append(records, cache.FileRecord{
			ID:            fileID,
			Path:          e.relPath,
			Language:      string(e.lang),
			ContentHash:   e.hash,
			SizeBytes:     int64(len(e.content)),
			ContentOffset: offset,
			ContentLength: length,
			SymbolOffset:  block.Offset,
			SymbolLength:  block.Length,
		})
	}

	if err := contentW.Close(); err != nil {
		symbolsW.Close()
		return Stats{}, err
	}
	if err := symbolsW.Close(); err != nil {
		return Stats{}, err
	}
	if err := builder.WriteTo(trigramPath + ".tmp"); err != nil {
		return Stats{}, err
	}

	for _, rename := range []struct{ tmp, final string }{
		{contentPath + ".tmp", contentPath},
		{symbolsPath + ".tmp", symbolsPath},
		{trigramPath + ".tmp", trigramPath},
	} {
		if err := os.Rename(rename.tmp, rename.final); err != nil {
			return Stats{}, rerrors.NewIoError(rename.final, err)
		}
	}

	if err := c.ReplaceAllFiles(opts.Branch, records); err != nil {
		return Stats{}, err
	}
	for i, e := range results {
		fileID := records[i].ID
		if err := c.ReplaceSymbols(fileID, e.syms); err != nil {
			return Stats{}, err
		}
		if err := c.ReplaceDeps(fileID, e.depEdges); err != nil {
			return Stats{}, err
		}
		if err := c.RecordBranchFile(opts.Branch, e.relPath, e.hash); err != nil {
			return Stats{}, err
		}
	}

	live := make(map[string]bool, len(results))
	for _, e := range results {
		live[e.relPath] = true
	}
	for path := range oldHashes {
		if !live[path] {
			if err := c.ForgetBranchFile(opts.Branch, path); err != nil {
				return Stats{}, err
			}
		}
	}

	if err := c.WriteHashesMirror(opts.Branch); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		FilesTotal:   len(results),
		FilesIndexed: indexedCount,
		FilesReused:  reusedCount,
		TrigramCount: builder.Len(),
		SymbolCount:  symbolCount,
	}
	_ = c.SetStatistic("total_files", strconv.Itoa(stats.FilesTotal))
	_ = c.SetStatistic("total_symbols", strconv.Itoa(stats.SymbolCount))
	_ = c.SetStatistic("total_postings", strconv.Itoa(stats.TrigramCount))

	return stats, nil
}

// boundaryWrap mirrors store.Writer.Append's own wrapping so trigram
// extraction anchors on the same byte layout the content store persists
// (spec section 4.3).
func boundaryWrap(data []byte) []byte {
	wrapped := make([]byte, 0, len(data)+2)
	wrapped = append(wrapped, store.Boundary)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, store.Boundary)
	return wrapped
}
