package indexer

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/blake3"

	"github.com/reflexsearch/reflex/internal/cache"
	"github.com/reflexsearch/reflex/internal/deps"
	"github.com/reflexsearch/reflex/internal/rerrors"
	"github.com/reflexsearch/reflex/internal/rlog"
	"github.com/reflexsearch/reflex/internal/symbols"
)

const (
	contentFile = "content.bin"
	trigramFile = "trigrams.bin"
	symbolsFile = "symbols.bin"
)

// extracted holds the per-file products of a single worker's pass,
// everything the merge step needs before it touches shared state.
type extracted struct {
	relPath  string
	content  []byte
	lang     symbols.Language
	hash     string
	reused   bool // hash matched an existing record; content/symbols copied forward
	syms     []symbols.Symbol
	depEdges []cache.DepEdge
	diag     *rerrors.ParseError
}

// Index walks root, diffs against the branch's previously recorded
// content hashes, and rebuilds content.bin/trigrams.bin/symbols.bin plus
// meta.db to reflect the current working tree (spec section 5.6). The
// caller must not hold any other handle on cacheDir's binary stores;
// Index acquires the writer lock itself for the duration of the run.
func Index(ctx context.Context, root string, opts Options) (Stats, []rerrors.Diagnostic, error) {
	start := time.Now()
	opts = opts.withDefaults()
	cacheDir := filepath.Join(root, ".reflex")
	if env := os.Getenv("RFX_CACHE_DIR"); env != "" {
		cacheDir = env
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Stats{}, nil, rerrors.NewIoError(cacheDir, err)
	}

	lock, err := cache.Lock(ctx, cacheDir)
	if err != nil {
		return Stats{}, nil, err
	}
	defer lock.Unlock()

	c, err := cache.Init(cacheDir, opts.SchemaHash)
	if err != nil {
		return Stats{}, nil, err
	}
	defer c.Close()

	files, err := enumerate(root, opts)
	if err != nil {
		return Stats{}, nil, rerrors.NewIoError(root, err)
	}

	oldHashes, err := c.LoadHashesForBranch(opts.Branch)
	if err != nil {
		return Stats{}, nil, err
	}
	oldRecords := make(map[string]cache.FileRecord)
	if existing, err := c.ListFiles(opts.Branch); err == nil {
		for _, r := range existing {
			oldRecords[r.Path] = r
		}
	}

	var oldSymbols *symbols.Reader
	if r, err := symbols.OpenReader(filepath.Join(cacheDir, symbolsFile)); err == nil {
		oldSymbols = r
		defer oldSymbols.Close()
	}

	results, diags, err := processFiles(ctx, root, files, opts, oldHashes, oldRecords, oldSymbols)
	if err != nil {
		return Stats{}, nil, err
	}

	filesRemoved := countRemoved(oldRecords, results)
	stats, err := merge(c, cacheDir, opts, results, oldHashes, oldRecords, filesRemoved)
	if err != nil {
		return Stats{}, nil, err
	}
	stats.Duration = time.Since(start)
	stats.FilesRemoved = filesRemoved

	rlog.L().Info("index complete",
		zap.Int("files_total", stats.FilesTotal),
		zap.Int("files_indexed", stats.FilesIndexed),
		zap.Int("files_reused", stats.FilesReused),
		zap.Int("files_removed", stats.FilesRemoved),
		zap.Duration("duration", stats.Duration),
	)

	return stats, diags, nil
}

func countRemoved(oldRecords map[string]cache.FileRecord, results []extracted) int {
	live := make(map[string]bool, len(results))
	for _, r := range results {
		live[r.relPath] = true
	}
	removed := 0
	for path := range oldRecords {
		if !live[path] {
			removed++
		}
	}
	return removed
}

// withDefaults fills zero-value fields from internal/config.Default().
func (o Options) withDefaults() Options {
	if o.Branch == "" {
		o.Branch = "main"
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MaxFileSizeBytes <= 0 {
		o.MaxFileSizeBytes = 2 << 20
	}
	if len(o.ExcludeDirs) == 0 {
		o.ExcludeDirs = []string{"target", "node_modules", ".git", ".reflex", "dist", "build"}
	}
	if o.CaseFoldMaxPerm <= 0 {
		o.CaseFoldMaxPerm = 8
	}
	if o.SymbolPolicy == "" {
		o.SymbolPolicy = "precomputed"
	}
	return o
}

// processFiles runs the read -> hash -> (maybe) parse pipeline over
// files with opts.Workers of parallelism, bounded by an errgroup per
// spec section 6's concurrency model.
func processFiles(ctx context.Context, root string, files []walkResult, opts Options,
	oldHashes map[string]string, oldRecords map[string]cache.FileRecord,
	oldSymbols *symbols.Reader,
) ([]extracted, []rerrors.Diagnostic, error) {
	results := make([]extracted, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, wf := range files {
		i, wf := i, wf
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			e := processOne(root, wf, opts, oldHashes, oldRecords, oldSymbols)
			results[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var diags []rerrors.Diagnostic
	out := results[:0]
	for _, e := range results {
		if e.relPath == "" {
			continue // skipped (binary / read error)
		}
		if e.diag != nil {
			diags = append(diags, e.diag)
		}
		out = append(out, e)
	}
	return out, diags, nil
}

func processOne(root string, wf walkResult, opts Options, oldHashes map[string]string,
	oldRecords map[string]cache.FileRecord, oldSymbols *symbols.Reader,
) extracted {
	absPath := filepath.Join(root, wf.relPath)
	content, err := os.ReadFile(absPath)
	if err != nil {
		return extracted{} // transient: file vanished between walk and read
	}
	if isBinary(content) {
		return extracted{}
	}

	lang := symbols.DetectLanguage(wf.relPath, content)
	sum := blake3.Sum256(content)
	hash := hex.EncodeToString(sum[:16])

	e := extracted{relPath: wf.relPath, content: content, lang: lang, hash: hash}

	if !opts.Force {
		if prevHash, ok := oldHashes[wf.relPath]; ok && prevHash == hash {
			if rec, ok := oldRecords[wf.relPath]; ok && oldSymbols != nil {
				if syms, err := oldSymbols.ReadBlock(symbols.Block{Offset: rec.SymbolOffset, Length: rec.SymbolLength}); err == nil {
					e.reused = true
					e.syms = syms
					e.depEdges = deps.Extract(lang, content, syms)
					return e
				}
			}
		}
	}

	syms, diag := symbols.ExtractAll(0, wf.relPath, lang, content)
	e.syms = syms
	if diag != nil {
		e.diag = rerrors.NewParseError(wf.relPath, diag.Reason, nil)
	}
	e.depEdges = deps.Extract(lang, content, syms)
	return e
}
