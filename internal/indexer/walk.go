package indexer

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-enry/go-enry/v2"
)

// walkResult is one file discovered under root, before hashing.
type walkResult struct {
	relPath string
	size    int64
}

// enumerate walks root, applying opts.ExcludeDirs, an optional .gitignore
// matcher, and opts.MaxFileSizeBytes, returning paths in sorted order
// so file ID assignment downstream is scheduling-order independent (spec
// section 5.6/8).
func enumerate(root string, opts Options) ([]walkResult, error) {
	excluded := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		excluded[d] = true
	}

	var ignore *gitignoreMatcher
	if opts.RespectGitignore {
		m, err := loadGitignore(root)
		if err != nil {
			return nil, err
		}
		ignore = m
	}

	var out []walkResult
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if excluded[info.Name()] || (ignore != nil && ignore.shouldIgnore(rel, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		if ignore != nil && ignore.shouldIgnore(rel, false) {
			return nil
		}
		if opts.MaxFileSizeBytes > 0 && info.Size() > opts.MaxFileSizeBytes {
			return nil
		}
		out = append(out, walkResult{relPath: filepath.ToSlash(rel), size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].relPath < out[j].relPath })
	return out, nil
}

// isBinary applies the NUL-byte-in-first-8KiB heuristic before falling
// back to go-enry's content classifier, matching the layered approach
// internal/symbols.DetectLanguage already uses for language detection
// (spec section 5.6).
func isBinary(content []byte) bool {
	probe := content
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return true
	}
	return enry.IsBinary(content)
}
