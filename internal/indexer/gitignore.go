package indexer

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// gitignoreMatcher is a minimal single-directory .gitignore matcher:
// exact names, `*`-glob segments, and a trailing-`/` directory marker.
// Negation and nested-directory-scoped .gitignore files are out of
// scope (spec's Non-goals retain plain substring/regex search only;
// this exists purely to keep noise out of the index), grounded on
// standardbeagle-lci's GitignoreParser pattern/line-skipping shape.
type gitignoreMatcher struct {
	patterns []gitignorePattern
}

type gitignorePattern struct {
	pattern   string
	directory bool
}

func loadGitignore(root string) (*gitignoreMatcher, error) {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if os.IsNotExist(err) {
		return &gitignoreMatcher{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := &gitignoreMatcher{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		p := gitignorePattern{}
		if strings.HasSuffix(line, "/") {
			p.directory = true
			line = strings.TrimSuffix(line, "/")
		}
		p.pattern = strings.TrimPrefix(line, "/")
		m.patterns = append(m.patterns, p)
	}
	return m, scanner.Err()
}

// shouldIgnore checks relPath (slash-separated, root-relative) against
// every loaded pattern, matching on the full path or any path segment.
func (m *gitignoreMatcher) shouldIgnore(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	parts := strings.Split(relPath, "/")
	for _, p := range m.patterns {
		for i, part := range parts {
			last := i == len(parts)-1
			if p.directory && last && !isDir {
				continue // directory-only pattern, this segment is the leaf file itself
			}
			if ok, _ := filepath.Match(p.pattern, part); ok {
				return true
			}
		}
		if !p.directory {
			if ok, _ := filepath.Match(p.pattern, relPath); ok {
				return true
			}
		}
	}
	return false
}
