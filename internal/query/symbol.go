package query

import (
	"github.com/reflexsearch/reflex/internal/cache"
	"github.com/reflexsearch/reflex/internal/rerrors"
)

// searchSymbols implements spec.md section 4.7 point 1/4: a substring
// lookup against symbols_index (the symbol-by-trigram path), optionally
// narrowed to a single symbol kind. When keywordShortcut is true,
// identifier was consumed by the keyword-shortcut rule (e.g. "struct")
// rather than typed as a literal symbol name, so every symbol of the
// inferred kind is listed instead of substring-matching the keyword as
// an identifier.
func (e *Engine) searchSymbols(identifier string, filter Filter, keywordShortcut bool) ([]SearchResult, error) {
	if identifier == "" {
		return nil, &rerrors.MalformedPatternError{Pattern: identifier, Column: 0, Reason: "empty symbol identifier"}
	}

	kindFilter := -1
	if filter.Kind != nil {
		kindFilter = int(*filter.Kind)
	}

	var rows []cache.SymbolRow
	var err error
	if keywordShortcut {
		rows, err = e.cache.FindSymbolsByKind(e.branch, kindFilter)
	} else {
		rows, err = e.cache.FindSymbolsByIdentifier(e.branch, identifier, kindFilter)
	}
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(rows))
	for _, row := range rows {
		rec, err := e.cache.GetFileByID(row.FileID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}

		var preview string
		if content, err := e.content.Read(rec.ContentOffset, rec.ContentLength); err == nil {
			preview = previewForOffset(content, byteOffsetOfLine(content, row.Span.StartLine), byteOffsetOfLine(content, row.Span.StartLine))
		}

		kind := row.Kind
		results = append(results, SearchResult{
			FileID:   row.FileID,
			Path:     row.Path,
			Language: languageOf(rec.Language),
			Kind:     &kind,
			Symbol:   row.Identifier,
			Span:     row.Span,
			Preview:  preview,
		})
	}
	return results, nil
}

// byteOffsetOfLine returns the byte offset of the start of the given
// 1-based line, for turning a stored symbol span back into a preview
// without re-running the parser.
func byteOffsetOfLine(content []byte, line int) int {
	if line <= 1 {
		return 0
	}
	seen := 1
	for i, b := range content {
		if b == '\n' {
			seen++
			if seen == line {
				return i + 1
			}
		}
	}
	return len(content)
}
