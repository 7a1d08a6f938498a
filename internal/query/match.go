package query

import (
	"bytes"

	"github.com/reflexsearch/reflex/internal/symbols"
)

// spanForOffset converts a byte offset range within content into a
// 1-based line / 0-based column Span, matching symbols.Span's convention
// so literal/regex matches sort alongside symbol matches consistently
// (spec section 4.7).
func spanForOffset(content []byte, start, end int) symbols.Span {
	startLine, startCol := lineCol(content, start)
	endLine, endCol := lineCol(content, end)
	return symbols.Span{StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol}
}

func lineCol(content []byte, offset int) (line, col int) {
	if offset > len(content) {
		offset = len(content)
	}
	line = 1
	lastNL := -1
	for i := 0; i < offset; i++ {
		if content[i] == '\n' {
			line++
			lastNL = i
		}
	}
	return line, offset - lastNL - 1
}

// languageOf converts a files.language column value back to the closed
// enum, a bare cast since symbols.Language is itself a string type.
func languageOf(s string) symbols.Language {
	return symbols.Language(s)
}

// previewForOffset returns the full source line containing the match at
// [start, end), trimmed of its trailing newline.
func previewForOffset(content []byte, start, end int) string {
	lineStart := bytes.LastIndexByte(content[:start], '\n') + 1
	lineEnd := bytes.IndexByte(content[end:], '\n')
	if lineEnd < 0 {
		lineEnd = len(content)
	} else {
		lineEnd += end
	}
	return string(content[lineStart:lineEnd])
}
