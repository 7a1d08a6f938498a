package query

import (
	"bytes"

	"github.com/reflexsearch/reflex/internal/rerrors"
	"github.com/reflexsearch/reflex/internal/trigram"
)

// searchLiteral implements spec.md section 4.7 point 3: narrow via the
// trigram index when the literal is long enough to form a gram window,
// otherwise fall back to a full scan, then verify every candidate
// byte-exact against the mmapped content store before emitting a result.
func (e *Engine) searchLiteral(needle string, filter Filter) ([]SearchResult, error) {
	if needle == "" {
		return nil, &rerrors.MalformedPatternError{Pattern: needle, Column: 0, Reason: "empty literal"}
	}
	needleBytes := []byte(needle)

	candidates, err := trigram.CandidatesForLiteral(e.trigrams, needleBytes, filter.CaseInsensitive, e.maxPerm)
	if err != nil {
		return nil, err
	}

	var fileIDs []int64
	if candidates != nil {
		for _, id := range candidates.ToArray() {
			fileIDs = append(fileIDs, int64(id))
		}
	} else {
		records, err := e.cache.ListFiles(e.branch)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			fileIDs = append(fileIDs, r.ID)
		}
	}

	var results []SearchResult
	for _, id := range fileIDs {
		rec, err := e.cache.GetFileByID(id)
		if err != nil {
			return nil, err
		}
		if rec == nil || rec.Branch != e.branch {
			continue
		}
		content, err := e.content.Read(rec.ContentOffset, rec.ContentLength)
		if err != nil {
			return nil, err
		}
		for _, off := range findAllOccurrences(content, needleBytes, filter.CaseInsensitive) {
			end := off + len(needleBytes)
			results = append(results, SearchResult{
				FileID:   rec.ID,
				Path:     rec.Path,
				Language: languageOf(rec.Language),
				Span:     spanForOffset(content, off, end),
				Preview:  previewForOffset(content, off, end),
			})
		}
	}
	return results, nil
}

// findAllOccurrences returns every non-overlapping start offset of
// needle in content.
func findAllOccurrences(content, needle []byte, caseInsensitive bool) []int {
	if len(needle) == 0 {
		return nil
	}
	var offsets []int
	pos := 0
	for pos <= len(content)-len(needle) {
		idx := indexAt(content[pos:], needle, caseInsensitive)
		if idx < 0 {
			break
		}
		offsets = append(offsets, pos+idx)
		pos += idx + len(needle)
	}
	return offsets
}

func indexAt(haystack, needle []byte, caseInsensitive bool) int {
	if !caseInsensitive {
		return bytes.Index(haystack, needle)
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if bytes.EqualFold(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
