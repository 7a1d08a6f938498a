package query

import (
	"regexp"
	"regexp/syntax"

	"github.com/reflexsearch/reflex/internal/rerrors"
	"github.com/reflexsearch/reflex/internal/trigram"
)

// searchRegex implements spec.md section 4.7 point 2: extract a sound
// required literal from the pattern to narrow via the trigram index when
// possible, then verify every candidate with the real compiled regexp.
//
// The required-literal extraction is a conservative simplification of
// zoekt's query.RegexpToQuery (query/regexp.go), which rewrites a regexp
// into a boolean Q/And/Or query tree so it can narrow across alternation
// branches too. Without that query algebra here, this walk only collects
// literal runs that are mandatory in every match — i.e. reachable through
// concatenation, capture groups, and one-or-more repetition — and treats
// alternation (OpAlternate) and optional/zero-repeat constructs as
// contributing no literal at all, since a literal appearing in only one
// branch of an alternation isn't guaranteed to appear in every match.
// This never narrows unsoundly; it just narrows less aggressively than a
// full query algebra would.
func (e *Engine) searchRegex(pattern string, filter Filter) ([]SearchResult, error) {
	compilePattern := pattern
	if filter.CaseInsensitive {
		compilePattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(compilePattern)
	if err != nil {
		return nil, &rerrors.MalformedPatternError{Pattern: pattern, Column: 0, Reason: err.Error()}
	}

	literal := requiredLiteral(pattern)

	var fileIDs []int64
	narrowed := false
	if len(literal) >= 3 {
		candidates, err := trigram.CandidatesForLiteral(e.trigrams, []byte(literal), filter.CaseInsensitive, e.maxPerm)
		if err != nil {
			return nil, err
		}
		if candidates != nil {
			narrowed = true
			for _, id := range candidates.ToArray() {
				fileIDs = append(fileIDs, int64(id))
			}
		}
	}
	if !narrowed {
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
		for _, loc := range re.FindAllIndex(content, -1) {
			results = append(results, SearchResult{
				FileID:   rec.ID,
				Path:     rec.Path,
				Language: languageOf(rec.Language),
				Span:     spanForOffset(content, loc[0], loc[1]),
				Preview:  previewForOffset(content, loc[0], loc[1]),
			})
		}
	}
	return results, nil
}

// requiredLiteral returns the longest literal byte run guaranteed to
// appear in every match of pattern, or "" if none can be proven
// mandatory. Used only to narrow the trigram candidate set; the
// compiled regexp is always the final arbiter of a match.
func requiredLiteral(pattern string) string {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return ""
	}
	re = re.Simplify()

	best := ""
	for _, lit := range mandatoryLiterals(re) {
		if len(lit) > len(best) {
			best = lit
		}
	}
	return best
}

// mandatoryLiterals recursively collects literal runs that must appear
// in any string re matches, per the sound-narrowing rule described on
// searchRegex.
func mandatoryLiterals(re *syntax.Regexp) []string {
	switch re.Op {
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return nil
		}
		return []string{string(re.Rune)}
	case syntax.OpCapture:
		if len(re.Sub) == 1 {
			return mandatoryLiterals(re.Sub[0])
		}
	case syntax.OpPlus:
		if len(re.Sub) == 1 {
			return mandatoryLiterals(re.Sub[0])
		}
	case syntax.OpRepeat:
		if re.Min >= 1 && len(re.Sub) == 1 {
			return mandatoryLiterals(re.Sub[0])
		}
	case syntax.OpConcat:
		var out []string
		for _, sub := range re.Sub {
			out = append(out, mandatoryLiterals(sub)...)
		}
		return out
	}
	return nil
}
