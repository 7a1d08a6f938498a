// Package trigram implements the inverted trigram index (trigrams.bin):
// byte ngram to sorted file-ID posting list, used to cheaply narrow a
// literal or regex search to a small candidate set before byte-exact
// verification (spec section 4.3/5.3).
//
// Extraction is a direct port of the sliding-window approach in
// google-codesearch's index.IndexWriter.Add: a 3-byte window slides over
// the content, one trigram emitted per position.
package trigram

// Gram is a 3-byte substring of indexed content.
type Gram [3]byte

// Less orders grams byte-lexicographically, matching the sort order the
// on-disk directory is written in.
func (g Gram) Less(o Gram) bool {
	return g[0] < o[0] || (g[0] == o[0] && (g[1] < o[1] || (g[1] == o[1] && g[2] < o[2])))
}

func (g Gram) String() string {
	return string(g[:])
}

// Extract calls fn once per trigram position in content, left to right.
// Callers that need per-file boundary anchoring (spec section 4.3) pass
// content already wrapped with store.Boundary bytes, since content.bin
// stores it that way and trigram extraction runs over the exact bytes
// that will later be verified byte-exact.
func Extract(content []byte, fn func(Gram)) {
	if len(content) < 3 {
		return
	}
	for i := 0; i+3 <= len(content); i++ {
		fn(Gram{content[i], content[i+1], content[i+2]})
	}
}

// FoldCase returns the case-insensitive variants of a gram worth
// searching, capped at maxPerm total permutations (including g itself),
// matching spec section 4.3's "union of at most 8 permutations" rule for
// case-insensitive short-literal queries. Bytes with no alphabetic case
// contribute no extra variant.
func FoldCase(g Gram, maxPerm int) []Gram {
	variants := []Gram{g}
	for pos := 0; pos < 3; pos++ {
		c := g[pos]
		lower, upper := asciiCaseToggle(c)
		if lower == upper {
			continue
		}
		next := make([]Gram, 0, len(variants)*2)
		for _, v := range variants {
			next = append(next, v)
			if len(next) >= maxPerm {
				break
			}
			flipped := v
			if flipped[pos] == lower {
				flipped[pos] = upper
			} else {
				flipped[pos] = lower
			}
			next = append(next, flipped)
			if len(next) >= maxPerm {
				break
			}
		}
		variants = next
		if len(variants) >= maxPerm {
			break
		}
	}
	if len(variants) > maxPerm {
		variants = variants[:maxPerm]
	}
	return variants
}

// asciiCaseToggle returns (lower, upper) for an ASCII letter byte, or
// (c, c) if c isn't an ASCII letter.
func asciiCaseToggle(c byte) (lower, upper byte) {
	switch {
	case c >= 'a' && c <= 'z':
		return c, c - ('a' - 'A')
	case c >= 'A' && c <= 'Z':
		return c + ('a' - 'A'), c
	default:
		return c, c
	}
}
