package trigram

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/reflexsearch/reflex/internal/store"
)

// CandidatesForLiteral returns the file-ID candidate set for a literal
// substring query (spec section 4.3):
//
//   - len(literal) >= 3: intersect the posting lists of every trigram
//     window in the literal — a sound narrowing, since every file that
//     contains the literal necessarily contains each of those windows.
//   - len(literal) < 3: no 3-byte window can be formed from the literal
//     alone, and a literal that doesn't touch a file's boundary leaves no
//     trigram trace at all, so narrowing here would risk false negatives.
//     Returns (nil, nil); the caller treats nil as "no narrowing available"
//     and falls back to a full scan with byte-exact verification.
//
// caseInsensitive unions the candidate sets of up to maxPerm case-fold
// permutations of each gram before intersecting across gram positions.
func CandidatesForLiteral(s *Store, literal []byte, caseInsensitive bool, maxPerm int) (*roaring.Bitmap, error) {
	if len(literal) < 3 {
		return nil, nil
	}

	var result *roaring.Bitmap
	for _, g := range gramWindows(literal) {
		bm, err := lookupGram(s, g, caseInsensitive, maxPerm)
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = bm
		} else {
			result.And(bm)
		}
	}
	return result, nil
}

// CandidatesForAnchoredLiteral narrows a 1-2 byte literal that the caller
// knows sits at a file's start (atStart) or end, using the boundary-byte
// trigrams (spec section 4.3). Unlike CandidatesForLiteral, this is sound
// because the anchor means the literal only ever needs checking at that
// one position. The query engine's literal and regex paths do not call it.
func CandidatesForAnchoredLiteral(s *Store, literal []byte, atStart bool, caseInsensitive bool, maxPerm int) (*roaring.Bitmap, error) {
	var g Gram
	switch len(literal) {
	case 1:
		// The byte after (or before) the literal is unknown, so union every
		// boundary trigram that has the literal next to the boundary.
		union := roaring.New()
		for x := 0; x < 256; x++ {
			if atStart {
				g = Gram{store.Boundary, literal[0], byte(x)}
			} else {
				g = Gram{byte(x), literal[0], store.Boundary}
			}
			bm, err := lookupGram(s, g, caseInsensitive, maxPerm)
			if err != nil {
				return nil, err
			}
			union.Or(bm)
		}
		return union, nil
	case 2:
		if atStart {
			g = Gram{store.Boundary, literal[0], literal[1]}
		} else {
			g = Gram{literal[0], literal[1], store.Boundary}
		}
	default:
		return nil, nil
	}
	return lookupGram(s, g, caseInsensitive, maxPerm)
}

func lookupGram(s *Store, g Gram, caseInsensitive bool, maxPerm int) (*roaring.Bitmap, error) {
	if !caseInsensitive {
		return s.Candidates(g)
	}
	union := roaring.New()
	for _, v := range FoldCase(g, maxPerm) {
		bm, err := s.Candidates(v)
		if err != nil {
			return nil, err
		}
		union.Or(bm)
	}
	return union, nil
}

// gramWindows returns every 3-byte sliding window of literal.
func gramWindows(literal []byte) []Gram {
	grams := make([]Gram, 0, len(literal)-2)
	for i := 0; i+3 <= len(literal); i++ {
		grams = append(grams, Gram{literal[i], literal[i+1], literal[i+2]})
	}
	return grams
}

// Intersect is a thin wrapper over roaring.Bitmap.And for call sites that
// prefer a free function (query engine strategy dispatch, spec section
// 5.7).
func Intersect(a, b *roaring.Bitmap) *roaring.Bitmap {
	return roaring.And(a, b)
}

// Union is a thin wrapper over roaring.Bitmap.Or.
func Union(a, b *roaring.Bitmap) *roaring.Bitmap {
	return roaring.Or(a, b)
}
