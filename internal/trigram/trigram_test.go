package trigram

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderWriteAndStoreRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.AddFile(1, []byte{0, 'h', 'e', 'l', 'l', 'o', 0})
	b.AddFile(2, []byte{0, 'w', 'o', 'r', 'l', 'd', 0})
	b.AddFile(3, []byte{0, 'h', 'e', 'l', 'p', 0})

	path := filepath.Join(t.TempDir(), "trigrams.bin")
	require.NoError(t, b.WriteTo(path))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	bm, err := s.Candidates(Gram{'h', 'e', 'l'})
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{1, 3}, bm.ToArray())

	bm, err = s.Candidates(Gram{'w', 'o', 'r'})
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{2}, bm.ToArray())

	bm, err = s.Candidates(Gram{'z', 'z', 'z'})
	require.NoError(t, err)
	require.Empty(t, bm.ToArray())
}

func TestCandidatesForLiteralIntersectsWindows(t *testing.T) {
	b := NewBuilder()
	b.AddFile(1, []byte{0, 'h', 'e', 'l', 'l', 'o', 0})
	b.AddFile(2, []byte{0, 'h', 'e', 'x', 'l', 'o', 0})

	path := filepath.Join(t.TempDir(), "trigrams.bin")
	require.NoError(t, b.WriteTo(path))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	bm, err := CandidatesForLiteral(s, []byte("hello"), false, 8)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint32{1}, bm.ToArray())
}

func TestCandidatesForLiteralShortReturnsNil(t *testing.T) {
	b := NewBuilder()
	b.AddFile(1, []byte{0, 'h', 'i', 0})
	path := filepath.Join(t.TempDir(), "trigrams.bin")
	require.NoError(t, b.WriteTo(path))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	bm, err := CandidatesForLiteral(s, []byte("h"), false, 8)
	require.NoError(t, err)
	require.Nil(t, bm)
}

func TestFoldCaseCapsAtMaxPerm(t *testing.T) {
	variants := FoldCase(Gram{'a', 'b', 'c'}, 8)
	require.LessOrEqual(t, len(variants), 8)
	require.Contains(t, variants, Gram{'a', 'b', 'c'})
}
