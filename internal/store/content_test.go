package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.bin")

	w, err := NewWriter(path)
	require.NoError(t, err)

	off1, len1, err := w.Append([]byte("package main\n"))
	require.NoError(t, err)
	off2, len2, err := w.Append([]byte("func main() {}\n"))
	require.NoError(t, err)

	require.NoError(t, w.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	got1, err := s.Read(off1, len1)
	require.NoError(t, err)
	require.Equal(t, "package main\n", string(got1))

	got2, err := s.Read(off2, len2)
	require.NoError(t, err)
	require.Equal(t, "func main() {}\n", string(got2))

	raw1, err := s.ReadRaw(off1, len1)
	require.NoError(t, err)
	require.Equal(t, byte(Boundary), raw1[0])
	require.Equal(t, byte(Boundary), raw1[len(raw1)-1])
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}

func TestOpenBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, []byte("XXXX\x01\x00"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
}
