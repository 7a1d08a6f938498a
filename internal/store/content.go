// Package store implements the append-only content blob (content.bin)
// that holds every indexed file's raw bytes, boundary-anchored for the
// trigram index (spec section 4.3/5.2).
package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"runtime"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/reflexsearch/reflex/internal/rerrors"
)

// contentMagic/contentVersion identify content.bin.
var contentMagic = [4]byte{'R', 'F', 'X', 'C'}

const contentVersion uint16 = 1

// Boundary is prepended and appended to every stored file, so the
// trigram index also holds grams that touch a file's first and last
// bytes (spec section 4.3). Literal searches shorter than 3 bytes are
// not narrowed through them; they scan every file.
const Boundary = 0x00

// Writer appends file contents to content.bin sequentially during an
// indexing run. Not safe for concurrent use; the indexer serializes
// writes through a single merge goroutine (spec section 5.6).
type Writer struct {
	f      *os.File
	offset uint32
}

// NewWriter creates (or truncates) path and writes the RFXC header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, rerrors.NewIoError(path, err)
	}
	var hdr bytes.Buffer
	hdr.Write(contentMagic[:])
	binary.Write(&hdr, binary.LittleEndian, contentVersion)
	n, err := f.Write(hdr.Bytes())
	if err != nil {
		f.Close()
		return nil, rerrors.NewIoError(path, err)
	}
	return &Writer{f: f, offset: uint32(n)}, nil
}

// Append writes data, boundary-wrapped, as a (u32 length)(bytes) record
// and returns the offset just past the length prefix (where the
// boundary-wrapped bytes start, not the prefix's own position) plus the
// boundary-wrapped length, so a later Read(offset, length) on the mmap
// reproduces exactly what was written here.
func (w *Writer) Append(data []byte) (offset, length uint32, err error) {
	wrapped := make([]byte, 0, len(data)+2)
	wrapped = append(wrapped, Boundary)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, Boundary)

	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], uint32(len(wrapped)))

	offset = w.offset
	n1, err := w.f.Write(lenPrefix[:])
	if err != nil {
		return 0, 0, rerrors.NewIoError(w.f.Name(), err)
	}
	n2, err := w.f.Write(wrapped)
	if err != nil {
		return 0, 0, rerrors.NewIoError(w.f.Name(), err)
	}
	w.offset += uint32(n1 + n2)

	// offset points past the length prefix, at the boundary-wrapped bytes,
	// so Read callers never need to know about the length prefix.
	return offset + uint32(n1), uint32(len(wrapped)), nil
}

// Close fsyncs and closes the file. The indexer renames the temp path
// into place only after Close succeeds.
func (w *Writer) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return rerrors.NewIoError(w.f.Name(), err)
	}
	return w.f.Close()
}

// Store is a read-only memory-mapped view of content.bin, grounded on
// sourcegraph-zoekt's mmapedIndexFile (indexfile.go).
type Store struct {
	name string
	size uint32
	data mmap.MMap
}

// Open memory-maps path read-only and validates its header.
func Open(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rerrors.NotIndexedError{Root: path}
		}
		return nil, rerrors.NewIoError(path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, rerrors.NewIoError(path, err)
	}
	size := fi.Size()

	data, err := mmap.MapRegion(f, bufferSize(size), mmap.RDONLY, 0, 0)
	if err != nil {
		return nil, rerrors.NewIoError(path, err)
	}

	if len(data) < 6 {
		data.Unmap()
		return nil, &rerrors.CorruptStoreError{Store: path, Underlying: fmt.Errorf("file too small")}
	}
	if !bytes.Equal(data[:4], contentMagic[:]) {
		data.Unmap()
		return nil, &rerrors.CorruptStoreError{Store: path, Underlying: fmt.Errorf("bad magic")}
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != contentVersion {
		data.Unmap()
		return nil, &rerrors.SchemaMismatchError{Want: fmt.Sprint(contentVersion), Got: fmt.Sprint(version)}
	}

	return &Store{name: path, size: uint32(size), data: data}, nil
}

// bufferSize rounds up to a page boundary on non-Windows platforms,
// matching zoekt's indexfile.go rationale for avoiding partial-page mmap
// syscalls.
func bufferSize(size int64) int {
	bsize := int(size)
	if runtime.GOOS != "windows" {
		pagesize := os.Getpagesize() - 1
		bsize = (bsize + pagesize) &^ pagesize
	}
	return bsize
}

// Read returns a zero-copy slice of the mmap region at [offset,
// offset+length), as produced by Writer.Append, with the boundary bytes
// stripped.
func (s *Store) Read(offset, length uint32) ([]byte, error) {
	if offset > offset+length || offset+length > uint32(len(s.data)) {
		return nil, &rerrors.CorruptStoreError{Store: s.name, Underlying: fmt.Errorf("out of bounds: off=%d len=%d size=%d", offset, length, len(s.data))}
	}
	region := s.data[offset : offset+length]
	if length < 2 {
		return region, nil
	}
	return region[1 : len(region)-1], nil
}

// ReadRaw is like Read but keeps the boundary bytes, for callers doing
// trigram offset arithmetic that expects them (spec section 4.3).
func (s *Store) ReadRaw(offset, length uint32) ([]byte, error) {
	if offset > offset+length || offset+length > uint32(len(s.data)) {
		return nil, &rerrors.CorruptStoreError{Store: s.name, Underlying: fmt.Errorf("out of bounds: off=%d len=%d size=%d", offset, length, len(s.data))}
	}
	return s.data[offset : offset+length], nil
}

// Close unmaps the store.
func (s *Store) Close() error {
	return s.data.Unmap()
}
