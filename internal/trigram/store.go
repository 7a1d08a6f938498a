package trigram

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"runtime"
	"sort"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/RoaringBitmap/roaring"

	"github.com/reflexsearch/reflex/internal/rerrors"
)

const dirEntrySize = 11 // 3 byte gram + u32 offset + u32 length

// Store is a read-only memory-mapped view of trigrams.bin.
type Store struct {
	name      string
	data      mmap.MMap
	dirStart  int
	dirCount  int
	postStart int
}

// Open memory-maps path and validates its header.
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

	size := int(fi.Size())
	bsize := size
	if runtime.GOOS != "windows" {
		pagesize := os.Getpagesize() - 1
		bsize = (bsize + pagesize) &^ pagesize
	}
	data, err := mmap.MapRegion(f, bsize, mmap.RDONLY, 0, 0)
	if err != nil {
		return nil, rerrors.NewIoError(path, err)
	}

	if len(data) < 10 {
		data.Unmap()
		return nil, &rerrors.CorruptStoreError{Store: path, Underlying: fmt.Errorf("file too small")}
	}
	if !bytes.Equal(data[:4], trigramMagic[:]) {
		data.Unmap()
		return nil, &rerrors.CorruptStoreError{Store: path, Underlying: fmt.Errorf("bad magic")}
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != trigramVersion {
		data.Unmap()
		return nil, &rerrors.SchemaMismatchError{Want: fmt.Sprint(trigramVersion), Got: fmt.Sprint(version)}
	}
	count := int(binary.LittleEndian.Uint32(data[6:10]))

	s := &Store{
		name:      path,
		data:      data,
		dirStart:  10,
		dirCount:  count,
		postStart: 10 + count*dirEntrySize,
	}
	if s.postStart > len(data) {
		data.Unmap()
		return nil, &rerrors.CorruptStoreError{Store: path, Underlying: fmt.Errorf("directory overruns file")}
	}
	return s, nil
}

func (s *Store) entryGram(i int) Gram {
	off := s.dirStart + i*dirEntrySize
	return Gram{s.data[off], s.data[off+1], s.data[off+2]}
}

func (s *Store) entryOffsetLen(i int) (uint32, uint32) {
	off := s.dirStart + i*dirEntrySize
	return binary.LittleEndian.Uint32(s.data[off+3 : off+7]), binary.LittleEndian.Uint32(s.data[off+7 : off+11])
}

// Candidates returns the posting list for gram, or an empty (non-nil)
// bitmap if the gram was never indexed.
func (s *Store) Candidates(g Gram) (*roaring.Bitmap, error) {
	i := sort.Search(s.dirCount, func(i int) bool {
		return !s.entryGram(i).Less(g)
	})
	if i >= s.dirCount || s.entryGram(i) != g {
		return roaring.New(), nil
	}

	offset, length := s.entryOffsetLen(i)
	start := s.postStart + int(offset)
	end := start + int(length)
	if start < 0 || end > len(s.data) || start > end {
		return nil, &rerrors.CorruptStoreError{Store: s.name, Underlying: fmt.Errorf("posting range out of bounds")}
	}
	blob := s.data[start:end]

	bm := roaring.New()
	var prev uint64
	for len(blob) > 0 {
		delta, n := binary.Uvarint(blob)
		if n <= 0 {
			return nil, &rerrors.CorruptStoreError{Store: s.name, Underlying: fmt.Errorf("malformed posting varint")}
		}
		blob = blob[n:]
		prev += delta
		bm.Add(uint32(prev))
	}
	return bm, nil
}

// Close unmaps the store.
func (s *Store) Close() error {
	return s.data.Unmap()
}
