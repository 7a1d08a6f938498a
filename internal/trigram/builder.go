package trigram

import (
	"bytes"
	"encoding/binary"
	"os"
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/reflexsearch/reflex/internal/rerrors"
)

var trigramMagic = [4]byte{'R', 'F', 'X', 'T'}

const trigramVersion uint16 = 1

// Builder accumulates postings in memory during an indexing run. The
// indexer fills a single Builder inside its writer-lock merge step and
// flushes it with WriteTo (spec section 5.6).
type Builder struct {
	postings map[Gram]*roaring.Bitmap
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{postings: make(map[Gram]*roaring.Bitmap)}
}

// Add records that fileID's content contains gram.
func (b *Builder) Add(g Gram, fileID uint32) {
	bm, ok := b.postings[g]
	if !ok {
		bm = roaring.New()
		b.postings[g] = bm
	}
	bm.Add(fileID)
}

// AddFile extracts every trigram from content (which the caller has
// already boundary-wrapped) and records fileID against each.
func (b *Builder) AddFile(fileID uint32, content []byte) {
	Extract(content, func(g Gram) {
		b.Add(g, fileID)
	})
}

// Merge unions other's postings into b, consuming other's bitmaps
// directly via Or (no deep copy).
func (b *Builder) Merge(other *Builder) {
	for g, bm := range other.postings {
		if existing, ok := b.postings[g]; ok {
			existing.Or(bm)
		} else {
			b.postings[g] = bm
		}
	}
}

// Len returns the number of distinct grams accumulated so far, the basis
// for the indexer's reported trigram-count statistic.
func (b *Builder) Len() int {
	return len(b.postings)
}

// Remove drops fileID from every posting list it appears in. The indexer
// does not call it: each run rebuilds the postings from scratch.
func (b *Builder) Remove(fileID uint32) {
	for _, bm := range b.postings {
		bm.Remove(fileID)
	}
}

// WriteTo serializes the builder to path as trigrams.bin: magic + version
// + gram count + sorted directory (gram, postingOffset, postingLen) +
// posting blob (delta-varint ascending file IDs), grounded on the
// classic codesearch delta-varint encoding (index/delta.go) and zoekt's
// two-level directory split (ngramoffset.go), simplified here to a flat
// sorted array since a 3-byte gram space is small enough for binary
// search alone to be fast.
func (b *Builder) WriteTo(path string) error {
	grams := make([]Gram, 0, len(b.postings))
	for g := range b.postings {
		grams = append(grams, g)
	}
	sort.Slice(grams, func(i, j int) bool { return grams[i].Less(grams[j]) })

	var postingBlob bytes.Buffer
	type dirEntry struct {
		gram   Gram
		offset uint32
		length uint32
	}
	dir := make([]dirEntry, 0, len(grams))

	varintBuf := make([]byte, binary.MaxVarintLen64)
	for _, g := range grams {
		bm := b.postings[g]
		start := postingBlob.Len()
		var prev uint64
		for _, id32 := range bm.ToArray() {
			id := uint64(id32)
			delta := id - prev
			prev = id
			n := binary.PutUvarint(varintBuf, delta)
			postingBlob.Write(varintBuf[:n])
		}
		dir = append(dir, dirEntry{gram: g, offset: uint32(start), length: uint32(postingBlob.Len() - start)})
	}

	f, err := os.Create(path)
	if err != nil {
		return rerrors.NewIoError(path, err)
	}
	defer f.Close()

	var hdr bytes.Buffer
	hdr.Write(trigramMagic[:])
	binary.Write(&hdr, binary.LittleEndian, trigramVersion)
	binary.Write(&hdr, binary.LittleEndian, uint32(len(dir)))
	if _, err := f.Write(hdr.Bytes()); err != nil {
		return rerrors.NewIoError(path, err)
	}

	for _, e := range dir {
		var row [11]byte
		copy(row[0:3], e.gram[:])
		binary.LittleEndian.PutUint32(row[3:7], e.offset)
		binary.LittleEndian.PutUint32(row[7:11], e.length)
		if _, err := f.Write(row[:]); err != nil {
			return rerrors.NewIoError(path, err)
		}
	}

	if _, err := f.Write(postingBlob.Bytes()); err != nil {
		return rerrors.NewIoError(path, err)
	}

	if err := f.Sync(); err != nil {
		return rerrors.NewIoError(path, err)
	}
	return nil
}
