package symbols

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/reflexsearch/reflex/internal/rerrors"
)

// symbolsMagic/symbolsVersion identify symbols.bin (spec section 5.5).
// Version bumps whenever the on-disk block layout changes incompatibly;
// readers that see a mismatched version return a SchemaMismatchError
// rather than attempt to interpret bytes laid out differently.
var symbolsMagic = [4]byte{'R', 'F', 'X', 'S'}

const symbolsVersion uint16 = 1

// Block is one file's worth of extracted symbols plus its byte range
// within symbols.bin, recorded in meta.db as files.symbol_offset /
// files.symbol_length so a reader can seek straight to it without
// scanning the whole file.
type Block struct {
	Offset int64
	Length int64
}

// Writer appends per-file symbol blocks to symbols.bin sequentially
// during an indexing run, mirroring internal/store's append-only content
// writer (same write-temp-then-rename durability story at the indexer
// level, not repeated here: Writer itself just appends and lets the
// caller decide when to fsync/rename the whole file).
type Writer struct {
	f      *os.File
	offset int64
}

// NewWriter creates (or truncates) path and writes the RFXS header.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, rerrors.NewIoError(path, err)
	}
	var hdr bytes.Buffer
	hdr.Write(symbolsMagic[:])
	binary.Write(&hdr, binary.LittleEndian, symbolsVersion)
	n, err := f.Write(hdr.Bytes())
	if err != nil {
		f.Close()
		return nil, rerrors.NewIoError(path, err)
	}
	return &Writer{f: f, offset: int64(n)}, nil
}

// Append gob-encodes syms, length-prefixes the encoding, and writes it at
// the writer's current offset, returning the Block describing where it
// landed.
func (w *Writer) Append(syms []Symbol) (Block, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(syms); err != nil {
		return Block{}, errors.Wrap(err, "encode symbol block")
	}

	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], uint32(buf.Len()))

	start := w.offset
	n1, err := w.f.Write(lenPrefix[:])
	if err != nil {
		return Block{}, rerrors.NewIoError(w.f.Name(), err)
	}
	n2, err := w.f.Write(buf.Bytes())
	if err != nil {
		return Block{}, rerrors.NewIoError(w.f.Name(), err)
	}
	w.offset += int64(n1 + n2)

	return Block{Offset: start, Length: int64(n1 + n2)}, nil
}

// Close fsyncs and closes the underlying file. Indexer callers rename the
// temp path into place only after Close succeeds (spec section 6).
func (w *Writer) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return rerrors.NewIoError(w.f.Name(), err)
	}
	return w.f.Close()
}

// Reader provides random-access reads of symbols.bin blocks, given the
// offsets meta.db recorded at write time.
type Reader struct {
	f *os.File
}

// OpenReader validates the RFXS header and returns a Reader.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &rerrors.NotIndexedError{Root: path}
		}
		return nil, rerrors.NewIoError(path, err)
	}

	var hdr [6]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, &rerrors.CorruptStoreError{Store: path, Underlying: err}
	}
	if !bytes.Equal(hdr[:4], symbolsMagic[:]) {
		f.Close()
		return nil, &rerrors.CorruptStoreError{Store: path, Underlying: errors.New("bad magic")}
	}
	version := binary.LittleEndian.Uint16(hdr[4:6])
	if version != symbolsVersion {
		f.Close()
		return nil, &rerrors.SchemaMismatchError{Want: fmt.Sprint(symbolsVersion), Got: fmt.Sprint(version)}
	}
	return &Reader{f: f}, nil
}

// ReadBlock decodes the symbol list stored at b.
func (r *Reader) ReadBlock(b Block) ([]Symbol, error) {
	var lenPrefix [4]byte
	if _, err := r.f.ReadAt(lenPrefix[:], b.Offset); err != nil {
		return nil, rerrors.NewIoError(r.f.Name(), err)
	}
	n := binary.LittleEndian.Uint32(lenPrefix[:])
	body := make([]byte, n)
	if _, err := r.f.ReadAt(body, b.Offset+4); err != nil {
		return nil, rerrors.NewIoError(r.f.Name(), err)
	}

	var syms []Symbol
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&syms); err != nil {
		return nil, &rerrors.CorruptStoreError{Store: r.f.Name(), Underlying: err}
	}
	return syms, nil
}

func (r *Reader) Close() error {
	return r.f.Close()
}
