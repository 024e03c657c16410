package block

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/corvidx/invidx/internal/idx/format"
)

// Reader streams a block file's (term, doc-ids) entries in the order they
// were written (already lexicographically sorted by the writer). It owns
// one term's worth of memory at a time, matching the reference BlockReader.
//
// A read failure partway through the term-count the header promised is a
// truncated or corrupted block, not a normal end-of-file: the reference
// BlockReader aborts the whole process on it rather than treating it as
// exhaustion, so this Reader stores the failure on err instead of silently
// clearing valid. Callers must check Err() after Has() becomes false.
type Reader struct {
	f         *os.File
	r         *bufio.Reader
	remaining uint32

	term  []byte
	docs  []uint32
	valid bool
	err   error
}

// Open opens path, validates its BLK1 header, and preloads the first term.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening block %s: %w", path, err)
	}
	r := &Reader{f: f, r: bufio.NewReaderSize(f, 64*1024)}

	var hdr format.BlockHeader
	if err := binary.Read(r.r, binary.LittleEndian, &hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading block header %s: %w", path, err)
	}
	if hdr.Magic != format.MagicBlock {
		f.Close()
		return nil, fmt.Errorf("block %s: bad magic", path)
	}
	r.remaining = hdr.TermCount
	r.next()
	if r.err != nil {
		f.Close()
		return nil, fmt.Errorf("reading block %s: %w", path, r.err)
	}
	return r, nil
}

// Has reports whether a current term is loaded.
func (r *Reader) Has() bool { return r.valid }

// Term returns the current term's bytes.
func (r *Reader) Term() []byte { return r.term }

// Docs returns the current term's doc-id list.
func (r *Reader) Docs() []uint32 { return r.docs }

// Err returns the error that ended iteration early, or nil if the block
// was consumed to its declared term count.
func (r *Reader) Err() error { return r.err }

// Next advances to the following term.
func (r *Reader) Next() { r.next() }

func (r *Reader) next() {
	r.term = nil
	r.docs = nil
	r.valid = false
	if r.remaining == 0 {
		return
	}
	var termLen uint16
	if err := binary.Read(r.r, binary.LittleEndian, &termLen); err != nil {
		r.err = fmt.Errorf("reading term length: %w", err)
		return
	}
	var df uint32
	if err := binary.Read(r.r, binary.LittleEndian, &df); err != nil {
		r.err = fmt.Errorf("reading doc frequency: %w", err)
		return
	}
	term := make([]byte, termLen)
	if _, err := io.ReadFull(r.r, term); err != nil {
		r.err = fmt.Errorf("reading term bytes: %w", err)
		return
	}
	docs := make([]uint32, df)
	if err := binary.Read(r.r, binary.LittleEndian, docs); err != nil {
		r.err = fmt.Errorf("reading postings: %w", err)
		return
	}
	r.term = term
	r.docs = docs
	r.valid = true
	r.remaining--
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}
