// Package docdir accumulates (title, url) records into docs.bin's string
// pool and record array. Ported from original_source/indexer.cpp's
// DocsBuilder.
package docdir

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/corvidx/invidx/internal/idx/format"
)

type rec struct {
	titleOff uint64
	titleLen uint32
	urlOff   uint64
	urlLen   uint32
}

// Builder is an append-only accumulator of document records. AddDoc returns
// the dense zero-based doc-id assigned to each call, in call order.
type Builder struct {
	recs []rec
	pool []byte
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{}
}

// AddDoc appends title then url to the pool and records their offsets,
// returning the pre-increment count as the new document's doc-id.
func (b *Builder) AddDoc(title, url string) uint32 {
	id := uint32(len(b.recs))
	titleOff := uint64(len(b.pool))
	b.pool = append(b.pool, title...)
	urlOff := uint64(len(b.pool))
	b.pool = append(b.pool, url...)
	b.recs = append(b.recs, rec{
		titleOff: titleOff,
		titleLen: uint32(len(title)),
		urlOff:   urlOff,
		urlLen:   uint32(len(url)),
	})
	return id
}

// Len reports the number of documents added so far.
func (b *Builder) Len() int { return len(b.recs) }

// WriteTo writes docs.bin: header, then the fixed record array, then the
// string pool.
func (b *Builder) WriteTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	hdr := format.DocsHeader{
		Magic:          format.MagicDocs,
		Version:        format.Version,
		DocCount:       uint32(len(b.recs)),
		StringPoolSize: uint32(len(b.pool)),
	}
	if err := binary.Write(f, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("writing docs header: %w", err)
	}
	for _, r := range b.recs {
		dr := format.DocRec{TitleOff: r.titleOff, TitleLen: r.titleLen, URLOff: r.urlOff, URLLen: r.urlLen}
		if err := binary.Write(f, binary.LittleEndian, dr); err != nil {
			return fmt.Errorf("writing doc record: %w", err)
		}
	}
	if _, err := f.Write(b.pool); err != nil {
		return fmt.Errorf("writing string pool: %w", err)
	}
	return f.Sync()
}
