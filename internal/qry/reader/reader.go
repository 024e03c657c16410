// Package reader loads a completed index (docs.bin, lexicon.bin,
// postings.bin) wholly into memory and exposes lookups over it. Ported
// from original_source/search_cli.cpp's Index struct: read_whole_file,
// load, find_term, postings_ptr, doc_title, doc_url.
package reader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/corvidx/invidx/internal/idx/format"
)

// Index is an in-memory, read-only view of one completed index directory.
type Index struct {
	docCount uint32
	docs     []format.DocRec
	docPool  []byte

	termCount uint32
	lex       []format.LexRec
	termPool  []byte

	postings []byte
}

// Load reads docs.bin, lexicon.bin, and postings.bin from dir and
// validates their headers. The returned Index owns independent copies of
// each file's bytes; the source files may be modified or removed
// afterward.
func Load(dir string) (*Index, error) {
	docsRaw, err := os.ReadFile(filepath.Join(dir, "docs.bin"))
	if err != nil {
		return nil, fmt.Errorf("reading docs.bin: %w", err)
	}
	lexRaw, err := os.ReadFile(filepath.Join(dir, "lexicon.bin"))
	if err != nil {
		return nil, fmt.Errorf("reading lexicon.bin: %w", err)
	}
	postRaw, err := os.ReadFile(filepath.Join(dir, "postings.bin"))
	if err != nil {
		return nil, fmt.Errorf("reading postings.bin: %w", err)
	}

	idx := &Index{}
	if err := idx.loadDocs(docsRaw); err != nil {
		return nil, err
	}
	if err := idx.loadLex(lexRaw); err != nil {
		return nil, err
	}
	if err := idx.loadPost(postRaw); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) loadDocs(raw []byte) error {
	if len(raw) < format.DocsHeaderSize {
		return fmt.Errorf("docs.bin: truncated header")
	}
	var hdr format.DocsHeader
	if err := binary.Read(bytes.NewReader(raw[:format.DocsHeaderSize]), binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("docs.bin: decoding header: %w", err)
	}
	if hdr.Magic != format.MagicDocs || hdr.Version != format.Version {
		return fmt.Errorf("docs.bin: bad magic or version")
	}

	recsOff := format.DocsHeaderSize
	recsEnd := recsOff + int(hdr.DocCount)*format.DocRecSize
	if recsEnd > len(raw) {
		return fmt.Errorf("docs.bin: record array truncated")
	}
	recs := make([]format.DocRec, hdr.DocCount)
	if err := binary.Read(bytes.NewReader(raw[recsOff:recsEnd]), binary.LittleEndian, recs); err != nil {
		return fmt.Errorf("docs.bin: decoding records: %w", err)
	}

	idx.docCount = hdr.DocCount
	idx.docs = recs
	idx.docPool = raw[recsEnd:]
	return nil
}

func (idx *Index) loadLex(raw []byte) error {
	if len(raw) < format.LexHeaderSize {
		return fmt.Errorf("lexicon.bin: truncated header")
	}
	var hdr format.LexHeader
	if err := binary.Read(bytes.NewReader(raw[:format.LexHeaderSize]), binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("lexicon.bin: decoding header: %w", err)
	}
	if hdr.Magic != format.MagicLex || hdr.Version != format.Version {
		return fmt.Errorf("lexicon.bin: bad magic or version")
	}

	recsOff := format.LexHeaderSize
	recsEnd := recsOff + int(hdr.TermCount)*format.LexRecSize
	if recsEnd > len(raw) {
		return fmt.Errorf("lexicon.bin: record array truncated")
	}
	recs := make([]format.LexRec, hdr.TermCount)
	if err := binary.Read(bytes.NewReader(raw[recsOff:recsEnd]), binary.LittleEndian, recs); err != nil {
		return fmt.Errorf("lexicon.bin: decoding records: %w", err)
	}

	idx.termCount = hdr.TermCount
	idx.lex = recs
	idx.termPool = raw[recsEnd:]
	return nil
}

func (idx *Index) loadPost(raw []byte) error {
	if len(raw) < format.PostHeaderSize {
		return fmt.Errorf("postings.bin: truncated header")
	}
	var hdr format.PostHeader
	if err := binary.Read(bytes.NewReader(raw[:format.PostHeaderSize]), binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("postings.bin: decoding header: %w", err)
	}
	if hdr.Magic != format.MagicPost || hdr.Version != format.Version {
		return fmt.Errorf("postings.bin: bad magic or version")
	}
	idx.postings = raw
	return nil
}

// DocCount returns the number of documents in the index.
func (idx *Index) DocCount() uint32 { return idx.docCount }

// TermCount returns the number of distinct terms in the index.
func (idx *Index) TermCount() uint32 { return idx.termCount }

// DocTitle returns the title of document id. id must be < DocCount().
func (idx *Index) DocTitle(id uint32) string {
	r := idx.docs[id]
	return string(idx.docPool[r.TitleOff : r.TitleOff+uint64(r.TitleLen)])
}

// DocURL returns the URL of document id. id must be < DocCount().
func (idx *Index) DocURL(id uint32) string {
	r := idx.docs[id]
	return string(idx.docPool[r.URLOff : r.URLOff+uint64(r.URLLen)])
}

// FindTerm binary searches the lexicon for term, matching
// original_source/search_cli.cpp's Index::find_term.
func (idx *Index) FindTerm(term []byte) (format.LexRec, bool) {
	i := sort.Search(len(idx.lex), func(i int) bool {
		r := idx.lex[i]
		return format.TermCmp(idx.termPool[r.TermOff:r.TermOff+uint64(r.TermLen)], term) >= 0
	})
	if i >= len(idx.lex) {
		return format.LexRec{}, false
	}
	r := idx.lex[i]
	if !bytes.Equal(idx.termPool[r.TermOff:r.TermOff+uint64(r.TermLen)], term) {
		return format.LexRec{}, false
	}
	return r, true
}

// Postings returns the doc-id run named by rec, or nil if the run's byte
// range would escape the postings file (a corrupt or truncated index).
// Matches original_source/search_cli.cpp's Index::postings_ptr.
func (idx *Index) Postings(rec format.LexRec) []uint32 {
	need := rec.PostingsOff + uint64(rec.PostingsLen)*4
	if need > uint64(len(idx.postings)) {
		return nil
	}
	out := make([]uint32, rec.PostingsLen)
	if err := binary.Read(bytes.NewReader(idx.postings[rec.PostingsOff:need]), binary.LittleEndian, out); err != nil {
		return nil
	}
	return out
}
