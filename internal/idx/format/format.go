// Package format defines the on-disk binary layouts shared by the builder
// and the query engine: docs.bin, lexicon.bin, postings.bin, and the
// intermediate block files produced by a term-table flush. All integers are
// written little-endian; every persistent header carries a 4-byte magic, a
// version, and a 32-byte reserved tail.
package format

const (
	Version = uint32(1)

	ReservedTailSize = 32
)

var (
	MagicDocs  = [4]byte{'D', 'O', 'C', 'S'}
	MagicLex   = [4]byte{'L', 'E', 'X', 'I'}
	MagicPost  = [4]byte{'P', 'O', 'S', 'T'}
	MagicBlock = [4]byte{'B', 'L', 'K', '1'}
)

// DocsHeader is the fixed-size header of docs.bin.
type DocsHeader struct {
	Magic          [4]byte
	Version        uint32
	DocCount       uint32
	StringPoolSize uint32
	Reserved       [ReservedTailSize]byte
}

// DocRec is one fixed-size record in docs.bin's record array, giving the
// (offset, length) of a document's title and url inside the pool that
// follows the record array.
type DocRec struct {
	TitleOff uint64
	TitleLen uint32
	URLOff   uint64
	URLLen   uint32
}

const DocsHeaderSize = 4 + 4 + 4 + 4 + ReservedTailSize
const DocRecSize = 8 + 4 + 8 + 4

// LexHeader is the fixed-size header of lexicon.bin.
type LexHeader struct {
	Magic          [4]byte
	Version        uint32
	TermCount      uint32
	StringPoolSize uint32
	Reserved       [ReservedTailSize]byte
}

// LexRec is one fixed-size record in lexicon.bin's record array. Records
// are sorted strictly ascending by (term bytes, term length). Flags is
// always written 0 by this implementation and reserved for a future
// compression scheme.
type LexRec struct {
	TermOff     uint64
	TermLen     uint16
	Flags       uint16
	DF          uint32
	PostingsOff uint64
	PostingsLen uint32
	Reserved    uint32
}

const LexHeaderSize = 4 + 4 + 4 + 4 + ReservedTailSize
const LexRecSize = 8 + 2 + 2 + 4 + 8 + 4 + 4

// PostHeader is the fixed-size header of postings.bin. The body is a bare
// concatenation of little-endian uint32 doc-ids; a LexRec's
// (PostingsOff, PostingsLen) names a contiguous run measured in doc-ids,
// with PostingsOff measured in bytes from the start of the file.
type PostHeader struct {
	Magic    [4]byte
	Version  uint32
	Reserved [ReservedTailSize]byte
}

const PostHeaderSize = 4 + 4 + ReservedTailSize

// BlockHeader is the fixed-size header of an intermediate block file
// produced by a single term-table flush. The body is TermCount repetitions
// of (uint16 term_len, uint32 df, term_len bytes, df uint32 doc-ids), sorted
// lexicographically by (term bytes, term length).
type BlockHeader struct {
	Magic     [4]byte
	TermCount uint32
}

const BlockHeaderSize = 4 + 4

// TermCmp orders two terms the way every sorted structure in this module
// does: lexicographic byte comparison on the shared prefix, shorter wins
// ties. Matches original_source/indexer.cpp's term_cmp_lex and
// search_cli.cpp's lex_cmp_str exactly.
func TermCmp(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
