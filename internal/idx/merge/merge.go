// Package merge implements the external k-way merge that combines every
// block file into the final lexicon.bin/postings.bin pair. Ported from
// original_source/indexer.cpp's merge_blocks_to_index, merge_union_u32, and
// lex_cmp_str.
package merge

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/corvidx/invidx/internal/idx/block"
	"github.com/corvidx/invidx/internal/idx/format"
)

type lexEntry struct {
	term        []byte
	postingsOff uint64
	postingsLen uint32
}

// Stats summarizes one merge run, used for logging and metrics.
type Stats struct {
	BlocksMerged int
	TermCount    int
	PostingsLen  int64
}

// Run opens every *.blk file in blocksDir, k-way merges them by
// lexicographic term order (ties broken by reader index — irrelevant for
// correctness since matching terms are unioned together, not chosen
// between), and writes outLex and outPost.
func Run(blocksDir, outLex, outPost string) (Stats, error) {
	names, err := blockFileNames(blocksDir)
	if err != nil {
		return Stats{}, err
	}

	readers := make([]*block.Reader, 0, len(names))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()
	for _, name := range names {
		r, err := block.Open(filepath.Join(blocksDir, name))
		if err != nil {
			return Stats{}, err
		}
		readers = append(readers, r)
	}

	postFile, err := os.Create(outPost)
	if err != nil {
		return Stats{}, fmt.Errorf("creating %s: %w", outPost, err)
	}
	defer postFile.Close()

	postHdr := format.PostHeader{Magic: format.MagicPost, Version: format.Version}
	if err := binary.Write(postFile, binary.LittleEndian, postHdr); err != nil {
		return Stats{}, fmt.Errorf("writing postings header: %w", err)
	}
	cursor := int64(format.PostHeaderSize)

	var lex []lexEntry
	var totalPostings int64

	for {
		minIdx := -1
		for i, r := range readers {
			if !r.Has() {
				continue
			}
			if minIdx < 0 || format.TermCmp(r.Term(), readers[minIdx].Term()) < 0 {
				minIdx = i
			}
		}
		if minIdx < 0 {
			break
		}

		chosenTerm := append([]byte(nil), readers[minIdx].Term()...)
		merged := append([]uint32(nil), readers[minIdx].Docs()...)
		readers[minIdx].Next()
		if err := readers[minIdx].Err(); err != nil {
			return Stats{}, fmt.Errorf("block %s: %w", names[minIdx], err)
		}

		for i, r := range readers {
			if i == minIdx || !r.Has() {
				continue
			}
			if format.TermCmp(r.Term(), chosenTerm) == 0 {
				merged = unionSortedU32(merged, r.Docs())
				r.Next()
				if err := r.Err(); err != nil {
					return Stats{}, fmt.Errorf("block %s: %w", names[i], err)
				}
			}
		}

		if len(merged) > 0 {
			if err := binary.Write(postFile, binary.LittleEndian, merged); err != nil {
				return Stats{}, fmt.Errorf("writing postings run: %w", err)
			}
		}
		lex = append(lex, lexEntry{term: chosenTerm, postingsOff: uint64(cursor), postingsLen: uint32(len(merged))})
		cursor += int64(len(merged)) * 4
		totalPostings += int64(len(merged))
	}

	if err := postFile.Sync(); err != nil {
		return Stats{}, fmt.Errorf("syncing postings file: %w", err)
	}

	sort.Slice(lex, func(i, j int) bool {
		return format.TermCmp(lex[i].term, lex[j].term) < 0
	})
	if err := writeLexicon(outLex, lex); err != nil {
		return Stats{}, err
	}

	return Stats{BlocksMerged: len(readers), TermCount: len(lex), PostingsLen: totalPostings}, nil
}

// unionSortedU32 computes the sorted union of two strictly ascending,
// duplicate-free uint32 slices, suppressing duplicates at the merge
// boundary. Matches original_source/indexer.cpp's merge_union_u32.
func unionSortedU32(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	push := func(v uint32) {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			push(a[i])
			i++
		case a[i] > b[j]:
			push(b[j])
			j++
		default:
			push(a[i])
			i++
			j++
		}
	}
	for ; i < len(a); i++ {
		push(a[i])
	}
	for ; j < len(b); j++ {
		push(b[j])
	}
	return out
}

func writeLexicon(path string, entries []lexEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	var pool []byte
	for _, e := range entries {
		pool = append(pool, e.term...)
	}

	hdr := format.LexHeader{
		Magic:          format.MagicLex,
		Version:        format.Version,
		TermCount:      uint32(len(entries)),
		StringPoolSize: uint32(len(pool)),
	}
	if err := binary.Write(f, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("writing lexicon header: %w", err)
	}

	var poolOff uint64
	for _, e := range entries {
		rec := format.LexRec{
			TermOff:     poolOff,
			TermLen:     uint16(len(e.term)),
			Flags:       0,
			DF:          e.postingsLen,
			PostingsOff: e.postingsOff,
			PostingsLen: e.postingsLen,
			Reserved:    0,
		}
		if err := binary.Write(f, binary.LittleEndian, rec); err != nil {
			return fmt.Errorf("writing lexicon record: %w", err)
		}
		poolOff += uint64(len(e.term))
	}
	if _, err := f.Write(pool); err != nil {
		return fmt.Errorf("writing term pool: %w", err)
	}
	return f.Sync()
}

func blockFileNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading blocks dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".blk" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
