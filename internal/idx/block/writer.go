// Package block implements the intermediate block file format a term-table
// flush produces, and the streaming reader the external merger consumes
// them with. Ported from original_source/indexer.cpp's write_block and
// BlockReader, using a write-to-tmp-then-rename idiom for atomic block
// files instead of the reference's direct writes.
package block

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/corvidx/invidx/internal/idx/format"
	"github.com/corvidx/invidx/internal/idx/termtable"
)

// Write sorts entries lexicographically by (term bytes, length) and writes
// them to path as a BLK1 block: header, then per term
// (uint16 term_len, uint32 df, term bytes, df uint32 doc-ids). Writes to a
// temp file in the same directory and renames into place so a reader never
// observes a partial block.
func Write(path string, entries []*termtable.Entry) error {
	sort.Slice(entries, func(i, j int) bool {
		return format.TermCmp(entries[i].Term, entries[j].Term) < 0
	})

	tmp, err := os.CreateTemp(dirOf(path), ".block-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp block file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	hdr := format.BlockHeader{Magic: format.MagicBlock, TermCount: uint32(len(entries))}
	if err := binary.Write(tmp, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("writing block header: %w", err)
	}
	for _, e := range entries {
		if err := binary.Write(tmp, binary.LittleEndian, uint16(len(e.Term))); err != nil {
			return fmt.Errorf("writing term_len: %w", err)
		}
		if err := binary.Write(tmp, binary.LittleEndian, uint32(len(e.Postings))); err != nil {
			return fmt.Errorf("writing df: %w", err)
		}
		if _, err := tmp.Write(e.Term); err != nil {
			return fmt.Errorf("writing term bytes: %w", err)
		}
		if err := binary.Write(tmp, binary.LittleEndian, e.Postings); err != nil {
			return fmt.Errorf("writing doc-ids: %w", err)
		}
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing block file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing block file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming block file into place: %w", err)
	}
	return nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
