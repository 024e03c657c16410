package reader

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/corvidx/invidx/internal/idx/block"
	"github.com/corvidx/invidx/internal/idx/docdir"
	"github.com/corvidx/invidx/internal/idx/merge"
	"github.com/corvidx/invidx/internal/idx/termtable"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	docs := docdir.New()
	docs.AddDoc("Alpha", "https://a.example/")
	docs.AddDoc("Beta", "https://b.example/")
	if err := docs.WriteTo(filepath.Join(dir, "docs.bin")); err != nil {
		t.Fatalf("WriteTo docs: %v", err)
	}

	blocksDir := filepath.Join(dir, "blocks")
	if err := os.MkdirAll(blocksDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	entries := []*termtable.Entry{
		{Term: []byte("alpha"), Postings: []uint32{0}},
		{Term: []byte("beta"), Postings: []uint32{1}},
	}
	if err := block.Write(filepath.Join(blocksDir, "block_0000.blk"), entries); err != nil {
		t.Fatalf("Write block: %v", err)
	}
	if _, err := merge.Run(blocksDir, filepath.Join(dir, "lexicon.bin"), filepath.Join(dir, "postings.bin")); err != nil {
		t.Fatalf("merge.Run: %v", err)
	}
	return dir
}

func TestLoadAndBasicLookups(t *testing.T) {
	dir := buildFixture(t)
	idx, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.DocCount() != 2 {
		t.Errorf("DocCount() = %d, want 2", idx.DocCount())
	}
	if idx.TermCount() != 2 {
		t.Errorf("TermCount() = %d, want 2", idx.TermCount())
	}
	if idx.DocTitle(0) != "Alpha" || idx.DocURL(0) != "https://a.example/" {
		t.Errorf("doc0 = (%q, %q)", idx.DocTitle(0), idx.DocURL(0))
	}
	if idx.DocTitle(1) != "Beta" || idx.DocURL(1) != "https://b.example/" {
		t.Errorf("doc1 = (%q, %q)", idx.DocTitle(1), idx.DocURL(1))
	}
}

func TestFindTermHitAndMiss(t *testing.T) {
	dir := buildFixture(t)
	idx, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rec, ok := idx.FindTerm([]byte("alpha"))
	if !ok {
		t.Fatal("FindTerm(alpha) not found")
	}
	docs := idx.Postings(rec)
	if !reflect.DeepEqual(docs, []uint32{0}) {
		t.Errorf("Postings(alpha) = %v, want [0]", docs)
	}

	if _, ok := idx.FindTerm([]byte("zzz")); ok {
		t.Error("FindTerm(zzz) unexpectedly found")
	}
}

func TestLoadRejectsMissingFiles(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load on empty dir did not error")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dir := buildFixture(t)
	if err := os.WriteFile(filepath.Join(dir, "docs.bin"), []byte("not a docs file at all, way too short"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("Load accepted a corrupted docs.bin")
	}
}
