package docdir

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/corvidx/invidx/internal/idx/format"
)

func TestAddDocReturnsDenseIDs(t *testing.T) {
	b := New()
	id0 := b.AddDoc("Doc Zero", "https://example.com/0")
	id1 := b.AddDoc("Doc One", "https://example.com/1")
	id2 := b.AddDoc("Doc Two", "https://example.com/2")

	if id0 != 0 || id1 != 1 || id2 != 2 {
		t.Fatalf("ids = %d,%d,%d, want 0,1,2", id0, id1, id2)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}

func TestWriteToRoundTrip(t *testing.T) {
	b := New()
	b.AddDoc("Alpha", "https://a.example/")
	b.AddDoc("Beta", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "docs.bin")
	if err := b.WriteTo(path); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var hdr format.DocsHeader
	if err := binary.Read(bytes.NewReader(data[:format.DocsHeaderSize]), binary.LittleEndian, &hdr); err != nil {
		t.Fatalf("decoding header: %v", err)
	}
	if hdr.Magic != format.MagicDocs {
		t.Errorf("magic = %v, want %v", hdr.Magic, format.MagicDocs)
	}
	if hdr.Version != format.Version {
		t.Errorf("version = %d, want %d", hdr.Version, format.Version)
	}
	if hdr.DocCount != 2 {
		t.Errorf("doc_count = %d, want 2", hdr.DocCount)
	}

	recsOff := format.DocsHeaderSize
	var rec0, rec1 format.DocRec
	if err := binary.Read(bytes.NewReader(data[recsOff:recsOff+format.DocRecSize]), binary.LittleEndian, &rec0); err != nil {
		t.Fatalf("decoding rec0: %v", err)
	}
	if err := binary.Read(bytes.NewReader(data[recsOff+format.DocRecSize:recsOff+2*format.DocRecSize]), binary.LittleEndian, &rec1); err != nil {
		t.Fatalf("decoding rec1: %v", err)
	}

	pool := data[recsOff+2*format.DocRecSize:]
	title0 := string(pool[rec0.TitleOff : rec0.TitleOff+uint64(rec0.TitleLen)])
	url0 := string(pool[rec0.URLOff : rec0.URLOff+uint64(rec0.URLLen)])
	title1 := string(pool[rec1.TitleOff : rec1.TitleOff+uint64(rec1.TitleLen)])
	url1 := string(pool[rec1.URLOff : rec1.URLOff+uint64(rec1.URLLen)])

	if title0 != "Alpha" || url0 != "https://a.example/" {
		t.Errorf("doc0 = (%q, %q), want (Alpha, https://a.example/)", title0, url0)
	}
	if title1 != "Beta" || url1 != "" {
		t.Errorf("doc1 = (%q, %q), want (Beta, \"\")", title1, url1)
	}
}
