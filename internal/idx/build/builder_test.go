package build

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/corvidx/invidx/internal/qry/eval"
	"github.com/corvidx/invidx/internal/qry/parser"
	"github.com/corvidx/invidx/internal/qry/reader"
)

// TestRunEndToEndScenario builds the three-document corpus and confirms the
// boolean queries against it, pinning this implementation's symmetric
// build-time-stemming policy: "world" and "worlds" both stem to "world" at
// build time, so a "world" query hits both doc 0 and doc 1.
func TestRunEndToEndScenario(t *testing.T) {
	dir := t.TempDir()
	corpusDir := filepath.Join(dir, "corpus")
	if err := os.MkdirAll(corpusDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	files := map[string]string{
		"A.txt": "Hello, hello WORLD.",
		"B.txt": "world of worlds",
		"C.txt": "greetings",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(corpusDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}

	manifestPath := filepath.Join(dir, "manifest.jsonl")
	manifest := `{"doc_id":"A","title":"A","url":""}
{"doc_id":"B","title":"B","url":""}
{"doc_id":"C","title":"C","url":""}
`
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("WriteFile manifest: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	result, err := Run(context.Background(), Options{
		ManifestPath: manifestPath,
		CorpusDir:    corpusDir,
		OutDir:       outDir,
		MemBudget:    64 << 20,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.DocCount != 3 {
		t.Fatalf("DocCount = %d, want 3", result.DocCount)
	}

	idx, err := reader.Load(outDir)
	if err != nil {
		t.Fatalf("reader.Load: %v", err)
	}

	cases := []struct {
		query string
		want  []uint32
	}{
		{"hello", []uint32{0}},
		{"world", []uint32{0, 1}},
		{"hello & world", []uint32{0}},
		{"hello | greetings", []uint32{0, 2}},
		{"!hello", []uint32{1, 2}},
		{"(hello | greetings) & !world", []uint32{2}},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			rpn := parser.ToRPN(c.query)
			got := eval.Run(idx, rpn)
			if len(got) == 0 {
				got = []uint32{}
			}
			want := c.want
			if want == nil {
				want = []uint32{}
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("query %q -> %v, want %v", c.query, got, want)
			}
		})
	}
}

func TestRunMissingCorpusFileLogsWarningNotFatal(t *testing.T) {
	dir := t.TempDir()
	corpusDir := filepath.Join(dir, "corpus")
	if err := os.MkdirAll(corpusDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	manifestPath := filepath.Join(dir, "manifest.jsonl")
	manifest := `{"doc_id":"missing","title":"Missing","url":""}` + "\n"
	if err := os.WriteFile(manifestPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("WriteFile manifest: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	result, err := Run(context.Background(), Options{
		ManifestPath: manifestPath,
		CorpusDir:    corpusDir,
		OutDir:       outDir,
		MemBudget:    64 << 20,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.DocCount != 1 {
		t.Errorf("DocCount = %d, want 1", result.DocCount)
	}
	if result.TermCount != 0 {
		t.Errorf("TermCount = %d, want 0", result.TermCount)
	}
}

func TestRunEmptyManifestProducesValidEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	corpusDir := filepath.Join(dir, "corpus")
	if err := os.MkdirAll(corpusDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	manifestPath := filepath.Join(dir, "manifest.jsonl")
	if err := os.WriteFile(manifestPath, nil, 0o644); err != nil {
		t.Fatalf("WriteFile manifest: %v", err)
	}

	outDir := filepath.Join(dir, "out")
	result, err := Run(context.Background(), Options{
		ManifestPath: manifestPath,
		CorpusDir:    corpusDir,
		OutDir:       outDir,
		MemBudget:    64 << 20,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.DocCount != 0 || result.TermCount != 0 {
		t.Errorf("result = %+v, want zero doc/term counts", result)
	}

	idx, err := reader.Load(outDir)
	if err != nil {
		t.Fatalf("reader.Load on empty index: %v", err)
	}
	if idx.DocCount() != 0 || idx.TermCount() != 0 {
		t.Errorf("loaded empty index has DocCount=%d TermCount=%d", idx.DocCount(), idx.TermCount())
	}
}
