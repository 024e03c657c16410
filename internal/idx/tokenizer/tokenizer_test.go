package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single word", "hello", []string{"hello"}},
		{"mixed case", "Hello World", []string{"hello", "world"}},
		{"punctuation splits", "foo,bar.baz!qux", []string{"foo", "bar", "baz", "qux"}},
		{"digits are alnum", "abc123 456def", []string{"abc123", "456def"}},
		{"leading and trailing punctuation", "  !!hello!!  ", []string{"hello"}},
		{"unicode bytes are non-alnum", "café au lait", []string{"caf", "au", "lait"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Tokenize([]byte(c.in))
			if len(got) != len(c.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", c.in, toStrings(got), c.want)
			}
			for i := range got {
				if string(got[i]) != c.want[i] {
					t.Errorf("token %d = %q, want %q", i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestTokenizeLongRunClampedNotSplit(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	got := Tokenize(long)
	if len(got) != 1 {
		t.Fatalf("expected a single clamped token, got %d", len(got))
	}
	if len(got[0]) != MaxTokenLen {
		t.Errorf("token length = %d, want %d", len(got[0]), MaxTokenLen)
	}
}

func TestScannerFeedAcrossChunks(t *testing.T) {
	sc := NewScanner()
	var tokens [][]byte
	emit := func(tok []byte) {
		cp := make([]byte, len(tok))
		copy(cp, tok)
		tokens = append(tokens, cp)
	}
	sc.Feed([]byte("hel"), emit)
	sc.Feed([]byte("lo wor"), emit)
	sc.Feed([]byte("ld"), emit)
	sc.Flush(emit)

	want := [][]byte{[]byte("hello"), []byte("world")}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("tokens = %v, want %v", toStrings(tokens), toStrings(want))
	}
}

func TestFlushWithNoPendingTokenEmitsNothing(t *testing.T) {
	sc := NewScanner()
	called := false
	sc.Feed([]byte("done "), func(tok []byte) { called = true })
	called = false
	sc.Flush(func(tok []byte) { called = true })
	if called {
		t.Error("Flush emitted a token with no pending input")
	}
}

func toStrings(toks [][]byte) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = string(t)
	}
	return out
}
