package docset

import "testing"

func TestContainsOrAddFirstThenRepeat(t *testing.T) {
	s := New(8, 1024)
	if s.ContainsOrAdd([]byte("hello")) {
		t.Error("first occurrence reported as already present")
	}
	if !s.ContainsOrAdd([]byte("hello")) {
		t.Error("second occurrence not reported as already present")
	}
}

func TestContainsOrAddDistinctTerms(t *testing.T) {
	s := New(8, 1024)
	if s.ContainsOrAdd([]byte("foo")) {
		t.Error("foo reported present on first insert")
	}
	if s.ContainsOrAdd([]byte("bar")) {
		t.Error("bar reported present on first insert")
	}
	if !s.ContainsOrAdd([]byte("foo")) {
		t.Error("foo not reported present on second insert")
	}
}

func TestContainsOrAddEmptyTermAlwaysPresent(t *testing.T) {
	s := New(8, 1024)
	if !s.ContainsOrAdd(nil) {
		t.Error("empty term did not report already present")
	}
	if !s.ContainsOrAdd([]byte{}) {
		t.Error("empty term did not report already present")
	}
}

func TestResetClearsMembership(t *testing.T) {
	s := New(8, 1024)
	s.ContainsOrAdd([]byte("hello"))
	s.Reset()
	if s.ContainsOrAdd([]byte("hello")) {
		t.Error("term reported present after Reset")
	}
}

func TestSaturationNeverPanics(t *testing.T) {
	// Capacity 4 saturates (used*10 >= cap*8) well before every distinct term
	// below has been inserted. Saturated calls must degrade to reporting
	// "not present" rather than panicking or looping forever; the caller
	// tolerates the resulting loss of per-document dedup.
	s := New(4, 1024)
	terms := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for round := 0; round < 3; round++ {
		for _, term := range terms {
			_ = s.ContainsOrAdd([]byte(term))
		}
	}
}
