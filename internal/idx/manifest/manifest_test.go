package manifest

import (
	"strings"
	"testing"
)

func TestScanBasicFields(t *testing.T) {
	input := `{"doc_id":"a","title":"Doc A","url":"https://a.example/"}
{"doc_id":"b","title":"Doc B","url":"https://b.example/"}
`
	var got []Entry
	if err := Scan(strings.NewReader(input), func(e Entry) { got = append(got, e) }); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0] != (Entry{DocID: "a", Title: "Doc A", URL: "https://a.example/"}) {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1] != (Entry{DocID: "b", Title: "Doc B", URL: "https://b.example/"}) {
		t.Errorf("entry 1 = %+v", got[1])
	}
}

func TestScanMissingDocIDSkipsLine(t *testing.T) {
	input := `{"title":"No ID","url":"https://x.example/"}
{"doc_id":"c","title":"Doc C","url":""}
`
	var got []Entry
	if err := Scan(strings.NewReader(input), func(e Entry) { got = append(got, e) }); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].DocID != "c" {
		t.Errorf("survivor doc_id = %q, want c", got[0].DocID)
	}
}

func TestScanMissingTitleDefaultsToDocID(t *testing.T) {
	input := `{"doc_id":"only-id"}` + "\n"
	var got []Entry
	if err := Scan(strings.NewReader(input), func(e Entry) { got = append(got, e) }); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].Title != "only-id" {
		t.Errorf("title = %q, want only-id (defaulted from doc_id)", got[0].Title)
	}
	if got[0].URL != "" {
		t.Errorf("url = %q, want empty", got[0].URL)
	}
}

func TestScanBackslashEscapeInValue(t *testing.T) {
	input := `{"doc_id":"d","title":"Quote: \"nested\"","url":"https://d.example/"}` + "\n"
	var got []Entry
	if err := Scan(strings.NewReader(input), func(e Entry) { got = append(got, e) }); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	want := `Quote: "nested"`
	if got[0].Title != want {
		t.Errorf("title = %q, want %q", got[0].Title, want)
	}
}

func TestExtractStringKeyOrder(t *testing.T) {
	// Field order in the line should not matter.
	input := `{"url":"https://e.example/","doc_id":"e","title":"Doc E"}` + "\n"
	var got []Entry
	if err := Scan(strings.NewReader(input), func(e Entry) { got = append(got, e) }); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 1 || got[0].DocID != "e" || got[0].Title != "Doc E" {
		t.Fatalf("entry = %+v", got)
	}
}
