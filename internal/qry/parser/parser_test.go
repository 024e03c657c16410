package parser

import (
	"testing"

	"github.com/corvidx/invidx/internal/qry/lexer"
)

func itemsEqual(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestToRPNImplicitAND(t *testing.T) {
	got := ToRPN("cat dog")
	want := []Item{
		{Type: lexer.TERM, Term: "cat"},
		{Type: lexer.TERM, Term: "dog"},
		{Type: lexer.AND},
	}
	if !itemsEqual(got, want) {
		t.Fatalf("ToRPN(\"cat dog\") = %+v, want %+v", got, want)
	}
}

func TestToRPNExplicitOR(t *testing.T) {
	got := ToRPN("cat | dog")
	want := []Item{
		{Type: lexer.TERM, Term: "cat"},
		{Type: lexer.TERM, Term: "dog"},
		{Type: lexer.OR},
	}
	if !itemsEqual(got, want) {
		t.Fatalf("ToRPN(\"cat | dog\") = %+v, want %+v", got, want)
	}
}

func TestToRPNPrecedenceANDBeforeOR(t *testing.T) {
	got := ToRPN("a | b c")
	want := []Item{
		{Type: lexer.TERM, Term: "a"},
		{Type: lexer.TERM, Term: "b"},
		{Type: lexer.TERM, Term: "c"},
		{Type: lexer.AND},
		{Type: lexer.OR},
	}
	if !itemsEqual(got, want) {
		t.Fatalf("ToRPN(\"a | b c\") = %+v, want %+v", got, want)
	}
}

func TestToRPNParenthesesOverridePrecedence(t *testing.T) {
	got := ToRPN("(a | b) c")
	want := []Item{
		{Type: lexer.TERM, Term: "a"},
		{Type: lexer.TERM, Term: "b"},
		{Type: lexer.OR},
		{Type: lexer.TERM, Term: "c"},
		{Type: lexer.AND},
	}
	if !itemsEqual(got, want) {
		t.Fatalf("ToRPN(\"(a | b) c\") = %+v, want %+v", got, want)
	}
}

func TestToRPNNotBindsTighter(t *testing.T) {
	got := ToRPN("!a b")
	want := []Item{
		{Type: lexer.TERM, Term: "a"},
		{Type: lexer.NOT},
		{Type: lexer.TERM, Term: "b"},
		{Type: lexer.AND},
	}
	if !itemsEqual(got, want) {
		t.Fatalf("ToRPN(\"!a b\") = %+v, want %+v", got, want)
	}
}

func TestToRPNStemsTerms(t *testing.T) {
	got := ToRPN("running dogs")
	want := []Item{
		{Type: lexer.TERM, Term: "run"},
		{Type: lexer.TERM, Term: "dog"},
		{Type: lexer.AND},
	}
	if !itemsEqual(got, want) {
		t.Fatalf("ToRPN(\"running dogs\") = %+v, want %+v", got, want)
	}
}

func TestToRPNUnmatchedParensAreTolerated(t *testing.T) {
	// A stray ')' with no open paren pops nothing extra; a trailing '(' with
	// no matching ')' is simply dropped at end of input.
	got := ToRPN("a)")
	want := []Item{{Type: lexer.TERM, Term: "a"}}
	if !itemsEqual(got, want) {
		t.Fatalf("ToRPN(\"a)\") = %+v, want %+v", got, want)
	}

	got2 := ToRPN("(a")
	want2 := []Item{{Type: lexer.TERM, Term: "a"}}
	if !itemsEqual(got2, want2) {
		t.Fatalf("ToRPN(\"(a\") = %+v, want %+v", got2, want2)
	}
}

func TestToRPNBadBytesSkipped(t *testing.T) {
	got := ToRPN("cat @ dog")
	want := []Item{
		{Type: lexer.TERM, Term: "cat"},
		{Type: lexer.TERM, Term: "dog"},
		{Type: lexer.AND},
	}
	if !itemsEqual(got, want) {
		t.Fatalf("ToRPN(\"cat @ dog\") = %+v, want %+v", got, want)
	}
}
