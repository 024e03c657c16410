// Package eval runs an RPN query program against a loaded index, producing
// a sorted, duplicate-free list of matching doc-ids. Ported from
// original_source/search_cli.cpp's eval_rpn, op_and, op_or, and op_not.
package eval

import (
	"github.com/corvidx/invidx/internal/qry/lexer"
	"github.com/corvidx/invidx/internal/qry/parser"
	"github.com/corvidx/invidx/internal/qry/reader"
)

// Run evaluates the RPN program rpn against idx and returns the sorted,
// duplicate-free result set. A term absent from the lexicon contributes
// an empty set rather than an error, matching the reference's "term not
// found -> empty posting list" behavior.
func Run(idx *reader.Index, rpn []parser.Item) []uint32 {
	var stack [][]uint32

	pop := func() []uint32 {
		if len(stack) == 0 {
			return nil
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, item := range rpn {
		switch item.Type {
		case lexer.TERM:
			rec, ok := idx.FindTerm([]byte(item.Term))
			if !ok {
				stack = append(stack, nil)
				continue
			}
			stack = append(stack, idx.Postings(rec))

		case lexer.NOT:
			a := pop()
			stack = append(stack, opNot(idx.DocCount(), a))

		case lexer.AND:
			b := pop()
			a := pop()
			if len(a) == 0 || len(b) == 0 {
				stack = append(stack, nil)
				continue
			}
			stack = append(stack, opAnd(a, b))

		case lexer.OR:
			b := pop()
			a := pop()
			switch {
			case len(a) == 0 && len(b) == 0:
				stack = append(stack, nil)
			case len(a) == 0:
				stack = append(stack, b)
			case len(b) == 0:
				stack = append(stack, a)
			default:
				stack = append(stack, opOr(a, b))
			}
		}
	}

	return pop()
}

func opAnd(a, b []uint32) []uint32 {
	out := make([]uint32, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

func opOr(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

func opNot(docCount uint32, a []uint32) []uint32 {
	out := make([]uint32, 0, int(docCount))
	i := 0
	for d := uint32(0); d < docCount; d++ {
		for i < len(a) && a[i] < d {
			i++
		}
		if i < len(a) && a[i] == d {
			continue
		}
		out = append(out, d)
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
