// Package parser converts a lexed query line into reverse-Polish-notation
// (RPN) with implicit AND insertion between adjacent value tokens. Ported
// from original_source/search_cli.cpp's to_rpn, precedence, and
// is_right_assoc.
package parser

import (
	"github.com/corvidx/invidx/internal/idx/stemmer"
	"github.com/corvidx/invidx/internal/qry/lexer"
)

// Item is one element of an RPN program: either a stemmed query term or an
// operator (AND, OR, NOT).
type Item struct {
	Type lexer.TokenType
	Term string
}

func precedence(t lexer.TokenType) int {
	switch t {
	case lexer.NOT:
		return 3
	case lexer.AND:
		return 2
	case lexer.OR:
		return 1
	default:
		return 0
	}
}

func isRightAssoc(t lexer.TokenType) bool { return t == lexer.NOT }

// isValueToken reports whether t can end an operand: a term or a closing
// paren.
func isValueToken(t lexer.TokenType) bool { return t == lexer.TERM || t == lexer.RPAREN }

// canStartValue reports whether t can begin an operand: a term, an open
// paren, or a NOT.
func canStartValue(t lexer.TokenType) bool {
	return t == lexer.TERM || t == lexer.LPAREN || t == lexer.NOT
}

// ToRPN parses line into an RPN program. TERM tokens are Porter-stemmed;
// a term that stems to the empty string (never occurs for this
// implementation's stemmer, which leaves short tokens unchanged, but
// checked for parity with the reference) is dropped rather than emitted.
// Unmatched parentheses are tolerated: an unmatched ')' pops nothing past
// the last '(' seen, and any operators left on the stack at end of input
// are flushed in order, mirroring the reference's tolerant behavior.
func ToRPN(line string) []Item {
	ts := lexer.New(line)
	var ops []lexer.TokenType
	var out []Item

	prev := lexer.Token{Type: lexer.END}

	popWhileHigher := func(op lexer.TokenType) {
		for len(ops) > 0 {
			top := ops[len(ops)-1]
			if top == lexer.LPAREN {
				break
			}
			p1, p2 := precedence(top), precedence(op)
			if p1 > p2 || (p1 == p2 && !isRightAssoc(op)) {
				out = append(out, Item{Type: top})
				ops = ops[:len(ops)-1]
				continue
			}
			break
		}
	}

	for {
		tok := ts.Next()
		if tok.Type == lexer.BAD {
			continue
		}
		if tok.Type == lexer.END {
			break
		}

		if isValueToken(prev.Type) && canStartValue(tok.Type) {
			popWhileHigher(lexer.AND)
			ops = append(ops, lexer.AND)
		}

		switch tok.Type {
		case lexer.TERM:
			stemmed := string(stemmer.Stem([]byte(tok.Text)))
			if stemmed != "" {
				out = append(out, Item{Type: lexer.TERM, Term: stemmed})
			}
		case lexer.LPAREN:
			ops = append(ops, lexer.LPAREN)
		case lexer.RPAREN:
			for len(ops) > 0 && ops[len(ops)-1] != lexer.LPAREN {
				out = append(out, Item{Type: ops[len(ops)-1]})
				ops = ops[:len(ops)-1]
			}
			if len(ops) > 0 && ops[len(ops)-1] == lexer.LPAREN {
				ops = ops[:len(ops)-1]
			}
		case lexer.AND, lexer.OR, lexer.NOT:
			popWhileHigher(tok.Type)
			ops = append(ops, tok.Type)
		}

		prev = tok
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top == lexer.LPAREN {
			continue
		}
		out = append(out, Item{Type: top})
	}

	return out
}
