package directive

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// The directive grammar:
//
//	list  := [item {[','] item}] [',']
//	item  := word | word '=' word | word '(' list ')'
//	word  := run of letters, digits and any of "_./-*"
//
// Commas between items are optional so comment directives can be written
// space-separated ("//convert:into path=dto.Order default").

type lexKind int

const (
	lexEOF lexKind = iota
	lexWord
	lexEq
	lexLParen
	lexRParen
	lexComma
)

type lexeme struct {
	kind lexKind
	text string
	off  int
}

// node is one parsed item: a flag, a key=value pair or a scope block.
type node struct {
	key      string
	value    string
	hasValue bool
	scope    bool
	children []node
	off      int
}

// SyntaxError reports malformed directive text. Offset counts bytes.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

func isWordRune(r rune) bool {
	switch r {
	case '_', '.', '/', '-', '*':
		return true
	}

	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lex(src string) ([]lexeme, error) {
	var out []lexeme

	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])

		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '=':
			out = append(out, lexeme{kind: lexEq, text: "=", off: i})
			i++
		case r == '(':
			out = append(out, lexeme{kind: lexLParen, text: "(", off: i})
			i++
		case r == ')':
			out = append(out, lexeme{kind: lexRParen, text: ")", off: i})
			i++
		case r == ',':
			out = append(out, lexeme{kind: lexComma, text: ",", off: i})
			i++
		case isWordRune(r):
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !isWordRune(r) {
					break
				}

				i += size
			}

			out = append(out, lexeme{kind: lexWord, text: src[start:i], off: start})
		default:
			return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}

	return append(out, lexeme{kind: lexEOF, off: len(src)}), nil
}

type parser struct {
	toks []lexeme
	pos  int
}

// parse turns directive text into a list of nodes.
func parse(src string) ([]node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}

	nodes, err := p.list(false)
	if err != nil {
		return nil, err
	}

	if t := p.peek(); t.kind != lexEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}

	return nodes, nil
}

func (p *parser) peek() lexeme {
	return p.toks[p.pos]
}

func (p *parser) next() lexeme {
	t := p.toks[p.pos]
	if t.kind != lexEOF {
		p.pos++
	}

	return t
}

func (p *parser) errorf(t lexeme, format string, args ...any) error {
	return &SyntaxError{Offset: t.off, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) list(nested bool) ([]node, error) {
	var (
		out       []node
		lastComma bool
	)

	for {
		t := p.peek()

		switch t.kind {
		case lexEOF:
			if nested {
				return nil, p.errorf(t, "missing ')'")
			}

			return out, nil
		case lexRParen:
			if !nested {
				return nil, p.errorf(t, "unbalanced ')'")
			}

			return out, nil
		case lexComma:
			if len(out) == 0 || lastComma {
				return nil, p.errorf(t, "unexpected ','")
			}

			p.next()

			lastComma = true
		case lexWord:
			n, err := p.item()
			if err != nil {
				return nil, err
			}

			out = append(out, n)
			lastComma = false
		default:
			return nil, p.errorf(t, "unexpected %q", t.text)
		}
	}
}

func (p *parser) item() (node, error) {
	key := p.next()
	n := node{key: key.text, off: key.off}

	switch p.peek().kind {
	case lexEq:
		p.next()

		v := p.next()
		if v.kind != lexWord {
			return node{}, p.errorf(v, "missing value for %q", key.text)
		}

		n.value = v.text
		n.hasValue = true
	case lexLParen:
		p.next()

		children, err := p.list(true)
		if err != nil {
			return node{}, err
		}

		p.next() // ')'

		n.scope = true
		n.children = children
	}

	return n, nil
}
