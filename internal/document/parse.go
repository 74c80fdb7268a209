package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a document into a generic node tree. The returned root node
// has an empty tag; top-level nodes are its children. name is used in error
// messages only (typically the file path).
func Parse(name string, src []byte) (*Node, error) {
	p := &parser{
		lex: &lexer{name: name, src: string(src), line: 1, col: 1},
	}
	root := &Node{Pos: Pos{Line: 1, Col: 1}}
	children, err := p.parseNodes(tokEOF)
	if err != nil {
		return nil, err
	}
	root.Children = children
	return root, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokString
	tokLBrace
	tokRBrace
	tokEquals
	tokTerm // newline or ';'
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of document"
	case tokWord:
		return "word"
	case tokString:
		return "string"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokEquals:
		return "'='"
	case tokTerm:
		return "end of line"
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Pos
}

type lexer struct {
	name string
	src  string
	off  int
	line int
	col  int
}

func (l *lexer) errf(pos Pos, format string, args ...any) error {
	return &ParseError{Name: l.name, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) pos() Pos {
	return Pos{Line: l.line, Col: l.col}
}

func (l *lexer) advance() byte {
	c := l.src[l.off]
	l.off++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

// next returns the next token, skipping spaces and line comments.
func (l *lexer) next() (token, error) {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
		case c == '/' && l.off+1 < len(l.src) && l.src[l.off+1] == '/':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		case c == '\n' || c == ';':
			pos := l.pos()
			l.advance()
			return token{kind: tokTerm, pos: pos}, nil
		case c == '{':
			pos := l.pos()
			l.advance()
			return token{kind: tokLBrace, pos: pos}, nil
		case c == '}':
			pos := l.pos()
			l.advance()
			return token{kind: tokRBrace, pos: pos}, nil
		case c == '=':
			pos := l.pos()
			l.advance()
			return token{kind: tokEquals, pos: pos}, nil
		case c == '"':
			return l.scanString()
		case isWordByte(c):
			return l.scanWord()
		default:
			return token{}, l.errf(l.pos(), "unexpected character %q", string(c))
		}
	}
	return token{kind: tokEOF, pos: l.pos()}, nil
}

func (l *lexer) scanString() (token, error) {
	pos := l.pos()
	l.advance() // opening quote
	var b strings.Builder
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch c {
		case '"':
			l.advance()
			return token{kind: tokString, text: b.String(), pos: pos}, nil
		case '\n':
			return token{}, l.errf(pos, "unterminated string")
		case '\\':
			l.advance()
			if l.off >= len(l.src) {
				return token{}, l.errf(pos, "unterminated string")
			}
			esc := l.advance()
			switch esc {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				return token{}, l.errf(pos, "invalid escape sequence \\%s", string(esc))
			}
		default:
			b.WriteByte(l.advance())
		}
	}
	return token{}, l.errf(pos, "unterminated string")
}

func (l *lexer) scanWord() (token, error) {
	pos := l.pos()
	start := l.off
	for l.off < len(l.src) && isWordByte(l.src[l.off]) {
		l.advance()
	}
	return token{kind: tokWord, text: l.src[start:l.off], pos: pos}, nil
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '_' || c == '-' || c == '%' || c == '.'
}

type parser struct {
	lex    *lexer
	peeked *token
}

func (p *parser) next() (token, error) {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t, nil
	}
	return p.lex.next()
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

// parseNodes parses sibling nodes until the given closing token, which is
// consumed. Blank lines and stray terminators between siblings are skipped.
func (p *parser) parseNodes(until tokenKind) ([]*Node, error) {
	var nodes []*Node
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokTerm:
			p.peeked = nil
		case until:
			p.peeked = nil
			return nodes, nil
		case tokEOF:
			// until must be tokRBrace here: a block was never closed.
			return nil, p.lex.errf(t.pos, "unterminated block")
		case tokWord:
			n, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		default:
			return nil, p.lex.errf(t.pos, "unexpected %s, want node tag", t.kind)
		}
	}
}

// parseNode parses one node: tag, then values and attributes, then an
// optional child block. The node ends at a terminator, a closing brace
// (left for the caller), or end of input.
func (p *parser) parseNode() (*Node, error) {
	tag, err := p.next()
	if err != nil {
		return nil, err
	}
	n := &Node{Tag: tag.text, Pos: tag.pos}

	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokTerm, tokEOF:
			p.peeked = nil
			return n, nil
		case tokRBrace:
			// Not consumed: closes the enclosing block.
			return n, nil
		case tokString:
			p.peeked = nil
			n.Args = append(n.Args, Value{Kind: StringVal, Str: t.text, Pos: t.pos})
		case tokWord:
			p.peeked = nil
			after, err := p.peek()
			if err != nil {
				return nil, err
			}
			if after.kind == tokEquals {
				p.peeked = nil
				v, err := p.parseValue()
				if err != nil {
					return nil, err
				}
				n.Attrs = append(n.Attrs, Attr{Key: t.text, Value: v, Pos: t.pos})
			} else {
				v, err := p.classifyWord(t)
				if err != nil {
					return nil, err
				}
				n.Args = append(n.Args, v)
			}
		case tokLBrace:
			p.peeked = nil
			children, err := p.parseNodes(tokRBrace)
			if err != nil {
				return nil, err
			}
			n.Children = children
			return n, nil
		case tokEquals:
			return nil, p.lex.errf(t.pos, "unexpected '=' without attribute name")
		default:
			return nil, p.lex.errf(t.pos, "unexpected %s", t.kind)
		}
	}
}

// parseValue parses the right-hand side of key=.
func (p *parser) parseValue() (Value, error) {
	t, err := p.next()
	if err != nil {
		return Value{}, err
	}
	switch t.kind {
	case tokString:
		return Value{Kind: StringVal, Str: t.text, Pos: t.pos}, nil
	case tokWord:
		return p.classifyWord(t)
	default:
		return Value{}, p.lex.errf(t.pos, "unexpected %s, want attribute value", t.kind)
	}
}

// classifyWord turns a bare word into a bool, int, or percent literal.
// Anything else must be quoted, so an unrecognized word is an error.
func (p *parser) classifyWord(t token) (Value, error) {
	switch t.text {
	case "true":
		return Value{Kind: BoolVal, Bool: true, Pos: t.pos}, nil
	case "false":
		return Value{Kind: BoolVal, Bool: false, Pos: t.pos}, nil
	}
	if strings.HasSuffix(t.text, "%") {
		n, err := strconv.Atoi(strings.TrimSuffix(t.text, "%"))
		if err != nil {
			return Value{}, p.lex.errf(t.pos, "invalid percentage literal %q", t.text)
		}
		return Value{Kind: PercentVal, Int: n, Pos: t.pos}, nil
	}
	if n, err := strconv.Atoi(t.text); err == nil {
		return Value{Kind: IntVal, Int: n, Pos: t.pos}, nil
	}
	return Value{}, p.lex.errf(t.pos, "invalid literal %q (strings must be quoted)", t.text)
}
