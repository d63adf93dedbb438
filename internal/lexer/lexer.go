// Package lexer turns gomacro source text into a token stream.
//
// Text from // to the end of the line is a comment. Statement terminators
// may be omitted at line ends: a newline that follows an identifier, number,
// string or closing parenthesis produces an implicit semicolon token.
package lexer

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/itsmostafa/gomacro/internal/token"
)

// Error is a lexical fault at a source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Option configures the lexer.
type Option func(*Lexer)

// Strict makes unrecognized characters a lexical error instead of
// silently dropping them.
func Strict() Option {
	return func(l *Lexer) { l.strict = true }
}

// Lexer scans source text one rune at a time.
type Lexer struct {
	src    []rune
	pos    int
	line   int
	col    int
	strict bool

	last    token.Kind
	hasLast bool
}

// New creates a lexer for src.
func New(src string, opts ...Option) *Lexer {
	l := &Lexer{
		src:  []rune(src),
		line: 1,
		col:  1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize scans src completely. The result always ends with exactly one EOF token.
func Tokenize(src string, opts ...Option) ([]token.Token, error) {
	return New(src, opts...).Tokenize()
}

// Tokenize scans the remaining input.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() (token.Token, error) {
	tok, err := l.next()
	if err != nil {
		return token.Token{}, err
	}
	l.last = tok.Kind
	l.hasLast = true
	return tok, nil
}

func (l *Lexer) next() (token.Token, error) {
	for {
		if t, ok := l.skipWhitespace(); ok {
			return t, nil
		}

		pos := l.position()
		c, ok := l.peek()
		if !ok {
			return token.Token{Kind: token.EOF, Pos: pos}, nil
		}

		switch {
		case c == '(':
			return l.single(token.LParen, pos), nil
		case c == ')':
			return l.single(token.RParen, pos), nil
		case c == '{':
			return l.single(token.LBrace, pos), nil
		case c == '}':
			return l.single(token.RBrace, pos), nil
		case c == ',':
			return l.single(token.Comma, pos), nil
		case c == ';':
			return l.single(token.Semicolon, pos), nil
		case c == '=':
			if l.peekAt(1) == '=' {
				return l.double(token.Eq, pos), nil
			}
			return l.single(token.Assign, pos), nil
		case c == '!' && l.peekAt(1) == '=':
			return l.double(token.NotEq, pos), nil
		case c == '>':
			if l.peekAt(1) == '=' {
				return l.double(token.GtEq, pos), nil
			}
			return l.single(token.Gt, pos), nil
		case c == '<':
			if l.peekAt(1) == '=' {
				return l.double(token.LtEq, pos), nil
			}
			return l.single(token.Lt, pos), nil
		case c == '&' && l.peekAt(1) == '&':
			return l.double(token.And, pos), nil
		case c == '|' && l.peekAt(1) == '|':
			return l.double(token.Or, pos), nil
		case c == '"':
			return l.readString(pos)
		case isDigit(c):
			return l.readNumber(pos)
		case isLetter(c):
			return l.readIdent(pos), nil
		}

		if l.strict {
			return token.Token{}, &Error{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
		l.advance()
	}
}

// skipWhitespace consumes whitespace and // line comments and reports an
// inferred terminator when a newline ends a statement.
func (l *Lexer) skipWhitespace() (token.Token, bool) {
	sawNewline := false
	var nlPos token.Position
	for {
		c, ok := l.peek()
		if ok && c == '/' && l.peekAt(1) == '/' {
			for c, ok = l.peek(); ok && c != '\n'; c, ok = l.peek() {
				l.advance()
			}
			continue
		}
		if !ok || !isSpace(c) {
			break
		}
		if c == '\n' && !sawNewline {
			sawNewline = true
			nlPos = l.position()
		}
		l.advance()
	}
	if sawNewline && l.hasLast && l.last.Terminates() {
		return token.Token{Kind: token.Semicolon, Literal: "\n", Pos: nlPos}, true
	}
	return token.Token{}, false
}

func (l *Lexer) readString(pos token.Position) (token.Token, error) {
	l.advance() // opening quote
	start := l.pos
	for {
		c, ok := l.peek()
		if !ok {
			return token.Token{}, &Error{Pos: pos, Msg: "unterminated string literal"}
		}
		if c == '"' {
			lit := string(l.src[start:l.pos])
			l.advance()
			return token.Token{Kind: token.String, Literal: lit, Pos: pos}, nil
		}
		l.advance()
	}
}

func (l *Lexer) readNumber(pos token.Position) (token.Token, error) {
	start := l.pos
	for {
		c, ok := l.peek()
		if !ok || !isDigit(c) {
			break
		}
		l.advance()
	}
	lit := string(l.src[start:l.pos])
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return token.Token{}, &Error{Pos: pos, Msg: fmt.Sprintf("integer literal %s out of range", lit)}
	}
	return token.Token{Kind: token.Number, Literal: lit, Int: n, Pos: pos}, nil
}

func (l *Lexer) readIdent(pos token.Position) token.Token {
	start := l.pos
	for {
		c, ok := l.peek()
		if !ok || !(isLetter(c) || isDigit(c)) {
			break
		}
		l.advance()
	}
	lit := string(l.src[start:l.pos])
	if kind, ok := token.Keywords[lit]; ok {
		return token.Token{Kind: kind, Literal: lit, Pos: pos}
	}
	return token.Token{Kind: token.Ident, Literal: lit, Pos: pos}
}

func (l *Lexer) single(kind token.Kind, pos token.Position) token.Token {
	lit := string(l.src[l.pos])
	l.advance()
	return token.Token{Kind: kind, Literal: lit, Pos: pos}
}

func (l *Lexer) double(kind token.Kind, pos token.Position) token.Token {
	lit := string(l.src[l.pos : l.pos+2])
	l.advance()
	l.advance()
	return token.Token{Kind: kind, Literal: lit, Pos: pos}
}

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

// peekAt returns the rune n places ahead, or 0 past the end.
func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *Lexer) advance() {
	if l.pos >= len(l.src) {
		return
	}
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) position() token.Position {
	return token.Position{Line: l.line, Column: l.col}
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// isLetter reports ASCII letters and underscore.
func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isSpace(c rune) bool {
	return unicode.IsSpace(c)
}
