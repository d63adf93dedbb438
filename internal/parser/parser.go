// Package parser builds an AST from a gomacro token stream.
//
// The grammar is parsed by recursive descent, one function per precedence
// level: or, and, equality, comparison, primary. Parsing stops at the first
// malformed construct.
package parser

import (
	"errors"
	"fmt"

	"github.com/itsmostafa/gomacro/internal/ast"
	"github.com/itsmostafa/gomacro/internal/lexer"
	"github.com/itsmostafa/gomacro/internal/token"
)

// SyntaxError describes the first malformed construct in a program.
type SyntaxError struct {
	Pos  token.Position
	Got  token.Token
	Want string // expected token or construct; empty when any statement would do
}

func (e *SyntaxError) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("%s: expected %s, got %s", e.Pos, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: unexpected token %s", e.Pos, e.Got)
}

// IsIncomplete reports whether err was caused by the input ending early,
// meaning more text could still make it valid.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Got.Kind == token.EOF
}

// Parser consumes tokens left to right.
type Parser struct {
	toks []token.Token
	pos  int
}

// New creates a parser over toks. A trailing EOF token is added if missing.
func New(toks []token.Token) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		var at token.Position
		if len(toks) > 0 {
			at = toks[len(toks)-1].Pos
		}
		toks = append(toks, token.Token{Kind: token.EOF, Pos: at})
	}
	return &Parser{toks: toks}
}

// Parse parses a complete token stream.
func Parse(toks []token.Token) ([]ast.Node, error) {
	return New(toks).Parse()
}

// ParseSource lexes and parses src.
func ParseSource(src string, opts ...lexer.Option) ([]ast.Node, error) {
	toks, err := lexer.Tokenize(src, opts...)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

// Parse parses statements until end of input.
func (p *Parser) Parse() ([]ast.Node, error) {
	nodes := []ast.Node{}
	for {
		p.skipSemicolons()
		if p.check(token.EOF) {
			return nodes, nil
		}
		n, err := p.statement()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) statement() (ast.Node, error) {
	switch tok := p.peek(); tok.Kind {
	case token.Var:
		return p.varDecl()
	case token.If:
		return p.ifStmt()
	case token.Loop:
		return p.loopStmt()
	case token.Ident:
		return p.callOrAssign()
	default:
		return nil, &SyntaxError{Pos: tok.Pos, Got: tok}
	}
}

func (p *Parser) varDecl() (ast.Node, error) {
	at := p.advance().Pos
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.terminator(); err != nil {
		return nil, err
	}
	return &ast.VarDecl{At: at, Name: name, Value: value}, nil
}

func (p *Parser) callOrAssign() (ast.Node, error) {
	at := p.peek().Pos
	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	if p.match(token.Assign) {
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.terminator(); err != nil {
			return nil, err
		}
		return &ast.Assign{At: at, Name: name, Value: value}, nil
	}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	args, err := p.args()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if err := p.terminator(); err != nil {
		return nil, err
	}
	return &ast.Call{At: at, Name: name, Args: args}, nil
}

func (p *Parser) ifStmt() (ast.Node, error) {
	at := p.advance().Pos
	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	n := &ast.If{At: at, Cond: cond, Then: then}
	if p.match(token.Else) {
		if n.Else, err = p.block(); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (p *Parser) loopStmt() (ast.Node, error) {
	at := p.advance().Pos
	count, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.Loop{At: at, Count: count, Body: body}, nil
}

func (p *Parser) parenExpr() (ast.Expr, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) block() ([]ast.Node, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	nodes := []ast.Node{}
	for {
		p.skipSemicolons()
		if p.check(token.RBrace) || p.check(token.EOF) {
			break
		}
		n, err := p.statement()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return nodes, nil
}

// terminator consumes the semicolon ending a simple statement. It may be
// omitted right before a closing brace or the end of input.
func (p *Parser) terminator() error {
	if p.match(token.Semicolon) || p.check(token.RBrace) || p.check(token.EOF) {
		return nil
	}
	_, err := p.expect(token.Semicolon)
	return err
}

func (p *Parser) args() ([]ast.Expr, error) {
	args := []ast.Expr{}
	if p.check(token.RParen) {
		return args, nil
	}
	for {
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if !p.match(token.Comma) {
			return args, nil
		}
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) expr() (ast.Expr, error) {
	return p.logicOr()
}

func (p *Parser) logicOr() (ast.Expr, error) {
	return p.binaryLevel(p.logicAnd, map[token.Kind]ast.Op{token.Or: ast.OpOr})
}

func (p *Parser) logicAnd() (ast.Expr, error) {
	return p.binaryLevel(p.equality, map[token.Kind]ast.Op{token.And: ast.OpAnd})
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binaryLevel(p.comparison, map[token.Kind]ast.Op{
		token.Eq:    ast.OpEq,
		token.NotEq: ast.OpNotEq,
	})
}

func (p *Parser) comparison() (ast.Expr, error) {
	return p.binaryLevel(p.primary, map[token.Kind]ast.Op{
		token.Gt:   ast.OpGt,
		token.Lt:   ast.OpLt,
		token.GtEq: ast.OpGtEq,
		token.LtEq: ast.OpLtEq,
	})
}

// binaryLevel parses a left-associative chain of operators from ops whose
// operands are parsed by next.
func (p *Parser) binaryLevel(next func() (ast.Expr, error), ops map[token.Kind]ast.Op) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		op, ok := ops[tok.Kind]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{At: tok.Pos, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) primary() (ast.Expr, error) {
	tok := p.advance()
	switch tok.Kind {
	case token.Number:
		return &ast.IntLit{At: tok.Pos, Value: tok.Int}, nil
	case token.String:
		return &ast.StrLit{At: tok.Pos, Value: tok.Literal}, nil
	case token.Ident:
		return &ast.VarRef{At: tok.Pos, Name: tok.Literal}, nil
	case token.LParen:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, &SyntaxError{Pos: tok.Pos, Got: tok, Want: "expression"}
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

func (p *Parser) ident() (string, error) {
	tok, err := p.expect(token.Ident)
	if err != nil {
		return "", err
	}
	return tok.Literal, nil
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		want := kind.String()
		if kind == token.Ident {
			want = "identifier"
		}
		return tok, &SyntaxError{Pos: tok.Pos, Got: tok, Want: want}
	}
	p.advance()
	return tok, nil
}

func (p *Parser) skipSemicolons() {
	for p.match(token.Semicolon) {
	}
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

// advance returns the current token and moves past it. It never moves past EOF.
func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kind token.Kind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}
