// Package token defines the lexical atoms of the gomacro language.
package token

import "fmt"

// Kind identifies the type of a token.
type Kind int

const (
	EOF Kind = iota

	// Keywords
	Var
	If
	Else
	Loop

	// Literals
	Ident
	Number
	String

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	Comma
	Semicolon

	// Operators
	Assign // =
	Eq     // ==
	NotEq  // !=
	Gt     // >
	Lt     // <
	GtEq   // >=
	LtEq   // <=
	And    // &&
	Or     // ||
)

var kindNames = map[Kind]string{
	EOF:       "EOF",
	Var:       "var",
	If:        "if",
	Else:      "else",
	Loop:      "loop",
	Ident:     "IDENT",
	Number:    "NUMBER",
	String:    "STRING",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	Comma:     ",",
	Semicolon: ";",
	Assign:    "=",
	Eq:        "==",
	NotEq:     "!=",
	Gt:        ">",
	Lt:        "<",
	GtEq:      ">=",
	LtEq:      "<=",
	And:       "&&",
	Or:        "||",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps reserved words to their kinds.
var Keywords = map[string]Kind{
	"var":  Var,
	"if":   If,
	"else": Else,
	"loop": Loop,
}

// Position is a 1-based location in the source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit.
type Token struct {
	Kind    Kind
	Literal string   // raw text; "\n" for an inferred terminator
	Int     int64    // parsed value of a Number token
	Pos     Position // start position
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Ident:
		return fmt.Sprintf("IDENT(%s)", t.Literal)
	case Number:
		return fmt.Sprintf("NUMBER(%d)", t.Int)
	case String:
		return fmt.Sprintf("STRING(%q)", t.Literal)
	case Semicolon:
		if t.Literal == "\n" {
			return "; (newline)"
		}
	}
	return t.Kind.String()
}

// Terminates reports whether a newline following a token of this kind
// ends the current statement.
func (k Kind) Terminates() bool {
	switch k {
	case Ident, Number, String, RParen:
		return true
	}
	return false
}
