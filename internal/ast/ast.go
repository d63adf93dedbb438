// Package ast defines the syntax tree produced by the parser.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/itsmostafa/gomacro/internal/token"
)

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// Op is a binary operator. The language has comparison and logical
// operators only.
type Op int

const (
	OpEq Op = iota
	OpNotEq
	OpGt
	OpLt
	OpGtEq
	OpLtEq
	OpAnd
	OpOr
)

var opSymbols = [...]string{
	OpEq:    "==",
	OpNotEq: "!=",
	OpGt:    ">",
	OpLt:    "<",
	OpGtEq:  ">=",
	OpLtEq:  "<=",
	OpAnd:   "&&",
	OpOr:    "||",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opSymbols) {
		return opSymbols[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Logical reports whether o takes boolean operands.
func (o Op) Logical() bool {
	return o == OpAnd || o == OpOr
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expr is an expression node.
type Expr interface {
	Pos() token.Position
	String() string
	exprNode()
}

// IntLit is an integer literal.
type IntLit struct {
	At    token.Position
	Value int64
}

// StrLit is a string literal.
type StrLit struct {
	At    token.Position
	Value string
}

// VarRef reads a variable.
type VarRef struct {
	At   token.Position
	Name string
}

// Binary applies Op to two operands.
type Binary struct {
	At    token.Position
	Left  Expr
	Op    Op
	Right Expr
}

func (e *IntLit) Pos() token.Position { return e.At }
func (e *StrLit) Pos() token.Position { return e.At }
func (e *VarRef) Pos() token.Position { return e.At }
func (e *Binary) Pos() token.Position { return e.At }

func (*IntLit) exprNode() {}
func (*StrLit) exprNode() {}
func (*VarRef) exprNode() {}
func (*Binary) exprNode() {}

func (e *IntLit) String() string { return strconv.FormatInt(e.Value, 10) }
func (e *StrLit) String() string { return `"` + e.Value + `"` }
func (e *VarRef) String() string { return e.Name }
func (e *Binary) String() string {
	return "(" + e.Left.String() + " " + e.Op.String() + " " + e.Right.String() + ")"
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Node is a statement node.
type Node interface {
	Pos() token.Position
	String() string
	stmtNode()
}

// VarDecl binds a name: var name = value;
type VarDecl struct {
	At    token.Position
	Name  string
	Value Expr
}

// Assign overwrites an existing binding: name = value;
type Assign struct {
	At    token.Position
	Name  string
	Value Expr
}

// Call invokes a registered command: name(args...);
type Call struct {
	At   token.Position
	Name string
	Args []Expr
}

// Loop runs Body Count times.
type Loop struct {
	At    token.Position
	Count Expr
	Body  []Node
}

// If runs Then or Else depending on Cond. Else is nil when absent.
type If struct {
	At   token.Position
	Cond Expr
	Then []Node
	Else []Node
}

func (n *VarDecl) Pos() token.Position { return n.At }
func (n *Assign) Pos() token.Position  { return n.At }
func (n *Call) Pos() token.Position    { return n.At }
func (n *Loop) Pos() token.Position    { return n.At }
func (n *If) Pos() token.Position      { return n.At }

func (*VarDecl) stmtNode() {}
func (*Assign) stmtNode()  {}
func (*Call) stmtNode()    {}
func (*Loop) stmtNode()    {}
func (*If) stmtNode()      {}

func (n *VarDecl) String() string {
	return "var " + n.Name + " = " + n.Value.String() + ";"
}

func (n *Assign) String() string {
	return n.Name + " = " + n.Value.String() + ";"
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Name + "(" + strings.Join(args, ", ") + ");"
}

func (n *Loop) String() string {
	return "loop (" + n.Count.String() + ") " + blockString(n.Body)
}

func (n *If) String() string {
	s := "if (" + n.Cond.String() + ") " + blockString(n.Then)
	if n.Else != nil {
		s += " else " + blockString(n.Else)
	}
	return s
}

func blockString(body []Node) string {
	if len(body) == 0 {
		return "{ }"
	}
	parts := make([]string, len(body))
	for i, n := range body {
		parts[i] = n.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// Format renders a program as indented source, one statement per line.
func Format(nodes []Node) string {
	var b strings.Builder
	formatBlock(&b, nodes, 0)
	return b.String()
}

func formatBlock(b *strings.Builder, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		b.WriteString(indent)
		switch n := n.(type) {
		case *Loop:
			b.WriteString("loop (" + n.Count.String() + ") {\n")
			formatBlock(b, n.Body, depth+1)
			b.WriteString(indent + "}\n")
		case *If:
			b.WriteString("if (" + n.Cond.String() + ") {\n")
			formatBlock(b, n.Then, depth+1)
			if n.Else != nil {
				b.WriteString(indent + "} else {\n")
				formatBlock(b, n.Else, depth+1)
			}
			b.WriteString(indent + "}\n")
		default:
			b.WriteString(n.String() + "\n")
		}
	}
}
