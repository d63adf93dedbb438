package ast

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/itsmostafa/gomacro/internal/token"
)

// Compiled programs are stored as canonical CBOR so that identical
// sources always produce identical bytes.

const (
	programMagic   = "gomacro"
	programVersion = 1
)

// ErrBadProgram is returned when decoding data that is not a compiled program.
var ErrBadProgram = errors.New("not a compiled gomacro program")

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ast: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

const (
	exprInt uint8 = iota + 1
	exprStr
	exprVar
	exprBinary
)

const (
	nodeVarDecl uint8 = iota + 1
	nodeAssign
	nodeCall
	nodeLoop
	nodeIf
)

type wireExpr struct {
	Kind  uint8     `cbor:"k"`
	Line  int       `cbor:"l"`
	Col   int       `cbor:"c"`
	Int   int64     `cbor:"i,omitempty"`
	Str   string    `cbor:"s,omitempty"`
	Op    uint8     `cbor:"o,omitempty"`
	Left  *wireExpr `cbor:"a,omitempty"`
	Right *wireExpr `cbor:"b,omitempty"`
}

type wireNode struct {
	Kind    uint8      `cbor:"k"`
	Line    int        `cbor:"l"`
	Col     int        `cbor:"c"`
	Name    string     `cbor:"n,omitempty"`
	Value   *wireExpr  `cbor:"v,omitempty"`
	Args    []wireExpr `cbor:"x,omitempty"`
	Body    []wireNode `cbor:"t,omitempty"`
	Else    []wireNode `cbor:"e,omitempty"`
	HasElse bool       `cbor:"h,omitempty"`
}

type wireProgram struct {
	Magic   string     `cbor:"magic"`
	Version int        `cbor:"version"`
	Nodes   []wireNode `cbor:"nodes"`
}

// Encode serializes a program to CBOR bytes.
func Encode(nodes []Node) ([]byte, error) {
	body, err := encodeBlock(nodes)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(wireProgram{
		Magic:   programMagic,
		Version: programVersion,
		Nodes:   body,
	})
}

// Decode deserializes a program produced by Encode.
func Decode(data []byte) ([]Node, error) {
	var prog wireProgram
	if err := cbor.Unmarshal(data, &prog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadProgram, err)
	}
	if prog.Magic != programMagic {
		return nil, ErrBadProgram
	}
	if prog.Version != programVersion {
		return nil, fmt.Errorf("unsupported program version %d (want %d)", prog.Version, programVersion)
	}
	return decodeBlock(prog.Nodes)
}

func encodeBlock(nodes []Node) ([]wireNode, error) {
	out := make([]wireNode, 0, len(nodes))
	for _, n := range nodes {
		w, err := encodeNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func encodeNode(n Node) (wireNode, error) {
	w := wireNode{Line: n.Pos().Line, Col: n.Pos().Column}
	var err error
	switch n := n.(type) {
	case *VarDecl:
		w.Kind = nodeVarDecl
		w.Name = n.Name
		w.Value, err = encodeExprPtr(n.Value)
	case *Assign:
		w.Kind = nodeAssign
		w.Name = n.Name
		w.Value, err = encodeExprPtr(n.Value)
	case *Call:
		w.Kind = nodeCall
		w.Name = n.Name
		w.Args = make([]wireExpr, 0, len(n.Args))
		for _, a := range n.Args {
			we, aerr := encodeExpr(a)
			if aerr != nil {
				return w, aerr
			}
			w.Args = append(w.Args, we)
		}
	case *Loop:
		w.Kind = nodeLoop
		if w.Value, err = encodeExprPtr(n.Count); err != nil {
			return w, err
		}
		w.Body, err = encodeBlock(n.Body)
	case *If:
		w.Kind = nodeIf
		if w.Value, err = encodeExprPtr(n.Cond); err != nil {
			return w, err
		}
		if w.Body, err = encodeBlock(n.Then); err != nil {
			return w, err
		}
		if n.Else != nil {
			w.HasElse = true
			w.Else, err = encodeBlock(n.Else)
		}
	default:
		return w, fmt.Errorf("cannot encode statement %T", n)
	}
	return w, err
}

func encodeExprPtr(e Expr) (*wireExpr, error) {
	w, err := encodeExpr(e)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func encodeExpr(e Expr) (wireExpr, error) {
	w := wireExpr{Line: e.Pos().Line, Col: e.Pos().Column}
	switch e := e.(type) {
	case *IntLit:
		w.Kind = exprInt
		w.Int = e.Value
	case *StrLit:
		w.Kind = exprStr
		w.Str = e.Value
	case *VarRef:
		w.Kind = exprVar
		w.Str = e.Name
	case *Binary:
		w.Kind = exprBinary
		w.Op = uint8(e.Op)
		left, err := encodeExprPtr(e.Left)
		if err != nil {
			return w, err
		}
		right, err := encodeExprPtr(e.Right)
		if err != nil {
			return w, err
		}
		w.Left, w.Right = left, right
	default:
		return w, fmt.Errorf("cannot encode expression %T", e)
	}
	return w, nil
}

func decodeBlock(ws []wireNode) ([]Node, error) {
	out := make([]Node, 0, len(ws))
	for i := range ws {
		n, err := decodeNode(&ws[i])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeNode(w *wireNode) (Node, error) {
	at := token.Position{Line: w.Line, Column: w.Col}
	switch w.Kind {
	case nodeVarDecl, nodeAssign:
		v, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		if w.Kind == nodeVarDecl {
			return &VarDecl{At: at, Name: w.Name, Value: v}, nil
		}
		return &Assign{At: at, Name: w.Name, Value: v}, nil
	case nodeCall:
		args := make([]Expr, 0, len(w.Args))
		for i := range w.Args {
			a, err := decodeExpr(&w.Args[i])
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return &Call{At: at, Name: w.Name, Args: args}, nil
	case nodeLoop:
		count, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(w.Body)
		if err != nil {
			return nil, err
		}
		return &Loop{At: at, Count: count, Body: body}, nil
	case nodeIf:
		cond, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		then, err := decodeBlock(w.Body)
		if err != nil {
			return nil, err
		}
		n := &If{At: at, Cond: cond, Then: then}
		if w.HasElse {
			if n.Else, err = decodeBlock(w.Else); err != nil {
				return nil, err
			}
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: unknown statement kind %d", ErrBadProgram, w.Kind)
}

func decodeExpr(w *wireExpr) (Expr, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: missing expression", ErrBadProgram)
	}
	at := token.Position{Line: w.Line, Column: w.Col}
	switch w.Kind {
	case exprInt:
		return &IntLit{At: at, Value: w.Int}, nil
	case exprStr:
		return &StrLit{At: at, Value: w.Str}, nil
	case exprVar:
		return &VarRef{At: at, Name: w.Str}, nil
	case exprBinary:
		if Op(w.Op) > OpOr {
			return nil, fmt.Errorf("%w: unknown operator %d", ErrBadProgram, w.Op)
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{At: at, Left: left, Op: Op(w.Op), Right: right}, nil
	}
	return nil, fmt.Errorf("%w: unknown expression kind %d", ErrBadProgram, w.Kind)
}
