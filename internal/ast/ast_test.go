package ast_test

import (
	"errors"
	"testing"

	"github.com/itsmostafa/gomacro/internal/ast"
	"github.com/itsmostafa/gomacro/internal/parser"
	"github.com/itsmostafa/gomacro/internal/token"
)

const program = `var a = 5
var s = "hi"
if (a > 3 && s == s || a != 1) {
  loop (a) { print(s, a) }
} else {
}
loop (0) { }
a = 2
`

func TestFormat(t *testing.T) {
	nodes, err := parser.ParseSource(program)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}

	want := `var a = 5;
var s = "hi";
if ((((a > 3) && (s == s)) || (a != 1))) {
  loop (a) {
    print(s, a);
  }
} else {
}
loop (0) {
}
a = 2;
`
	if got := ast.Format(nodes); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}

	// Formatted output parses back to the same program.
	again, err := parser.ParseSource(ast.Format(nodes))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if ast.Format(again) != want {
		t.Errorf("Format is not stable across a reparse")
	}
}

func TestEncodeDecode(t *testing.T) {
	nodes, err := parser.ParseSource(program)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}

	data, err := ast.Encode(nodes)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := ast.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if ast.Format(decoded) != ast.Format(nodes) {
		t.Errorf("decoded program differs:\n%s\nwant\n%s", ast.Format(decoded), ast.Format(nodes))
	}

	// Positions survive so runtime errors still point into the source.
	ifNode, ok := decoded[2].(*ast.If)
	if !ok {
		t.Fatalf("decoded[2] is %T, want *ast.If", decoded[2])
	}
	if ifNode.At != (token.Position{Line: 3, Column: 1}) {
		t.Errorf("if position = %v, want 3:1", ifNode.At)
	}
	if ifNode.Else == nil {
		t.Error("empty else block should decode as present")
	}

	// Canonical encoding is deterministic.
	again, err := ast.Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if string(again) != string(data) {
		t.Error("encoding is not deterministic")
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("print(1);")},
		{"cbor string", []byte{0x63, 'a', 'b', 'c'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ast.Decode(tt.data); !errors.Is(err, ast.ErrBadProgram) {
				t.Errorf("Decode error = %v, want ErrBadProgram", err)
			}
		})
	}
}
