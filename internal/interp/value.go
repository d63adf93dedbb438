package interp

import (
	"fmt"
	"strconv"
)

// Kind is the runtime type of a Value.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a runtime value: a 64-bit integer, a string or a boolean.
// The zero Value is the integer 0.
type Value struct {
	kind Kind
	i    int64
	s    string
	b    bool
}

// Int returns an integer Value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Str returns a string Value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the runtime type of v.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// String formats v the way print shows it.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return strconv.FormatInt(v.i, 10)
	}
}

// GoString formats v as a literal, quoting strings.
func (v Value) GoString() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.String()
}
