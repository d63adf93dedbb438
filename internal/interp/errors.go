package interp

import (
	"errors"
	"fmt"

	"github.com/itsmostafa/gomacro/internal/token"
)

// Fatal fault kinds. A RuntimeError unwraps to exactly one of these.
var (
	ErrUnboundVariable = errors.New("unbound variable")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrCommandFailed   = errors.New("command failed")
)

// RuntimeError is a fatal fault that aborts the current run.
type RuntimeError struct {
	Kind error
	Pos  token.Position
	Msg  string
	Err  error // underlying handler error for ErrCommandFailed
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Pos, e.Kind, e.Msg)
}

func (e *RuntimeError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func fault(kind error, pos token.Position, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Fault is a handler-local fault: a command rejected its input but the
// run continues.
type Fault struct {
	Command string
	Pos     token.Position
	Msg     string
}

func (f *Fault) Error() string {
	if f.Command == "" {
		return f.Msg
	}
	return fmt.Sprintf("%s: %s", f.Command, f.Msg)
}

// Faultf builds a handler-local fault. The interpreter fills in the
// command name and call position.
func Faultf(format string, args ...any) error {
	return &Fault{Msg: fmt.Sprintf(format, args...)}
}

// ExpectArgs returns a Fault unless args has exactly n elements.
func ExpectArgs(args []Value, n int) error {
	if len(args) != n {
		return Faultf("expected %d arguments, got %d", n, len(args))
	}
	return nil
}

// IntArg returns args[i] as an integer or a Fault naming what.
func IntArg(args []Value, i int, what string) (int64, error) {
	if i >= len(args) {
		return 0, Faultf("missing %s", what)
	}
	n, ok := args[i].AsInt()
	if !ok {
		return 0, Faultf("%s must be an int, got %s", what, args[i].Kind())
	}
	return n, nil
}

// StringArg returns args[i] as a string or a Fault naming what.
func StringArg(args []Value, i int, what string) (string, error) {
	if i >= len(args) {
		return "", Faultf("missing %s", what)
	}
	s, ok := args[i].AsString()
	if !ok {
		return "", Faultf("%s must be a string, got %s", what, args[i].Kind())
	}
	return s, nil
}
