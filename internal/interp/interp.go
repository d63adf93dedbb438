// Package interp evaluates gomacro programs by walking the AST.
//
// The interpreter owns no I/O: every observable effect goes through the
// commands it dispatches to. Fatal faults are returned as *RuntimeError and
// stop the run; mutations already made to the Env are kept.
package interp

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/itsmostafa/gomacro/internal/ast"
)

var log = commonlog.GetLogger("gomacro.interp")

// CommandFunc is a host-supplied verb. It receives the already-evaluated
// arguments and the execution context. Returning a *Fault reports a
// handler-local problem without stopping the run; any other error is fatal.
type CommandFunc func(ctx context.Context, env *Env, args []Value) error

// Commands resolves command names during Call execution.
type Commands interface {
	Lookup(name string) (CommandFunc, bool)
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithFaultHandler sets the function receiving handler-local faults.
// The default logs them as warnings.
func WithFaultHandler(fn func(*Fault)) Option {
	return func(in *Interpreter) { in.onFault = fn }
}

// Interpreter executes statements against an Env.
type Interpreter struct {
	env     *Env
	cmds    Commands
	onFault func(*Fault)
}

// New creates an interpreter over env that dispatches calls to cmds.
func New(env *Env, cmds Commands, opts ...Option) *Interpreter {
	in := &Interpreter{
		env:  env,
		cmds: cmds,
		onFault: func(f *Fault) {
			log.Warningf("%s: %s", f.Pos, f.Error())
		},
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Env returns the execution context.
func (in *Interpreter) Env() *Env {
	return in.env
}

// Execute runs nodes in order. It stops at the first fatal fault or when
// ctx is cancelled.
func (in *Interpreter) Execute(ctx context.Context, nodes []ast.Node) error {
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.exec(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) exec(ctx context.Context, n ast.Node) error {
	switch n := n.(type) {
	case *ast.VarDecl:
		v, err := in.Eval(n.Value)
		if err != nil {
			return err
		}
		in.env.Declare(n.Name, v)
		return nil

	case *ast.Assign:
		v, err := in.Eval(n.Value)
		if err != nil {
			return err
		}
		if err := in.env.Set(n.Name, v); err != nil {
			return fault(ErrUnboundVariable, n.At, "cannot assign to undeclared variable %s", n.Name)
		}
		return nil

	case *ast.Call:
		return in.call(ctx, n)

	case *ast.Loop:
		v, err := in.Eval(n.Count)
		if err != nil {
			return err
		}
		count, ok := v.AsInt()
		if !ok {
			return fault(ErrTypeMismatch, n.Count.Pos(), "loop count must be an int, got %s", v.Kind())
		}
		for i := int64(0); i < count; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := in.Execute(ctx, n.Body); err != nil {
				return err
			}
		}
		return nil

	case *ast.If:
		v, err := in.Eval(n.Cond)
		if err != nil {
			return err
		}
		cond, ok := v.AsBool()
		if !ok {
			return fault(ErrTypeMismatch, n.Cond.Pos(), "condition must be a bool, got %s", v.Kind())
		}
		if cond {
			return in.Execute(ctx, n.Then)
		}
		if n.Else != nil {
			return in.Execute(ctx, n.Else)
		}
		return nil
	}
	return fmt.Errorf("unsupported statement %T", n)
}

func (in *Interpreter) call(ctx context.Context, n *ast.Call) error {
	args := make([]Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := in.Eval(a)
		if err != nil {
			return err
		}
		args = append(args, v)
	}

	fn, ok := in.cmds.Lookup(n.Name)
	if !ok {
		return fault(ErrUnknownCommand, n.At, "%s", n.Name)
	}

	log.Debugf("call %s with %d args at %s", n.Name, len(args), n.At)
	err := fn(ctx, in.env, args)
	if err == nil {
		return nil
	}

	var f *Fault
	if errors.As(err, &f) {
		f.Command = n.Name
		f.Pos = n.At
		in.onFault(f)
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &RuntimeError{Kind: ErrCommandFailed, Pos: n.At, Msg: fmt.Sprintf("%s: %v", n.Name, err), Err: err}
}

// Eval evaluates an expression. Both operands of a binary expression are
// always evaluated, left first.
func (in *Interpreter) Eval(e ast.Expr) (Value, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return Int(e.Value), nil
	case *ast.StrLit:
		return Str(e.Value), nil
	case *ast.VarRef:
		v, ok := in.env.Lookup(e.Name)
		if !ok {
			return Value{}, fault(ErrUnboundVariable, e.At, "%s", e.Name)
		}
		return v, nil
	case *ast.Binary:
		l, err := in.Eval(e.Left)
		if err != nil {
			return Value{}, err
		}
		r, err := in.Eval(e.Right)
		if err != nil {
			return Value{}, err
		}
		return apply(e, l, r)
	}
	return Value{}, fmt.Errorf("unsupported expression %T", e)
}

// apply implements the operator table: ints with comparisons, bools with
// && and ||. There is no coercion.
func apply(e *ast.Binary, l, r Value) (Value, error) {
	if e.Op.Logical() {
		x, lok := l.AsBool()
		y, rok := r.AsBool()
		if !lok || !rok {
			return Value{}, mismatch(e, l, r)
		}
		if e.Op == ast.OpAnd {
			return Bool(x && y), nil
		}
		return Bool(x || y), nil
	}

	x, lok := l.AsInt()
	y, rok := r.AsInt()
	if !lok || !rok {
		return Value{}, mismatch(e, l, r)
	}
	switch e.Op {
	case ast.OpEq:
		return Bool(x == y), nil
	case ast.OpNotEq:
		return Bool(x != y), nil
	case ast.OpGt:
		return Bool(x > y), nil
	case ast.OpLt:
		return Bool(x < y), nil
	case ast.OpGtEq:
		return Bool(x >= y), nil
	case ast.OpLtEq:
		return Bool(x <= y), nil
	}
	return Value{}, mismatch(e, l, r)
}

func mismatch(e *ast.Binary, l, r Value) error {
	return fault(ErrTypeMismatch, e.At, "cannot apply %s to %s and %s", e.Op, l.Kind(), r.Kind())
}
