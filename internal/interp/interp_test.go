package interp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/itsmostafa/gomacro/internal/parser"
)

// recorder is a command table that records every call.
type recorder struct {
	cmds  map[string]CommandFunc
	calls []string
}

func newRecorder() *recorder {
	r := &recorder{cmds: make(map[string]CommandFunc)}
	r.cmds["print"] = func(_ context.Context, _ *Env, args []Value) error {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.GoString()
		}
		r.calls = append(r.calls, "print("+strings.Join(parts, ", ")+")")
		return nil
	}
	return r
}

func (r *recorder) Lookup(name string) (CommandFunc, bool) {
	fn, ok := r.cmds[name]
	return fn, ok
}

func run(t *testing.T, src string, r *recorder, opts ...Option) (*Env, error) {
	t.Helper()
	nodes, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource(%q): %v", src, err)
	}
	env := NewEnv()
	return env, New(env, r, opts...).Execute(context.Background(), nodes)
}

func equalCalls(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExecute_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "loop three times",
			src:  `loop (3) { print(1); }`,
			want: []string{"print(1)", "print(1)", "print(1)"},
		},
		{
			name: "if else big",
			src:  `var a = 5; if (a > 3) { print("big"); } else { print("small"); }`,
			want: []string{`print("big")`},
		},
		{
			name: "if else small",
			src:  `var a = 1; if (a > 3) { print("big"); } else { print("small"); }`,
			want: []string{`print("small")`},
		},
		{
			name: "if false without else",
			src:  `if (1 == 2) { print("no"); } print("after");`,
			want: []string{`print("after")`},
		},
		{
			name: "assignment is visible after block",
			src:  `var x = 1; if (x == 1) { x = 2; } print(x);`,
			want: []string{"print(2)"},
		},
		{
			name: "redeclaration shadows",
			src:  `var x = 1; var x = "s"; print(x);`,
			want: []string{`print("s")`},
		},
		{
			name: "loop count evaluated once",
			src:  `var n = 2; loop (n) { n = 5; print(n); }`,
			want: []string{"print(5)", "print(5)"},
		},
		{
			name: "zero loop count",
			src:  `loop (0) { print(0); } print("done");`,
			want: []string{`print("done")`},
		},
		{
			name: "nested loops",
			src:  `loop (2) { loop (2) { print(1); } }`,
			want: []string{"print(1)", "print(1)", "print(1)", "print(1)"},
		},
		{
			name: "logical operators",
			src:  `print(1 < 2 && 3 > 4, 1 < 2 || 3 > 4, 1 != 1, 2 >= 2, 2 <= 1);`,
			want: []string{"print(false, true, false, true, false)"},
		},
		{
			name: "multiple args",
			src:  `var s = "x"; print(s, 1, s);`,
			want: []string{`print("x", 1, "x")`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecorder()
			if _, err := run(t, tt.src, r); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalCalls(r.calls, tt.want) {
				t.Errorf("calls = %v, want %v", r.calls, tt.want)
			}
		})
	}
}

func TestExecute_Faults(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantKind error
		wantLine int
	}{
		{"unbound read", `print(z);`, ErrUnboundVariable, 1},
		{"unbound assign", `z = 1;`, ErrUnboundVariable, 1},
		{"unknown command", "var a = 1\nfly(a);", ErrUnknownCommand, 2},
		{"compare strings", `var s = "a" == "a";`, ErrTypeMismatch, 1},
		{"and on ints", `var b = 1 && 2;`, ErrTypeMismatch, 1},
		{"compare bool with int", `var b = (1 < 2) > 0;`, ErrTypeMismatch, 1},
		{"string loop count", `loop ("3") { }`, ErrTypeMismatch, 1},
		{"int condition", `if (1) { }`, ErrTypeMismatch, 1},
		{"string condition", `if ("yes") { } else { }`, ErrTypeMismatch, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.src, newRecorder())
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("error = %v, want %v", err, tt.wantKind)
			}
			var re *RuntimeError
			if !errors.As(err, &re) {
				t.Fatalf("error %T is not *RuntimeError", err)
			}
			if re.Pos.Line != tt.wantLine {
				t.Errorf("fault line = %d, want %d", re.Pos.Line, tt.wantLine)
			}
		})
	}
}

func TestExecute_FaultStopsExecution(t *testing.T) {
	r := newRecorder()
	env, err := run(t, `var a = 1; print("before"); print(z); a = 2; print("after");`, r)
	if !errors.Is(err, ErrUnboundVariable) {
		t.Fatalf("error = %v, want ErrUnboundVariable", err)
	}
	if !equalCalls(r.calls, []string{`print("before")`}) {
		t.Errorf("calls = %v, want only the call before the fault", r.calls)
	}
	if v, _ := env.Get("a"); v != Int(1) {
		t.Errorf("a = %v, want 1 (no statements after the fault)", v)
	}
}

func TestExecute_HandlerFaultContinues(t *testing.T) {
	r := newRecorder()
	r.cmds["check"] = func(_ context.Context, _ *Env, args []Value) error {
		if err := ExpectArgs(args, 1); err != nil {
			return err
		}
		return nil
	}

	var faults []*Fault
	_, err := run(t, "check()\nprint(1)", r, WithFaultHandler(func(f *Fault) {
		faults = append(faults, f)
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(faults) != 1 {
		t.Fatalf("got %d faults, want 1", len(faults))
	}
	if faults[0].Command != "check" || faults[0].Pos.Line != 1 {
		t.Errorf("fault = %+v, want command check at line 1", faults[0])
	}
	if !equalCalls(r.calls, []string{"print(1)"}) {
		t.Errorf("calls = %v, want print after the fault", r.calls)
	}
}

func TestExecute_HandlerErrorEscalates(t *testing.T) {
	boom := fmt.Errorf("device unplugged")
	r := newRecorder()
	r.cmds["click"] = func(context.Context, *Env, []Value) error { return boom }

	_, err := run(t, `click(); print(1);`, r)
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("error = %v, want ErrCommandFailed", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want it to wrap the handler error", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("calls = %v, want none", r.calls)
	}
}

func TestExecute_CommandsSeeEnv(t *testing.T) {
	r := newRecorder()
	r.cmds["bump"] = func(_ context.Context, env *Env, _ []Value) error {
		v, err := env.Get("n")
		if err != nil {
			return err
		}
		n, _ := v.AsInt()
		return env.Set("n", Int(n+1))
	}

	env, err := run(t, `var n = 1; bump(); bump();`, r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := env.Get("n"); v != Int(3) {
		t.Errorf("n = %v, want 3", v)
	}
}

func TestExecute_ArgumentsEvaluatedBeforeLookup(t *testing.T) {
	_, err := run(t, `missing(undeclared);`, newRecorder())
	if !errors.Is(err, ErrUnboundVariable) {
		t.Errorf("error = %v, want ErrUnboundVariable", err)
	}
}

func TestExecute_Cancellation(t *testing.T) {
	nodes, err := parser.ParseSource(`loop (1000000000) { print(1); }`)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := newRecorder()
	r.cmds["print"] = func(context.Context, *Env, []Value) error {
		cancel()
		return nil
	}

	err = New(NewEnv(), r).Execute(ctx, nodes)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExecute_Deterministic(t *testing.T) {
	src := `loop (2) { print("a", 1 < 2); } if (3 == 3) { print(3); }`
	first := newRecorder()
	if _, err := run(t, src, first); err != nil {
		t.Fatal(err)
	}
	second := newRecorder()
	if _, err := run(t, src, second); err != nil {
		t.Fatal(err)
	}
	if !equalCalls(first.calls, second.calls) {
		t.Errorf("runs differ: %v vs %v", first.calls, second.calls)
	}
}
