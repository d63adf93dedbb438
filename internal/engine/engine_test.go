package engine

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/itsmostafa/gomacro/internal/interp"
	"github.com/itsmostafa/gomacro/internal/parser"
)

func TestEngine_RunSource(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"loop prints three times", `loop (3) { print(1); }`, "1\n1\n1\n"},
		{"if takes then branch", `var a = 5; if (a > 3) { print("big"); } else { print("small"); }`, "big\n"},
		{"if takes else branch", `var a = 2; if (a > 3) { print("big"); } else { print("small"); }`, "small\n"},
		{"print joins args", `print("a", 1, 2 > 1);`, "a 1 true\n"},
		{"empty print", `print();`, "\n"},
		{"newline terminated", "var x = 1\nx = 2\nprint(x)\n", "2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			e := New(WithOutput(&out))
			if err := e.RunSource(context.Background(), tt.src); err != nil {
				t.Fatalf("RunSource: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestEngine_StatePersistsAcrossRuns(t *testing.T) {
	var out bytes.Buffer
	e := New(WithOutput(&out))
	ctx := context.Background()

	if err := e.RunSource(ctx, `var n = 1;`); err != nil {
		t.Fatal(err)
	}
	if err := e.RunSource(ctx, `n = 2; print(n);`); err != nil {
		t.Fatal(err)
	}
	if out.String() != "2\n" {
		t.Errorf("output = %q, want %q", out.String(), "2\n")
	}
	if v, _ := e.Env().Get("n"); v != interp.Int(2) {
		t.Errorf("n = %v, want 2", v)
	}
}

func TestEngine_FaultKeepsEarlierMutations(t *testing.T) {
	e := New(WithOutput(&bytes.Buffer{}))
	err := e.RunSource(context.Background(), `var a = 1; a = 2; nope(); a = 3;`)
	if !errors.Is(err, interp.ErrUnknownCommand) {
		t.Fatalf("error = %v, want ErrUnknownCommand", err)
	}
	if v, _ := e.Env().Get("a"); v != interp.Int(2) {
		t.Errorf("a = %v, want 2", v)
	}
}

func TestEngine_SyntaxErrorRunsNothing(t *testing.T) {
	var out bytes.Buffer
	e := New(WithOutput(&out))
	err := e.RunSource(context.Background(), `print(1); var = 2;`)
	var se *parser.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *parser.SyntaxError", err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing", out.String())
	}
}

func TestEngine_StrictLexing(t *testing.T) {
	lenient := New(WithOutput(&bytes.Buffer{}))
	if err := lenient.RunSource(context.Background(), `var a = 1 @;`); err != nil {
		t.Errorf("lenient engine: unexpected error %v", err)
	}

	strict := New(WithOutput(&bytes.Buffer{}), WithStrictLexing(true))
	if err := strict.RunSource(context.Background(), `var a = 1 @;`); err == nil {
		t.Error("strict engine should reject '@'")
	}
}

func TestEngine_RegisterAndFaults(t *testing.T) {
	var faults []*interp.Fault
	var out bytes.Buffer
	e := New(WithOutput(&out), WithFaultHandler(func(f *interp.Fault) {
		faults = append(faults, f)
	}))
	e.Register("double", func(_ context.Context, env *interp.Env, args []interp.Value) error {
		name, err := interp.StringArg(args, 0, "destination")
		if err != nil {
			return err
		}
		v, err := env.Get(name)
		if err != nil {
			return interp.Faultf("%v", err)
		}
		n, _ := v.AsInt()
		return env.Set(name, interp.Int(n*2))
	})

	src := `var x = 4; double("x"); double(1); print(x);`
	if err := e.RunSource(context.Background(), src); err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	if out.String() != "8\n" {
		t.Errorf("output = %q, want %q", out.String(), "8\n")
	}
	if len(faults) != 1 || faults[0].Command != "double" {
		t.Errorf("faults = %v, want one from double", faults)
	}

	names := e.Commands()
	want := []string{"double", "print", "sleep"}
	if len(names) != len(want) {
		t.Fatalf("Commands() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Commands()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestEngine_SleepScale(t *testing.T) {
	e := New(WithOutput(&bytes.Buffer{}), WithSleepScale(0))
	if err := e.RunSource(context.Background(), `sleep(100000);`); err != nil {
		t.Errorf("scaled sleep: %v", err)
	}
}

func TestEngine_ConcurrentRunsSerialize(t *testing.T) {
	var out bytes.Buffer
	e := New(WithOutput(&out))
	if err := e.RunSource(context.Background(), `var n = 0;`); err != nil {
		t.Fatal(err)
	}
	e.Register("inc", func(_ context.Context, env *interp.Env, _ []interp.Value) error {
		v, _ := env.Get("n")
		n, _ := v.AsInt()
		return env.Set("n", interp.Int(n+1))
	})

	nodes, err := e.Parse(`loop (100) { inc(); }`)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.Run(context.Background(), nodes); err != nil {
				t.Errorf("Run: %v", err)
			}
		}()
	}
	wg.Wait()

	if v, _ := e.Env().Get("n"); v != interp.Int(800) {
		t.Errorf("n = %v, want 800", v)
	}
}
