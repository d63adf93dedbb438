package commands

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/itsmostafa/gomacro/internal/interp"
)

func runJS(t *testing.T, ctx context.Context, env *interp.Env, source string, timeout time.Duration) error {
	t.Helper()
	cmds := table{}
	RegisterJS(cmds, timeout)
	return cmds["js"](ctx, env, []interp.Value{interp.Str("out"), interp.Str(source)})
}

func TestJS_Results(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   interp.Value
	}{
		{"integer", "6 * 7", interp.Int(42)},
		{"integral float", "10 / 2", interp.Int(5)},
		{"string", "'a' + 'b'", interp.Str("ab")},
		{"bool", "3 > 2", interp.Bool(true)},
		{"reads script vars", "n + 1", interp.Int(11)},
		{"reads string vars", "name.toUpperCase()", interp.Str("BOB")},
		{"reads bool vars", "!flag", interp.Bool(false)},
		{"int64 minimum", "-Math.pow(2, 63)", interp.Int(math.MinInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := interp.NewEnv()
			env.Declare("n", interp.Int(10))
			env.Declare("name", interp.Str("bob"))
			env.Declare("flag", interp.Bool(true))

			if err := runJS(t, context.Background(), env, tt.source, time.Second); err != nil {
				t.Fatalf("js: %v", err)
			}
			if v, _ := env.Get("out"); v != tt.want {
				t.Errorf("out = %#v, want %#v", v, tt.want)
			}
		})
	}
}

func TestJS_Faults(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"syntax error", "1 +"},
		{"thrown error", "throw new Error('boom')"},
		{"fraction", "1 / 3"},
		{"beyond int64", "Math.pow(2, 63)"},
		{"undefined", "undefined"},
		{"object", "({a: 1})"},
		{"timeout", "while (true) {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := interp.NewEnv()
			err := runJS(t, context.Background(), env, tt.source, 50*time.Millisecond)
			if !isFault(err) {
				t.Fatalf("error = %v, want *interp.Fault", err)
			}
			if _, ok := env.Lookup("out"); ok {
				t.Error("out should not be bound after a fault")
			}
		})
	}
}

func TestJS_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := runJS(t, ctx, interp.NewEnv(), "while (true) {}", time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
