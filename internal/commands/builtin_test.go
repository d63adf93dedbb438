package commands

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/itsmostafa/gomacro/internal/interp"
)

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		args []interp.Value
		want string
	}{
		{"no args", nil, "\n"},
		{"single string", []interp.Value{interp.Str("hello")}, "hello\n"},
		{"mixed", []interp.Value{interp.Int(1), interp.Str("two"), interp.Bool(false)}, "1 two false\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Print(&buf)(context.Background(), interp.NewEnv(), tt.args); err != nil {
				t.Fatalf("Print: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestSleep_Faults(t *testing.T) {
	tests := []struct {
		name string
		args []interp.Value
	}{
		{"no args", nil},
		{"two args", []interp.Value{interp.Int(1), interp.Int(2)}},
		{"string", []interp.Value{interp.Str("10")}},
		{"negative", []interp.Value{interp.Int(-5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Sleep(1)(context.Background(), interp.NewEnv(), tt.args)
			var f *interp.Fault
			if !errors.As(err, &f) {
				t.Errorf("error = %v, want *interp.Fault", err)
			}
		})
	}
}

func TestSleep_Waits(t *testing.T) {
	start := time.Now()
	if err := Sleep(1)(context.Background(), interp.NewEnv(), []interp.Value{interp.Int(20)}); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("slept %s, want at least 20ms", elapsed)
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Sleep(1)(ctx, interp.NewEnv(), []interp.Value{interp.Int(60000)})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestSleep_HugeDurationBlocks(t *testing.T) {
	tests := []struct {
		name  string
		ms    int64
		scale float64
	}{
		{"max int", math.MaxInt64, 1},
		{"scaled past range", math.MaxInt64 / 1000, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			err := Sleep(tt.scale)(ctx, interp.NewEnv(), []interp.Value{interp.Int(tt.ms)})
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("error = %v, want context.DeadlineExceeded", err)
			}
			if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
				t.Errorf("returned after %s, want it to block until the deadline", elapsed)
			}
		})
	}
}
