// Package commands implements the verbs scripts can call.
//
// Every handler validates its own arguments. Malformed input is reported as
// an interp.Fault so a single bad call does not stop the script; each
// handler documents which conditions fault and which are fatal.
package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/itsmostafa/gomacro/internal/interp"
)

// Registrar accepts command registrations. *engine.Engine satisfies it.
type Registrar interface {
	Register(name string, fn interp.CommandFunc)
}

// Print writes its arguments separated by spaces and followed by a newline.
// It accepts any number of arguments of any kind and never faults; a failed
// write is fatal.
func Print(w io.Writer) interp.CommandFunc {
	return func(_ context.Context, _ *interp.Env, args []interp.Value) error {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		_, err := fmt.Fprintln(w, strings.Join(parts, " "))
		return err
	}
}

// Sleep blocks for its single integer argument in milliseconds, multiplied
// by scale. A missing, non-integer or negative duration faults. Cancelling
// the context ends the sleep early and stops the run.
func Sleep(scale float64) interp.CommandFunc {
	return func(ctx context.Context, _ *interp.Env, args []interp.Value) error {
		if err := interp.ExpectArgs(args, 1); err != nil {
			return err
		}
		ms, err := interp.IntArg(args, 0, "duration")
		if err != nil {
			return err
		}
		if ms < 0 {
			return interp.Faultf("duration must not be negative, got %d", ms)
		}

		// Durations past the int64 range saturate instead of wrapping negative.
		d := time.Duration(math.MaxInt64)
		if f := float64(ms) * scale * float64(time.Millisecond); f < math.MaxInt64 {
			d = time.Duration(f)
		}
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
