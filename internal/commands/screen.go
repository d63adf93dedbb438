package commands

import (
	"context"

	"github.com/itsmostafa/gomacro/internal/interp"
	"github.com/itsmostafa/gomacro/internal/screen"
)

// RegisterScreen installs get_color and color, both reading from s.
func RegisterScreen(r Registrar, s screen.Sampler) {
	r.Register("get_color", getColor(s))
	r.Register("color", matchColor(s))
}

// getColor implements get_color(dest, x, y). It binds dest to the pixel's
// "#rrggbb" string. Bad arguments or a failed read fault and leave dest
// untouched.
func getColor(s screen.Sampler) interp.CommandFunc {
	return func(_ context.Context, env *interp.Env, args []interp.Value) error {
		if err := interp.ExpectArgs(args, 3); err != nil {
			return err
		}
		dest, err := interp.StringArg(args, 0, "destination")
		if err != nil {
			return err
		}
		x, err := interp.IntArg(args, 1, "x")
		if err != nil {
			return err
		}
		y, err := interp.IntArg(args, 2, "y")
		if err != nil {
			return err
		}

		c, err := s.Pixel(int(x), int(y))
		if err != nil {
			return interp.Faultf("%v", err)
		}
		env.Declare(dest, interp.Str(screen.Hex(c)))
		return nil
	}
}

// matchColor implements color(dest, hex, x, y, tol). It binds dest to
// whether the pixel is within tol of hex on every channel. Bad arguments
// fault; a failed read binds dest to false.
func matchColor(s screen.Sampler) interp.CommandFunc {
	return func(_ context.Context, env *interp.Env, args []interp.Value) error {
		if err := interp.ExpectArgs(args, 5); err != nil {
			return err
		}
		dest, err := interp.StringArg(args, 0, "destination")
		if err != nil {
			return err
		}
		hex, err := interp.StringArg(args, 1, "color")
		if err != nil {
			return err
		}
		want, err := screen.ParseHex(hex)
		if err != nil {
			return interp.Faultf("%v", err)
		}
		x, err := interp.IntArg(args, 2, "x")
		if err != nil {
			return err
		}
		y, err := interp.IntArg(args, 3, "y")
		if err != nil {
			return err
		}
		tol, err := interp.IntArg(args, 4, "tolerance")
		if err != nil {
			return err
		}
		if tol < 0 {
			return interp.Faultf("tolerance must not be negative, got %d", tol)
		}

		got, err := s.Pixel(int(x), int(y))
		if err != nil {
			env.Declare(dest, interp.Bool(false))
			return nil
		}
		env.Declare(dest, interp.Bool(screen.Within(got, want, int(tol))))
		return nil
	}
}
