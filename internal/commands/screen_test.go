package commands

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/itsmostafa/gomacro/internal/interp"
	"github.com/itsmostafa/gomacro/internal/screen"
)

// table is a minimal Registrar for tests.
type table map[string]interp.CommandFunc

func (t table) Register(name string, fn interp.CommandFunc) { t[name] = fn }

func newScreenTable() table {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 200, G: 100, B: 50, A: 0xff})
	cmds := table{}
	RegisterScreen(cmds, screen.FromImage(img))
	return cmds
}

func isFault(err error) bool {
	var f *interp.Fault
	return errors.As(err, &f)
}

func TestGetColor(t *testing.T) {
	cmds := newScreenTable()
	env := interp.NewEnv()

	err := cmds["get_color"](context.Background(), env, []interp.Value{interp.Str("c"), interp.Int(1), interp.Int(1)})
	if err != nil {
		t.Fatalf("get_color: %v", err)
	}
	if v, _ := env.Get("c"); v != interp.Str("#c86432") {
		t.Errorf("c = %v, want #c86432", v)
	}
}

func TestGetColor_Faults(t *testing.T) {
	tests := []struct {
		name string
		args []interp.Value
	}{
		{"missing args", []interp.Value{interp.Str("c")}},
		{"dest not string", []interp.Value{interp.Int(1), interp.Int(1), interp.Int(1)}},
		{"x not int", []interp.Value{interp.Str("c"), interp.Str("1"), interp.Int(1)}},
		{"out of bounds", []interp.Value{interp.Str("c"), interp.Int(5), interp.Int(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := interp.NewEnv()
			env.Declare("c", interp.Str("old"))
			err := newScreenTable()["get_color"](context.Background(), env, tt.args)
			if !isFault(err) {
				t.Fatalf("error = %v, want *interp.Fault", err)
			}
			if v, _ := env.Get("c"); v != interp.Str("old") {
				t.Errorf("c = %v, want it untouched", v)
			}
		})
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		x, y int64
		tol  int64
		want bool
	}{
		{"exact", "#c86432", 1, 1, 0, true},
		{"within tolerance", "#c5673a", 1, 1, 8, true},
		{"outside tolerance", "#c5673a", 1, 1, 2, false},
		{"black pixel", "#000000", 0, 0, 0, true},
		{"read failure", "#000000", 9, 9, 255, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := interp.NewEnv()
			args := []interp.Value{interp.Str("ok"), interp.Str(tt.hex), interp.Int(tt.x), interp.Int(tt.y), interp.Int(tt.tol)}
			if err := newScreenTable()["color"](context.Background(), env, args); err != nil {
				t.Fatalf("color: %v", err)
			}
			if v, _ := env.Get("ok"); v != interp.Bool(tt.want) {
				t.Errorf("ok = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestColor_Faults(t *testing.T) {
	tests := []struct {
		name string
		args []interp.Value
	}{
		{"too few", []interp.Value{interp.Str("ok"), interp.Str("#000000")}},
		{"bad hex", []interp.Value{interp.Str("ok"), interp.Str("black"), interp.Int(0), interp.Int(0), interp.Int(0)}},
		{"negative tolerance", []interp.Value{interp.Str("ok"), interp.Str("#000000"), interp.Int(0), interp.Int(0), interp.Int(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newScreenTable()["color"](context.Background(), interp.NewEnv(), tt.args)
			if !isFault(err) {
				t.Errorf("error = %v, want *interp.Fault", err)
			}
		})
	}
}
