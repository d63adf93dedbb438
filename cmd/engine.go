package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/itsmostafa/gomacro/internal/ast"
	"github.com/itsmostafa/gomacro/internal/commands"
	"github.com/itsmostafa/gomacro/internal/engine"
	"github.com/itsmostafa/gomacro/internal/interp"
	"github.com/itsmostafa/gomacro/internal/output"
	"github.com/itsmostafa/gomacro/internal/screen"
)

// compiledExt marks CBOR-encoded programs written by compile.
const compiledExt = ".gmc"

// newEngine builds an engine with every host command installed. Faults are
// printed to errOut as warnings.
func newEngine(out, errOut io.Writer, strict bool, frame string) *engine.Engine {
	e := engine.New(
		engine.WithOutput(out),
		engine.WithSleepScale(cfg.Run.SleepScale),
		engine.WithStrictLexing(strict),
		engine.WithFaultHandler(func(f *interp.Fault) {
			output.FormatFault(errOut, f)
		}),
	)

	if frame == "" {
		frame = cfg.Screen.Image
	}
	var sampler screen.Sampler = screen.None{}
	if frame != "" {
		sampler = screen.NewImageSampler(frame)
	}
	commands.RegisterScreen(e, sampler)
	commands.RegisterJS(e, cfg.JSTimeout())
	return e
}

// loadProgram reads path as source or, for .gmc files, as a compiled
// program. src is empty for compiled programs.
func loadProgram(e *engine.Engine, path string) (nodes []ast.Node, src string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("cannot read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), compiledExt) {
		nodes, err = ast.Decode(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nodes, "", nil
	}

	src = string(data)
	nodes, err = e.Parse(src)
	return nodes, src, err
}
