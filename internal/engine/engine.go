// Package engine is the embedding facade for gomacro: it owns a variable
// store and a command registry and runs programs against them.
package engine

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/itsmostafa/gomacro/internal/ast"
	"github.com/itsmostafa/gomacro/internal/commands"
	"github.com/itsmostafa/gomacro/internal/interp"
	"github.com/itsmostafa/gomacro/internal/lexer"
	"github.com/itsmostafa/gomacro/internal/parser"
)

var log = commonlog.GetLogger("gomacro.engine")

// Option configures an Engine.
type Option func(*Engine)

// WithOutput sets the writer used by the print command. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.output = w }
}

// WithSleepScale multiplies every sleep duration. Defaults to 1.
func WithSleepScale(scale float64) Option {
	return func(e *Engine) { e.sleepScale = scale }
}

// WithFaultHandler receives handler-local faults instead of the log.
func WithFaultHandler(fn func(*interp.Fault)) Option {
	return func(e *Engine) { e.onFault = fn }
}

// WithStrictLexing makes RunSource reject unrecognized characters.
func WithStrictLexing(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

// Engine runs programs against a private execution context. A single
// mutex covers each whole run, so one Engine may be shared between
// goroutines; runs are serialized.
type Engine struct {
	mu       sync.Mutex
	env      *interp.Env
	registry *Registry

	output     io.Writer
	sleepScale float64
	onFault    func(*interp.Fault)
	strict     bool
}

// New creates an engine with the built-in print and sleep commands.
func New(opts ...Option) *Engine {
	e := &Engine{
		env:        interp.NewEnv(),
		registry:   NewRegistry(),
		output:     os.Stdout,
		sleepScale: 1,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.registry.Register("print", commands.Print(e.output))
	e.registry.Register("sleep", commands.Sleep(e.sleepScale))
	return e
}

// Register installs or replaces a command. It waits for any run in
// progress to finish.
func (e *Engine) Register(name string, fn interp.CommandFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registry.Register(name, fn)
	log.Debugf("registered command %s", name)
}

// Commands returns the registered command names.
func (e *Engine) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Names()
}

// Env returns the engine's variable store. It must not be used while a
// run is in progress.
func (e *Engine) Env() *interp.Env {
	return e.env
}

// Run executes a parsed program. It returns nil or the first fatal fault.
// Variable changes made before a fault are kept.
func (e *Engine) Run(ctx context.Context, nodes []ast.Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	runID := uuid.NewString()
	start := time.Now()
	log.Infof("run %s: %d statements", runID, len(nodes))

	var opts []interp.Option
	if e.onFault != nil {
		opts = append(opts, interp.WithFaultHandler(e.onFault))
	}
	err := interp.New(e.env, e.registry, opts...).Execute(ctx, nodes)
	if err != nil {
		log.Errorf("run %s failed after %s: %v", runID, time.Since(start), err)
		return err
	}
	log.Infof("run %s finished in %s", runID, time.Since(start))
	return nil
}

// RunSource lexes, parses and runs src. Syntax errors are returned before
// anything executes.
func (e *Engine) RunSource(ctx context.Context, src string) error {
	nodes, err := e.Parse(src)
	if err != nil {
		return err
	}
	return e.Run(ctx, nodes)
}

// Parse lexes and parses src using the engine's lexer settings.
func (e *Engine) Parse(src string) ([]ast.Node, error) {
	var lexOpts []lexer.Option
	if e.strict {
		lexOpts = append(lexOpts, lexer.Strict())
	}
	return parser.ParseSource(src, lexOpts...)
}
