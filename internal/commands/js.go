package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dop251/goja"

	"github.com/itsmostafa/gomacro/internal/interp"
)

// RegisterJS installs js(dest, source). Each call evaluates source in a
// fresh goja runtime with the script's variables bound as globals and binds
// dest to the result. Evaluation is interrupted after timeout.
func RegisterJS(r Registrar, timeout time.Duration) {
	r.Register("js", jsEval(timeout))
}

// jsEval faults on bad arguments, JavaScript errors, timeouts and results
// that are not an integer, string or boolean. Cancelling the run's context
// stops the run.
func jsEval(timeout time.Duration) interp.CommandFunc {
	return func(ctx context.Context, env *interp.Env, args []interp.Value) error {
		if err := interp.ExpectArgs(args, 2); err != nil {
			return err
		}
		dest, err := interp.StringArg(args, 0, "destination")
		if err != nil {
			return err
		}
		source, err := interp.StringArg(args, 1, "source")
		if err != nil {
			return err
		}

		vm := goja.New()
		if err := bindEnv(vm, env); err != nil {
			return err
		}

		evalCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		go func() {
			<-evalCtx.Done()
			vm.Interrupt("execution timeout or cancelled")
		}()

		val, err := vm.RunString(source)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var interrupted *goja.InterruptedError
			if errors.As(err, &interrupted) {
				return interp.Faultf("interrupted after %s", timeout)
			}
			return interp.Faultf("%v", err)
		}

		v, err := fromJS(val)
		if err != nil {
			return err
		}
		env.Declare(dest, v)
		return nil
	}
}

func bindEnv(vm *goja.Runtime, env *interp.Env) error {
	for _, name := range env.Names() {
		v, _ := env.Get(name)
		var gv any
		switch v.Kind() {
		case interp.KindInt:
			gv, _ = v.AsInt()
		case interp.KindString:
			gv, _ = v.AsString()
		case interp.KindBool:
			gv, _ = v.AsBool()
		}
		if err := vm.Set(name, gv); err != nil {
			return fmt.Errorf("failed to set variable %s: %w", name, err)
		}
	}
	return nil
}

func fromJS(val goja.Value) (interp.Value, error) {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return interp.Value{}, interp.Faultf("expression produced no value")
	}
	switch v := val.Export().(type) {
	case int64:
		return interp.Int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return interp.Value{}, interp.Faultf("result %v is not an integer", v)
		}
		return interp.Int(int64(v)), nil
	case string:
		return interp.Str(v), nil
	case bool:
		return interp.Bool(v), nil
	default:
		return interp.Value{}, interp.Faultf("unsupported result type %T", v)
	}
}
