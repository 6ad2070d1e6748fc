package stdlib

import (
	"fmt"
	"math"

	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

func mathModule() *runtime.ModuleValue {
	return module("std/math", map[string]runtime.Value{
		"pi":    runtime.FloatValue{Val: math.Pi},
		"e":     runtime.FloatValue{Val: math.E},
		"sqrt":  native("math.sqrt", floatFunc("sqrt", math.Sqrt)),
		"floor": native("math.floor", floatFunc("floor", math.Floor)),
		"ceil":  native("math.ceil", floatFunc("ceil", math.Ceil)),
		"abs": native("math.abs", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("abs takes one argument")
			}
			switch v := args[0].(type) {
			case runtime.IntValue:
				if v.Val < 0 {
					return runtime.IntValue{Val: -v.Val}, nil
				}
				return v, nil
			case runtime.FloatValue:
				return runtime.FloatValue{Val: math.Abs(v.Val)}, nil
			default:
				return nil, fmt.Errorf("abs argument must be Int or Float, got %s", args[0].TypeName())
			}
		}),
		"pow": native("math.pow", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("pow takes two arguments")
			}
			base, err := toFloat(args[0])
			if err != nil {
				return nil, err
			}
			exp, err := toFloat(args[1])
			if err != nil {
				return nil, err
			}
			return runtime.FloatValue{Val: math.Pow(base, exp)}, nil
		}),
	})
}

func floatFunc(name string, fn func(float64) float64) runtime.NativeFunc {
	return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s takes one argument", name)
		}
		val, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		return runtime.FloatValue{Val: fn(val)}, nil
	}
}

func toFloat(v runtime.Value) (float64, error) {
	switch n := v.(type) {
	case runtime.IntValue:
		return float64(n.Val), nil
	case runtime.FloatValue:
		return n.Val, nil
	default:
		return 0, fmt.Errorf("expected a number, got %s", v.TypeName())
	}
}
