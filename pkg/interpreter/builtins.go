package interpreter

import (
	"fmt"
	"strings"

	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// registerBuiltins declares the global native functions. They take the same
// binding path as user functions, so calling them with bad arguments raises
// the same exception types.
func (i *Interpreter) registerBuiltins() {
	i.RegisterNative("print", []*ast.Parameter{ast.RestParam("values")}, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		fmt.Fprint(i.Stdout, i.renderArgs(args[0]))
		return runtime.NilValue{}, nil
	})
	i.RegisterNative("puts", []*ast.Parameter{ast.RestParam("values")}, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		fmt.Fprintln(i.Stdout, i.renderArgs(args[0]))
		return runtime.NilValue{}, nil
	})
	i.RegisterNative("len", []*ast.Parameter{ast.Param("value")}, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		switch v := args[0].(type) {
		case runtime.StringValue:
			return runtime.IntValue{Val: int64(len([]rune(v.Val)))}, nil
		case runtime.BytesValue:
			return runtime.IntValue{Val: int64(len(v.Val))}, nil
		case *runtime.ArrayValue:
			return runtime.IntValue{Val: int64(len(v.Elements))}, nil
		case *runtime.DictValue:
			return runtime.IntValue{Val: int64(v.Len())}, nil
		default:
			return nil, i.raise(ExcTypeMismatch, "len() does not support %s", args[0].TypeName())
		}
	})
	i.RegisterNative("str", []*ast.Parameter{ast.Param("value")}, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: runtime.ToDisplayString(args[0])}, nil
	})
	i.RegisterNative("type_of", []*ast.Parameter{ast.Param("value")}, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: args[0].TypeName()}, nil
	})
}

func (i *Interpreter) renderArgs(values runtime.Value) string {
	arr := values.(*runtime.ArrayValue)
	parts := make([]string, len(arr.Elements))
	for idx, el := range arr.Elements {
		parts[idx] = runtime.ToDisplayString(el)
	}
	return strings.Join(parts, " ")
}
