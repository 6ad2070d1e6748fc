package interpreter

import (
	"strings"

	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// builtinMethod resolves methods carried by the builtin value kinds. The
// returned bound method receives the receiver as its first argument.
func (i *Interpreter) builtinMethod(obj runtime.Value, name string) (runtime.Value, bool) {
	var impl runtime.NativeFunc
	switch obj.(type) {
	case *runtime.ArrayValue:
		impl = i.arrayMethod(name)
	case *runtime.DictValue:
		impl = i.dictMethod(name)
	case runtime.StringValue:
		impl = i.stringMethod(name)
	case runtime.BytesValue:
		impl = i.bytesMethod(name)
	}
	if impl == nil {
		return nil, false
	}
	return runtime.NativeBoundMethodValue{
		Receiver: obj,
		Method:   runtime.NativeFunctionValue{Name: obj.TypeName() + "." + name, Impl: impl},
	}, true
}

func (i *Interpreter) arrayMethod(name string) runtime.NativeFunc {
	switch name {
	case "len":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			arr := args[0].(*runtime.ArrayValue)
			return runtime.IntValue{Val: int64(len(arr.Elements))}, nil
		}
	case "push":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			arr := args[0].(*runtime.ArrayValue)
			arr.Elements = append(arr.Elements, args[1:]...)
			return arr, nil
		}
	case "pop":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			arr := args[0].(*runtime.ArrayValue)
			if len(arr.Elements) == 0 {
				return nil, i.raise(ExcIndex, "pop from empty array")
			}
			last := arr.Elements[len(arr.Elements)-1]
			arr.Elements = arr.Elements[:len(arr.Elements)-1]
			return last, nil
		}
	case "get":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			arr := args[0].(*runtime.ArrayValue)
			if len(args) != 2 {
				return nil, i.raise(ExcArity, "Array.get takes one index argument")
			}
			idx, ok := args[1].(runtime.IntValue)
			if !ok {
				return nil, i.raise(ExcTypeMismatch, "Array.get index must be Int, got %s", args[1].TypeName())
			}
			if idx.Val < 0 || idx.Val >= int64(len(arr.Elements)) {
				return nil, i.raise(ExcIndex, "array index %d out of bounds (len %d)", idx.Val, len(arr.Elements))
			}
			return arr.Elements[idx.Val], nil
		}
	case "first":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			arr := args[0].(*runtime.ArrayValue)
			if len(arr.Elements) == 0 {
				return runtime.NilValue{}, nil
			}
			return arr.Elements[0], nil
		}
	case "last":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			arr := args[0].(*runtime.ArrayValue)
			if len(arr.Elements) == 0 {
				return runtime.NilValue{}, nil
			}
			return arr.Elements[len(arr.Elements)-1], nil
		}
	case "contains":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			arr := args[0].(*runtime.ArrayValue)
			if len(args) != 2 {
				return nil, i.raise(ExcArity, "Array.contains takes one argument")
			}
			for _, el := range arr.Elements {
				if runtime.Equal(el, args[1]) {
					return runtime.BoolValue{Val: true}, nil
				}
			}
			return runtime.BoolValue{Val: false}, nil
		}
	case "join":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			arr := args[0].(*runtime.ArrayValue)
			sep := ""
			if len(args) > 1 {
				s, ok := args[1].(runtime.StringValue)
				if !ok {
					return nil, i.raise(ExcTypeMismatch, "Array.join separator must be Str, got %s", args[1].TypeName())
				}
				sep = s.Val
			}
			parts := make([]string, len(arr.Elements))
			for idx, el := range arr.Elements {
				parts[idx] = runtime.ToDisplayString(el)
			}
			return runtime.StringValue{Val: strings.Join(parts, sep)}, nil
		}
	}
	return nil
}

func (i *Interpreter) dictMethod(name string) runtime.NativeFunc {
	switch name {
	case "len":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			dict := args[0].(*runtime.DictValue)
			return runtime.IntValue{Val: int64(dict.Len())}, nil
		}
	case "get":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			dict := args[0].(*runtime.DictValue)
			if len(args) < 2 || len(args) > 3 {
				return nil, i.raise(ExcArity, "Dict.get takes a key and an optional fallback")
			}
			key, ok := args[1].(runtime.StringValue)
			if !ok {
				return nil, i.raise(ExcTypeMismatch, "Dict.get key must be Str, got %s", args[1].TypeName())
			}
			if val, present := dict.Get(key.Val); present {
				return val, nil
			}
			if len(args) == 3 {
				return args[2], nil
			}
			return runtime.NilValue{}, nil
		}
	case "set":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			dict := args[0].(*runtime.DictValue)
			if len(args) != 3 {
				return nil, i.raise(ExcArity, "Dict.set takes a key and a value")
			}
			key, ok := args[1].(runtime.StringValue)
			if !ok {
				return nil, i.raise(ExcTypeMismatch, "Dict.set key must be Str, got %s", args[1].TypeName())
			}
			dict.Set(key.Val, args[2])
			return dict, nil
		}
	case "remove":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			dict := args[0].(*runtime.DictValue)
			if len(args) != 2 {
				return nil, i.raise(ExcArity, "Dict.remove takes one key argument")
			}
			key, ok := args[1].(runtime.StringValue)
			if !ok {
				return nil, i.raise(ExcTypeMismatch, "Dict.remove key must be Str, got %s", args[1].TypeName())
			}
			return runtime.BoolValue{Val: dict.Delete(key.Val)}, nil
		}
	case "keys":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			dict := args[0].(*runtime.DictValue)
			keys := make([]runtime.Value, 0, dict.Len())
			for _, k := range dict.Keys() {
				keys = append(keys, runtime.StringValue{Val: k})
			}
			return runtime.NewArray(keys...), nil
		}
	case "values":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			dict := args[0].(*runtime.DictValue)
			values := make([]runtime.Value, 0, dict.Len())
			for _, k := range dict.Keys() {
				val, _ := dict.Get(k)
				values = append(values, val)
			}
			return runtime.NewArray(values...), nil
		}
	case "contains":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			dict := args[0].(*runtime.DictValue)
			if len(args) != 2 {
				return nil, i.raise(ExcArity, "Dict.contains takes one key argument")
			}
			key, ok := args[1].(runtime.StringValue)
			if !ok {
				return nil, i.raise(ExcTypeMismatch, "Dict.contains key must be Str, got %s", args[1].TypeName())
			}
			_, present := dict.Get(key.Val)
			return runtime.BoolValue{Val: present}, nil
		}
	}
	return nil
}

func (i *Interpreter) stringMethod(name string) runtime.NativeFunc {
	switch name {
	case "len":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			s := args[0].(runtime.StringValue)
			return runtime.IntValue{Val: int64(len([]rune(s.Val)))}, nil
		}
	case "upper":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			s := args[0].(runtime.StringValue)
			return runtime.StringValue{Val: strings.ToUpper(s.Val)}, nil
		}
	case "lower":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			s := args[0].(runtime.StringValue)
			return runtime.StringValue{Val: strings.ToLower(s.Val)}, nil
		}
	case "trim":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			s := args[0].(runtime.StringValue)
			return runtime.StringValue{Val: strings.TrimSpace(s.Val)}, nil
		}
	case "contains":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			s := args[0].(runtime.StringValue)
			if len(args) != 2 {
				return nil, i.raise(ExcArity, "Str.contains takes one argument")
			}
			sub, ok := args[1].(runtime.StringValue)
			if !ok {
				return nil, i.raise(ExcTypeMismatch, "Str.contains argument must be Str, got %s", args[1].TypeName())
			}
			return runtime.BoolValue{Val: strings.Contains(s.Val, sub.Val)}, nil
		}
	case "split":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			s := args[0].(runtime.StringValue)
			if len(args) != 2 {
				return nil, i.raise(ExcArity, "Str.split takes one separator argument")
			}
			sep, ok := args[1].(runtime.StringValue)
			if !ok {
				return nil, i.raise(ExcTypeMismatch, "Str.split separator must be Str, got %s", args[1].TypeName())
			}
			parts := strings.Split(s.Val, sep.Val)
			out := make([]runtime.Value, len(parts))
			for idx, part := range parts {
				out[idx] = runtime.StringValue{Val: part}
			}
			return runtime.NewArray(out...), nil
		}
	case "bytes":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			s := args[0].(runtime.StringValue)
			return runtime.BytesValue{Val: []byte(s.Val)}, nil
		}
	}
	return nil
}

func (i *Interpreter) bytesMethod(name string) runtime.NativeFunc {
	switch name {
	case "len":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			b := args[0].(runtime.BytesValue)
			return runtime.IntValue{Val: int64(len(b.Val))}, nil
		}
	case "decode":
		return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			b := args[0].(runtime.BytesValue)
			return runtime.StringValue{Val: string(b.Val)}, nil
		}
	}
	return nil
}
