package stdlib

import (
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

func uuidModule() *runtime.ModuleValue {
	return module("std/uuid", map[string]runtime.Value{
		"v4": native("uuid.v4", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			id, err := uuid.NewV4()
			if err != nil {
				return nil, err
			}
			return runtime.UuidValue{Val: id}, nil
		}),
		"v7": native("uuid.v7", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			id, err := uuid.NewV7()
			if err != nil {
				return nil, err
			}
			return runtime.UuidValue{Val: id}, nil
		}),
		"parse": native("uuid.parse", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("parse takes one string argument")
			}
			text, ok := args[0].(runtime.StringValue)
			if !ok {
				return nil, fmt.Errorf("parse argument must be Str, got %s", args[0].TypeName())
			}
			id, err := uuid.FromString(text.Val)
			if err != nil {
				return nil, fmt.Errorf("invalid uuid %q", text.Val)
			}
			return runtime.UuidValue{Val: id}, nil
		}),
		"nil_uuid": runtime.UuidValue{Val: uuid.Nil},
	})
}
