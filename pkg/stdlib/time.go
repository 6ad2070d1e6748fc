package stdlib

import (
	"fmt"
	"time"

	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

func timeModule() *runtime.ModuleValue {
	return module("std/time", map[string]runtime.Value{
		"now_unix": native("time.now_unix", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return runtime.IntValue{Val: time.Now().Unix()}, nil
		}),
		"now_millis": native("time.now_millis", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return runtime.IntValue{Val: time.Now().UnixMilli()}, nil
		}),
		"format_unix": native("time.format_unix", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			if len(args) < 1 || len(args) > 2 {
				return nil, fmt.Errorf("format_unix takes a timestamp and an optional layout")
			}
			secs, ok := args[0].(runtime.IntValue)
			if !ok {
				return nil, fmt.Errorf("format_unix timestamp must be Int, got %s", args[0].TypeName())
			}
			layout := time.RFC3339
			if len(args) == 2 {
				l, ok := args[1].(runtime.StringValue)
				if !ok {
					return nil, fmt.Errorf("format_unix layout must be Str, got %s", args[1].TypeName())
				}
				layout = l.Val
			}
			return runtime.StringValue{Val: time.Unix(secs.Val, 0).UTC().Format(layout)}, nil
		}),
		"sleep_millis": native("time.sleep_millis", func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("sleep_millis takes one Int argument")
			}
			ms, ok := args[0].(runtime.IntValue)
			if !ok {
				return nil, fmt.Errorf("sleep_millis argument must be Int, got %s", args[0].TypeName())
			}
			time.Sleep(time.Duration(ms.Val) * time.Millisecond)
			return runtime.NilValue{}, nil
		}),
	})
}
