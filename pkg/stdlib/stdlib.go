// Package stdlib provides the native modules reachable through `use`.
package stdlib

import (
	"github.com/lolsborn/quest-sub012/pkg/interpreter"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// Register installs every native module on the interpreter.
func Register(interp *interpreter.Interpreter) {
	interp.RegisterModule("std/uuid", uuidModule())
	interp.RegisterModule("std/math", mathModule())
	interp.RegisterModule("std/time", timeModule())
}

func native(name string, impl runtime.NativeFunc) runtime.NativeFunctionValue {
	return runtime.NativeFunctionValue{Name: name, Impl: impl}
}

func module(name string, members map[string]runtime.Value) *runtime.ModuleValue {
	return &runtime.ModuleValue{Name: name, Members: members}
}
