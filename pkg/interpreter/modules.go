package interpreter

import (
	"strings"

	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// Loader resolves a `use` path that is not a registered native module.
// Implementations typically read a source document from disk or a dependency
// checkout and evaluate it into a namespace.
type Loader interface {
	Load(path string) (*runtime.ModuleValue, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (*runtime.ModuleValue, error)

func (f LoaderFunc) Load(path string) (*runtime.ModuleValue, error) { return f(path) }

// RegisterModule installs a native module under its import path.
func (i *Interpreter) RegisterModule(path string, mod *runtime.ModuleValue) {
	i.nativeMods[path] = mod
}

// evalUse binds a module namespace in the current frame. Resolution order is
// module cache, registered natives, then the configured loader; each path
// loads once per interpreter.
func (i *Interpreter) evalUse(stmt *ast.UseStatement, env *runtime.Environment) (runtime.Value, error) {
	mod, err := i.loadModule(stmt.Path)
	if err != nil {
		return nil, err
	}
	name := stmt.Alias
	if name == "" {
		name = moduleBindingName(stmt.Path)
	}
	env.Declare(name, mod)
	return runtime.NilValue{}, nil
}

func (i *Interpreter) loadModule(path string) (*runtime.ModuleValue, error) {
	if mod, ok := i.moduleCache[path]; ok {
		return mod, nil
	}
	if mod, ok := i.nativeMods[path]; ok {
		i.moduleCache[path] = mod
		return mod, nil
	}
	if i.loader == nil {
		return nil, i.raise(ExcImport, "cannot resolve module '%s': no loader configured", path)
	}
	mod, err := i.loader.Load(path)
	if err != nil {
		switch err.(type) {
		case raiseSignal:
			return nil, err
		default:
			return nil, i.raise(ExcImport, "cannot load module '%s': %s", path, err.Error())
		}
	}
	i.moduleCache[path] = mod
	return mod, nil
}

func moduleBindingName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
