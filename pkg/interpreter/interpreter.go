package interpreter

import (
	"io"
	"os"

	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// Interpreter walks a parsed statement tree against a scope chain. It owns
// the chain so frame push/pop discipline lives in one place instead of being
// threaded through every node handler.
type Interpreter struct {
	global     *runtime.Environment
	traits     map[string]*runtime.TraitValue
	excParents map[string]string

	callStack        []string
	currentException *runtime.ExceptionValue

	loader      Loader
	nativeMods  map[string]*runtime.ModuleValue
	moduleCache map[string]*runtime.ModuleValue

	Stdout io.Writer
}

// Option configures an interpreter at construction time.
type Option func(*Interpreter)

// WithLoader installs the module loader consulted by `use` for paths that are
// not registered native modules.
func WithLoader(loader Loader) Option {
	return func(i *Interpreter) { i.loader = loader }
}

// WithStdout redirects print/puts output.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) { i.Stdout = w }
}

// New returns an interpreter with builtins and exception types registered in
// its global frame.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		global:      runtime.NewEnvironment(nil),
		traits:      make(map[string]*runtime.TraitValue),
		excParents:  make(map[string]string),
		nativeMods:  make(map[string]*runtime.ModuleValue),
		moduleCache: make(map[string]*runtime.ModuleValue),
		Stdout:      os.Stdout,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.registerExceptionTypes()
	i.registerBuiltins()
	return i
}

// GlobalEnvironment returns the interpreter's global frame.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// EvaluateModule executes a module body in the global frame and returns the
// last evaluated value. A top-level `return` terminates the script with its
// value; break/continue at top level and unhandled exceptions become errors.
func (i *Interpreter) EvaluateModule(module *ast.Module) (runtime.Value, error) {
	return i.EvaluateIn(module, i.global)
}

// EvaluateIn executes a module body against a caller-supplied scope. This is
// the embedding entry point: evaluate(ast, initial_scope) -> value or
// unhandled exception.
func (i *Interpreter) EvaluateIn(module *ast.Module, env *runtime.Environment) (runtime.Value, error) {
	var last runtime.Value = runtime.NilValue{}
	for _, stmt := range module.Body {
		val, err := i.evalStatement(stmt, env)
		if err != nil {
			switch sig := err.(type) {
			case returnSignal:
				return sig.value, nil
			case raiseSignal:
				return nil, &UnhandledException{Exc: sig.exc}
			case breakSignal:
				return nil, i.topLevelError("break outside loop")
			case continueSignal:
				return nil, i.topLevelError("continue outside loop")
			default:
				return nil, err
			}
		}
		last = val
	}
	return last, nil
}

func (i *Interpreter) topLevelError(msg string) error {
	return &UnhandledException{Exc: i.newException(ExcRuntime, msg)}
}

// execStatements runs statements in the given frame without pushing a new
// one; callers that need block scoping extend the frame first.
func (i *Interpreter) execStatements(stmts []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.NilValue{}
	for _, stmt := range stmts {
		val, err := i.evalStatement(stmt, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

// execBlock pushes a fresh frame for a block-structured statement body and
// pops it on exit. Handles stored in the parent frame (self included) are
// shared with the child frame, never cloned.
func (i *Interpreter) execBlock(stmts []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	return i.execStatements(stmts, env.Extend())
}

// checkDeclaredType enforces a declared type annotation. The optional/nil
// short-circuit runs before the type check; that ordering is a correctness
// requirement, not a style choice.
func (i *Interpreter) checkDeclaredType(value runtime.Value, typeName string, optional bool, subject string) error {
	if optional {
		if _, isNil := value.(runtime.NilValue); isNil {
			return nil
		}
	}
	if typeName == "" || typeName == "Any" {
		return nil
	}
	actual := value.TypeName()
	if actual == typeName {
		return nil
	}
	switch typeName {
	case "Num":
		switch value.(type) {
		case runtime.IntValue, runtime.BigIntValue, runtime.FloatValue, runtime.DecimalValue:
			return nil
		}
	case "Fun":
		switch value.(type) {
		case *runtime.FunctionValue, runtime.NativeFunctionValue, *runtime.BoundMethodValue, runtime.NativeBoundMethodValue:
			return nil
		}
	default:
		// A trait name matches any instance whose type implements it.
		if _, ok := i.traits[typeName]; ok {
			if inst, isInst := value.(*runtime.InstanceValue); isInst && inst.Type.Implements(typeName) {
				return nil
			}
		}
	}
	return i.raise(ExcTypeMismatch, "%s expects type %s, got %s", subject, typeName, actual)
}

// splitOptional strips a trailing '?' from a declared type annotation.
func splitOptional(typeName string) (string, bool) {
	if n := len(typeName); n > 0 && typeName[n-1] == '?' {
		return typeName[:n-1], true
	}
	return typeName, false
}
