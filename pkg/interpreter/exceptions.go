package interpreter

import (
	"fmt"

	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// ExcBase is the root of the exception hierarchy; every type tag inherits
// from it.
const ExcBase = "Error"

const (
	ExcName           = "NameError"
	ExcScope          = "ScopeError"
	ExcArity          = "ArityError"
	ExcUnknownKeyword = "UnknownKeywordError"
	ExcTypeMismatch   = "TypeMismatchError"
	ExcAttribute      = "AttributeError"
	ExcValue          = "ValueError"
	ExcIndex          = "IndexError"
	ExcKey            = "KeyError"
	ExcRuntime        = "RuntimeError"
	ExcImport         = "ImportError"
)

func builtinExceptionTypes() []string {
	return []string{
		ExcName, ExcScope, ExcArity, ExcUnknownKeyword, ExcTypeMismatch,
		ExcAttribute, ExcValue, ExcIndex, ExcKey, ExcRuntime, ExcImport,
	}
}

// registerExceptionTypes declares the builtin exception types as globals so
// `catch e: NameError` and `ValueError.new(...)` work without imports.
func (i *Interpreter) registerExceptionTypes() {
	i.excParents[ExcBase] = ""
	i.global.Declare(ExcBase, i.exceptionType(ExcBase))
	for _, name := range builtinExceptionTypes() {
		i.excParents[name] = ExcBase
		i.global.Declare(name, i.exceptionType(name))
	}
}

func (i *Interpreter) exceptionType(name string) *runtime.TypeValue {
	return &runtime.TypeValue{
		Name: name,
		Doc:  name + " exception type",
	}
}

// isExceptionType reports whether the type name belongs to the exception
// hierarchy.
func (i *Interpreter) isExceptionType(name string) bool {
	_, ok := i.excParents[name]
	return ok
}

// registerUserExceptionType adds a user type tag under the base error type
// unless it is already part of the hierarchy.
func (i *Interpreter) registerUserExceptionType(name string) {
	if _, ok := i.excParents[name]; !ok {
		i.excParents[name] = ExcBase
	}
}

// exceptionMatches reports whether the tag equals the wanted type name or
// inherits from it through the single-inheritance chain.
func (i *Interpreter) exceptionMatches(tag, want string) bool {
	for t := tag; t != ""; t = i.excParents[t] {
		if t == want {
			return true
		}
		if _, ok := i.excParents[t]; !ok {
			break
		}
	}
	return false
}

// newException builds an exception value carrying the current call stack.
func (i *Interpreter) newException(excType, message string) *runtime.ExceptionValue {
	stack := make([]string, len(i.callStack))
	copy(stack, i.callStack)
	return &runtime.ExceptionValue{ExcType: excType, Message: message, Stack: stack}
}

func (i *Interpreter) raise(excType, format string, args ...any) error {
	return raiseSignal{exc: i.newException(excType, fmt.Sprintf(format, args...))}
}

// toException converts a raised value into an exception value. Strings wrap
// as the base error type; an instance with a message field raises under its
// own type tag (registered beneath the base type on first use).
func (i *Interpreter) toException(val runtime.Value) (*runtime.ExceptionValue, error) {
	switch v := val.(type) {
	case *runtime.ExceptionValue:
		return v, nil
	case runtime.StringValue:
		return i.newException(ExcBase, v.Val), nil
	case *runtime.InstanceValue:
		msg, ok := v.Fields["message"]
		if !ok {
			return nil, i.raise(ExcTypeMismatch, "raised %s instance has no message field", v.Type.Name)
		}
		i.registerUserExceptionType(v.Type.Name)
		return i.newException(v.Type.Name, runtime.ToDisplayString(msg)), nil
	default:
		return nil, i.raise(ExcTypeMismatch, "cannot raise value of type %s", val.TypeName())
	}
}

// envError converts a scope-chain failure into the corresponding raised
// exception.
func (i *Interpreter) envError(err error) error {
	switch err.(type) {
	case *runtime.UndefinedError:
		return i.raise(ExcName, "%s", err.Error())
	case *runtime.DeleteError:
		return i.raise(ExcScope, "%s", err.Error())
	default:
		return err
	}
}
