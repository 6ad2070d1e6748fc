package interpreter

import (
	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

func (i *Interpreter) evalCall(call *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evalExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := i.evalCallArguments(call, env)
	if err != nil {
		return nil, err
	}
	return i.CallValue(callee, args, env)
}

func (i *Interpreter) evalCallArguments(call *ast.CallExpression, env *runtime.Environment) (runtime.CallArguments, error) {
	args := runtime.CallArguments{}
	for _, argExpr := range call.Args {
		val, err := i.evalExpression(argExpr, env)
		if err != nil {
			return args, err
		}
		args.Positional = append(args.Positional, val)
	}
	for _, named := range call.Named {
		val, err := i.evalExpression(named.Value, env)
		if err != nil {
			return args, err
		}
		args.Keyword = append(args.Keyword, runtime.KeywordArg{Name: named.Name, Value: val})
	}
	return args, nil
}

// CallValue invokes any callable value: functions, bound methods, natives,
// type constructors, and instances exposing a _call method. This is also how
// decorators apply.
func (i *Interpreter) CallValue(callee runtime.Value, args runtime.CallArguments, env *runtime.Environment) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.invokeFunction(fn, nil, args)
	case *runtime.BoundMethodValue:
		return i.invokeFunction(fn.Method, fn.Receiver, args)
	case runtime.NativeFunctionValue:
		return i.invokeNative(fn, args, env)
	case runtime.NativeBoundMethodValue:
		withSelf := runtime.CallArguments{
			Positional: append([]runtime.Value{fn.Receiver}, args.Positional...),
			Keyword:    args.Keyword,
		}
		return i.invokeNative(fn.Method, withSelf, env)
	case *runtime.TypeValue:
		return i.construct(fn, args)
	case *runtime.InstanceValue:
		if method := i.resolveMethod(fn.Type, "_call"); method != nil {
			return i.invokeFunction(method, fn, args)
		}
		return nil, i.raise(ExcTypeMismatch, "%s instance is not callable", fn.Type.Name)
	default:
		return nil, i.raise(ExcTypeMismatch, "value of type %s is not callable", callee.TypeName())
	}
}

// invokeFunction runs a user function or method. The call frame is a child
// of the closure environment, so captured bindings stay writable; self, when
// present, is the receiver's shared handle.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, self runtime.Value, args runtime.CallArguments) (runtime.Value, error) {
	funcEnv := runtime.NewEnvironment(fn.Closure)
	if self != nil {
		funcEnv.Declare("self", self)
	}
	if _, err := i.bindParameters(fn.DisplayName(), fn.Params, args, funcEnv); err != nil {
		return nil, err
	}

	i.callStack = append(i.callStack, fn.DisplayName())
	defer func() { i.callStack = i.callStack[:len(i.callStack)-1] }()

	result, err := i.execStatements(fn.Body, funcEnv)
	if err != nil {
		switch sig := err.(type) {
		case returnSignal:
			return sig.value, nil
		case breakSignal:
			return nil, i.raise(ExcRuntime, "break outside loop in function '%s'", fn.DisplayName())
		case continueSignal:
			return nil, i.raise(ExcRuntime, "continue outside loop in function '%s'", fn.DisplayName())
		default:
			return nil, err
		}
	}
	if result == nil {
		return runtime.NilValue{}, nil
	}
	return result, nil
}

// invokeNative binds arguments through the same protocol as user functions
// and hands the bound values to the host implementation in declaration
// order. A native with nil Params receives raw positional arguments.
func (i *Interpreter) invokeNative(fn runtime.NativeFunctionValue, args runtime.CallArguments, env *runtime.Environment) (runtime.Value, error) {
	ctx := &runtime.NativeCallContext{Env: env}
	var bound []runtime.Value
	if fn.Params == nil {
		if len(args.Keyword) > 0 {
			return nil, i.raise(ExcUnknownKeyword, "%s: unknown keyword argument '%s'", fn.Name, args.Keyword[0].Name)
		}
		bound = args.Positional
	} else {
		scratch := runtime.NewEnvironment(i.global)
		var err error
		bound, err = i.bindParameters(fn.Name, fn.Params, args, scratch)
		if err != nil {
			return nil, err
		}
	}

	i.callStack = append(i.callStack, fn.Name)
	defer func() { i.callStack = i.callStack[:len(i.callStack)-1] }()

	result, err := fn.Impl(ctx, bound)
	if err != nil {
		switch err.(type) {
		case raiseSignal, returnSignal, breakSignal, continueSignal:
			return nil, err
		default:
			return nil, i.raise(ExcRuntime, "%s: %s", fn.Name, err.Error())
		}
	}
	if result == nil {
		return runtime.NilValue{}, nil
	}
	return result, nil
}

// bindParameters applies the parameter-binding protocol shared by named
// functions, lambdas, methods and natives:
//
//  1. positional arguments bind to required then defaulted parameters
//     left-to-right, overflowing into the variadic-positional parameter;
//  2. named arguments bind by name to parameters not already filled;
//  3. unmatched named arguments collect into the variadic-keyword parameter;
//  4. still-unbound defaults evaluate in declaration order, in a scope
//     seeded with the parameters bound so far;
//  5. still-unbound required parameters raise an arity error naming them.
//
// Bound parameters are declared into env; the bound values are also returned
// in declaration order for native implementations.
func (i *Interpreter) bindParameters(fname string, params []*ast.Parameter, args runtime.CallArguments, env *runtime.Environment) ([]runtime.Value, error) {
	var positionalParams []*ast.Parameter
	var varPos, varKw *ast.Parameter
	for _, p := range params {
		switch {
		case p.Keyword:
			varKw = p
		case p.Variadic:
			varPos = p
		default:
			positionalParams = append(positionalParams, p)
		}
	}

	bound := make(map[string]runtime.Value, len(params))
	var rest []runtime.Value

	for idx, argVal := range args.Positional {
		if idx < len(positionalParams) {
			p := positionalParams[idx]
			if err := i.checkParamType(fname, p, argVal); err != nil {
				return nil, err
			}
			bound[p.Name] = argVal
			continue
		}
		if varPos != nil {
			rest = args.Positional[len(positionalParams):]
			break
		}
		return nil, i.raise(ExcArity, "Function '%s' takes at most %d positional arguments, got %d",
			fname, len(positionalParams), len(args.Positional))
	}

	var kwRest []runtime.KeywordArg
	for _, kw := range args.Keyword {
		param := paramNamed(positionalParams, kw.Name)
		if param == nil {
			if varKw != nil {
				kwRest = append(kwRest, kw)
				continue
			}
			return nil, i.raise(ExcUnknownKeyword, "Function '%s' got unknown keyword argument '%s'", fname, kw.Name)
		}
		if _, dup := bound[param.Name]; dup {
			return nil, i.raise(ExcArity, "Function '%s': parameter '%s' specified both positionally and by keyword", fname, param.Name)
		}
		if err := i.checkParamType(fname, param, kw.Value); err != nil {
			return nil, err
		}
		bound[param.Name] = kw.Value
	}

	// Seed the frame with everything bound so far, in declaration order, so
	// later defaults can reference earlier parameters.
	for _, p := range positionalParams {
		if v, ok := bound[p.Name]; ok {
			env.Declare(p.Name, v)
		}
	}
	for _, p := range positionalParams {
		if _, ok := bound[p.Name]; ok || p.Default == nil {
			continue
		}
		val, err := i.evalExpression(p.Default, env)
		if err != nil {
			return nil, err
		}
		if err := i.checkParamType(fname, p, val); err != nil {
			return nil, err
		}
		bound[p.Name] = val
		env.Declare(p.Name, val)
	}
	for _, p := range positionalParams {
		if _, ok := bound[p.Name]; !ok {
			return nil, i.raise(ExcArity, "Function '%s' missing required parameter '%s'", fname, p.Name)
		}
	}

	if varPos != nil {
		collected := make([]runtime.Value, len(rest))
		copy(collected, rest)
		arr := &runtime.ArrayValue{Elements: collected}
		bound[varPos.Name] = arr
		env.Declare(varPos.Name, arr)
	}
	if varKw != nil {
		dict := runtime.NewDict()
		for _, kw := range kwRest {
			dict.Set(kw.Name, kw.Value)
		}
		bound[varKw.Name] = dict
		env.Declare(varKw.Name, dict)
	}

	ordered := make([]runtime.Value, 0, len(params))
	for _, p := range params {
		ordered = append(ordered, bound[p.Name])
	}
	return ordered, nil
}

func (i *Interpreter) checkParamType(fname string, p *ast.Parameter, value runtime.Value) error {
	if p.TypeName == "" {
		return nil
	}
	typeName, optional := splitOptional(p.TypeName)
	return i.checkDeclaredType(value, typeName, optional, "Parameter '"+p.Name+"' of '"+fname+"'")
}

func paramNamed(params []*ast.Parameter, name string) *ast.Parameter {
	for _, p := range params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// evalFunctionDeclaration creates the closure and applies decorators
// innermost-first; a decorator is an ordinary callable receiving the
// function as its sole argument.
func (i *Interpreter) evalFunctionDeclaration(decl *ast.FunctionDeclaration, env *runtime.Environment) (runtime.Value, error) {
	var value runtime.Value = &runtime.FunctionValue{
		Name:    decl.Name,
		Params:  decl.Params,
		Body:    decl.Body,
		Closure: env,
		Private: decl.Private,
	}
	for idx := len(decl.Decorators) - 1; idx >= 0; idx-- {
		decorator, err := i.evalExpression(decl.Decorators[idx], env)
		if err != nil {
			return nil, err
		}
		value, err = i.CallValue(decorator, runtime.PositionalArgs(value), env)
		if err != nil {
			return nil, err
		}
	}
	env.Declare(decl.Name, value)
	return runtime.NilValue{}, nil
}

// RegisterNative declares a host-implemented function in the global frame.
// Params may be nil for a raw variadic native.
func (i *Interpreter) RegisterNative(name string, params []*ast.Parameter, impl runtime.NativeFunc) {
	i.global.Declare(name, runtime.NativeFunctionValue{Name: name, Params: params, Impl: impl})
}
