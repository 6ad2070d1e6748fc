package interpreter

import (
	"github.com/hashicorp/go-multierror"

	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// evalTypeDeclaration builds the type descriptor. Field defaults evaluate
// once, here, in the defining scope; a default that later mutates is shared
// by every instance constructed from it.
func (i *Interpreter) evalTypeDeclaration(decl *ast.TypeDeclaration, env *runtime.Environment) (runtime.Value, error) {
	typeValue := &runtime.TypeValue{
		Name:          decl.Name,
		Methods:       make(map[string]*runtime.FunctionValue),
		StaticMethods: make(map[string]*runtime.FunctionValue),
		TraitMethods:  make(map[string]*runtime.FunctionValue),
	}

	var declErrs *multierror.Error
	seen := make(map[string]bool, len(decl.Fields))
	for _, field := range decl.Fields {
		if seen[field.Name] {
			declErrs = multierror.Append(declErrs, &duplicateFieldError{typeName: decl.Name, field: field.Name})
			continue
		}
		seen[field.Name] = true
		spec := &runtime.FieldSpec{
			Name:     field.Name,
			TypeName: field.TypeName,
			Optional: field.Optional,
			Public:   field.Public,
		}
		if field.Default != nil {
			val, err := i.evalExpression(field.Default, env)
			if err != nil {
				return nil, err
			}
			if err := i.checkDeclaredType(val, spec.TypeName, spec.Optional, "Default for field '"+field.Name+"' of "+decl.Name); err != nil {
				return nil, err
			}
			spec.HasDefault = true
			spec.Default = val
		}
		typeValue.Fields = append(typeValue.Fields, spec)
	}
	if err := declErrs.ErrorOrNil(); err != nil {
		return nil, i.raise(ExcValue, "invalid declaration of type %s: %s", decl.Name, err.Error())
	}

	for _, fn := range decl.Functions {
		method := &runtime.FunctionValue{
			Name:    decl.Name + "." + fn.Name,
			Params:  fn.Params,
			Body:    fn.Body,
			Closure: env,
			Private: fn.Private,
		}
		if fn.Static {
			typeValue.StaticMethods[fn.Name] = method
		} else {
			typeValue.Methods[fn.Name] = method
		}
	}

	for _, impl := range decl.Impls {
		if err := i.applyImpl(typeValue, impl, env); err != nil {
			return nil, err
		}
	}

	// A type carrying a message field participates in the exception
	// hierarchy: raising an instance tags it with the type name, and catch
	// clauses naming the base error type match it.
	if typeValue.FieldNamed("message") != nil || typeValue.Implements(ExcBase) {
		i.registerUserExceptionType(decl.Name)
	}

	env.Declare(decl.Name, typeValue)
	return runtime.NilValue{}, nil
}

type duplicateFieldError struct {
	typeName string
	field    string
}

func (e *duplicateFieldError) Error() string {
	return "duplicate field '" + e.field + "'"
}

func (i *Interpreter) evalTraitDeclaration(decl *ast.TraitDeclaration, env *runtime.Environment) (runtime.Value, error) {
	trait := &runtime.TraitValue{
		Name:     decl.Name,
		Defaults: make(map[string]*runtime.FunctionValue),
	}
	for _, fn := range decl.Functions {
		if len(fn.Body) == 0 {
			trait.Required = append(trait.Required, fn.Name)
			continue
		}
		trait.Defaults[fn.Name] = &runtime.FunctionValue{
			Name:    decl.Name + "." + fn.Name,
			Params:  fn.Params,
			Body:    fn.Body,
			Closure: env,
		}
	}
	i.traits[decl.Name] = trait
	env.Declare(decl.Name, trait)
	return runtime.NilValue{}, nil
}

// evalImplBlock handles the standalone `impl Trait for Type` form; impl
// blocks nested in a type declaration route through applyImpl directly.
func (i *Interpreter) evalImplBlock(block *ast.ImplBlock, env *runtime.Environment) (runtime.Value, error) {
	if block.TargetType == "" {
		return nil, i.raise(ExcValue, "impl %s outside a type declaration needs a target type", block.TraitName)
	}
	target, err := env.Get(block.TargetType)
	if err != nil {
		return nil, i.envError(err)
	}
	typeValue, ok := target.(*runtime.TypeValue)
	if !ok {
		return nil, i.raise(ExcTypeMismatch, "impl target %s is not a type", block.TargetType)
	}
	if err := i.applyImpl(typeValue, block, env); err != nil {
		return nil, err
	}
	return runtime.NilValue{}, nil
}

// applyImpl attaches a trait's methods to a type. Methods declared in the
// impl block win over trait defaults; every required method must come from
// the impl block or the type's own methods.
func (i *Interpreter) applyImpl(typeValue *runtime.TypeValue, block *ast.ImplBlock, env *runtime.Environment) error {
	trait, ok := i.traits[block.TraitName]
	if !ok {
		return i.raise(ExcName, "Unknown trait '%s'", block.TraitName)
	}

	provided := make(map[string]bool, len(block.Functions))
	for _, fn := range block.Functions {
		provided[fn.Name] = true
		typeValue.TraitMethods[fn.Name] = &runtime.FunctionValue{
			Name:    typeValue.Name + "." + fn.Name,
			Params:  fn.Params,
			Body:    fn.Body,
			Closure: env,
			Private: fn.Private,
		}
	}
	for name, def := range trait.Defaults {
		if !provided[name] && typeValue.Methods[name] == nil {
			typeValue.TraitMethods[name] = def
		}
	}
	for _, required := range trait.Required {
		if !provided[required] && typeValue.Methods[required] == nil {
			return i.raise(ExcTypeMismatch, "Type %s does not implement method '%s' required by trait %s",
				typeValue.Name, required, block.TraitName)
		}
	}
	typeValue.Traits = append(typeValue.Traits, block.TraitName)
	return nil
}

// resolveMethod looks up an instance method: directly declared methods first,
// then trait-provided ones.
func (i *Interpreter) resolveMethod(t *runtime.TypeValue, name string) *runtime.FunctionValue {
	if m, ok := t.Methods[name]; ok {
		return m
	}
	if m, ok := t.TraitMethods[name]; ok {
		return m
	}
	return nil
}

// construct builds an instance from a type. Fields fill from positional
// arguments in declaration order, then keyword arguments by name. Per field
// the checks run in a fixed order: the optional/nil short-circuit first, then
// the declared-type check, then default fill, and only then the
// missing-required error.
func (i *Interpreter) construct(t *runtime.TypeValue, args runtime.CallArguments) (runtime.Value, error) {
	if i.isExceptionType(t.Name) && len(t.Fields) == 0 {
		return i.constructException(t, args)
	}

	if len(args.Positional) > len(t.Fields) {
		return nil, i.raise(ExcArity, "%s.new takes at most %d arguments, got %d",
			t.Name, len(t.Fields), len(args.Positional))
	}
	provided := make(map[string]runtime.Value, len(t.Fields))
	for idx, val := range args.Positional {
		provided[t.Fields[idx].Name] = val
	}
	for _, kw := range args.Keyword {
		field := t.FieldNamed(kw.Name)
		if field == nil {
			return nil, i.raise(ExcUnknownKeyword, "%s.new got unknown field '%s'", t.Name, kw.Name)
		}
		if _, dup := provided[kw.Name]; dup {
			return nil, i.raise(ExcArity, "%s.new: field '%s' specified both positionally and by name", t.Name, kw.Name)
		}
		provided[kw.Name] = kw.Value
	}

	instance := &runtime.InstanceValue{Type: t, Fields: make(map[string]runtime.Value, len(t.Fields))}
	for _, field := range t.Fields {
		if val, ok := provided[field.Name]; ok {
			if err := i.checkDeclaredType(val, field.TypeName, field.Optional, "Field '"+field.Name+"' of "+t.Name); err != nil {
				return nil, err
			}
			instance.Fields[field.Name] = val
			continue
		}
		if field.HasDefault {
			instance.Fields[field.Name] = field.Default
			continue
		}
		if field.Optional {
			instance.Fields[field.Name] = runtime.NilValue{}
			continue
		}
		return nil, i.raise(ExcArity, "%s.new missing required field '%s'", t.Name, field.Name)
	}
	return instance, nil
}

// constructException handles new() on the builtin exception types, which have
// no field storage: Name.new(message) or Name.new(message, cause).
func (i *Interpreter) constructException(t *runtime.TypeValue, args runtime.CallArguments) (runtime.Value, error) {
	var message runtime.Value
	var cause runtime.Value
	switch len(args.Positional) {
	case 1:
		message = args.Positional[0]
	case 2:
		message, cause = args.Positional[0], args.Positional[1]
	default:
		return nil, i.raise(ExcArity, "%s.new takes a message and an optional cause, got %d arguments",
			t.Name, len(args.Positional))
	}
	for _, kw := range args.Keyword {
		switch kw.Name {
		case "message":
			message = kw.Value
		case "cause":
			cause = kw.Value
		default:
			return nil, i.raise(ExcUnknownKeyword, "%s.new got unknown keyword argument '%s'", t.Name, kw.Name)
		}
	}

	exc := i.newException(t.Name, runtime.ToDisplayString(message))
	if cause != nil {
		causeExc, ok := cause.(*runtime.ExceptionValue)
		if !ok {
			return nil, i.raise(ExcTypeMismatch, "%s.new cause must be an exception, got %s", t.Name, cause.TypeName())
		}
		exc.Cause = causeExc
	}
	return exc, nil
}

func (i *Interpreter) evalMemberAccess(node *ast.MemberAccess, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evalExpression(node.Object, env)
	if err != nil {
		return nil, err
	}

	switch v := obj.(type) {
	case *runtime.InstanceValue:
		return i.instanceMember(v, node.Member, env)
	case *runtime.TypeValue:
		return i.typeMember(v, node.Member, env)
	case *runtime.ModuleValue:
		member, ok := v.Members[node.Member]
		if !ok {
			return nil, i.raise(ExcAttribute, "module %s has no member '%s'", v.Name, node.Member)
		}
		return member, nil
	case *runtime.ExceptionValue:
		return i.exceptionMember(v, node.Member)
	default:
		if method, ok := i.builtinMethod(obj, node.Member); ok {
			return method, nil
		}
		return nil, i.raise(ExcAttribute, "%s value has no member '%s'", obj.TypeName(), node.Member)
	}
}

func (i *Interpreter) instanceMember(inst *runtime.InstanceValue, name string, env *runtime.Environment) (runtime.Value, error) {
	if field := inst.Type.FieldNamed(name); field != nil {
		if !field.Public && !isSelfAccess(env, inst) {
			return nil, i.raise(ExcAttribute, "Field '%s' of %s is private", name, inst.Type.Name)
		}
		if val, ok := inst.Fields[name]; ok {
			return val, nil
		}
		return runtime.NilValue{}, nil
	}
	if method := i.resolveMethod(inst.Type, name); method != nil {
		if method.Private && !isSelfAccess(env, inst) {
			return nil, i.raise(ExcAttribute, "Method '%s' of %s is private", name, inst.Type.Name)
		}
		// The receiver handle is shared, so self-mutation inside the method
		// persists in every scope aliasing this instance.
		return &runtime.BoundMethodValue{Receiver: inst, Method: method}, nil
	}
	if method, ok := i.builtinMethod(inst, name); ok {
		return method, nil
	}
	return nil, i.raise(ExcAttribute, "%s has no member '%s'", inst.Type.Name, name)
}

func (i *Interpreter) typeMember(t *runtime.TypeValue, name string, env *runtime.Environment) (runtime.Value, error) {
	// `new` resolves to the type itself; calling a type constructs.
	if name == "new" {
		return t, nil
	}
	if method, ok := t.StaticMethods[name]; ok {
		return &runtime.BoundMethodValue{Receiver: t, Method: method}, nil
	}
	if method, ok := i.builtinMethod(t, name); ok {
		return method, nil
	}
	return nil, i.raise(ExcAttribute, "type %s has no static method '%s'", t.Name, name)
}

func (i *Interpreter) exceptionMember(exc *runtime.ExceptionValue, name string) (runtime.Value, error) {
	switch name {
	case "type", "message", "stack", "cause":
		return runtime.NativeBoundMethodValue{
			Receiver: exc,
			Method: runtime.NativeFunctionValue{
				Name: "Exception." + name,
				Impl: exceptionAccessor(name),
			},
		}, nil
	default:
		return nil, i.raise(ExcAttribute, "exception has no member '%s'", name)
	}
}

// exceptionAccessor returns the native behind exc.type() and friends. The
// receiver arrives as the first bound argument.
func exceptionAccessor(name string) runtime.NativeFunc {
	return func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		exc := args[0].(*runtime.ExceptionValue)
		switch name {
		case "type":
			return runtime.StringValue{Val: exc.ExcType}, nil
		case "message":
			return runtime.StringValue{Val: exc.Message}, nil
		case "stack":
			frames := make([]runtime.Value, len(exc.Stack))
			for i, frame := range exc.Stack {
				frames[i] = runtime.StringValue{Val: frame}
			}
			return runtime.NewArray(frames...), nil
		default:
			if exc.Cause == nil {
				return runtime.NilValue{}, nil
			}
			return exc.Cause, nil
		}
	}
}

// setInstanceField implements `obj.field = value` with the same visibility
// rules as field reads.
func (i *Interpreter) setInstanceField(obj runtime.Value, target *ast.MemberAccess, value runtime.Value, env *runtime.Environment) error {
	inst, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return i.raise(ExcTypeMismatch, "cannot assign member '%s' on %s value", target.Member, obj.TypeName())
	}
	field := inst.Type.FieldNamed(target.Member)
	if field == nil {
		return i.raise(ExcAttribute, "%s has no field '%s'", inst.Type.Name, target.Member)
	}
	if !field.Public && !isSelfAccess(env, inst) {
		return i.raise(ExcAttribute, "Field '%s' of %s is private", target.Member, inst.Type.Name)
	}
	if err := i.checkDeclaredType(value, field.TypeName, field.Optional, "Field '"+target.Member+"' of "+inst.Type.Name); err != nil {
		return err
	}
	inst.Fields[target.Member] = value
	return nil
}

// isSelfAccess reports whether the active scope's self is this exact handle,
// which is what grants private access.
func isSelfAccess(env *runtime.Environment, inst *runtime.InstanceValue) bool {
	self, err := env.Get("self")
	if err != nil {
		return false
	}
	current, ok := self.(*runtime.InstanceValue)
	return ok && current == inst
}
