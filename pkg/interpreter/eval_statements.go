package interpreter

import (
	"fmt"

	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

func (i *Interpreter) evalStatement(node ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case ast.Expression:
		return i.evalExpression(n, env)
	case *ast.LetStatement:
		return i.evalLet(n, env)
	case *ast.AssignStatement:
		return i.evalAssign(n, env)
	case *ast.DelStatement:
		return i.evalDel(n, env)
	case *ast.IfStatement:
		return i.evalIf(n, env)
	case *ast.WhileStatement:
		return i.evalWhile(n, env)
	case *ast.ForStatement:
		return i.evalFor(n, env)
	case *ast.FunctionDeclaration:
		return i.evalFunctionDeclaration(n, env)
	case *ast.TypeDeclaration:
		return i.evalTypeDeclaration(n, env)
	case *ast.TraitDeclaration:
		return i.evalTraitDeclaration(n, env)
	case *ast.ImplBlock:
		return i.evalImplBlock(n, env)
	case *ast.TryStatement:
		return i.evalTry(n, env)
	case *ast.RaiseStatement:
		return i.evalRaise(n, env)
	case *ast.ReturnStatement:
		return i.evalReturn(n, env)
	case *ast.BreakStatement:
		return nil, breakSignal{}
	case *ast.ContinueStatement:
		return nil, continueSignal{}
	case *ast.UseStatement:
		return i.evalUse(n, env)
	default:
		return nil, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

func (i *Interpreter) evalLet(stmt *ast.LetStatement, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evalExpression(stmt.Value, env)
	if err != nil {
		return nil, err
	}
	env.Declare(stmt.Name, value)
	return value, nil
}

func (i *Interpreter) evalDel(stmt *ast.DelStatement, env *runtime.Environment) (runtime.Value, error) {
	if err := env.Delete(stmt.Name); err != nil {
		return nil, i.envError(err)
	}
	return runtime.NilValue{}, nil
}

func (i *Interpreter) evalAssign(stmt *ast.AssignStatement, env *runtime.Environment) (runtime.Value, error) {
	value, err := i.evalExpression(stmt.Value, env)
	if err != nil {
		return nil, err
	}
	if stmt.Operator != "=" {
		current, err := i.evalExpression(stmt.Target, env)
		if err != nil {
			return nil, err
		}
		op := stmt.Operator[:len(stmt.Operator)-1]
		value, err = i.binaryOp(op, current, value)
		if err != nil {
			return nil, err
		}
	}

	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		if err := env.Assign(target.Name, value); err != nil {
			return nil, i.raise(ExcName, "Cannot assign to undeclared variable '%s'. Use 'let %s = ...' to declare it first.", target.Name, target.Name)
		}
	case *ast.MemberAccess:
		obj, err := i.evalExpression(target.Object, env)
		if err != nil {
			return nil, err
		}
		if err := i.setInstanceField(obj, target, value, env); err != nil {
			return nil, err
		}
	case *ast.IndexExpression:
		obj, err := i.evalExpression(target.Object, env)
		if err != nil {
			return nil, err
		}
		idx, err := i.evalExpression(target.Index, env)
		if err != nil {
			return nil, err
		}
		if err := i.setIndex(obj, idx, value); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported assignment target: %s", stmt.Target.NodeType())
	}
	return value, nil
}

func (i *Interpreter) setIndex(obj, idx, value runtime.Value) error {
	switch container := obj.(type) {
	case *runtime.ArrayValue:
		n, ok := idx.(runtime.IntValue)
		if !ok {
			return i.raise(ExcTypeMismatch, "array index must be Int, got %s", idx.TypeName())
		}
		pos := int(n.Val)
		if pos < 0 || pos >= len(container.Elements) {
			return i.raise(ExcIndex, "array index %d out of bounds (len %d)", pos, len(container.Elements))
		}
		container.Elements[pos] = value
		return nil
	case *runtime.DictValue:
		key, ok := idx.(runtime.StringValue)
		if !ok {
			return i.raise(ExcTypeMismatch, "dict key must be Str, got %s", idx.TypeName())
		}
		container.Set(key.Val, value)
		return nil
	default:
		return i.raise(ExcTypeMismatch, "cannot index-assign into %s", obj.TypeName())
	}
}

func (i *Interpreter) evalIf(stmt *ast.IfStatement, env *runtime.Environment) (runtime.Value, error) {
	cond, err := i.evalExpression(stmt.Condition, env)
	if err != nil {
		return nil, err
	}
	if runtime.Truthy(cond) {
		return i.execBlock(stmt.Then, env)
	}
	for _, clause := range stmt.Elifs {
		clauseCond, err := i.evalExpression(clause.Condition, env)
		if err != nil {
			return nil, err
		}
		if runtime.Truthy(clauseCond) {
			return i.execBlock(clause.Body, env)
		}
	}
	if stmt.Else != nil {
		return i.execBlock(stmt.Else, env)
	}
	return runtime.NilValue{}, nil
}

// evalWhile intercepts break and continue; return and raise signals pass
// through untouched.
func (i *Interpreter) evalWhile(stmt *ast.WhileStatement, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.NilValue{}
	for {
		cond, err := i.evalExpression(stmt.Condition, env)
		if err != nil {
			return nil, err
		}
		if !runtime.Truthy(cond) {
			return result, nil
		}
		val, err := i.execBlock(stmt.Body, env)
		if err != nil {
			switch err.(type) {
			case breakSignal:
				return result, nil
			case continueSignal:
				continue
			default:
				return nil, err
			}
		}
		result = val
	}
}

func (i *Interpreter) evalFor(stmt *ast.ForStatement, env *runtime.Environment) (runtime.Value, error) {
	iterable, err := i.evalExpression(stmt.Iterable, env)
	if err != nil {
		return nil, err
	}

	run := func(bind func(*runtime.Environment)) (bool, error) {
		iterEnv := env.Extend()
		bind(iterEnv)
		_, err := i.execStatements(stmt.Body, iterEnv)
		if err != nil {
			switch err.(type) {
			case breakSignal:
				return true, nil
			case continueSignal:
				return false, nil
			default:
				return true, err
			}
		}
		return false, nil
	}

	switch it := iterable.(type) {
	case *runtime.ArrayValue:
		for idx, el := range it.Elements {
			element := el
			index := int64(idx)
			stop, err := run(func(e *runtime.Environment) {
				if stmt.ValueName != "" {
					e.Declare(stmt.Name, runtime.IntValue{Val: index})
					e.Declare(stmt.ValueName, element)
				} else {
					e.Declare(stmt.Name, element)
				}
			})
			if stop || err != nil {
				return runtime.NilValue{}, err
			}
		}
	case *runtime.DictValue:
		for _, key := range it.Keys() {
			k := key
			stop, err := run(func(e *runtime.Environment) {
				e.Declare(stmt.Name, runtime.StringValue{Val: k})
				if stmt.ValueName != "" {
					val, _ := it.Get(k)
					e.Declare(stmt.ValueName, val)
				}
			})
			if stop || err != nil {
				return runtime.NilValue{}, err
			}
		}
	case runtime.StringValue:
		for _, r := range it.Val {
			ch := string(r)
			stop, err := run(func(e *runtime.Environment) {
				e.Declare(stmt.Name, runtime.StringValue{Val: ch})
			})
			if stop || err != nil {
				return runtime.NilValue{}, err
			}
		}
	case runtime.BytesValue:
		for _, b := range it.Val {
			n := int64(b)
			stop, err := run(func(e *runtime.Environment) {
				e.Declare(stmt.Name, runtime.IntValue{Val: n})
			})
			if stop || err != nil {
				return runtime.NilValue{}, err
			}
		}
	default:
		return nil, i.raise(ExcTypeMismatch, "cannot iterate value of type %s", iterable.TypeName())
	}
	return runtime.NilValue{}, nil
}

// evalTry intercepts only raise signals whose exception matches a catch
// clause. Return, break, continue and unmatched raises pass through, and the
// ensure body runs on every exit path. An ensure body that raises or returns
// replaces the in-flight signal; a break or continue from ensure yields to a
// pending signal and only propagates when nothing is in flight.
func (i *Interpreter) evalTry(stmt *ast.TryStatement, env *runtime.Environment) (runtime.Value, error) {
	result, pending := i.execBlock(stmt.Body, env)

	if rs, ok := pending.(raiseSignal); ok {
		for _, clause := range stmt.Catches {
			if clause.TypeName != "" && !i.exceptionMatches(rs.exc.ExcType, clause.TypeName) {
				continue
			}
			catchEnv := env.Extend()
			if clause.Var != "" {
				catchEnv.Declare(clause.Var, rs.exc)
			}
			prev := i.currentException
			i.currentException = rs.exc
			result, pending = i.execStatements(clause.Body, catchEnv)
			i.currentException = prev
			break
		}
	}

	if stmt.Ensure != nil {
		if _, ensureErr := i.execBlock(stmt.Ensure, env); ensureErr != nil {
			switch ensureErr.(type) {
			case raiseSignal, returnSignal:
				pending = ensureErr
			default:
				if pending == nil {
					pending = ensureErr
				}
			}
		}
	}
	if pending != nil {
		return nil, pending
	}
	if result == nil {
		result = runtime.NilValue{}
	}
	return result, nil
}

func (i *Interpreter) evalRaise(stmt *ast.RaiseStatement, env *runtime.Environment) (runtime.Value, error) {
	if stmt.Value == nil {
		// Bare raise re-raises the in-flight exception; sibling catch
		// clauses of the same try never see it again.
		if i.currentException == nil {
			return nil, i.raise(ExcRuntime, "no exception to re-raise")
		}
		return nil, raiseSignal{exc: i.currentException}
	}
	val, err := i.evalExpression(stmt.Value, env)
	if err != nil {
		return nil, err
	}
	exc, err := i.toException(val)
	if err != nil {
		return nil, err
	}
	return nil, raiseSignal{exc: exc}
}

func (i *Interpreter) evalReturn(stmt *ast.ReturnStatement, env *runtime.Environment) (runtime.Value, error) {
	var result runtime.Value = runtime.NilValue{}
	if stmt.Value != nil {
		val, err := i.evalExpression(stmt.Value, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return nil, returnSignal{value: result}
}
