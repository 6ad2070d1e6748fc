package interpreter

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

func (i *Interpreter) evalExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NilLiteral:
		return runtime.NilValue{}, nil
	case *ast.BoolLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.IntLiteral:
		return runtime.IntValue{Val: n.Value}, nil
	case *ast.BigIntLiteral:
		bi, ok := new(big.Int).SetString(n.Value, 10)
		if !ok {
			return nil, i.raise(ExcValue, "invalid bigint literal %q", n.Value)
		}
		return runtime.BigIntValue{Val: bi}, nil
	case *ast.FloatLiteral:
		return runtime.FloatValue{Val: n.Value}, nil
	case *ast.DecimalLiteral:
		dec, err := decimal.NewFromString(n.Value)
		if err != nil {
			return nil, i.raise(ExcValue, "invalid decimal literal %q", n.Value)
		}
		return runtime.DecimalValue{Val: dec}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BytesLiteral:
		return runtime.BytesValue{Val: n.Value}, nil
	case *ast.ArrayLiteral:
		elements := make([]runtime.Value, 0, len(n.Elements))
		for _, el := range n.Elements {
			val, err := i.evalExpression(el, env)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	case *ast.DictLiteral:
		dict := runtime.NewDict()
		for _, entry := range n.Entries {
			keyVal, err := i.evalExpression(entry.Key, env)
			if err != nil {
				return nil, err
			}
			key, ok := keyVal.(runtime.StringValue)
			if !ok {
				return nil, i.raise(ExcTypeMismatch, "dict key must be Str, got %s", keyVal.TypeName())
			}
			val, err := i.evalExpression(entry.Value, env)
			if err != nil {
				return nil, err
			}
			dict.Set(key.Val, val)
		}
		return dict, nil
	case *ast.Identifier:
		val, err := env.Get(n.Name)
		if err != nil {
			return nil, i.envError(err)
		}
		return val, nil
	case *ast.UnaryExpression:
		return i.evalUnary(n, env)
	case *ast.BinaryExpression:
		return i.evalBinary(n, env)
	case *ast.CallExpression:
		return i.evalCall(n, env)
	case *ast.MemberAccess:
		return i.evalMemberAccess(n, env)
	case *ast.IndexExpression:
		return i.evalIndex(n, env)
	case *ast.FunctionLiteral:
		return &runtime.FunctionValue{Params: n.Params, Body: n.Body, Closure: env}, nil
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func (i *Interpreter) evalUnary(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evalExpression(expr.Operand, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "-":
		switch v := operand.(type) {
		case runtime.IntValue:
			return runtime.IntValue{Val: -v.Val}, nil
		case runtime.BigIntValue:
			return runtime.BigIntValue{Val: new(big.Int).Neg(v.Val)}, nil
		case runtime.FloatValue:
			return runtime.FloatValue{Val: -v.Val}, nil
		case runtime.DecimalValue:
			return runtime.DecimalValue{Val: v.Val.Neg()}, nil
		default:
			return nil, i.raise(ExcTypeMismatch, "unary '-' not supported for %s", operand.TypeName())
		}
	case "!", "not":
		return runtime.BoolValue{Val: !runtime.Truthy(operand)}, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator %s", expr.Operator)
	}
}

func (i *Interpreter) evalBinary(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	// and/or short-circuit before the right operand evaluates.
	switch expr.Operator {
	case "&&", "and":
		left, err := i.evalExpression(expr.Left, env)
		if err != nil {
			return nil, err
		}
		if !runtime.Truthy(left) {
			return runtime.BoolValue{Val: false}, nil
		}
		right, err := i.evalExpression(expr.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: runtime.Truthy(right)}, nil
	case "||", "or":
		left, err := i.evalExpression(expr.Left, env)
		if err != nil {
			return nil, err
		}
		if runtime.Truthy(left) {
			return runtime.BoolValue{Val: true}, nil
		}
		right, err := i.evalExpression(expr.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: runtime.Truthy(right)}, nil
	}

	left, err := i.evalExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	return i.binaryOp(expr.Operator, left, right)
}

func (i *Interpreter) binaryOp(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+", "-", "*", "/", "%":
		return i.arithmetic(op, left, right)
	case "==":
		return runtime.BoolValue{Val: runtime.Equal(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !runtime.Equal(left, right)}, nil
	case "<", "<=", ">", ">=":
		return i.comparison(op, left, right)
	default:
		return nil, fmt.Errorf("unsupported binary operator %s", op)
	}
}

func (i *Interpreter) arithmetic(op string, left, right runtime.Value) (runtime.Value, error) {
	switch lv := left.(type) {
	case runtime.IntValue:
		switch rv := right.(type) {
		case runtime.IntValue:
			return i.intOp(op, lv.Val, rv.Val)
		case runtime.BigIntValue:
			return i.bigOp(op, big.NewInt(lv.Val), rv.Val)
		case runtime.FloatValue:
			return i.floatOp(op, float64(lv.Val), rv.Val)
		}
	case runtime.BigIntValue:
		switch rv := right.(type) {
		case runtime.BigIntValue:
			return i.bigOp(op, lv.Val, rv.Val)
		case runtime.IntValue:
			return i.bigOp(op, lv.Val, big.NewInt(rv.Val))
		}
	case runtime.FloatValue:
		switch rv := right.(type) {
		case runtime.FloatValue:
			return i.floatOp(op, lv.Val, rv.Val)
		case runtime.IntValue:
			return i.floatOp(op, lv.Val, float64(rv.Val))
		}
	case runtime.DecimalValue:
		if rv, ok := right.(runtime.DecimalValue); ok {
			return i.decimalOp(op, lv.Val, rv.Val)
		}
	case runtime.StringValue:
		if op == "+" {
			if rv, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: lv.Val + rv.Val}, nil
			}
			return nil, i.raise(ExcTypeMismatch, "string concatenation requires Str, got %s", right.TypeName())
		}
	case *runtime.ArrayValue:
		if op == "+" {
			if rv, ok := right.(*runtime.ArrayValue); ok {
				merged := make([]runtime.Value, 0, len(lv.Elements)+len(rv.Elements))
				merged = append(merged, lv.Elements...)
				merged = append(merged, rv.Elements...)
				return &runtime.ArrayValue{Elements: merged}, nil
			}
		}
	}
	return nil, i.raise(ExcTypeMismatch, "operator %s not supported for %s and %s", op, left.TypeName(), right.TypeName())
}

func (i *Interpreter) intOp(op string, a, b int64) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.IntValue{Val: a + b}, nil
	case "-":
		return runtime.IntValue{Val: a - b}, nil
	case "*":
		return runtime.IntValue{Val: a * b}, nil
	case "/":
		if b == 0 {
			return nil, i.raise(ExcValue, "division by zero")
		}
		return runtime.IntValue{Val: a / b}, nil
	case "%":
		if b == 0 {
			return nil, i.raise(ExcValue, "modulo by zero")
		}
		return runtime.IntValue{Val: a % b}, nil
	}
	return nil, fmt.Errorf("unsupported arithmetic operator %s", op)
}

func (i *Interpreter) bigOp(op string, a, b *big.Int) (runtime.Value, error) {
	result := new(big.Int)
	switch op {
	case "+":
		result.Add(a, b)
	case "-":
		result.Sub(a, b)
	case "*":
		result.Mul(a, b)
	case "/":
		if b.Sign() == 0 {
			return nil, i.raise(ExcValue, "division by zero")
		}
		result.Quo(a, b)
	case "%":
		if b.Sign() == 0 {
			return nil, i.raise(ExcValue, "modulo by zero")
		}
		result.Rem(a, b)
	default:
		return nil, fmt.Errorf("unsupported arithmetic operator %s", op)
	}
	return runtime.BigIntValue{Val: result}, nil
}

func (i *Interpreter) floatOp(op string, a, b float64) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.FloatValue{Val: a + b}, nil
	case "-":
		return runtime.FloatValue{Val: a - b}, nil
	case "*":
		return runtime.FloatValue{Val: a * b}, nil
	case "/":
		if b == 0 {
			return nil, i.raise(ExcValue, "division by zero")
		}
		return runtime.FloatValue{Val: a / b}, nil
	}
	return nil, i.raise(ExcTypeMismatch, "operator %s not supported for Float", op)
}

func (i *Interpreter) decimalOp(op string, a, b decimal.Decimal) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.DecimalValue{Val: a.Add(b)}, nil
	case "-":
		return runtime.DecimalValue{Val: a.Sub(b)}, nil
	case "*":
		return runtime.DecimalValue{Val: a.Mul(b)}, nil
	case "/":
		if b.IsZero() {
			return nil, i.raise(ExcValue, "division by zero")
		}
		return runtime.DecimalValue{Val: a.Div(b)}, nil
	}
	return nil, i.raise(ExcTypeMismatch, "operator %s not supported for Decimal", op)
}

func (i *Interpreter) comparison(op string, left, right runtime.Value) (runtime.Value, error) {
	cmp, err := i.compare(left, right)
	if err != nil {
		return nil, err
	}
	var result bool
	switch op {
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case ">":
		result = cmp > 0
	case ">=":
		result = cmp >= 0
	}
	return runtime.BoolValue{Val: result}, nil
}

func (i *Interpreter) compare(left, right runtime.Value) (int, error) {
	switch lv := left.(type) {
	case runtime.IntValue:
		switch rv := right.(type) {
		case runtime.IntValue:
			return cmpInt64(lv.Val, rv.Val), nil
		case runtime.FloatValue:
			return cmpFloat(float64(lv.Val), rv.Val), nil
		case runtime.BigIntValue:
			return big.NewInt(lv.Val).Cmp(rv.Val), nil
		}
	case runtime.BigIntValue:
		switch rv := right.(type) {
		case runtime.BigIntValue:
			return lv.Val.Cmp(rv.Val), nil
		case runtime.IntValue:
			return lv.Val.Cmp(big.NewInt(rv.Val)), nil
		}
	case runtime.FloatValue:
		switch rv := right.(type) {
		case runtime.FloatValue:
			return cmpFloat(lv.Val, rv.Val), nil
		case runtime.IntValue:
			return cmpFloat(lv.Val, float64(rv.Val)), nil
		}
	case runtime.DecimalValue:
		if rv, ok := right.(runtime.DecimalValue); ok {
			return lv.Val.Cmp(rv.Val), nil
		}
	case runtime.StringValue:
		if rv, ok := right.(runtime.StringValue); ok {
			switch {
			case lv.Val < rv.Val:
				return -1, nil
			case lv.Val > rv.Val:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	return 0, i.raise(ExcTypeMismatch, "cannot compare %s with %s", left.TypeName(), right.TypeName())
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (i *Interpreter) evalIndex(expr *ast.IndexExpression, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evalExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalExpression(expr.Index, env)
	if err != nil {
		return nil, err
	}
	switch container := obj.(type) {
	case *runtime.ArrayValue:
		n, ok := idx.(runtime.IntValue)
		if !ok {
			return nil, i.raise(ExcTypeMismatch, "array index must be Int, got %s", idx.TypeName())
		}
		pos := int(n.Val)
		if pos < 0 || pos >= len(container.Elements) {
			return nil, i.raise(ExcIndex, "array index %d out of bounds (len %d)", pos, len(container.Elements))
		}
		return container.Elements[pos], nil
	case *runtime.DictValue:
		key, ok := idx.(runtime.StringValue)
		if !ok {
			return nil, i.raise(ExcTypeMismatch, "dict key must be Str, got %s", idx.TypeName())
		}
		val, present := container.Get(key.Val)
		if !present {
			return nil, i.raise(ExcKey, "dict has no key '%s'", key.Val)
		}
		return val, nil
	case runtime.StringValue:
		n, ok := idx.(runtime.IntValue)
		if !ok {
			return nil, i.raise(ExcTypeMismatch, "string index must be Int, got %s", idx.TypeName())
		}
		runes := []rune(container.Val)
		pos := int(n.Val)
		if pos < 0 || pos >= len(runes) {
			return nil, i.raise(ExcIndex, "string index %d out of bounds (len %d)", pos, len(runes))
		}
		return runtime.StringValue{Val: string(runes[pos])}, nil
	case runtime.BytesValue:
		n, ok := idx.(runtime.IntValue)
		if !ok {
			return nil, i.raise(ExcTypeMismatch, "bytes index must be Int, got %s", idx.TypeName())
		}
		pos := int(n.Val)
		if pos < 0 || pos >= len(container.Val) {
			return nil, i.raise(ExcIndex, "bytes index %d out of bounds (len %d)", pos, len(container.Val))
		}
		return runtime.IntValue{Val: int64(container.Val[pos])}, nil
	default:
		return nil, i.raise(ExcTypeMismatch, "cannot index value of type %s", obj.TypeName())
	}
}
