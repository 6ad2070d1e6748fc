package runtime

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/lolsborn/quest-sub012/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindBigInt
	KindFloat
	KindDecimal
	KindString
	KindBytes
	KindArray
	KindDict
	KindFunction
	KindNativeFunction
	KindBoundMethod
	KindNativeBoundMethod
	KindType
	KindTrait
	KindInstance
	KindException
	KindModule
	KindUuid
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindBigInt:
		return "bigint"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindBoundMethod:
		return "bound_method"
	case KindNativeBoundMethod:
		return "native_bound_method"
	case KindType:
		return "type"
	case KindTrait:
		return "trait"
	case KindInstance:
		return "instance"
	case KindException:
		return "exception"
	case KindModule:
		return "module"
	case KindUuid:
		return "uuid"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. TypeName reports the
// language-level type tag used by declared-type checks and error messages.
type Value interface {
	Kind() Kind
	TypeName() string
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NilValue struct{}

func (NilValue) Kind() Kind       { return KindNil }
func (NilValue) TypeName() string { return "Nil" }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind       { return KindBool }
func (v BoolValue) TypeName() string { return "Bool" }

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind       { return KindInt }
func (v IntValue) TypeName() string { return "Int" }

type BigIntValue struct {
	Val *big.Int
}

func (v BigIntValue) Kind() Kind       { return KindBigInt }
func (v BigIntValue) TypeName() string { return "BigInt" }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind       { return KindFloat }
func (v FloatValue) TypeName() string { return "Float" }

type DecimalValue struct {
	Val decimal.Decimal
}

func (v DecimalValue) Kind() Kind       { return KindDecimal }
func (v DecimalValue) TypeName() string { return "Decimal" }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind       { return KindString }
func (v StringValue) TypeName() string { return "Str" }

type BytesValue struct {
	Val []byte
}

func (v BytesValue) Kind() Kind       { return KindBytes }
func (v BytesValue) TypeName() string { return "Bytes" }

type UuidValue struct {
	Val uuid.UUID
}

func (v UuidValue) Kind() Kind       { return KindUuid }
func (v UuidValue) TypeName() string { return "Uuid" }

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// ArrayValue is a shared, mutably-aliased sequence. Copying the Value copies
// the handle, never the elements.
type ArrayValue struct {
	Elements []Value
}

func (v *ArrayValue) Kind() Kind       { return KindArray }
func (v *ArrayValue) TypeName() string { return "Array" }

func NewArray(elements ...Value) *ArrayValue {
	return &ArrayValue{Elements: elements}
}

// DictValue is an insertion-ordered string-keyed mapping, shared by handle.
type DictValue struct {
	keys    []string
	entries map[string]Value
}

func (v *DictValue) Kind() Kind       { return KindDict }
func (v *DictValue) TypeName() string { return "Dict" }

func NewDict() *DictValue {
	return &DictValue{entries: make(map[string]Value)}
}

func (v *DictValue) Get(key string) (Value, bool) {
	val, ok := v.entries[key]
	return val, ok
}

func (v *DictValue) Set(key string, value Value) {
	if _, ok := v.entries[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.entries[key] = value
}

func (v *DictValue) Delete(key string) bool {
	if _, ok := v.entries[key]; !ok {
		return false
	}
	delete(v.entries, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (v *DictValue) Keys() []string {
	out := make([]string, len(v.keys))
	copy(out, v.keys)
	return out
}

func (v *DictValue) Len() int { return len(v.keys) }

//-----------------------------------------------------------------------------
// Functions, closures, natives
//-----------------------------------------------------------------------------

// FunctionValue covers both named functions and lambdas; a lambda has an
// empty Name. Closure is the scope active at the definition point, captured
// by reference.
type FunctionValue struct {
	Name    string
	Params  []*ast.Parameter
	Body    []ast.Statement
	Closure *Environment
	Private bool
}

func (v *FunctionValue) Kind() Kind       { return KindFunction }
func (v *FunctionValue) TypeName() string { return "Fun" }

// DisplayName reports the function name for error messages.
func (v *FunctionValue) DisplayName() string {
	if v.Name == "" {
		return "<anonymous>"
	}
	return v.Name
}

// KeywordArg preserves call-site ordering of named arguments so a collected
// **kwargs dict is insertion-ordered.
type KeywordArg struct {
	Name  string
	Value Value
}

// CallArguments separates positional and named arguments for the shared
// parameter-binding protocol.
type CallArguments struct {
	Positional []Value
	Keyword    []KeywordArg
}

func PositionalArgs(args ...Value) CallArguments {
	return CallArguments{Positional: args}
}

// NativeCallContext gives native functions access to the caller's scope.
type NativeCallContext struct {
	Env *Environment
}

// NativeFunc implementations receive arguments already bound by the same
// protocol as user functions: one value per declared parameter, in
// declaration order (a variadic-positional parameter arrives as *ArrayValue,
// a variadic-keyword parameter as *DictValue).
type NativeFunc func(ctx *NativeCallContext, args []Value) (Value, error)

type NativeFunctionValue struct {
	Name   string
	Params []*ast.Parameter
	Impl   NativeFunc
}

func (v NativeFunctionValue) Kind() Kind       { return KindNativeFunction }
func (v NativeFunctionValue) TypeName() string { return "Fun" }

// BoundMethodValue pairs a receiver handle with a method. The receiver is the
// shared handle, never a copy.
type BoundMethodValue struct {
	Receiver Value
	Method   *FunctionValue
}

func (v *BoundMethodValue) Kind() Kind       { return KindBoundMethod }
func (v *BoundMethodValue) TypeName() string { return "Fun" }

type NativeBoundMethodValue struct {
	Receiver Value
	Method   NativeFunctionValue
}

func (v NativeBoundMethodValue) Kind() Kind       { return KindNativeBoundMethod }
func (v NativeBoundMethodValue) TypeName() string { return "Fun" }

//-----------------------------------------------------------------------------
// Types, traits, instances
//-----------------------------------------------------------------------------

// FieldSpec is the definition-time description of one struct field. Default
// is evaluated once, at type-definition time, in the defining scope.
type FieldSpec struct {
	Name       string
	TypeName   string // "" means Any
	Optional   bool
	Public     bool
	HasDefault bool
	Default    Value
}

// TypeValue is a struct type descriptor: ordered fields, method tables, and
// implemented trait names. Trait-provided methods live in TraitMethods and
// resolve behind directly declared Methods.
type TypeValue struct {
	Name          string
	Fields        []*FieldSpec
	Methods       map[string]*FunctionValue
	StaticMethods map[string]*FunctionValue
	TraitMethods  map[string]*FunctionValue
	Traits        []string
	Doc           string
}

func (v *TypeValue) Kind() Kind       { return KindType }
func (v *TypeValue) TypeName() string { return "Type" }

func (v *TypeValue) FieldNamed(name string) *FieldSpec {
	for _, f := range v.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (v *TypeValue) Implements(traitName string) bool {
	for _, t := range v.Traits {
		if t == traitName {
			return true
		}
	}
	return false
}

// TraitValue records required method names and default implementations.
type TraitValue struct {
	Name     string
	Required []string
	Defaults map[string]*FunctionValue
}

func (v *TraitValue) Kind() Kind       { return KindTrait }
func (v *TraitValue) TypeName() string { return "Trait" }

// InstanceValue is a struct instance: a back-reference to its type plus
// mutable field storage. Instances are shared by handle; scopes, closures and
// collections all alias the same storage.
type InstanceValue struct {
	Type   *TypeValue
	Fields map[string]Value
}

func (v *InstanceValue) Kind() Kind       { return KindInstance }
func (v *InstanceValue) TypeName() string { return v.Type.Name }

//-----------------------------------------------------------------------------
// Exceptions and modules
//-----------------------------------------------------------------------------

// ExceptionValue carries a type tag from the single-inheritance exception
// hierarchy, a message, a stack of function-name frames, and an optional
// cause.
type ExceptionValue struct {
	ExcType string
	Message string
	Stack   []string
	Cause   *ExceptionValue
}

func (v *ExceptionValue) Kind() Kind       { return KindException }
func (v *ExceptionValue) TypeName() string { return v.ExcType }

func (v *ExceptionValue) String() string {
	return fmt.Sprintf("%s: %s", v.ExcType, v.Message)
}

// ModuleValue is a loaded module namespace.
type ModuleValue struct {
	Name    string
	Members map[string]Value
}

func (v *ModuleValue) Kind() Kind       { return KindModule }
func (v *ModuleValue) TypeName() string { return "Module" }

//-----------------------------------------------------------------------------
// Shared helpers
//-----------------------------------------------------------------------------

// Truthy reports language truthiness: nil and false are falsy, everything
// else is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case NilValue:
		return false
	case BoolValue:
		return val.Val
	default:
		return true
	}
}

// ToDisplayString renders a value the way print and str() do.
func ToDisplayString(v Value) string {
	switch val := v.(type) {
	case NilValue:
		return "nil"
	case BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case IntValue:
		return fmt.Sprintf("%d", val.Val)
	case BigIntValue:
		return val.Val.String()
	case FloatValue:
		return fmt.Sprintf("%g", val.Val)
	case DecimalValue:
		return val.Val.String()
	case StringValue:
		return val.Val
	case BytesValue:
		return fmt.Sprintf("b\"%x\"", val.Val)
	case UuidValue:
		return val.Val.String()
	case *ArrayValue:
		parts := make([]string, len(val.Elements))
		for i, el := range val.Elements {
			parts[i] = ToDisplayString(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *DictValue:
		parts := make([]string, 0, val.Len())
		for _, k := range val.Keys() {
			entry, _ := val.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, ToDisplayString(entry)))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *FunctionValue:
		return fmt.Sprintf("<fun %s>", val.DisplayName())
	case NativeFunctionValue:
		return fmt.Sprintf("<native fun %s>", val.Name)
	case *BoundMethodValue:
		return fmt.Sprintf("<bound %s>", val.Method.DisplayName())
	case NativeBoundMethodValue:
		return fmt.Sprintf("<bound %s>", val.Method.Name)
	case *TypeValue:
		return "type " + val.Name
	case *TraitValue:
		return "trait " + val.Name
	case *InstanceValue:
		return val.Type.Name + " instance"
	case *ExceptionValue:
		return val.String()
	case *ModuleValue:
		return "module " + val.Name
	default:
		return fmt.Sprintf("<%s>", v.Kind())
	}
}

// Equal implements the language == on values. Collections compare by
// contents, instances by handle identity.
func Equal(left, right Value) bool {
	switch lv := left.(type) {
	case NilValue:
		_, ok := right.(NilValue)
		return ok
	case BoolValue:
		rv, ok := right.(BoolValue)
		return ok && lv.Val == rv.Val
	case IntValue:
		switch rv := right.(type) {
		case IntValue:
			return lv.Val == rv.Val
		case BigIntValue:
			return rv.Val.IsInt64() && rv.Val.Int64() == lv.Val
		case FloatValue:
			return float64(lv.Val) == rv.Val
		}
		return false
	case BigIntValue:
		switch rv := right.(type) {
		case BigIntValue:
			return lv.Val.Cmp(rv.Val) == 0
		case IntValue:
			return lv.Val.IsInt64() && lv.Val.Int64() == rv.Val
		}
		return false
	case FloatValue:
		switch rv := right.(type) {
		case FloatValue:
			return lv.Val == rv.Val
		case IntValue:
			return lv.Val == float64(rv.Val)
		}
		return false
	case DecimalValue:
		rv, ok := right.(DecimalValue)
		return ok && lv.Val.Equal(rv.Val)
	case StringValue:
		rv, ok := right.(StringValue)
		return ok && lv.Val == rv.Val
	case BytesValue:
		rv, ok := right.(BytesValue)
		if !ok || len(lv.Val) != len(rv.Val) {
			return false
		}
		for i := range lv.Val {
			if lv.Val[i] != rv.Val[i] {
				return false
			}
		}
		return true
	case UuidValue:
		rv, ok := right.(UuidValue)
		return ok && lv.Val == rv.Val
	case *ArrayValue:
		rv, ok := right.(*ArrayValue)
		if !ok || len(lv.Elements) != len(rv.Elements) {
			return false
		}
		for i := range lv.Elements {
			if !Equal(lv.Elements[i], rv.Elements[i]) {
				return false
			}
		}
		return true
	case *DictValue:
		rv, ok := right.(*DictValue)
		if !ok || lv.Len() != rv.Len() {
			return false
		}
		for _, k := range lv.keys {
			a, _ := lv.Get(k)
			b, present := rv.Get(k)
			if !present || !Equal(a, b) {
				return false
			}
		}
		return true
	case *InstanceValue:
		rv, ok := right.(*InstanceValue)
		return ok && lv == rv
	case *ExceptionValue:
		rv, ok := right.(*ExceptionValue)
		return ok && lv == rv
	default:
		return left == right
	}
}
