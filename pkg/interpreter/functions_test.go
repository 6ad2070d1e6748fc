package interpreter

import (
	"testing"

	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

func TestBindingPositionalThenDefaults(t *testing.T) {
	val := evalModule(t,
		ast.Fun("greet", []*ast.Parameter{
			ast.Param("name"),
			ast.DefParam("greeting", ast.Str("hi")),
		},
			ast.Ret(ast.Bin("+", ast.Bin("+", ast.ID("greeting"), ast.Str(" ")), ast.ID("name"))),
		),
		ast.Call(ast.ID("greet"), ast.Str("ada")),
	)
	str, ok := val.(runtime.StringValue)
	if !ok || str.Val != "hi ada" {
		t.Fatalf("unexpected result %#v", val)
	}
}

func TestBindingNamedArgumentsFillUnboundParams(t *testing.T) {
	val := evalModule(t,
		ast.Fun("greet", []*ast.Parameter{
			ast.Param("name"),
			ast.DefParam("greeting", ast.Str("hi")),
		},
			ast.Ret(ast.Bin("+", ast.Bin("+", ast.ID("greeting"), ast.Str(" ")), ast.ID("name"))),
		),
		ast.CallKw(ast.ID("greet"),
			[]ast.Expression{ast.Str("ada")},
			ast.Named("greeting", ast.Str("yo")),
		),
	)
	str, ok := val.(runtime.StringValue)
	if !ok || str.Val != "yo ada" {
		t.Fatalf("unexpected result %#v", val)
	}
}

func TestBindingDuplicatePositionalAndKeywordIsArityError(t *testing.T) {
	evalExpectingException(t, ExcArity,
		ast.Fun("f", []*ast.Parameter{ast.Param("a")},
			ast.Ret(ast.ID("a")),
		),
		ast.CallKw(ast.ID("f"),
			[]ast.Expression{ast.Int(1)},
			ast.Named("a", ast.Int(2)),
		),
	)
}

func TestBindingUnknownKeywordWithoutKwargsParam(t *testing.T) {
	exc := evalExpectingException(t, ExcUnknownKeyword,
		ast.Fun("f", []*ast.Parameter{ast.Param("a")},
			ast.Ret(ast.ID("a")),
		),
		ast.CallKw(ast.ID("f"),
			[]ast.Expression{ast.Int(1)},
			ast.Named("nope", ast.Int(2)),
		),
	)
	if exc.Message == "" {
		t.Fatalf("expected message naming the keyword")
	}
}

func TestBindingMissingRequiredParamIsArityError(t *testing.T) {
	evalExpectingException(t, ExcArity,
		ast.Fun("f", []*ast.Parameter{ast.Param("a"), ast.Param("b")},
			ast.Ret(ast.ID("a")),
		),
		ast.Call(ast.ID("f"), ast.Int(1)),
	)
}

func TestBindingTooManyPositionalWithoutVarargs(t *testing.T) {
	evalExpectingException(t, ExcArity,
		ast.Fun("f", []*ast.Parameter{ast.Param("a")},
			ast.Ret(ast.ID("a")),
		),
		ast.Call(ast.ID("f"), ast.Int(1), ast.Int(2)),
	)
}

func TestBindingVarargsCollectOverflow(t *testing.T) {
	val := evalModule(t,
		ast.Fun("count", []*ast.Parameter{
			ast.Param("first"),
			ast.RestParam("rest"),
		},
			ast.Ret(ast.Call(ast.Member(ast.ID("rest"), "len"))),
		),
		ast.Call(ast.ID("count"), ast.Int(1), ast.Int(2), ast.Int(3), ast.Int(4)),
	)
	if n := intResult(t, val); n != 3 {
		t.Fatalf("expected 3 overflow args, got %d", n)
	}
}

func TestBindingVarargsEmptyWhenNoOverflow(t *testing.T) {
	val := evalModule(t,
		ast.Fun("count", []*ast.Parameter{ast.RestParam("rest")},
			ast.Ret(ast.Call(ast.Member(ast.ID("rest"), "len"))),
		),
		ast.Call(ast.ID("count")),
	)
	if n := intResult(t, val); n != 0 {
		t.Fatalf("expected empty varargs, got %d", n)
	}
}

func TestBindingKwargsCollectUnmatchedNames(t *testing.T) {
	val := evalModule(t,
		ast.Fun("opts", []*ast.Parameter{
			ast.Param("a"),
			ast.KwParam("extra"),
		},
			ast.Ret(ast.Index(ast.ID("extra"), ast.Str("color"))),
		),
		ast.CallKw(ast.ID("opts"),
			[]ast.Expression{ast.Int(1)},
			ast.Named("color", ast.Str("red")),
			ast.Named("size", ast.Int(2)),
		),
	)
	str, ok := val.(runtime.StringValue)
	if !ok || str.Val != "red" {
		t.Fatalf("unexpected kwargs entry %#v", val)
	}
}

// fullSignature is f(a, b=1, *args, **kw) returning every bound value in
// order, so one call exercises all four binding channels at once.
func fullSignatureParams() []*ast.Parameter {
	return []*ast.Parameter{
		ast.Param("a"),
		ast.DefParam("b", ast.Int(1)),
		ast.RestParam("args"),
		ast.KwParam("kw"),
	}
}

func fullSignatureBody() ast.Statement {
	return ast.Ret(ast.Arr(
		ast.ID("a"),
		ast.ID("b"),
		ast.Call(ast.Member(ast.ID("args"), "get"), ast.Int(0)),
		ast.Call(ast.Member(ast.ID("args"), "get"), ast.Int(1)),
		ast.Index(ast.ID("kw"), ast.Str("x")),
		ast.Index(ast.ID("kw"), ast.Str("y")),
	))
}

func callFullSignature(callee ast.Expression) ast.Expression {
	return ast.CallKw(callee,
		[]ast.Expression{ast.Int(1), ast.Int(2), ast.Int(3), ast.Int(4)},
		ast.Named("x", ast.Int(5)),
		ast.Named("y", ast.Int(6)),
	)
}

func TestCombinedSignatureBindsAllFourChannels(t *testing.T) {
	val := evalModule(t,
		ast.Fun("f", fullSignatureParams(), fullSignatureBody()),
		callFullSignature(ast.ID("f")),
	)
	if got := runtime.ToDisplayString(val); got != "[1, 2, 3, 4, 5, 6]" {
		t.Fatalf("unexpected binding: %s", got)
	}
}

func TestLambdaBindsCombinedSignatureLikeNamedFunction(t *testing.T) {
	val := evalModule(t,
		ast.Let("f", ast.Lam(fullSignatureParams(), fullSignatureBody())),
		callFullSignature(ast.ID("f")),
	)
	if got := runtime.ToDisplayString(val); got != "[1, 2, 3, 4, 5, 6]" {
		t.Fatalf("lambda bound differently: %s", got)
	}
}

func TestDefaultsEvaluateLazilyLeftToRight(t *testing.T) {
	// b's default references a, which must already be bound.
	val := evalModule(t,
		ast.Fun("f", []*ast.Parameter{
			ast.Param("a"),
			ast.DefParam("b", ast.Bin("*", ast.ID("a"), ast.Int(2))),
		},
			ast.Ret(ast.Bin("+", ast.ID("a"), ast.ID("b"))),
		),
		ast.Call(ast.ID("f"), ast.Int(5)),
	)
	if n := intResult(t, val); n != 15 {
		t.Fatalf("expected 15, got %d", n)
	}
}

func TestDefaultNotEvaluatedWhenArgumentSupplied(t *testing.T) {
	// The default would raise; supplying the argument must skip it.
	val := evalModule(t,
		ast.Fun("f", []*ast.Parameter{
			ast.DefParam("a", ast.ID("undefined_default")),
		},
			ast.Ret(ast.ID("a")),
		),
		ast.Call(ast.ID("f"), ast.Int(9)),
	)
	if n := intResult(t, val); n != 9 {
		t.Fatalf("expected 9, got %d", n)
	}
}

func TestParamTypeAnnotationEnforced(t *testing.T) {
	evalExpectingException(t, ExcTypeMismatch,
		ast.Fun("f", []*ast.Parameter{ast.TypedParam("n", "Int")},
			ast.Ret(ast.ID("n")),
		),
		ast.Call(ast.ID("f"), ast.Str("nope")),
	)
}

func TestOptionalParamTypeAcceptsNil(t *testing.T) {
	val := evalModule(t,
		ast.Fun("f", []*ast.Parameter{ast.TypedParam("n", "Int?")},
			ast.Ret(ast.ID("n")),
		),
		ast.Call(ast.ID("f"), ast.Nil()),
	)
	if _, ok := val.(runtime.NilValue); !ok {
		t.Fatalf("expected nil through optional annotation, got %#v", val)
	}
}

func TestNativeFunctionsUseSameBindingProtocol(t *testing.T) {
	interp := New()
	interp.RegisterNative("pair", []*ast.Parameter{
		ast.Param("a"),
		ast.DefParam("b", ast.Int(10)),
	}, func(ctx *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		a := args[0].(runtime.IntValue)
		b := args[1].(runtime.IntValue)
		return runtime.IntValue{Val: a.Val*100 + b.Val}, nil
	})

	val, err := interp.EvaluateModule(ast.Mod(
		ast.Call(ast.ID("pair"), ast.Int(3)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := intResult(t, val); n != 310 {
		t.Fatalf("expected default-bound native result 310, got %d", n)
	}

	// Same arity failure as a user function.
	_, err = interp.EvaluateModule(ast.Mod(ast.Call(ast.ID("pair"))))
	unhandled, ok := err.(*UnhandledException)
	if !ok || unhandled.Exc.ExcType != ExcArity {
		t.Fatalf("expected ArityError from native, got %v", err)
	}
}

func TestFunctionReturnsNilWithoutExplicitReturn(t *testing.T) {
	val := evalModule(t,
		ast.Fun("noop", nil,
			ast.Let("x", ast.Int(1)),
		),
		ast.Call(ast.ID("noop")),
	)
	if _, ok := val.(runtime.NilValue); !ok {
		t.Fatalf("expected implicit nil, got %#v", val)
	}
}

func TestReturnCrossesTryWithoutBeingCaught(t *testing.T) {
	val := evalModule(t,
		ast.Fun("f", nil,
			ast.Try(
				[]ast.Statement{ast.Ret(ast.Int(1))},
				ast.Catch("e", "", ast.Ret(ast.Int(2))),
			),
			ast.Ret(ast.Int(3)),
		),
		ast.Call(ast.ID("f")),
	)
	if n := intResult(t, val); n != 1 {
		t.Fatalf("return was intercepted by catch: got %d", n)
	}
}

func TestBreakInsideFunctionBodyIsRuntimeError(t *testing.T) {
	evalExpectingException(t, ExcRuntime,
		ast.Fun("f", nil, ast.Brk()),
		ast.Call(ast.ID("f")),
	)
}

func TestDecoratorsApplyInnermostFirst(t *testing.T) {
	// wrap(f) returns a lambda adding 1; two decorators compose so the
	// outer decorator sees the inner's wrapper.
	val := evalModule(t,
		ast.Fun("add_one", []*ast.Parameter{ast.Param("f")},
			ast.Ret(ast.Lam([]*ast.Parameter{ast.Param("x")},
				ast.Ret(ast.Bin("+", ast.Call(ast.ID("f"), ast.ID("x")), ast.Int(1))),
			)),
		),
		ast.Fun("double", []*ast.Parameter{ast.Param("f")},
			ast.Ret(ast.Lam([]*ast.Parameter{ast.Param("x")},
				ast.Ret(ast.Bin("*", ast.Call(ast.ID("f"), ast.ID("x")), ast.Int(2))),
			)),
		),
		// @double @add_one fun base(x) = x
		ast.Decorated(
			ast.Fun("base", []*ast.Parameter{ast.Param("x")},
				ast.Ret(ast.ID("x")),
			),
			ast.ID("double"), ast.ID("add_one"),
		),
		ast.Call(ast.ID("base"), ast.Int(5)),
	)
	// add_one applies first: 5+1=6, then double: 12.
	if n := intResult(t, val); n != 12 {
		t.Fatalf("expected 12, got %d", n)
	}
}

func TestInstanceWithCallMethodIsCallable(t *testing.T) {
	val := evalModule(t,
		ast.TypeDecl("Adder",
			[]*ast.FieldDeclaration{ast.PubField("amount", "Int")},
			ast.Fun("_call", []*ast.Parameter{ast.Param("x")},
				ast.Ret(ast.Bin("+", ast.ID("x"), ast.Member(ast.ID("self"), "amount"))),
			),
		),
		ast.Let("add5", ast.Call(ast.Member(ast.ID("Adder"), "new"), ast.Int(5))),
		ast.Call(ast.ID("add5"), ast.Int(37)),
	)
	if n := intResult(t, val); n != 42 {
		t.Fatalf("expected 42, got %d", n)
	}
}

func TestCallingNonCallableRaisesTypeMismatch(t *testing.T) {
	evalExpectingException(t, ExcTypeMismatch,
		ast.Call(ast.Int(3), ast.Int(1)),
	)
}
