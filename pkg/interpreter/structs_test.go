package interpreter

import (
	"strings"
	"testing"

	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

func pointDecl() *ast.TypeDeclaration {
	return ast.TypeDecl("Point",
		[]*ast.FieldDeclaration{
			ast.PubField("x", "Int"),
			ast.PubField("y", "Int"),
		},
		ast.Fun("sum", nil,
			ast.Ret(ast.Bin("+", ast.Member(ast.ID("self"), "x"), ast.Member(ast.ID("self"), "y"))),
		),
		ast.Fun("shift", []*ast.Parameter{ast.Param("dx")},
			ast.Assign(ast.Member(ast.ID("self"), "x"), ast.Bin("+", ast.Member(ast.ID("self"), "x"), ast.ID("dx"))),
		),
	)
}

func TestConstructionPositionalAndNamed(t *testing.T) {
	val := evalModule(t,
		pointDecl(),
		ast.Let("p", ast.Call(ast.Member(ast.ID("Point"), "new"), ast.Int(1), ast.Int(2))),
		ast.Call(ast.Member(ast.ID("p"), "sum")),
	)
	if n := intResult(t, val); n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}

	val = evalModule(t,
		pointDecl(),
		ast.Let("p", ast.CallKw(ast.Member(ast.ID("Point"), "new"), nil,
			ast.Named("y", ast.Int(10)),
			ast.Named("x", ast.Int(20)),
		)),
		ast.Call(ast.Member(ast.ID("p"), "sum")),
	)
	if n := intResult(t, val); n != 30 {
		t.Fatalf("expected 30, got %d", n)
	}
}

func TestConstructionMissingRequiredField(t *testing.T) {
	exc := evalExpectingException(t, ExcArity,
		pointDecl(),
		ast.Call(ast.Member(ast.ID("Point"), "new"), ast.Int(1)),
	)
	if !strings.Contains(exc.Message, "y") {
		t.Fatalf("error should name the missing field: %s", exc.Message)
	}
}

func TestConstructionDeclaredTypeEnforced(t *testing.T) {
	evalExpectingException(t, ExcTypeMismatch,
		pointDecl(),
		ast.Call(ast.Member(ast.ID("Point"), "new"), ast.Str("no"), ast.Int(2)),
	)
}

func TestNilIntoRequiredTypedFieldIsTypeMismatch(t *testing.T) {
	evalExpectingException(t, ExcTypeMismatch,
		pointDecl(),
		ast.Call(ast.Member(ast.ID("Point"), "new"), ast.Nil(), ast.Int(2)),
	)
}

func TestSelfMutationInsideNestedBlocks(t *testing.T) {
	// self.n bumped inside an if within a while; the nested frames must
	// still resolve self to the same handle.
	val := evalModule(t,
		ast.TypeDecl("Tally",
			[]*ast.FieldDeclaration{ast.PubField("n", "Int")},
			ast.Fun("fill", nil,
				ast.While(ast.Bin("<", ast.Member(ast.ID("self"), "n"), ast.Int(3)),
					ast.If(ast.Bool(true),
						ast.AssignOp(ast.Member(ast.ID("self"), "n"), "+=", ast.Int(1)),
					),
				),
			),
		),
		ast.Let("t", ast.Call(ast.Member(ast.ID("Tally"), "new"), ast.Int(0))),
		ast.Call(ast.Member(ast.ID("t"), "fill")),
		ast.Member(ast.ID("t"), "n"),
	)
	if n := intResult(t, val); n != 3 {
		t.Fatalf("nested-block mutation lost: n=%d", n)
	}
}

func TestOptionalFieldAcceptsNilBeforeTypeCheck(t *testing.T) {
	// nil must pass the optional short-circuit even with a declared type.
	val := evalModule(t,
		ast.TypeDecl("User",
			[]*ast.FieldDeclaration{
				ast.PubField("name", "Str"),
				ast.PubField("email", "Str").Opt(),
			},
		),
		ast.Let("u", ast.Call(ast.Member(ast.ID("User"), "new"), ast.Str("ada"), ast.Nil())),
		ast.Member(ast.ID("u"), "email"),
	)
	if _, ok := val.(runtime.NilValue); !ok {
		t.Fatalf("expected nil email, got %#v", val)
	}
}

func TestOptionalFieldDefaultsToNilWhenOmitted(t *testing.T) {
	val := evalModule(t,
		ast.TypeDecl("User",
			[]*ast.FieldDeclaration{
				ast.PubField("name", "Str"),
				ast.PubField("email", "Str").Opt(),
			},
		),
		ast.Let("u", ast.Call(ast.Member(ast.ID("User"), "new"), ast.Str("ada"))),
		ast.Member(ast.ID("u"), "email"),
	)
	if _, ok := val.(runtime.NilValue); !ok {
		t.Fatalf("expected omitted optional to be nil, got %#v", val)
	}
}

func TestFieldDefaultsEvaluateAtDefinitionTime(t *testing.T) {
	// The default reads a variable at declaration time; later mutation must
	// not affect new instances.
	val := evalModule(t,
		ast.Let("base", ast.Int(7)),
		ast.TypeDecl("Counter",
			[]*ast.FieldDeclaration{
				ast.PubField("start", "Int").WithDefault(ast.ID("base")),
			},
		),
		ast.Assign(ast.ID("base"), ast.Int(999)),
		ast.Let("c", ast.Call(ast.Member(ast.ID("Counter"), "new"))),
		ast.Member(ast.ID("c"), "start"),
	)
	if n := intResult(t, val); n != 7 {
		t.Fatalf("default should be captured at definition time, got %d", n)
	}
}

func TestSelfMutationPersistsAcrossAliases(t *testing.T) {
	val := evalModule(t,
		pointDecl(),
		ast.Let("p", ast.Call(ast.Member(ast.ID("Point"), "new"), ast.Int(1), ast.Int(0))),
		ast.Let("alias", ast.ID("p")),
		ast.Call(ast.Member(ast.ID("p"), "shift"), ast.Int(41)),
		ast.Member(ast.ID("alias"), "x"),
	)
	if n := intResult(t, val); n != 42 {
		t.Fatalf("mutation through self should be visible via alias, got %d", n)
	}
}

func TestInstancesInCollectionsShareHandles(t *testing.T) {
	val := evalModule(t,
		pointDecl(),
		ast.Let("p", ast.Call(ast.Member(ast.ID("Point"), "new"), ast.Int(0), ast.Int(0))),
		ast.Let("xs", ast.Arr(ast.ID("p"))),
		ast.Call(ast.Member(ast.Index(ast.ID("xs"), ast.Int(0)), "shift"), ast.Int(5)),
		ast.Member(ast.ID("p"), "x"),
	)
	if n := intResult(t, val); n != 5 {
		t.Fatalf("collection should alias the instance, got %d", n)
	}
}

func TestPrivateFieldHiddenOutsideMethods(t *testing.T) {
	decl := ast.TypeDecl("Vault",
		[]*ast.FieldDeclaration{
			ast.Field("secret", "Str"),
		},
		ast.Fun("reveal", nil,
			ast.Ret(ast.Member(ast.ID("self"), "secret")),
		),
	)
	evalExpectingException(t, ExcAttribute,
		decl,
		ast.Let("v", ast.Call(ast.Member(ast.ID("Vault"), "new"), ast.Str("hunter2"))),
		ast.Member(ast.ID("v"), "secret"),
	)

	val := evalModule(t,
		decl,
		ast.Let("v", ast.Call(ast.Member(ast.ID("Vault"), "new"), ast.Str("hunter2"))),
		ast.Call(ast.Member(ast.ID("v"), "reveal")),
	)
	str, ok := val.(runtime.StringValue)
	if !ok || str.Val != "hunter2" {
		t.Fatalf("method should read private field, got %#v", val)
	}
}

func TestPrivateMethodHiddenOutside(t *testing.T) {
	evalExpectingException(t, ExcAttribute,
		ast.TypeDecl("T", nil,
			ast.PrivateFun("hidden", nil, ast.Ret(ast.Int(1))),
		),
		ast.Let("x", ast.Call(ast.Member(ast.ID("T"), "new"))),
		ast.Call(ast.Member(ast.ID("x"), "hidden")),
	)
}

func TestStaticMethodsDispatchOnType(t *testing.T) {
	val := evalModule(t,
		ast.TypeDecl("Factory",
			[]*ast.FieldDeclaration{ast.PubField("n", "Int")},
			ast.StaticFun("forty_two", nil,
				ast.Ret(ast.Int(42)),
			),
		),
		ast.Call(ast.Member(ast.ID("Factory"), "forty_two")),
	)
	if n := intResult(t, val); n != 42 {
		t.Fatalf("expected 42, got %d", n)
	}
}

func TestUnknownMemberRaisesAttributeError(t *testing.T) {
	evalExpectingException(t, ExcAttribute,
		pointDecl(),
		ast.Let("p", ast.Call(ast.Member(ast.ID("Point"), "new"), ast.Int(1), ast.Int(2))),
		ast.Member(ast.ID("p"), "z"),
	)
}

func TestTraitDefaultAndOverride(t *testing.T) {
	trait := ast.Trait("Greeter",
		ast.Fun("name", nil), // required, no body
		ast.Fun("greet", nil,
			ast.Ret(ast.Bin("+", ast.Str("hello "), ast.Call(ast.Member(ast.ID("self"), "name")))),
		),
	)

	val := evalModule(t,
		trait,
		ast.TypeDecl("En", nil).WithImpl(ast.Impl("Greeter",
			ast.Fun("name", nil, ast.Ret(ast.Str("world"))),
		)),
		ast.Let("g", ast.Call(ast.Member(ast.ID("En"), "new"))),
		ast.Call(ast.Member(ast.ID("g"), "greet")),
	)
	str, ok := val.(runtime.StringValue)
	if !ok || str.Val != "hello world" {
		t.Fatalf("trait default should apply, got %#v", val)
	}

	val = evalModule(t,
		trait,
		ast.TypeDecl("Fr", nil).WithImpl(ast.Impl("Greeter",
			ast.Fun("name", nil, ast.Ret(ast.Str("monde"))),
			ast.Fun("greet", nil, ast.Ret(ast.Str("bonjour"))),
		)),
		ast.Let("g", ast.Call(ast.Member(ast.ID("Fr"), "new"))),
		ast.Call(ast.Member(ast.ID("g"), "greet")),
	)
	str, ok = val.(runtime.StringValue)
	if !ok || str.Val != "bonjour" {
		t.Fatalf("impl override should win, got %#v", val)
	}
}

func TestTraitMissingRequiredMethodFailsDeclaration(t *testing.T) {
	evalExpectingException(t, ExcTypeMismatch,
		ast.Trait("Greeter", ast.Fun("name", nil)),
		ast.TypeDecl("Bad", nil).WithImpl(ast.Impl("Greeter")),
	)
}

func TestStandaloneImplForAttachesTrait(t *testing.T) {
	val := evalModule(t,
		ast.Trait("Sized", ast.Fun("size", nil)),
		ast.TypeDecl("Box", []*ast.FieldDeclaration{ast.PubField("n", "Int")}),
		ast.ImplFor("Sized", "Box",
			ast.Fun("size", nil, ast.Ret(ast.Member(ast.ID("self"), "n"))),
		),
		ast.Let("b", ast.Call(ast.Member(ast.ID("Box"), "new"), ast.Int(9))),
		ast.Call(ast.Member(ast.ID("b"), "size")),
	)
	if n := intResult(t, val); n != 9 {
		t.Fatalf("expected 9, got %d", n)
	}
}

func TestTraitNameWorksAsDeclaredType(t *testing.T) {
	stmts := []ast.Statement{
		ast.Trait("Sized", ast.Fun("size", nil)),
		ast.TypeDecl("Box", nil).WithImpl(ast.Impl("Sized",
			ast.Fun("size", nil, ast.Ret(ast.Int(1))),
		)),
		ast.Fun("measure", []*ast.Parameter{ast.TypedParam("s", "Sized")},
			ast.Ret(ast.Call(ast.Member(ast.ID("s"), "size"))),
		),
	}

	ok := append(append([]ast.Statement{}, stmts...),
		ast.Call(ast.ID("measure"), ast.Call(ast.Member(ast.ID("Box"), "new"))),
	)
	if n := intResult(t, evalModule(t, ok...)); n != 1 {
		t.Fatalf("trait-typed parameter should accept implementor")
	}

	bad := append(append([]ast.Statement{}, stmts...),
		ast.Call(ast.ID("measure"), ast.Int(3)),
	)
	interp := New()
	_, err := interp.EvaluateModule(ast.Mod(bad...))
	unhandled, isUnhandled := err.(*UnhandledException)
	if !isUnhandled || unhandled.Exc.ExcType != ExcTypeMismatch {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
}

func TestDuplicateFieldsRejectedTogether(t *testing.T) {
	exc := evalExpectingException(t, ExcValue,
		ast.TypeDecl("Dup",
			[]*ast.FieldDeclaration{
				ast.PubField("a", "Int"),
				ast.PubField("a", "Int"),
				ast.PubField("b", "Int"),
				ast.PubField("b", "Int"),
			},
		),
	)
	if !strings.Contains(exc.Message, "'a'") || !strings.Contains(exc.Message, "'b'") {
		t.Fatalf("expected both duplicates reported: %s", exc.Message)
	}
}

func TestFieldAssignmentTypeChecked(t *testing.T) {
	evalExpectingException(t, ExcTypeMismatch,
		pointDecl(),
		ast.Let("p", ast.Call(ast.Member(ast.ID("Point"), "new"), ast.Int(1), ast.Int(2))),
		ast.Assign(ast.Member(ast.ID("p"), "x"), ast.Str("no")),
	)
}
