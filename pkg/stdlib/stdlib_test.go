package stdlib

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lolsborn/quest-sub012/pkg/ast"
	"github.com/lolsborn/quest-sub012/pkg/interpreter"
	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

func newInterp() *interpreter.Interpreter {
	interp := interpreter.New()
	Register(interp)
	return interp
}

func TestMathModule(t *testing.T) {
	val, err := newInterp().EvaluateModule(ast.Mod(
		ast.Use("std/math", ""),
		ast.Call(ast.Member(ast.ID("math"), "abs"), ast.Int(-5)),
	))
	require.NoError(t, err)
	require.Equal(t, runtime.IntValue{Val: 5}, val)

	val, err = newInterp().EvaluateModule(ast.Mod(
		ast.Use("std/math", ""),
		ast.Call(ast.Member(ast.ID("math"), "sqrt"), ast.Int(9)),
	))
	require.NoError(t, err)
	require.Equal(t, runtime.FloatValue{Val: 3}, val)
}

func TestUuidModule(t *testing.T) {
	const canonical = "6fa459ea-ee8a-3ca4-894e-db77e160355e"

	val, err := newInterp().EvaluateModule(ast.Mod(
		ast.Use("std/uuid", ""),
		ast.Call(ast.Member(ast.ID("uuid"), "parse"), ast.Str(canonical)),
	))
	require.NoError(t, err)
	parsed, ok := val.(runtime.UuidValue)
	require.True(t, ok, "expected a Uuid, got %#v", val)
	require.Equal(t, canonical, parsed.Val.String())

	val, err = newInterp().EvaluateModule(ast.Mod(
		ast.Use("std/uuid", ""),
		ast.Call(ast.Member(ast.ID("uuid"), "v4")),
	))
	require.NoError(t, err)
	generated, ok := val.(runtime.UuidValue)
	require.True(t, ok)
	require.Equal(t, uuid.V4, generated.Val.Version())
}

func TestUuidParseRejectsGarbage(t *testing.T) {
	_, err := newInterp().EvaluateModule(ast.Mod(
		ast.Use("std/uuid", ""),
		ast.Call(ast.Member(ast.ID("uuid"), "parse"), ast.Str("not-a-uuid")),
	))
	require.Error(t, err)
	unhandled, ok := err.(*interpreter.UnhandledException)
	require.True(t, ok)
	require.Equal(t, interpreter.ExcRuntime, unhandled.Exc.ExcType)
}

func TestTimeModule(t *testing.T) {
	val, err := newInterp().EvaluateModule(ast.Mod(
		ast.Use("std/time", ""),
		ast.Call(ast.Member(ast.ID("time"), "format_unix"), ast.Int(0)),
	))
	require.NoError(t, err)
	require.Equal(t, runtime.StringValue{Val: "1970-01-01T00:00:00Z"}, val)
}
