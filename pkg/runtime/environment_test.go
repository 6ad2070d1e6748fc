package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeclareAndGetWalksChain(t *testing.T) {
	global := NewEnvironment(nil)
	global.Declare("x", IntValue{Val: 1})
	child := global.Extend()

	val, err := child.Get("x")
	require.NoError(t, err)
	require.Equal(t, IntValue{Val: 1}, val)

	_, err = child.Get("missing")
	require.Error(t, err)
	require.IsType(t, &UndefinedError{}, err)
}

func TestDeclareShadowsOuterBinding(t *testing.T) {
	global := NewEnvironment(nil)
	global.Declare("x", IntValue{Val: 1})
	child := global.Extend()
	child.Declare("x", IntValue{Val: 2})

	val, err := child.Get("x")
	require.NoError(t, err)
	require.Equal(t, IntValue{Val: 2}, val)

	val, err = global.Get("x")
	require.NoError(t, err)
	require.Equal(t, IntValue{Val: 1}, val, "outer binding must be untouched")
}

func TestAssignMutatesInnermostDeclaringFrame(t *testing.T) {
	global := NewEnvironment(nil)
	global.Declare("x", IntValue{Val: 1})
	child := global.Extend()
	grandchild := child.Extend()

	require.NoError(t, grandchild.Assign("x", IntValue{Val: 9}))

	val, err := global.Get("x")
	require.NoError(t, err)
	require.Equal(t, IntValue{Val: 9}, val)
}

func TestAssignUndeclaredFails(t *testing.T) {
	env := NewEnvironment(nil)
	err := env.Assign("ghost", NilValue{})
	require.Error(t, err)
	require.IsType(t, &UndefinedError{}, err)
}

func TestDeleteCurrentFrameOnly(t *testing.T) {
	global := NewEnvironment(nil)
	global.Declare("x", IntValue{Val: 1})

	require.NoError(t, global.Delete("x"))
	require.False(t, global.Has("x"))

	global.Declare("y", IntValue{Val: 2})
	child := global.Extend()

	err := child.Delete("y")
	require.Error(t, err)
	delErr, ok := err.(*DeleteError)
	require.True(t, ok)
	require.True(t, delErr.Outer)
	require.True(t, global.Has("y"), "outer binding must survive")

	err = child.Delete("nothing")
	require.Error(t, err)
	delErr, ok = err.(*DeleteError)
	require.True(t, ok)
	require.False(t, delErr.Outer)
}

func TestSharedHandlesAcrossFrames(t *testing.T) {
	global := NewEnvironment(nil)
	arr := NewArray(IntValue{Val: 1})
	global.Declare("xs", arr)

	child := global.Extend()
	got, err := child.Get("xs")
	require.NoError(t, err)
	require.Same(t, arr, got.(*ArrayValue), "frames share handles, never clones")
}

func TestSnapshotCopiesBindingsNotContents(t *testing.T) {
	env := NewEnvironment(nil)
	arr := NewArray()
	env.Declare("xs", arr)

	snap := env.Snapshot()
	require.Same(t, arr, snap["xs"].(*ArrayValue))

	env.Declare("later", NilValue{})
	require.NotContains(t, snap, "later")
}
