package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// setup returns a context and a global object with standard classes. All
// three are released in order when the test ends.
func setup(t *testing.T, opts ...Option) (*Runtime, *Context, *Object) {
	t.Helper()

	rt, err := New(opts...)
	require.NoError(t, err)

	ctx, err := rt.NewContext()
	require.NoError(t, err)

	global, err := ctx.NewObject()
	require.NoError(t, err)
	require.NoError(t, ctx.InitStandardClasses(global))

	t.Cleanup(func() {
		if !global.Released() {
			require.NoError(t, global.Release())
		}
		if !ctx.Closed() {
			require.NoError(t, ctx.Close())
		}
		if !rt.Closed() {
			require.NoError(t, rt.Close())
		}
	})
	return rt, ctx, global
}

func eval(t *testing.T, ctx *Context, global *Object, src string) any {
	t.Helper()
	v, err := ctx.Eval(global, src)
	require.NoError(t, err)
	return v
}

func release(t *testing.T, v any) {
	t.Helper()
	obj, ok := v.(*Object)
	require.True(t, ok, "expected *Object, got %T", v)
	require.NoError(t, obj.Release())
}
