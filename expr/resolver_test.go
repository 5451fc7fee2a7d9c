package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/errs"
)

func TestResolve_DottedPath(t *testing.T) {
	scope := Scope{Instance: map[string]any{
		"header": map[string]any{"size": int64(10)},
	}}

	v, err := Resolve("header.size", scope)
	require.NoError(t, err)
	require.Equal(t, int64(10), v)
}

func TestResolve_CtxPrefix(t *testing.T) {
	ctx := bctx.New()
	ctx.Set("stringTableOffset", int64(128))
	scope := Scope{Instance: map[string]any{}, Ctx: ctx}

	v, err := Resolve("_ctx.stringTableOffset", scope)
	require.NoError(t, err)
	require.Equal(t, int64(128), v)
}

func TestResolve_CommaList(t *testing.T) {
	scope := Scope{Instance: map[string]any{"a": int64(1), "b": int64(2)}}

	v, err := Resolve("a, b", scope)
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, v)
}

func TestResolve_Arithmetic(t *testing.T) {
	scope := Scope{Instance: map[string]any{"size": int64(5)}}

	v, err := Resolve("size - 1", scope)
	require.NoError(t, err)
	require.Equal(t, int64(4), v)
}

func TestResolve_MissingKey(t *testing.T) {
	scope := Scope{Instance: map[string]any{}}

	_, err := Resolve("nope", scope)
	require.Error(t, err)

	var refErr *errs.ReferenceError
	require.True(t, errors.As(err, &refErr))
}

func TestResolve_NonNumericArithmeticOperand(t *testing.T) {
	scope := Scope{Instance: map[string]any{"name": "abc"}}

	_, err := Resolve("name - 1", scope)
	require.Error(t, err)
}
