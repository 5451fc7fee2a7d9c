package bctx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContext_SetGet_Flat(t *testing.T) {
	c := New()
	c.Set("size", 42)

	v, ok := c.Get("size")
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestContext_SetGet_Nested(t *testing.T) {
	c := New()
	c.Set("header.chunkLength", 1024)

	v, ok := c.Get("header.chunkLength")
	require.True(t, ok)
	require.Equal(t, 1024, v)
}

func TestContext_Get_MissingKey(t *testing.T) {
	c := New()
	_, ok := c.Get("nope")
	require.False(t, ok)

	c.Set("a", 1)
	_, ok = c.Get("a.b")
	require.False(t, ok)
}

func TestContext_Overwrite(t *testing.T) {
	c := New()
	c.Set("k", "first")
	c.Set("k", "second")

	v, _ := c.Get("k")
	require.Equal(t, "second", v)
}
