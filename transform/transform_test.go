package transform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScale_RoundTrips(t *testing.T) {
	s := Scale(2.0)

	v, err := s.ReadFn(uint8(5), nil)
	require.NoError(t, err)
	require.Equal(t, 10.0, v)

	v, err = s.WriteFn(v, nil)
	require.NoError(t, err)
	require.Equal(t, 5.0, v)
}

func TestOffset_RoundTrips(t *testing.T) {
	o := Offset(3.0)

	v, err := o.ReadFn(uint8(10), nil)
	require.NoError(t, err)
	require.Equal(t, 13.0, v)

	v, err = o.WriteFn(v, nil)
	require.NoError(t, err)
	require.Equal(t, 10.0, v)
}

func TestBitmask_ReadOnly(t *testing.T) {
	m := Bitmask(0x0F)
	require.Equal(t, Read, m.Scope)
	require.Nil(t, m.WriteFn)

	v, err := m.ReadFn(uint8(0xFA), nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0A), v)
}

func TestChain_ApplyRead_DeclarationOrder(t *testing.T) {
	var order []string
	mark := func(name string) Transformer {
		return Custom(Both, func(value any, _ map[string]any) (any, error) {
			order = append(order, name)
			return value, nil
		}, func(value any, _ map[string]any) (any, error) {
			return value, nil
		})
	}

	chain := Chain{mark("a"), mark("b"), mark("c")}
	_, err := chain.ApplyRead(uint8(1), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestChain_ApplyWrite_ReverseOrder(t *testing.T) {
	var order []string
	mark := func(name string) Transformer {
		return Custom(Both, func(value any, _ map[string]any) (any, error) {
			return value, nil
		}, func(value any, _ map[string]any) (any, error) {
			order = append(order, name)
			return value, nil
		})
	}

	chain := Chain{mark("a"), mark("b"), mark("c")}
	_, err := chain.ApplyWrite(uint8(1), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, order)
}

func TestChain_ScopeFiltering(t *testing.T) {
	chain := Chain{
		Transformer{Scope: Write, ReadFn: nil, WriteFn: func(v any, _ map[string]any) (any, error) { return v, nil }},
		Scale(2.0),
	}

	v, err := chain.ApplyRead(uint8(3), nil)
	require.NoError(t, err)
	require.Equal(t, 6.0, v)
}
