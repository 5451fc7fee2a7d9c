package condition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/codec"
	"github.com/binspector/binspector/errs"
	"github.com/binspector/binspector/relation"
)

func TestChain_IfThenElse(t *testing.T) {
	chain := Chain{
		If(func(instance map[string]any, _ *bctx.Context) (bool, error) {
			return instance["flag"].(bool), nil
		}, relation.Primitive(codec.U16)),
		Else(relation.Primitive(codec.U8)),
	}

	rel, err := chain.Resolve(map[string]any{"flag": true}, bctx.New())
	require.NoError(t, err)
	require.Equal(t, codec.U16, rel.Tag)

	rel, err = chain.Resolve(map[string]any{"flag": false}, bctx.New())
	require.NoError(t, err)
	require.Equal(t, codec.U8, rel.Tag)
}

func TestChain_NoMatchNoElse(t *testing.T) {
	chain := Chain{
		If(func(map[string]any, *bctx.Context) (bool, error) { return false, nil }, relation.Primitive(codec.U8)),
	}

	_, err := chain.Resolve(nil, bctx.New())
	require.Error(t, err)
	require.ErrorIs(t, err, errs.NewNoConditionMatchedError())
}

func TestChoice_ResolvesCaseAndDefault(t *testing.T) {
	c := NewChoice(func(instance map[string]any, _ *bctx.Context) (any, error) {
		return instance["type"], nil
	}, map[any]relation.Relation{
		uint8(1): relation.Primitive(codec.U8),
		uint8(2): relation.Primitive(codec.U16),
	}).WithDefault(relation.None())

	rel, err := c.Resolve(map[string]any{"type": uint8(2)}, bctx.New())
	require.NoError(t, err)
	require.Equal(t, codec.U16, rel.Tag)

	rel, err = c.Resolve(map[string]any{"type": uint8(9)}, bctx.New())
	require.NoError(t, err)
	require.Equal(t, relation.KindNone, rel.Kind)
}

func TestChoice_NoDefaultNoMatch(t *testing.T) {
	c := NewChoice(func(instance map[string]any, _ *bctx.Context) (any, error) {
		return instance["type"], nil
	}, map[any]relation.Relation{uint8(1): relation.Primitive(codec.U8)})

	_, err := c.Resolve(map[string]any{"type": uint8(9)}, bctx.New())
	require.Error(t, err)
	require.ErrorIs(t, err, errs.NewNoConditionMatchedError())
}

func TestSelect_LateBoundLookup(t *testing.T) {
	target := relation.Primitive(codec.U32)
	s := NewSelect(func(map[string]any, *bctx.Context) (relation.Relation, error) {
		return target, nil
	})

	rel, err := s.Resolve(nil, bctx.New())
	require.NoError(t, err)
	require.Equal(t, codec.U32, rel.Tag)
}

func TestResolver_InterfaceSatisfiedByAllThree(t *testing.T) {
	var rs []Resolver
	rs = append(rs, Chain{Else(relation.None())})
	rs = append(rs, NewChoice(func(map[string]any, *bctx.Context) (any, error) { return nil, nil }, nil).WithDefault(relation.None()))
	rs = append(rs, NewSelect(func(map[string]any, *bctx.Context) (relation.Relation, error) { return relation.None(), nil }))

	for _, r := range rs {
		_, err := r.Resolve(nil, bctx.New())
		require.NoError(t, err)
	}
}
