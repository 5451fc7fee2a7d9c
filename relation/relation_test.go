package relation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binspector/binspector/codec"
)

func TestPrimitive(t *testing.T) {
	rel := Primitive(codec.U16)
	require.Equal(t, KindPrimitive, rel.Kind)
	require.Equal(t, codec.U16, rel.Tag)
	require.True(t, rel.IsResolved())
}

func TestNested(t *testing.T) {
	meta := struct{ name string }{"inner"}
	rel := Nested(meta, nil)
	require.Equal(t, KindNested, rel.Kind)
	require.Equal(t, meta, rel.NestedMeta)
	require.True(t, rel.IsResolved())
}

func TestNone(t *testing.T) {
	rel := None()
	require.Equal(t, KindNone, rel.Kind)
	require.True(t, rel.IsResolved())
}

func TestUnknown_IsNotResolved(t *testing.T) {
	rel := Unknown()
	require.Equal(t, KindUnknown, rel.Kind)
	require.False(t, rel.IsResolved())
}

func TestZeroValue_IsUnknown(t *testing.T) {
	var rel Relation
	require.False(t, rel.IsResolved())
}
