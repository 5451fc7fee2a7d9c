package writer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/codec"
	"github.com/binspector/binspector/condition"
	"github.com/binspector/binspector/controller"
	"github.com/binspector/binspector/cursor"
	"github.com/binspector/binspector/descriptor"
	"github.com/binspector/binspector/endian"
	"github.com/binspector/binspector/relation"
)

func newWriter(e endian.EndianEngine) *cursor.Writer {
	if e == nil {
		e = endian.GetLittleEndianEngine()
	}
	return cursor.NewWriter(e)
}

func TestWrite_TwoU8s(t *testing.T) {
	meta, err := descriptor.NewBuilder[any]("point").
		Field("x", relation.Primitive(codec.U8)).
		Field("y", relation.Primitive(codec.U8)).
		Build()
	require.NoError(t, err)

	cur := newWriter(nil)
	err = Write(cur, meta, map[string]any{"x": uint8(9), "y": uint8(32)}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x09, 0x20}, cur.Buffer())
}

func TestWrite_LengthPrefixedArray(t *testing.T) {
	meta, err := descriptor.NewBuilder[any]("lenPrefixed").
		Field("len", relation.Primitive(codec.U8)).
		Field("field", relation.Primitive(codec.U8), descriptor.WithController(controller.Options{
			Kind: controller.Count,
			NFunc: func(instance map[string]any) (int, error) {
				return int(instance["len"].(uint8)), nil
			},
		})).
		Build()
	require.NoError(t, err)

	cur := newWriter(nil)
	err = Write(cur, meta, map[string]any{
		"len":   uint8(3),
		"field": []any{uint8(2), uint8(3), uint8(4)},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x03, 0x02, 0x03, 0x04}, cur.Buffer())
}

func TestWrite_Choice(t *testing.T) {
	meta, err := descriptor.NewBuilder[any]("tagged").
		Field("type", relation.Primitive(codec.U8)).
		Field("payload", relation.Unknown(), descriptor.WithCondition(
			condition.NewChoice(func(instance map[string]any, _ *bctx.Context) (any, error) {
				return instance["type"], nil
			}, map[any]relation.Relation{
				uint8(1): relation.Primitive(codec.U8),
				uint8(2): relation.Primitive(codec.U16),
				uint8(3): relation.None(),
			}),
		)).
		Build()
	require.NoError(t, err)

	cur := newWriter(endian.GetBigEndianEngine())
	err = Write(cur, meta, map[string]any{"type": uint8(2), "payload": uint16(1)}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x00, 0x01}, cur.Buffer())

	cur2 := newWriter(endian.GetBigEndianEngine())
	err = Write(cur2, meta, map[string]any{"type": uint8(3)}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x03}, cur2.Buffer())
}

func TestWrite_BitfieldLittleEndian(t *testing.T) {
	meta, err := descriptor.NewBuilder[any]("flags").
		BeginBitfield(2, false).
		BitField("f1", 2).
		BitField("f2", 10).
		BitField("f3", 3).
		EndBitfield().
		Field("field", relation.Primitive(codec.U8)).
		Build()
	require.NoError(t, err)

	cur := newWriter(nil)
	err = Write(cur, meta, map[string]any{
		"f1": uint64(1), "f2": uint64(19), "f3": uint64(0), "field": uint8(5),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x30, 0x41, 0x05}, cur.Buffer())
}

func TestWrite_NestedComposite(t *testing.T) {
	inner, err := descriptor.NewBuilder[any]("inner").
		Field("a", relation.Primitive(codec.U8)).
		Field("b", relation.Primitive(codec.U8)).
		Build()
	require.NoError(t, err)

	outer, err := descriptor.NewBuilder[any]("outer").
		Field("count", relation.Primitive(codec.U8)).
		Field("items", relation.Nested(inner, nil), descriptor.WithController(controller.Options{
			Kind: controller.Count,
			NFunc: func(instance map[string]any) (int, error) {
				return int(instance["count"].(uint8)), nil
			},
		})).
		Build()
	require.NoError(t, err)

	cur := newWriter(nil)
	err = Write(cur, outer, map[string]any{
		"count": uint8(2),
		"items": []any{
			map[string]any{"a": uint8(1), "b": uint8(2)},
			map[string]any{"a": uint8(3), "b": uint8(4)},
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x01, 0x02, 0x03, 0x04}, cur.Buffer())
}

func TestWrite_ContextGetSet(t *testing.T) {
	meta, err := descriptor.NewBuilder[any]("ctxUser").
		Field("size", relation.Primitive(codec.U8), descriptor.WithCtxSet("doc.size")).
		Field("echo", relation.Unknown(), descriptor.WithCtxGet("doc.size")).
		Build()
	require.NoError(t, err)

	ctx := bctx.New()
	cur := newWriter(nil)
	err = Write(cur, meta, map[string]any{"size": uint8(7)}, ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{0x07}, cur.Buffer())

	v, ok := ctx.Get("doc.size")
	require.True(t, ok)
	require.Equal(t, uint8(7), v)
}
