// Package prepost implements the hooks executed around a field's
// read/write: Offset (seek, no restore), Peek (seek, restore), Endian
// (switch, restore), ValueSet (compute a value without consuming bytes),
// and CompressedRegion (decompress a span before reading it, recompress
// before writing it back).
package prepost

import (
	"fmt"

	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/compress"
	"github.com/binspector/binspector/endian"
)

// Cursor is the surface a hook needs: position control plus the
// endianness switch. Satisfied by both cursor.Reader and cursor.Writer.
type Cursor interface {
	Offset() uint64
	Move(uint64)
	Forward(uint64)
	GetEndian() endian.EndianEngine
	SetEndian(endian.EndianEngine)
}

// Scope controls which pass(es) a Hook participates in.
type Scope int

const (
	ReadScope Scope = iota
	WriteScope
	BothScope
)

func (s Scope) appliesTo(pass Scope) bool {
	return s == BothScope || s == pass
}

// Result is what a Hook's Pre function returns: an optional post-field
// restoration callback, and, for ValueSet, a directly-computed value that
// the caller should assign without driving the field's normal relation.
type Result struct {
	Post     func(cur Cursor) error
	Value    any
	HasValue bool
}

// PreFunc runs before a field's relation is resolved/read. pass tells a
// direction-sensitive hook (CompressedRegionHook) whether it is running
// for the read or the write interpreter; hooks that behave the same both
// ways (Offset, Peek, Endian, ValueSet) simply ignore it.
type PreFunc func(cur Cursor, instance map[string]any, ctx *bctx.Context, pass Scope) (Result, error)

// Hook is one pre/post entry in a field's (or a record's class-level)
// hook chain.
type Hook struct {
	Scope Scope
	Pre   PreFunc
}

// Offset seeks the cursor to addr before the field is read/written, with
// no automatic restore: subsequent fields continue from the jumped
// position.
func Offset(addr uint64) Hook {
	return Hook{
		Scope: BothScope,
		Pre: func(cur Cursor, _ map[string]any, _ *bctx.Context, _ Scope) (Result, error) {
			cur.Move(addr)
			return Result{}, nil
		},
	}
}

// OffsetFunc is like Offset but the address is computed from the
// instance/context at hook time (for an expression like "header.size").
func OffsetFunc(fn func(instance map[string]any, ctx *bctx.Context) (uint64, error)) Hook {
	return Hook{
		Scope: BothScope,
		Pre: func(cur Cursor, instance map[string]any, ctx *bctx.Context, _ Scope) (Result, error) {
			addr, err := fn(instance, ctx)
			if err != nil {
				return Result{}, err
			}
			cur.Move(addr)

			return Result{}, nil
		},
	}
}

// Peek seeks the cursor to addr before the field, then restores the
// original offset afterward. A nil addr means "peek at the current
// position": only the post-hook's restore matters.
func Peek(addr *uint64) Hook {
	return Hook{
		Scope: BothScope,
		Pre: func(cur Cursor, _ map[string]any, _ *bctx.Context, _ Scope) (Result, error) {
			saved := cur.Offset()
			if addr != nil {
				cur.Move(*addr)
			}

			return Result{Post: func(c Cursor) error {
				c.Move(saved)
				return nil
			}}, nil
		},
	}
}

// Endian switches the cursor's endianness for the duration of the field,
// restoring the prior engine afterward.
func Endian(e endian.EndianEngine) Hook {
	return Hook{
		Scope: BothScope,
		Pre: func(cur Cursor, _ map[string]any, _ *bctx.Context, _ Scope) (Result, error) {
			saved := cur.GetEndian()
			cur.SetEndian(e)

			return Result{Post: func(c Cursor) error {
				c.SetEndian(saved)
				return nil
			}}, nil
		},
	}
}

// ValueSet computes the field's value directly via fn, bypassing the
// field's relation entirely: no bytes are consumed or produced for it.
func ValueSet(fn func(instance map[string]any, ctx *bctx.Context) (any, error)) Hook {
	return Hook{
		Scope: BothScope,
		Pre: func(cur Cursor, instance map[string]any, ctx *bctx.Context, _ Scope) (Result, error) {
			v, err := fn(instance, ctx)
			if err != nil {
				return Result{}, err
			}

			return Result{Value: v, HasValue: true}, nil
		},
	}
}

// SpanReader reads a length-delimited span of raw bytes and writes raw
// bytes back; cursor.Reader/Writer satisfy it via ReadBytes/WriteBytes.
type SpanReader interface {
	ReadBytes(n uint64) any
}

type SpanWriter interface {
	WriteBytes(data []byte) error
}

// CompressedRegion decompresses a SizeFn-delimited span on read and
// compresses plain bytes into a span on write, using this module's
// compress package. It hands back raw bytes; no relation is run over the
// decompressed data, and the span's length prefix is not written here.
type CompressedRegion struct {
	Codec  compress.Codec
	SizeFn func(instance map[string]any, ctx *bctx.Context) (uint64, error)
}

// NewCompressedRegion builds a CompressedRegion hook for the given
// algorithm and a resolver for the compressed span's byte length.
func NewCompressedRegion(t compress.Type, sizeFn func(instance map[string]any, ctx *bctx.Context) (uint64, error)) (*CompressedRegion, error) {
	codec, err := compress.NewCodec(t)
	if err != nil {
		return nil, fmt.Errorf("prepost: %w", err)
	}

	return &CompressedRegion{Codec: codec, SizeFn: sizeFn}, nil
}

// DecodeSpan reads the compressed span from r and returns the
// decompressed bytes.
func (c *CompressedRegion) DecodeSpan(r SpanReader, instance map[string]any, ctx *bctx.Context) ([]byte, error) {
	size, err := c.SizeFn(instance, ctx)
	if err != nil {
		return nil, err
	}

	raw := r.ReadBytes(size)
	b, ok := raw.([]byte)
	if !ok {
		return nil, fmt.Errorf("prepost: compressed region ran past end of buffer")
	}

	return c.Codec.Decompress(b)
}

// EncodeSpan compresses plain and appends it to w as a raw byte span.
func (c *CompressedRegion) EncodeSpan(w SpanWriter, plain []byte) error {
	compressed, err := c.Codec.Compress(plain)
	if err != nil {
		return err
	}

	return w.WriteBytes(compressed)
}

// CompressedRegionHook turns region into the field Hook spec.md §4.9's
// PrePost aspect describes: on the read pass it decompresses the field's
// span via DecodeSpan and hands the plain bytes to the field directly,
// the same value-bypass ValueSet uses (so the field's transformers and
// validators are skipped — the field's value is always the decompressed
// []byte, not something a relation decoded). On the write pass it reads
// fieldName's already-built []byte value back out of instance, compresses
// it via EncodeSpan, and appends the compressed span in the field's
// place, so nothing is left for the normal relation write to emit.
func CompressedRegionHook(fieldName string, region *CompressedRegion) Hook {
	return Hook{
		Scope: BothScope,
		Pre: func(cur Cursor, instance map[string]any, ctx *bctx.Context, pass Scope) (Result, error) {
			switch pass {
			case ReadScope:
				r, ok := cur.(SpanReader)
				if !ok {
					return Result{}, fmt.Errorf("prepost: CompressedRegion field %q needs a cursor that supports ReadBytes", fieldName)
				}

				plain, err := region.DecodeSpan(r, instance, ctx)
				if err != nil {
					return Result{}, err
				}

				return Result{Value: plain, HasValue: true}, nil

			case WriteScope:
				w, ok := cur.(SpanWriter)
				if !ok {
					return Result{}, fmt.Errorf("prepost: CompressedRegion field %q needs a cursor that supports WriteBytes", fieldName)
				}

				plain, ok := instance[fieldName].([]byte)
				if !ok {
					return Result{}, fmt.Errorf("prepost: CompressedRegion field %q must hold a []byte value, got %T", fieldName, instance[fieldName])
				}

				if err := region.EncodeSpan(w, plain); err != nil {
					return Result{}, err
				}

				return Result{HasValue: true}, nil

			default:
				return Result{}, nil
			}
		},
	}
}

// Chain is an ordered list of hooks attached to a field or a record's
// class-level scope.
type Chain []Hook

// RunPre runs every hook applicable to pass, in order, returning the
// post-callbacks to run later (in the same order) and, if any hook was a
// ValueSet, that hook's computed value.
func (c Chain) RunPre(pass Scope, cur Cursor, instance map[string]any, ctx *bctx.Context) (posts []func(Cursor) error, value any, hasValue bool, err error) {
	for _, h := range c {
		if !h.Scope.appliesTo(pass) {
			continue
		}

		res, err := h.Pre(cur, instance, ctx, pass)
		if err != nil {
			return nil, nil, false, err
		}

		if res.HasValue {
			value = res.Value
			hasValue = true
		}

		if res.Post != nil {
			posts = append(posts, res.Post)
		}
	}

	return posts, value, hasValue, nil
}

// RunPost runs the post-callbacks collected by RunPre, in order.
func RunPost(cur Cursor, posts []func(Cursor) error) error {
	for _, p := range posts {
		if err := p(cur); err != nil {
			return err
		}
	}

	return nil
}
