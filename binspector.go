// Package binspector is a declarative engine for reading and writing binary
// file formats: a user describes a record type's fields through a
// descriptor.Builder, and this package's Binread/Binwrite interpret that
// metadata to decode a byte buffer into a structured record, or encode a
// structured record back into bytes.
//
// This is a thin facade over the engine's subpackages, mirroring the
// teacher repo's root-package-over-subpackages layout: most callers need
// only this package plus descriptor (to build a Metadata), relation (to
// bind fields to primitives/nested types), and the handful of aspect
// packages (controller, condition, transform, validate, prepost, bitfield)
// that shape a particular field.
//
// # Basic usage
//
//	meta, _ := descriptor.NewBuilder[any]("point").
//	    Field("x", relation.Primitive(codec.U8)).
//	    Field("y", relation.Primitive(codec.U8)).
//	    Build()
//
//	cur := binspector.NewReader([]byte{0x09, 0x20}, binspector.LittleEndian())
//	rec, err := binspector.Binread(cur, meta, nil)
//	// rec == map[string]any{"x": uint8(9), "y": uint8(32)}
package binspector

import (
	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/cursor"
	"github.com/binspector/binspector/descriptor"
	"github.com/binspector/binspector/endian"
	"github.com/binspector/binspector/hash"
	"github.com/binspector/binspector/reader"
	"github.com/binspector/binspector/writer"
)

// Record is a decoded (or to-be-encoded) instance of a record type: a
// field-name-keyed map, the uniform shape binread/binwrite traffic in
// throughout the engine (spec.md §3 "Lifecycle").
type Record = map[string]any

// EOF is the sentinel cursor.Read/Peek return on an unexpected end of
// buffer. It is never equal to any decoded primitive or nested value.
var EOF = cursor.EOF

// IsEOF reports whether v is the EOF sentinel.
func IsEOF(v any) bool { return cursor.IsEOF(v) }

// NewReader constructs a random-access reader cursor over data with the
// given default endianness.
func NewReader(data []byte, e endian.EndianEngine) *cursor.Reader {
	return cursor.NewReader(data, e)
}

// NewWriter constructs an empty writer cursor with the given default
// endianness.
func NewWriter(e endian.EndianEngine) *cursor.Writer {
	return cursor.NewWriter(e)
}

// LittleEndian returns the little-endian engine (binary.LittleEndian).
func LittleEndian() endian.EndianEngine { return endian.GetLittleEndianEngine() }

// BigEndian returns the big-endian engine (binary.BigEndian).
func BigEndian() endian.EndianEngine { return endian.GetBigEndianEngine() }

// NewBuilder starts a descriptor.Metadata builder for a record type named
// typeName. Re-exported here so most callers need not import the
// descriptor package directly for the common case.
func NewBuilder[T any](typeName string) *descriptor.Builder[T] {
	return descriptor.NewBuilder[T](typeName)
}

// Binread decodes one record of the type described by meta from cur. ctx
// carries the ambient key-value tree CtxGet/CtxSet hooks and "_ctx."
// expressions reach; pass nil to get a fresh, empty context. ctorArgs are
// bound positionally into meta.CtorArgNames before the first field runs.
func Binread(cur *cursor.Reader, meta *descriptor.Metadata, ctx *bctx.Context, ctorArgs ...any) (Record, error) {
	return reader.Read(cur, meta, ctorArgs, ctx)
}

// Binwrite encodes instance (a record of the type described by meta) into
// cur, returning cur for chaining into Buffer().
func Binwrite(cur *cursor.Writer, meta *descriptor.Metadata, instance Record, ctx *bctx.Context) (*cursor.Writer, error) {
	if err := writer.Write(cur, meta, instance, ctx); err != nil {
		return nil, err
	}

	return cur, nil
}

// ComputeBinSize runs the writer against a fresh, discarded cursor and
// returns the extent of its write journal — instance's encoded size —
// without materializing a byte buffer.
func ComputeBinSize(meta *descriptor.Metadata, instance Record, e endian.EndianEngine) (uint64, error) {
	if e == nil {
		e = endian.GetLittleEndianEngine()
	}

	cur := cursor.NewWriter(e)
	if err := writer.Write(cur, meta, instance, nil); err != nil {
		return 0, err
	}

	return cur.Size(), nil
}

// HashBytes computes the xxHash64 of data, usable from a custom validator
// or transformer that needs a fast content-hash check (e.g. a BSON
// sub-document checksum field).
func HashBytes(data []byte) uint64 { return hash.Bytes(data) }

// NewContext returns an empty ambient context tree.
func NewContext() *bctx.Context { return bctx.New() }
