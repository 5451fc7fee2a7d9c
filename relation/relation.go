// Package relation defines the binding from a field to what it reads:
// a primitive tag, a nested record type, "no bytes", or unresolved
// (left to a condition chain to determine at read/write time).
//
// Relation is kept in its own minimal package, independent of the
// descriptor package that assembles fields into records, so that a
// nested relation can hold a forward reference to the descriptor that
// describes its element type without creating a Go import cycle: NestedMeta
// is stored as `any` here and type-asserted back to *descriptor.Metadata
// by the reader/writer, which already depend on both packages.
package relation

import (
	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/codec"
)

// Kind identifies which of the closed relation shapes a field is bound
// to.
type Kind int

const (
	// KindUnknown means the field's relation is not yet decided; a
	// condition chain must resolve it before the field can be read or
	// written.
	KindUnknown Kind = iota
	// KindPrimitive binds the field to a fixed-width primitive tag.
	KindPrimitive
	// KindNested binds the field to another record type's descriptor.
	KindNested
	// KindNone means the field contributes no bytes at all.
	KindNone
)

// ArgsFunc computes the constructor arguments passed to a nested type's
// reader, resolved against the enclosing instance and ambient context.
type ArgsFunc func(instance map[string]any, ctx *bctx.Context) ([]any, error)

// Relation is the resolved (or not-yet-resolved) binding for a field.
type Relation struct {
	Kind Kind
	Tag  codec.Tag

	// NestedMeta holds a *descriptor.Metadata for KindNested relations.
	// Held as `any` to avoid an import cycle; only the reader/writer
	// package, which already imports descriptor, type-asserts it.
	NestedMeta any
	ArgsFn     ArgsFunc
}

// Primitive returns a Relation bound to a fixed-width primitive tag.
func Primitive(tag codec.Tag) Relation {
	return Relation{Kind: KindPrimitive, Tag: tag}
}

// Nested returns a Relation bound to another record type's descriptor
// metadata, with an optional constructor-argument resolver.
func Nested(meta any, argsFn ArgsFunc) Relation {
	return Relation{Kind: KindNested, NestedMeta: meta, ArgsFn: argsFn}
}

// None returns a Relation meaning "this field contributes no bytes".
func None() Relation {
	return Relation{Kind: KindNone}
}

// Unknown returns an unresolved Relation, to be settled by a condition
// chain at read/write time.
func Unknown() Relation {
	return Relation{Kind: KindUnknown}
}

// IsResolved reports whether the relation is ready to drive a read or
// write (i.e. not KindUnknown).
func (r Relation) IsResolved() bool {
	return r.Kind != KindUnknown
}
