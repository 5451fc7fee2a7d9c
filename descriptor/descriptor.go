// Package descriptor ties relation, condition, controller, transform,
// validate, prepost, and bitfield together into a FieldDescriptor and an
// ordered Metadata for a record type, built through a generic Builder[T]
// using this module's functional-options pattern. A Registry provides
// the xxhash-keyed indirection a condition.Select hook uses to resolve
// recursive or mutually-referencing record types without a compile-time
// Go import cycle.
package descriptor

import (
	"fmt"

	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/bitfield"
	"github.com/binspector/binspector/condition"
	"github.com/binspector/binspector/controller"
	"github.com/binspector/binspector/errs"
	"github.com/binspector/binspector/hash"
	"github.com/binspector/binspector/internal/options"
	"github.com/binspector/binspector/prepost"
	"github.com/binspector/binspector/relation"
	"github.com/binspector/binspector/transform"
	"github.com/binspector/binspector/validate"
)

// BitGroup describes one contiguous run of sub-byte fields sharing a
// single byte span, decoded/encoded together as one bitfield.Layout.
type BitGroup struct {
	SpanBytes int
	BigEndian bool
	Layout    bitfield.Layout
}

// FieldDescriptor is everything known about one field of a record:
// how to resolve its relation (static or condition-driven), how its
// repetition is controlled, and the hook/transform/validator chains
// wrapped around its value.
type FieldDescriptor struct {
	Name string

	// Rel is the field's relation when it is static (Kind != Unknown).
	// Cond, when non-nil, resolves the relation per-record instead;
	// exactly one of Rel.IsResolved() or Cond != nil is expected.
	Rel  relation.Relation
	Cond condition.Resolver

	Controller controller.Options

	Transforms transform.Chain
	Validators validate.Chain
	Hooks      prepost.Chain

	// BitGroup/BitName are set for a field that is a member of a
	// bitfield group; such a field has no Controller/relation of its
	// own and is decoded as part of the whole group's span.
	BitGroup *BitGroup
	BitName  string

	// CtxGetPath, when non-empty, sources the field's value from the
	// ambient context instead of the cursor: no bytes are read/written
	// for it. CtxSetPath, when non-empty, additionally copies the
	// field's final value into the context tree at that path once it is
	// known (read) or before it is written (write).
	CtxGetPath string
	CtxSetPath string
}

// IsBitfield reports whether the field is packed as part of a
// contiguous bit-level group rather than read independently.
func (f *FieldDescriptor) IsBitfield() bool {
	return f.BitGroup != nil
}

// ResolveRelation returns the field's relation for this particular
// record, running Cond if the field is condition-driven.
func (f *FieldDescriptor) ResolveRelation(instance map[string]any, ctx *bctx.Context) (relation.Relation, error) {
	if f.Cond != nil {
		return f.Cond.Resolve(instance, ctx)
	}

	return f.Rel, nil
}

// FieldOption configures a FieldDescriptor via this module's generic
// functional-options helper.
type FieldOption = options.Option[*FieldDescriptor]

// WithController attaches a repetition/termination strategy.
func WithController(opts controller.Options) FieldOption {
	return options.NoError(func(f *FieldDescriptor) { f.Controller = opts })
}

// WithTransform appends transformers to the field's chain.
func WithTransform(t ...transform.Transformer) FieldOption {
	return options.NoError(func(f *FieldDescriptor) { f.Transforms = append(f.Transforms, t...) })
}

// WithValidator appends validators to the field's chain.
func WithValidator(v ...validate.Validator) FieldOption {
	return options.NoError(func(f *FieldDescriptor) { f.Validators = append(f.Validators, v...) })
}

// WithHook appends pre/post hooks to the field's chain.
func WithHook(h ...prepost.Hook) FieldOption {
	return options.NoError(func(f *FieldDescriptor) { f.Hooks = append(f.Hooks, h...) })
}

// WithCondition makes the field's relation condition-driven instead of
// static.
func WithCondition(r condition.Resolver) FieldOption {
	return options.NoError(func(f *FieldDescriptor) { f.Cond = r })
}

// WithCtxGet sources the field's value from the ambient context at path
// instead of the cursor; no bytes are consumed or produced for it.
func WithCtxGet(path string) FieldOption {
	return options.NoError(func(f *FieldDescriptor) { f.CtxGetPath = path })
}

// WithCtxSet copies the field's final value into the ambient context at
// path once it is known, in addition to its normal relation.
func WithCtxSet(path string) FieldOption {
	return options.NoError(func(f *FieldDescriptor) { f.CtxSetPath = path })
}

// Metadata is the ordered field list for one record type, plus the
// lookup structures the reader/writer packages need.
type Metadata struct {
	TypeName string
	Fields   []*FieldDescriptor
	byName   map[string]*FieldDescriptor

	// ClassHooks wrap the entire record (run once before the first field
	// and once after the last), the class-level scope spec.md §4.9
	// describes alongside per-field pre/post.
	ClassHooks prepost.Chain

	// CtorArgNames binds the positional constructor arguments a nested
	// relation's ArgsFunc (or a top-level Binread/Binwrite caller)
	// supplies into named instance keys before the first field runs,
	// e.g. a BSON sub-document reading its parent's remaining byte
	// count as "parentSize".
	CtorArgNames []string
}

// FieldByName looks up a field descriptor by name.
func (m *Metadata) FieldByName(name string) (*FieldDescriptor, bool) {
	f, ok := m.byName[name]
	return f, ok
}

// Builder accumulates FieldDescriptors for a record type T (the Go type
// the decoded instance is conceptually shaped like; instances
// themselves are carried as map[string]any throughout this module).
type Builder[T any] struct {
	typeName     string
	fields       []*FieldDescriptor
	curBitGrp    *BitGroup
	classHooks   prepost.Chain
	ctorArgNames []string
}

// NewBuilder starts a Metadata builder for typeName.
func NewBuilder[T any](typeName string) *Builder[T] {
	return &Builder[T]{typeName: typeName}
}

// WithClassHooks attaches record-level pre/post hooks wrapping every field.
func (b *Builder[T]) WithClassHooks(h ...prepost.Hook) *Builder[T] {
	b.classHooks = append(b.classHooks, h...)
	return b
}

// CtorArgs names the positional constructor arguments this type accepts,
// bound into the instance under these keys before the first field runs.
func (b *Builder[T]) CtorArgs(names ...string) *Builder[T] {
	b.ctorArgNames = append(b.ctorArgNames, names...)
	return b
}

// Field appends a plain field with the given relation and options. Bitfield
// fields must form a contiguous group: calling Field while a BeginBitfield
// group is still open (before its matching EndBitfield) is a builder bug,
// not a data error, so it panics the same way a stray BitField does.
func (b *Builder[T]) Field(name string, rel relation.Relation, opts ...FieldOption) *Builder[T] {
	if b.curBitGrp != nil {
		panic("descriptor: Field called with a bitfield group still open (missing EndBitfield)")
	}

	f := &FieldDescriptor{Name: name, Rel: rel}
	_ = options.Apply(f, opts...)
	b.fields = append(b.fields, f)

	return b
}

// BeginBitfield opens a contiguous bitfield group spanning spanBytes
// bytes, packed MSB-first in bigEndian mode (byte-swapped before
// unpacking otherwise). Call BitField repeatedly, then EndBitfield.
func (b *Builder[T]) BeginBitfield(spanBytes int, bigEndian bool) *Builder[T] {
	b.curBitGrp = &BitGroup{SpanBytes: spanBytes, BigEndian: bigEndian}
	return b
}

// BitField adds one named bit-width member to the currently-open
// bitfield group.
func (b *Builder[T]) BitField(name string, bits int) *Builder[T] {
	if b.curBitGrp == nil {
		panic("descriptor: BitField called without a preceding BeginBitfield")
	}

	b.curBitGrp.Layout = append(b.curBitGrp.Layout, bitfield.Field{Name: name, Bits: bits})
	b.fields = append(b.fields, &FieldDescriptor{Name: name, BitGroup: b.curBitGrp, BitName: name})

	return b
}

// EndBitfield closes the currently-open bitfield group.
func (b *Builder[T]) EndBitfield() *Builder[T] {
	b.curBitGrp = nil
	return b
}

// Build finalizes the Metadata. It returns a
// WrongBitfieldClassImplementationError when a bitfield group is left
// open (BeginBitfield without EndBitfield), and an error on a duplicate
// field name. A closed bitfield group placed before or after ordinary
// fields in the same record is accepted.
func (b *Builder[T]) Build() (*Metadata, error) {
	if b.curBitGrp != nil {
		return nil, errs.NewWrongBitfieldClassImplementationError(b.typeName)
	}

	byName := make(map[string]*FieldDescriptor, len(b.fields))
	for _, f := range b.fields {
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("descriptor: %s: duplicate field name %q", b.typeName, f.Name)
		}
		byName[f.Name] = f
	}

	return &Metadata{
		TypeName:     b.typeName,
		Fields:       b.fields,
		byName:       byName,
		ClassHooks:   b.classHooks,
		CtorArgNames: b.ctorArgNames,
	}, nil
}

// Registry is an xxhash-keyed indirection table from a type tag (a type
// name or other discriminant string) to its Metadata, used by a
// condition.Select hook to resolve a recursive or mutually-referencing
// record type without creating a Go import cycle between the types'
// Metadata builders.
type Registry struct {
	byHash map[uint64]*Metadata
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byHash: make(map[uint64]*Metadata)}
}

// Register associates tag with m, returning tag's hash key so the
// caller can capture it in a closure for later Lookup calls (the usual
// pattern for a self-referencing type: register before building the
// fields that refer back to it).
func (r *Registry) Register(tag string, m *Metadata) uint64 {
	h := hash.ID(tag)
	r.byHash[h] = m

	return h
}

// Lookup resolves a previously-registered type by its hash key.
func (r *Registry) Lookup(h uint64) (*Metadata, bool) {
	m, ok := r.byHash[h]
	return m, ok
}

// LookupTag is a convenience wrapper hashing tag itself.
func (r *Registry) LookupTag(tag string) (*Metadata, bool) {
	return r.Lookup(hash.ID(tag))
}
