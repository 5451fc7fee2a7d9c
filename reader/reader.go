// Package reader implements the read interpreter (spec.md §4.12): for a
// record's Metadata, it walks the field list in declaration order, running
// pre-hooks, resolving each field's relation (directly or through a
// condition chain), driving the field's controller against either a
// primitive cursor read or a recursive nested Read, applying read-scope
// transformers, running validators, and finally running post-hooks. Bitfield
// groups are decoded as one contiguous unit the first time any of their
// member fields is reached.
package reader

import (
	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/bitfield"
	"github.com/binspector/binspector/controller"
	"github.com/binspector/binspector/cursor"
	"github.com/binspector/binspector/descriptor"
	"github.com/binspector/binspector/errs"
	"github.com/binspector/binspector/prepost"
	"github.com/binspector/binspector/relation"
)

// Read decodes one record of type meta from cur, returning the populated
// instance as a map[string]any keyed by field name. args supplies
// meta.CtorArgNames positionally (used by nested relations and, at the top
// level, by Binread's trailing ctorArgs).
func Read(cur *cursor.Reader, meta *descriptor.Metadata, args []any, ctx *bctx.Context) (map[string]any, error) {
	if ctx == nil {
		ctx = bctx.New()
	}

	if len(meta.Fields) == 0 {
		return nil, errs.NewReferringToEmptyClassError(meta.TypeName)
	}

	instance := make(map[string]any, len(meta.Fields))
	for i, name := range meta.CtorArgNames {
		if i < len(args) {
			instance[name] = args[i]
		}
	}

	classPosts, _, _, err := meta.ClassHooks.RunPre(prepost.ReadScope, cur, instance, ctx)
	if err != nil {
		return nil, err
	}

	done := make(map[*descriptor.BitGroup]bool)

	for _, f := range meta.Fields {
		if f.IsBitfield() {
			if done[f.BitGroup] {
				continue
			}
			done[f.BitGroup] = true

			if err := readBitGroup(cur, f.BitGroup, instance); err != nil {
				return nil, errs.WithField(err, f.BitGroup.Layout[0].Name)
			}

			continue
		}

		if err := readField(cur, meta, f, instance, ctx); err != nil {
			return nil, errs.WithField(err, f.Name)
		}
	}

	if err := prepost.RunPost(cur, classPosts); err != nil {
		return nil, err
	}

	return instance, nil
}

func readBitGroup(cur *cursor.Reader, grp *descriptor.BitGroup, instance map[string]any) error {
	raw := cur.ReadBytes(uint64(grp.SpanBytes))
	if cursor.IsEOF(raw) {
		return errs.NewEOFError(cur.Offset())
	}

	span, _ := raw.([]byte)
	values, err := bitfield.Unpack(span, grp.Layout, grp.BigEndian)
	if err != nil {
		return err
	}

	for _, bf := range grp.Layout {
		instance[bf.Name] = values[bf.Name]
	}

	return nil
}

func readField(cur *cursor.Reader, meta *descriptor.Metadata, f *descriptor.FieldDescriptor, instance map[string]any, ctx *bctx.Context) error {
	posts, hookVal, hasHookVal, err := f.Hooks.RunPre(prepost.ReadScope, cur, instance, ctx)
	if err != nil {
		return err
	}

	var value any
	skipTransform := hasHookVal || f.CtxGetPath != ""

	switch {
	case f.CtxGetPath != "":
		v, ok := ctx.Get(f.CtxGetPath)
		if !ok {
			return errs.NewReferenceError(f.CtxGetPath)
		}
		value = v

	case hasHookVal:
		value = hookVal

	default:
		rel, err := f.ResolveRelation(instance, ctx)
		if err != nil {
			return err
		}

		if !rel.IsResolved() {
			return errs.NewUnknownPropertyTypeError()
		}

		if rel.Kind == relation.KindNone {
			value = nil
			skipTransform = true
			break
		}

		v, err := readRelation(cur, meta, f, rel, instance, ctx)
		if err != nil {
			return err
		}

		value = v
	}

	if !skipTransform {
		v, err := f.Transforms.ApplyRead(value, instance)
		if err != nil {
			return err
		}
		value = v

		if err := f.Validators.Run(value, instance, cur.Offset()); err != nil {
			return err
		}
	}

	instance[f.Name] = value

	if f.CtxSetPath != "" {
		ctx.Set(f.CtxSetPath, value)
	}

	if err := prepost.RunPost(cur, posts); err != nil {
		return err
	}

	return nil
}

// readRelation drives f's controller (or reads exactly once, absent a
// controller) against rel, recursing into a nested Read for KindNested
// relations and delegating primitive decoding to the cursor directly.
func readRelation(cur *cursor.Reader, meta *descriptor.Metadata, f *descriptor.FieldDescriptor, rel relation.Relation, instance map[string]any, ctx *bctx.Context) (any, error) {
	var elemReader controller.ElementReader

	switch rel.Kind {
	case relation.KindPrimitive:
		elemReader = func(_ int, _ any) (any, bool, error) {
			v := cur.Read(rel.Tag)
			if cursor.IsEOF(v) {
				return nil, true, nil
			}

			return v, false, nil
		}

	case relation.KindNested:
		nested, ok := rel.NestedMeta.(*descriptor.Metadata)
		if !ok {
			return nil, errs.NewUnknownPropertyTypeError()
		}

		if f.Cond == nil && nested == meta {
			return nil, errs.NewSelfReferringFieldError(meta.TypeName)
		}

		elemReader = func(_ int, mapToArgs any) (any, bool, error) {
			if cur.Offset() >= cur.Length() {
				return nil, true, nil
			}

			var ctorArgs []any
			if rel.ArgsFn != nil {
				a, err := rel.ArgsFn(instance, ctx)
				if err != nil {
					return nil, false, err
				}
				ctorArgs = a
			}
			if mapToArgs != nil {
				if a, ok := mapToArgs.([]any); ok {
					ctorArgs = a
				} else {
					ctorArgs = []any{mapToArgs}
				}
			}

			sub, err := Read(cur, nested, ctorArgs, ctx)
			if err != nil {
				return nil, false, err
			}

			return sub, false, nil
		}

	default:
		return nil, errs.NewUnknownPropertyTypeError()
	}

	return controller.Read(cur, f.Controller, instance, ctx, elemReader)
}
