// Package writer implements the write interpreter (spec.md §4.13), the
// mirror of the reader: for each field, in the same declaration order, it
// runs write-scope pre-hooks, applies write-scope transformers in reverse
// declaration order, determines the relation against the already-built
// instance, flattens the field's array/string value back into the
// primitive/nested stream the controller expects, and emits it via the
// cursor (or recurses for nested relations). Validators do not run on
// write. Bitfield groups are packed as one contiguous unit the first time
// any of their member fields is reached.
package writer

import (
	"fmt"

	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/bitfield"
	"github.com/binspector/binspector/controller"
	"github.com/binspector/binspector/cursor"
	"github.com/binspector/binspector/descriptor"
	"github.com/binspector/binspector/errs"
	"github.com/binspector/binspector/prepost"
	"github.com/binspector/binspector/relation"
)

// Write encodes instance (a record of type meta) into cur.
func Write(cur *cursor.Writer, meta *descriptor.Metadata, instance map[string]any, ctx *bctx.Context) error {
	if ctx == nil {
		ctx = bctx.New()
	}

	if len(meta.Fields) == 0 {
		return errs.NewReferringToEmptyClassError(meta.TypeName)
	}

	classPosts, _, _, err := meta.ClassHooks.RunPre(prepost.WriteScope, cur, instance, ctx)
	if err != nil {
		return err
	}

	done := make(map[*descriptor.BitGroup]bool)

	for _, f := range meta.Fields {
		if f.IsBitfield() {
			if done[f.BitGroup] {
				continue
			}
			done[f.BitGroup] = true

			if err := writeBitGroup(cur, f.BitGroup, instance); err != nil {
				return errs.WithField(err, f.BitGroup.Layout[0].Name)
			}

			continue
		}

		if err := writeField(cur, meta, f, instance, ctx); err != nil {
			return errs.WithField(err, f.Name)
		}
	}

	return prepost.RunPost(cur, classPosts)
}

func writeBitGroup(cur *cursor.Writer, grp *descriptor.BitGroup, instance map[string]any) error {
	values := make(map[string]uint64, len(grp.Layout))
	for _, bf := range grp.Layout {
		v, ok := instance[bf.Name]
		if !ok {
			return errs.NewReferenceError(bf.Name)
		}

		u, err := toUint64(v)
		if err != nil {
			return err
		}
		values[bf.Name] = u
	}

	span, err := bitfield.Pack(values, grp.Layout, grp.BigEndian)
	if err != nil {
		return err
	}

	return cur.WriteBytes(span)
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	case int:
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("writer: bitfield value %v (%T) is not an unsigned integer", v, v)
	}
}

func writeField(cur *cursor.Writer, meta *descriptor.Metadata, f *descriptor.FieldDescriptor, instance map[string]any, ctx *bctx.Context) error {
	posts, hookVal, hasHookVal, err := f.Hooks.RunPre(prepost.WriteScope, cur, instance, ctx)
	if err != nil {
		return err
	}

	if f.CtxSetPath != "" {
		if v, ok := instance[f.Name]; ok {
			ctx.Set(f.CtxSetPath, v)
		}
	}

	switch {
	case f.CtxGetPath != "":
		// Sourced from the ambient context on read; no bytes to emit.

	case hasHookVal:
		_ = hookVal // ValueSet fields compute their value; nothing to write.

	default:
		rel, err := f.ResolveRelation(instance, ctx)
		if err != nil {
			return err
		}

		if !rel.IsResolved() {
			return errs.NewUnknownPropertyTypeError()
		}

		if rel.Kind == relation.KindNone {
			break
		}

		value, ok := instance[f.Name]
		if !ok {
			return errs.NewReferenceError(f.Name)
		}

		value, err = f.Transforms.ApplyWrite(value, instance)
		if err != nil {
			return err
		}

		if err := writeRelation(cur, meta, f, rel, value, instance, ctx); err != nil {
			return err
		}
	}

	return prepost.RunPost(cur, posts)
}

// writeRelation drives f's controller (or writes exactly once, absent a
// controller) against rel, recursing into a nested Write for KindNested
// relations and delegating primitive encoding to the cursor directly.
func writeRelation(cur *cursor.Writer, meta *descriptor.Metadata, f *descriptor.FieldDescriptor, rel relation.Relation, value any, instance map[string]any, ctx *bctx.Context) error {
	var elemWriter controller.ElementWriter

	switch rel.Kind {
	case relation.KindPrimitive:
		elemWriter = func(_ int, v any) error {
			return cur.Write(rel.Tag, v)
		}

	case relation.KindNested:
		nested, ok := rel.NestedMeta.(*descriptor.Metadata)
		if !ok {
			return errs.NewUnknownPropertyTypeError()
		}

		if f.Cond == nil && nested == meta {
			return errs.NewSelfReferringFieldError(meta.TypeName)
		}

		elemWriter = func(_ int, v any) error {
			sub, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("writer: field %q expected a nested record value, got %T", f.Name, v)
			}

			return Write(cur, nested, sub, ctx)
		}

	default:
		return errs.NewUnknownPropertyTypeError()
	}

	return controller.Write(cur, f.Controller, instance, ctx, value, elemWriter)
}
