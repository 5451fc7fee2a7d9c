// Package controller implements the repetition/termination strategies a
// field can attach: Count, While, Until, MapTo, Matrix,
// NullTerminatedString, Padding, EnsureSize, and the trivial None
// (single-element) case.
//
// A Controller drives an ElementReader (on read) or an ElementWriter (on
// write) against a Positional cursor — a minimal structural interface
// satisfied by both cursor.Reader and cursor.Writer — without importing
// the cursor package directly, keeping this package a leaf the reader and
// writer packages both depend on.
package controller

import (
	"fmt"
	"reflect"

	"github.com/binspector/binspector/bctx"
	"github.com/binspector/binspector/errs"
	"github.com/binspector/binspector/expr"
)

// Positional is the minimal cursor surface a controller needs: its
// current offset, the ability to jump to an absolute offset (used by
// peek-restore), and the ability to skip forward (used by alignment and
// padding).
type Positional interface {
	Offset() uint64
	Move(uint64)
	Forward(uint64)
}

// Kind names one of the controller strategies.
type Kind int

const (
	None Kind = iota
	Count
	While
	Until
	MapTo
	Matrix
	NullTerminatedString
	Padding
	EnsureSize
)

// TargetType normalizes a controller's output shape.
type TargetType int

const (
	TargetScalar TargetType = iota
	TargetArray
	TargetString
)

// Options configures a Controller. Not every field is meaningful for
// every Kind; see the Kind-specific doc below.
type Options struct {
	Kind Kind

	// Count: number of elements to read/write. NFunc, when set, overrides
	// N with a count resolved per-record (spec.md §4.5 "Count(n or
	// expr)", e.g. a sibling length-prefix field) via a hand-written
	// closure. NExpr, tried when NFunc is nil, resolves the count by
	// evaluating an expr.Resolve expression (e.g. "header.len" or
	// "_ctx.tableSize") against the instance and ambient context instead.
	N     int
	NFunc func(instance map[string]any) (int, error)
	NExpr string

	// While: stop before the first element this predicate rejects
	// (the element is not consumed on read; not emitted on write).
	While func(elt any, i int, instance map[string]any) (bool, error)

	// Until: stop after the first element equal to Sentinel (included),
	// or after EOF if UntilEOF is set. Pred, if set, is an additional
	// custom stop test evaluated like While but inclusive of the
	// stopping element.
	Sentinel any
	UntilEOF bool
	Pred     func(elt any, i int, instance map[string]any) (bool, error)

	// MapTo: one element read per entry, each entry passed to the
	// element reader as constructor arguments.
	List []any

	// Matrix: Rows rows of Cols elements each. When Stride (bytes) > 0,
	// the cursor is moved to rowStart+Stride after each row.
	// ElementWidth is not consulted by this package.
	Cols, Rows   int
	Stride       int
	ElementWidth int

	// NullTerminatedString: stop after a zero-value element (assumed
	// not to be part of the string content).

	// Alignment forwards the cursor to the next multiple of Alignment
	// after the controller's primary loop completes. 0 disables it.
	Alignment int

	// Peek restores the cursor to its pre-loop offset after the
	// controller completes.
	Peek bool

	// EnsureSizeBytes, if nonzero, sets the cursor to fieldStart+N after
	// the primary loop completes; it is an error if the loop already
	// read past that point. EnsureSizeExpr, when set, resolves this size
	// per-record via expr.Resolve instead of a fixed literal, the same
	// NFunc/NExpr split Count uses above.
	EnsureSizeBytes int
	EnsureSizeExpr  string

	TargetType TargetType
}

// ElementReader produces the i-th element. args is non-nil only for
// MapTo, carrying that index's list entry. eof is true when the
// underlying cursor ran out of data before producing a value.
type ElementReader func(i int, args any) (value any, eof bool, err error)

// ElementWriter emits one element's bytes.
type ElementWriter func(i int, value any) error

// Read drives opts against pos and reader, producing the field's decoded
// value (a scalar, a []any, or a string depending on opts.TargetType and
// opts.Kind). ctx is the ambient context NExpr/EnsureSizeExpr resolve
// "_ctx."-prefixed paths against.
func Read(pos Positional, opts Options, instance map[string]any, ctx *bctx.Context, reader ElementReader) (any, error) {
	start := pos.Offset()

	val, err := readPrimary(pos, opts, instance, ctx, reader)
	if err != nil {
		return nil, err
	}

	if opts.Alignment > 0 {
		alignForward(pos, opts.Alignment)
	}

	size, err := resolveSize(opts, instance, ctx)
	if err != nil {
		return nil, err
	}

	if size > 0 {
		target := start + uint64(size)
		if pos.Offset() > target {
			return nil, errs.NewValidationTestFailedError(val, pos.Offset())
		}
		pos.Move(target)
	}

	if opts.Peek {
		pos.Move(start)
	}

	return val, nil
}

func readPrimary(pos Positional, opts Options, instance map[string]any, ctx *bctx.Context, reader ElementReader) (any, error) {
	switch opts.Kind {
	case None, Padding, EnsureSize:
		v, eof, err := reader(0, nil)
		if err != nil {
			return nil, err
		}
		if eof {
			return nil, errs.NewEOFError(pos.Offset())
		}

		return v, nil

	case Count:
		n, err := resolveCount(opts, instance, ctx)
		if err != nil {
			return nil, err
		}

		return readFixedCount(pos, opts, reader, n)

	case While:
		return readWhile(pos, opts, instance, reader)

	case Until:
		return readUntil(pos, opts, instance, reader)

	case MapTo:
		out := make([]any, len(opts.List))
		for i, args := range opts.List {
			v, eof, err := reader(i, args)
			if err != nil {
				return nil, err
			}
			if eof {
				return nil, errs.NewEOFError(pos.Offset())
			}
			out[i] = v
		}

		return out, nil

	case Matrix:
		return readMatrix(pos, opts, reader)

	case NullTerminatedString:
		return readNullTerminated(pos, opts, reader)

	default:
		v, eof, err := reader(0, nil)
		if err != nil {
			return nil, err
		}
		if eof {
			return nil, errs.NewEOFError(pos.Offset())
		}

		return v, nil
	}
}

func readFixedCount(pos Positional, opts Options, reader ElementReader, n int) (any, error) {
	out := make([]any, n)
	for i := range n {
		v, eof, err := reader(i, nil)
		if err != nil {
			return nil, err
		}
		if eof {
			return nil, errs.NewEOFError(pos.Offset())
		}
		out[i] = v
	}

	return materialize(out, opts.TargetType), nil
}

func readWhile(pos Positional, opts Options, instance map[string]any, reader ElementReader) (any, error) {
	var out []any
	for i := 0; ; i++ {
		before := pos.Offset()
		v, eof, err := reader(i, nil)
		if err != nil {
			return nil, err
		}
		if eof {
			break
		}

		ok, err := opts.While(v, i, instance)
		if err != nil {
			return nil, err
		}
		if !ok {
			pos.Move(before)
			break
		}

		out = append(out, v)
	}

	return materialize(out, opts.TargetType), nil
}

func readUntil(pos Positional, opts Options, instance map[string]any, reader ElementReader) (any, error) {
	var out []any
	for i := 0; ; i++ {
		v, eof, err := reader(i, nil)
		if err != nil {
			return nil, err
		}
		if eof {
			if opts.UntilEOF {
				break
			}

			return nil, errs.NewEOFError(pos.Offset())
		}

		out = append(out, v)

		if opts.Sentinel != nil && reflect.DeepEqual(v, opts.Sentinel) {
			break
		}

		if opts.Pred != nil {
			stop, err := opts.Pred(v, i, instance)
			if err != nil {
				return nil, err
			}
			if stop {
				break
			}
		}
	}

	return materialize(out, opts.TargetType), nil
}

func readMatrix(pos Positional, opts Options, reader ElementReader) (any, error) {
	rows := make([]any, opts.Rows)
	idx := 0

	for row := range opts.Rows {
		rowStart := pos.Offset()
		cols := make([]any, opts.Cols)
		for c := range opts.Cols {
			v, eof, err := reader(idx, nil)
			if err != nil {
				return nil, err
			}
			if eof {
				return nil, errs.NewEOFError(pos.Offset())
			}
			cols[c] = v
			idx++
		}
		rows[row] = cols

		if opts.Stride > 0 {
			pos.Move(rowStart + uint64(opts.Stride))
		}
	}

	return rows, nil
}

func readNullTerminated(pos Positional, opts Options, reader ElementReader) (any, error) {
	var sb []byte
	for i := 0; ; i++ {
		v, eof, err := reader(i, nil)
		if err != nil {
			return nil, err
		}
		if eof {
			return nil, errs.NewEOFError(pos.Offset())
		}

		s, ok := v.(string)
		if !ok || len(s) == 0 || s[0] == 0 {
			break
		}

		sb = append(sb, s[0])
	}

	return string(sb), nil
}

// resolveCount settles Count's element count for this particular
// record: NFunc wins if set, then NExpr (evaluated via expr.Resolve
// against instance/ctx), falling back to the static N literal.
func resolveCount(opts Options, instance map[string]any, ctx *bctx.Context) (int, error) {
	if opts.NFunc != nil {
		return opts.NFunc(instance)
	}

	if opts.NExpr != "" {
		v, err := expr.Resolve(opts.NExpr, expr.Scope{Instance: instance, Ctx: ctx})
		if err != nil {
			return 0, err
		}

		return toInt(v)
	}

	return opts.N, nil
}

// resolveSize settles EnsureSize's target byte span the same way
// resolveCount settles Count's: EnsureSizeExpr, evaluated via
// expr.Resolve, overrides the static EnsureSizeBytes literal.
func resolveSize(opts Options, instance map[string]any, ctx *bctx.Context) (int, error) {
	if opts.EnsureSizeExpr != "" {
		v, err := expr.Resolve(opts.EnsureSizeExpr, expr.Scope{Instance: instance, Ctx: ctx})
		if err != nil {
			return 0, err
		}

		return toInt(v)
	}

	return opts.EnsureSizeBytes, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("controller: expression produced a non-numeric value %v (%T)", v, v)
	}
}

func materialize(out []any, target TargetType) any {
	if target != TargetString {
		return out
	}

	b := make([]byte, 0, len(out))
	for _, v := range out {
		switch s := v.(type) {
		case string:
			if len(s) > 0 {
				b = append(b, s[0])
			}
		case uint8:
			b = append(b, s)
		}
	}

	return string(b)
}

func alignForward(pos Positional, k int) {
	off := pos.Offset()
	rem := off % uint64(k)
	if rem != 0 {
		pos.Forward(uint64(k) - rem)
	}
}

// Write drives opts against pos and writer, flattening value (the
// field's already-built array/string/scalar) back into the primitive
// stream the controller expects. instance/ctx are only consulted when
// opts.EnsureSizeExpr is set.
func Write(pos Positional, opts Options, instance map[string]any, ctx *bctx.Context, value any, writer ElementWriter) error {
	start := pos.Offset()

	if err := writePrimary(pos, opts, value, writer); err != nil {
		return err
	}

	if opts.Alignment > 0 {
		padZeroTo(pos, opts.Alignment, writer)
	}

	if opts.Kind == Padding || opts.Kind == EnsureSize {
		size, err := resolveSize(opts, instance, ctx)
		if err != nil {
			return err
		}
		if size > 0 {
			padZeroBytes(pos, start, size, writer)
		}
	}

	if opts.Peek {
		pos.Move(start)
	}

	return nil
}

func writePrimary(pos Positional, opts Options, value any, writer ElementWriter) error {
	switch opts.Kind {
	case None, Padding, EnsureSize:
		return writer(0, value)

	case NullTerminatedString:
		s, _ := value.(string)
		for i := 0; i < len(s); i++ {
			if err := writer(i, string(s[i])); err != nil {
				return err
			}
		}

		return writer(len(s), "\x00")

	case Matrix:
		rows, _ := value.([]any)
		idx := 0
		for _, row := range rows {
			rowStart := pos.Offset()
			cols, _ := row.([]any)
			for _, c := range cols {
				if err := writer(idx, c); err != nil {
					return err
				}
				idx++
			}

			if opts.Stride > 0 {
				target := rowStart + uint64(opts.Stride)
				for pos.Offset() < target {
					if err := writer(-1, uint8(0)); err != nil {
						return err
					}
				}
			}
		}

		return nil

	default:
		items := toSlice(value)
		for i, v := range items {
			if err := writer(i, v); err != nil {
				return err
			}
		}

		return nil
	}
}

func toSlice(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case string:
		out := make([]any, len(v))
		for i := 0; i < len(v); i++ {
			out[i] = string(v[i])
		}

		return out
	default:
		return []any{v}
	}
}

func padZeroTo(pos Positional, k int, writer ElementWriter) {
	off := pos.Offset()
	rem := off % uint64(k)
	if rem == 0 {
		return
	}

	n := uint64(k) - rem
	for i := uint64(0); i < n; i++ {
		_ = writer(-1, uint8(0))
	}
}

func padZeroBytes(pos Positional, start uint64, size int, writer ElementWriter) {
	target := start + uint64(size)
	for pos.Offset() < target {
		_ = writer(-1, uint8(0))
	}
}
