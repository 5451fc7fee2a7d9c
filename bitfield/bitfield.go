// Package bitfield packs and unpacks a contiguous run of sub-byte fields
// within a fixed byte span. Bits are assigned MSB-first: the first field
// in a Layout occupies the highest-order bits of the span. A
// little-endian span is byte-swapped into that same big-endian bit order
// before unpacking, and swapped back after packing, so a Layout's field
// order always reads left-to-right regardless of the record's
// endianness.
//
// The accumulate-then-shift algorithm here is the same one used by a
// per-field reflect-driven bit decoder elsewhere in this ecosystem,
// generalized from a fixed MSB-first byte walk into a single
// endian-aware integer accumulator, since a span is bounded (at most 8
// bytes) and the field list is known up front rather than discovered via
// reflection.
package bitfield

import "fmt"

// Field is one named bit-width entry in a Layout.
type Field struct {
	Name string
	Bits int
}

// Layout is an ordered list of Fields packed into a single span.
type Layout []Field

// TotalBits returns the sum of every field's width.
func (l Layout) TotalBits() int {
	n := 0
	for _, f := range l {
		n += f.Bits
	}

	return n
}

// SpanBytes returns the smallest whole number of bytes the layout fits
// in.
func (l Layout) SpanBytes() int {
	bits := l.TotalBits()
	return (bits + 7) / 8
}

// Unpack decodes span according to layout, returning one uint64 per
// field keyed by name. bigEndian selects the bit-packing order: when
// false, span is treated as a little-endian integer and byte-swapped
// before the MSB-first unpack runs.
func Unpack(span []byte, layout Layout, bigEndian bool) (map[string]uint64, error) {
	if len(span) == 0 {
		return nil, fmt.Errorf("bitfield: empty span")
	}
	if len(span) > 8 {
		return nil, fmt.Errorf("bitfield: span of %d bytes exceeds the 8-byte limit", len(span))
	}
	if layout.TotalBits() > len(span)*8 {
		return nil, fmt.Errorf("bitfield: layout needs %d bits but span is only %d bits", layout.TotalBits(), len(span)*8)
	}

	ordered := span
	if !bigEndian {
		ordered = swapBytes(span)
	}

	acc := beBytesToUint64(ordered)
	totalBits := len(span) * 8
	out := make(map[string]uint64, len(layout))

	shift := totalBits
	for _, f := range layout {
		shift -= f.Bits
		mask := uint64(1)<<uint(f.Bits) - 1
		out[f.Name] = (acc >> uint(shift)) & mask
	}

	return out, nil
}

// Pack encodes values into a span-sized byte slice according to layout,
// the mirror of Unpack.
func Pack(values map[string]uint64, layout Layout, bigEndian bool) ([]byte, error) {
	spanBits := layout.SpanBytes() * 8
	var acc uint64

	shift := spanBits
	for _, f := range layout {
		shift -= f.Bits
		mask := uint64(1)<<uint(f.Bits) - 1
		v := values[f.Name] & mask
		acc |= v << uint(shift)
	}

	out := uint64ToBEBytes(acc, layout.SpanBytes())
	if !bigEndian {
		out = swapBytes(out)
	}

	return out, nil
}

func swapBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}

	return out
}

func beBytesToUint64(b []byte) uint64 {
	var v uint64
	for _, byt := range b {
		v = v<<8 | uint64(byt)
	}

	return v
}

func uint64ToBEBytes(v uint64, n int) []byte {
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}

	return out
}
