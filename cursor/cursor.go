// Package cursor provides the random-access byte buffer the reader and
// writer interpreters drive: an offset, a mutable endianness, and the two
// concrete flavors it needs — an immutable-slice Reader and a
// journal-backed Writer.
//
// Builds on this module's endian package for the EndianEngine abstraction
// and its pooled buffer allocator for the byte slice the Writer
// materializes its output into.
package cursor

import (
	"fmt"

	"github.com/binspector/binspector/codec"
	"github.com/binspector/binspector/endian"
	"github.com/binspector/binspector/internal/pool"
)

// eofType is the distinguished sentinel binread returns for a primitive or
// nested read that ran off the end of the source. It is never equal to any
// primitive or nested value, so it can never be mistaken for a
// legitimately decoded value of any primitive or nested type.
type eofType struct{}

// EOF is returned by Reader.Read when the requested primitive would read
// past the end of the buffer.
var EOF = eofType{}

// IsEOF reports whether v is the EOF sentinel.
func IsEOF(v any) bool {
	_, ok := v.(eofType)
	return ok
}

// Reader is a random-access, read-only cursor over an immutable byte
// slice.
type Reader struct {
	data   []byte
	offset uint64
	endian endian.EndianEngine
}

// NewReader constructs a Reader over data with the given default
// endianness.
func NewReader(data []byte, e endian.EndianEngine) *Reader {
	return &Reader{data: data, endian: e}
}

// Offset returns the current read offset.
func (r *Reader) Offset() uint64 { return r.offset }

// Length returns the total length of the underlying buffer.
func (r *Reader) Length() uint64 { return uint64(len(r.data)) }

// Move sets the cursor to an absolute offset.
func (r *Reader) Move(o uint64) { r.offset = o }

// Forward advances the cursor by n bytes.
func (r *Reader) Forward(n uint64) { r.offset += n }

// GetEndian returns the cursor's current endian engine.
func (r *Reader) GetEndian() endian.EndianEngine { return r.endian }

// SetEndian changes the cursor's current endian engine.
func (r *Reader) SetEndian(e endian.EndianEngine) { r.endian = e }

// Read decodes the primitive named by tag at the current offset and
// advances past it. Returns cursor.EOF, without advancing, if fewer than
// tag.Width() bytes remain.
func (r *Reader) Read(tag codec.Tag) any {
	w := uint64(tag.Width())
	if r.offset+w > uint64(len(r.data)) {
		return EOF
	}

	v := codec.Decode(r.endian, tag, r.data[r.offset:r.offset+w])
	r.offset += w

	return v
}

// Peek behaves like Read but does not advance the cursor.
func (r *Reader) Peek(tag codec.Tag) any {
	w := uint64(tag.Width())
	if r.offset+w > uint64(len(r.data)) {
		return EOF
	}

	return codec.Decode(r.endian, tag, r.data[r.offset:r.offset+w])
}

// ReadBytes returns the next n raw bytes without interpreting them,
// advancing the cursor. Returns EOF if fewer than n bytes remain.
func (r *Reader) ReadBytes(n uint64) any {
	if r.offset+n > uint64(len(r.data)) {
		return EOF
	}

	b := r.data[r.offset : r.offset+n]
	r.offset += n

	return b
}

// writeEntry is one journal entry: a tag-typed value destined for offset.
// Entries are applied in the order recorded, so a later entry covering an
// address a previous entry touched wins.
type writeEntry struct {
	offset uint64
	data   []byte
}

// Writer is a random-access, write-only cursor that records a journal of
// typed writes and materializes a byte buffer on demand. Writes tolerate
// sparse, out-of-order offsets.
type Writer struct {
	journal []writeEntry
	offset  uint64
	endian  endian.EndianEngine
	extent  uint64
}

// NewWriter constructs an empty Writer with the given default endianness.
func NewWriter(e endian.EndianEngine) *Writer {
	return &Writer{endian: e}
}

// Offset returns the current write offset.
func (w *Writer) Offset() uint64 { return w.offset }

// Move sets the cursor to an absolute offset.
func (w *Writer) Move(o uint64) { w.offset = o }

// Forward advances the cursor by n bytes.
func (w *Writer) Forward(n uint64) { w.offset += n }

// GetEndian returns the cursor's current endian engine.
func (w *Writer) GetEndian() endian.EndianEngine { return w.endian }

// SetEndian changes the cursor's current endian engine.
func (w *Writer) SetEndian(e endian.EndianEngine) { w.endian = e }

// Write encodes value as tag and appends it to the journal at the current
// offset, then advances past it.
func (w *Writer) Write(tag codec.Tag, value any) error {
	buf := make([]byte, tag.Width())
	if err := codec.EncodeInto(w.endian, tag, value, buf); err != nil {
		return fmt.Errorf("cursor: %w", err)
	}

	w.record(w.offset, buf)
	w.offset += uint64(tag.Width())

	return nil
}

// WriteBytes appends raw bytes to the journal at the current offset.
func (w *Writer) WriteBytes(data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	w.record(w.offset, buf)
	w.offset += uint64(len(data))

	return nil
}

func (w *Writer) record(offset uint64, data []byte) {
	w.journal = append(w.journal, writeEntry{offset: offset, data: data})
	if end := offset + uint64(len(data)); end > w.extent {
		w.extent = end
	}
}

// Buffer materializes a byte slice large enough to cover every journal
// entry, zero-filling any gap the journal never wrote to. Later journal
// entries win over earlier ones that share an address.
func (w *Writer) Buffer() []byte {
	bb := pool.GetCursorBuffer()
	bb.ExtendOrGrow(int(w.extent))

	out := bb.Bytes()
	for i := range out {
		out[i] = 0
	}

	for _, e := range w.journal {
		copy(out[e.offset:], e.data)
	}

	result := make([]byte, w.extent)
	copy(result, out)
	pool.PutCursorBuffer(bb)

	return result
}

// Size reports the extent of the write journal, the value
// computeBinSize returns without fully materializing a buffer.
func (w *Writer) Size() uint64 { return w.extent }
