// Package codec provides the fixed table of primitive tags the binspector
// engine reads and writes, and the pure encode/decode routines bound to
// each tag.
//
// Decoding and encoding are endian-aware and cover a closed primitive
// enumeration: u8/u16/u32/u64, i8/i16/i32/i64, f32/f64, and char.
package codec

import (
	"fmt"
	"math"

	"github.com/binspector/binspector/endian"
)

// Tag names one of the fixed-width primitive types a field can bind to.
type Tag uint8

const (
	U8 Tag = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	// Char reads a single byte and surfaces it as a one-byte string
	// holding that raw byte (bytes 0x80-0xFF are not re-encoded as UTF-8).
	Char
)

func (t Tag) String() string {
	switch t {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Char:
		return "char"
	default:
		return "unknown"
	}
}

// Width returns the fixed byte width of the tag.
func (t Tag) Width() int {
	switch t {
	case U8, I8, Char:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	default:
		return 0
	}
}

// IsInteger reports whether the tag decodes to a Go integer type.
func (t Tag) IsInteger() bool {
	switch t {
	case U8, U16, U32, U64, I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// Decode reads exactly Width(tag) bytes from data (which must have that
// length or more; the cursor is responsible for the EOF length check
// before calling Decode) and returns the typed Go value for the tag, honoring
// the given endian engine for multi-byte tags.
func Decode(e endian.EndianEngine, tag Tag, data []byte) any {
	switch tag {
	case U8:
		return data[0]
	case I8:
		return int8(data[0])
	case Char:
		return string(data[0:1])
	case U16:
		return e.Uint16(data)
	case I16:
		return int16(e.Uint16(data))
	case U32:
		return e.Uint32(data)
	case I32:
		return int32(e.Uint32(data))
	case U64:
		return e.Uint64(data)
	case I64:
		return int64(e.Uint64(data))
	case F32:
		return math.Float32frombits(e.Uint32(data))
	case F64:
		return math.Float64frombits(e.Uint64(data))
	default:
		panic(fmt.Sprintf("codec: unknown tag %d", tag))
	}
}

// Encode converts value (a Go value of the type Decode would have produced
// for tag; integer tags also accept any Go integer type, float tags only
// float32/float64) into exactly Width(tag) bytes, honoring the given
// endian engine.
func Encode(e endian.EndianEngine, tag Tag, value any) ([]byte, error) {
	buf := make([]byte, tag.Width())
	if err := EncodeInto(e, tag, value, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// EncodeInto encodes value into dst, which must have length >= tag.Width().
func EncodeInto(e endian.EndianEngine, tag Tag, value any, dst []byte) error {
	switch tag {
	case U8:
		v, err := asUint64(value)
		if err != nil {
			return err
		}
		dst[0] = byte(v)
	case I8:
		v, err := asInt64(value)
		if err != nil {
			return err
		}
		dst[0] = byte(int8(v))
	case Char:
		s, ok := value.(string)
		if !ok || len(s) == 0 {
			return fmt.Errorf("codec: char value must be a non-empty string, got %T", value)
		}
		dst[0] = s[0]
	case U16:
		v, err := asUint64(value)
		if err != nil {
			return err
		}
		e.PutUint16(dst, uint16(v))
	case I16:
		v, err := asInt64(value)
		if err != nil {
			return err
		}
		e.PutUint16(dst, uint16(int16(v)))
	case U32:
		v, err := asUint64(value)
		if err != nil {
			return err
		}
		e.PutUint32(dst, uint32(v))
	case I32:
		v, err := asInt64(value)
		if err != nil {
			return err
		}
		e.PutUint32(dst, uint32(int32(v)))
	case U64:
		v, err := asUint64(value)
		if err != nil {
			return err
		}
		e.PutUint64(dst, v)
	case I64:
		v, err := asInt64(value)
		if err != nil {
			return err
		}
		e.PutUint64(dst, uint64(v))
	case F32:
		v, err := asFloat64(value)
		if err != nil {
			return err
		}
		e.PutUint32(dst, math.Float32bits(float32(v)))
	case F64:
		v, err := asFloat64(value)
		if err != nil {
			return err
		}
		e.PutUint64(dst, math.Float64bits(v))
	default:
		return fmt.Errorf("codec: unknown tag %d", tag)
	}

	return nil
}

func asUint64(value any) (uint64, error) {
	switch v := value.(type) {
	case uint8:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case int:
		return uint64(v), nil
	case int8:
		return uint64(v), nil
	case int16:
		return uint64(v), nil
	case int32:
		return uint64(v), nil
	case int64:
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("codec: value %v (%T) is not an integer", value, value)
	}
}

func asInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("codec: value %v (%T) is not an integer", value, value)
	}
}

func asFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("codec: value %v (%T) is not a float", value, value)
	}
}
