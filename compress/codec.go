// Package compress provides the compression codecs usable by the engine's
// CompressedRegion pre/post hook (see prepost.CompressedRegion), which
// decompresses a length-delimited span into the field's []byte value on
// read, and compresses that []byte value back into the span on write.
//
// Four algorithms are supported (None, Zstd, S2, LZ4), each backed by a
// well-known third-party library: klauspost/compress (zstd, s2),
// pierrec/lz4, and valyala/gozstd as a cgo-accelerated zstd alternative.
package compress

import "fmt"

// Type identifies a compression algorithm a CompressedRegion hook uses.
type Type uint8

const (
	None Type = iota
	Zstd
	S2
	LZ4
)

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Zstd:
		return "Zstd"
	case S2:
		return "S2"
	case LZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Compressor compresses a byte span.
//
// The input data is not modified. The returned slice is newly allocated and
// owned by the caller, except for NoOpCompressor, which returns its input
// slice.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a byte span previously produced by the matching
// Compressor. Returns an error if the data is corrupted or was compressed
// with an incompatible algorithm.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions.
type Codec interface {
	Compressor
	Decompressor
}

// NewCodec is a factory function that creates a Codec for the given
// algorithm.
func NewCodec(t Type) (Codec, error) {
	switch t {
	case None:
		return NewNoOpCompressor(), nil
	case Zstd:
		return NewZstdCompressor(), nil
	case S2:
		return NewS2Compressor(), nil
	case LZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("compress: invalid compression type %d", t)
	}
}

var builtinCodecs = map[Type]Codec{
	None: NewNoOpCompressor(),
	Zstd: NewZstdCompressor(),
	S2:   NewS2Compressor(),
	LZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a shared, stateless Codec instance for the given
// compression type. Prefer this over NewCodec when no per-call
// configuration is needed, since the returned codecs are safe for
// concurrent use.
func GetCodec(t Type) (Codec, error) {
	if c, ok := builtinCodecs[t]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("compress: unsupported compression type %d", t)
}
