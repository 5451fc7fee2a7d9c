// Package compress provides the compression codecs usable by a
// CompressedRegion pre/post hook (see prepost.CompressedRegion).
//
// # Overview
//
// A CompressedRegion hook gives a field a compressed span: on read it
// decompresses a length-delimited span of the source and the decompressed
// []byte becomes the field's value; on write it compresses the field's
// []byte value and emits it as the span. No relation is run over the
// decompressed bytes. The package supports four algorithms:
//   - None: no compression (fastest, largest)
//   - Zstd: best compression ratio, moderate speed
//   - S2: balanced compression and speed
//   - LZ4: fastest decompression, moderate compression
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Choosing an algorithm
//
//	codec, err := compress.NewCodec(compress.Zstd)
//	compressed, err := codec.Compress(data)
//	original, err := codec.Decompress(compressed)
//
// | Scenario                | Recommended | Reason                         |
// |-------------------------|-------------|---------------------------------|
// | Archived/cold regions   | Zstd        | best compression ratio          |
// | Frequently re-read      | LZ4         | fastest decompression            |
// | General purpose         | S2          | balanced speed and ratio         |
// | Already-compressed data | None        | avoid wasted CPU                |
//
// # Memory management
//
// The LZ4 compressor and the pure-Go Zstd encoder/decoder are pooled
// internally (sync.Pool) to avoid re-allocating that machinery on every
// call; S2 and the cgo Zstd build keep no pool of their own. All codec
// implementations are safe for concurrent use.
//
// # Error handling
//
// Decompress returns an error on corrupted input, a mismatched algorithm,
// or a declared size that the underlying library refuses to honor. These
// errors reach the caller as returned by the codec: errs.WithField leaves
// errors outside the errs taxonomy unchanged, so no field name is attached.
package compress
