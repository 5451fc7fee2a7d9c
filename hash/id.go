// Package hash provides the fast, allocation-free hashing primitive used by
// the descriptor registry to key its Select indirection table (see
// descriptor.Registry), and exposed to user validators/transformers as
// binspector.HashBytes for content-hash checks (e.g. a BSON sub-document
// checksum field).
//
// Uses xxHash64.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string. Used to turn a descriptor
// tag (a type name, a discriminant string) into a Registry lookup key.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Bytes computes the xxHash64 of the given byte slice.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
