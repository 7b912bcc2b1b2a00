// Package persist writes and reads the two streams that make up a saved
// index: the builder's index stream and the elements stream.
//
// Each stream is framed as
//
//	magic   [4]byte   "ANNI" (index) or "ANNE" (elements)
//	version uint16    1
//	kind    uint16 length + bytes, the builder kind ("" for elements)
//	gen     [16]byte  save generation, identical in both streams
//	payload           builder or elements codec
//	crc32   uint32    IEEE checksum of payload
//
// All integers are little-endian. Locations ending in ".zst" or ".lz4" are
// compressed as a whole.
package persist
