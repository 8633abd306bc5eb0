// Package archive persists run results to a blobstore.Store.
//
// An archive is a single self-describing blob:
//
//	[magic "BPAR"][version u16][compression u8][codec name len u8][codec name]
//	[codec version u16][uncompressed size u32][stored size u32][crc32c u32][payload...]
//
// The payload is the codec encoding of the result, compressed with LZ4 or ZSTD
// when that saves space. Archives are decoded with the registered codec named in the
// header, so changing codec.Default does not break existing archives. A payload
// written by a newer codec version than the registered one is rejected.
package archive
