// Package hash provides the checksum used to verify archive payloads.
//
// Archives are checksummed with CRC32-Castagnoli (CRC32C), which Go's hash/crc32
// accelerates in hardware on x86 (SSE4.2) and ARM (CRC extension).
//
// For one-shot checksums:
//
//	sum := hash.CRC32C(data)
//	err := hash.Verify(data, sum)
package hash
