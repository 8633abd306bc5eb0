// Package conv provides checked integer conversions for the fixed-width fields of
// archive headers.
//
// Lengths are held as int in memory and stored as uint32 on disk. Values read back
// from a blob are untrusted, so both directions are bounds-checked.
package conv
