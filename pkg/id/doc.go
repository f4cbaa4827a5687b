// Package id generates the identifiers vesta assigns to streams.
//
// IDs are 16 bytes: a millisecond timestamp, a per-millisecond sequence and
// a random tail. Their base32 string form preserves byte order, so stream
// keys sort by creation time.
package id
