// Package activity keeps the append-only history of every stream. Events
// are appended inside the ledger transaction of the operation they record,
// so a stream's history and its balances never disagree.
//
// Each entry is checksummed (crc32c) and keyed by a per-stream big-endian
// sequence, so history reads are ordered prefix scans.
package activity
