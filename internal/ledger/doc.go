// Package ledger is the host-ledger collaborator the vesting engine runs
// on: asset accounts per mint, escrow accounts bound to the stream that
// owns them, and atomic read-your-writes transactions over Pebble.
//
// Keys:
//
//	acct/{mint}/{owner}   8-byte big-endian balance
//	escrow/{address}      JSON Escrow binding
//	mint/{mint}           JSON mint.Meta
package ledger
