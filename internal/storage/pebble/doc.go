// Package pebblestore wraps Pebble with an fsync policy, indexed batches
// for read-your-writes transactions, prefix scans and commit metrics.
package pebblestore
