package pebblestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = pebble.ErrNotFound

// IsNotFound reports whether err is a missing-key error.
func IsNotFound(err error) bool { return errors.Is(err, pebble.ErrNotFound) }

// FsyncMode defines durability behavior for committed batches.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways syncs the WAL on every commit.
	FsyncModeAlways
	// FsyncModeInterval lets Pebble coalesce WAL syncs within FsyncInterval.
	FsyncModeInterval
	// FsyncModeNever leaves syncing to Pebble.
	FsyncModeNever
)

func (m FsyncMode) String() string {
	switch m {
	case FsyncModeAlways:
		return "always"
	case FsyncModeInterval:
		return "interval"
	case FsyncModeNever:
		return "never"
	default:
		return "unspecified"
	}
}

// ParseFsyncMode maps always, interval and never to a FsyncMode. The empty
// string is FsyncModeUnspecified.
func ParseFsyncMode(s string) (FsyncMode, error) {
	switch strings.ToLower(s) {
	case "":
		return FsyncModeUnspecified, nil
	case "always":
		return FsyncModeAlways, nil
	case "interval":
		return FsyncModeInterval, nil
	case "never":
		return FsyncModeNever, nil
	default:
		return FsyncModeUnspecified, fmt.Errorf("pebble: unknown fsync mode %q", s)
	}
}

// Options configures the store.
type Options struct {
	DataDir       string
	Fsync         FsyncMode
	FsyncInterval time.Duration
	// PebbleOptions allows advanced tuning. If nil, defaults are used.
	PebbleOptions *pebble.Options
	Metrics       MetricsHook
}

// DB wraps a Pebble database with the configured fsync policy.
type DB struct {
	inner     *pebble.DB
	writeSync bool
	metrics   MetricsHook
}

// Open creates or opens the database in opts.DataDir.
func Open(opts Options) (*DB, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebble: Options.DataDir is required")
	}
	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	switch opts.Fsync {
	case FsyncModeAlways, FsyncModeNever:
	case FsyncModeInterval:
		interval := opts.FsyncInterval
		if interval <= 0 {
			interval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return interval }
	default:
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, err
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &DB{inner: inner, writeSync: opts.Fsync == FsyncModeAlways, metrics: metrics}, nil
}

func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// NewSnapshot returns a consistent read view. Callers must Close it.
func (db *DB) NewSnapshot() *pebble.Snapshot { return db.inner.NewSnapshot() }

// NewBatch returns a write-only batch.
func (db *DB) NewBatch() *pebble.Batch { return db.inner.NewBatch() }

// NewIndexedBatch returns a batch whose reads observe its own pending
// writes layered over the database.
func (db *DB) NewIndexedBatch() *pebble.Batch { return db.inner.NewIndexedBatch() }

// CommitBatch commits b with the configured fsync policy. A cancelled ctx
// aborts before anything is written.
func (db *DB) CommitBatch(ctx context.Context, b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebble: nil batch")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	ops, size := int(b.Count()), b.Len()
	syncMode := pebble.NoSync
	if db.writeSync {
		syncMode = pebble.Sync
	}
	err := b.Commit(syncMode)
	if err == nil {
		db.metrics.ObserveBatchCommit(time.Since(start), ops, size)
	}
	return err
}

// Set writes a single key.
func (db *DB) Set(key, value []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	start := time.Now()
	if err := db.CommitBatch(context.Background(), b); err != nil {
		return err
	}
	db.metrics.ObserveWrite(time.Since(start), len(key)+len(value))
	return nil
}

// Delete removes a single key.
func (db *DB) Delete(key []byte) error {
	b := db.inner.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	return db.CommitBatch(context.Background(), b)
}

// Get copies the value for key. Missing keys return ErrNotFound.
func (db *DB) Get(key []byte) ([]byte, error) {
	start := time.Now()
	buf, err := Get(db.inner, key)
	if err != nil {
		return nil, err
	}
	db.metrics.ObserveRead(time.Since(start), len(buf))
	return buf, nil
}

func (db *DB) NewIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return db.inner.NewIter(opts)
}

// Reader is anything keys can be read from: the database, a snapshot or an
// indexed batch.
type Reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
	NewIter(o *pebble.IterOptions) (*pebble.Iterator, error)
}

// Get copies the value for key out of r.
func Get(r Reader, key []byte) ([]byte, error) {
	val, closer, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

// Scan calls fn for every key with the given prefix in ascending order until
// fn returns false or an error. Key and value are only valid during the call.
func Scan(r Reader, prefix []byte, fn func(key, value []byte) (bool, error)) error {
	it, err := r.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: PrefixEnd(prefix)})
	if err != nil {
		return err
	}
	defer it.Close()
	for ok := it.First(); ok; ok = it.Next() {
		if !bytes.HasPrefix(it.Key(), prefix) {
			break
		}
		cont, err := fn(it.Key(), it.Value())
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return it.Error()
}

// PrefixEnd returns the smallest key greater than every key with prefix, or
// nil when no such key exists.
func PrefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
