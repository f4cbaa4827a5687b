package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/rzbill/vesta/internal/mint"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
)

var (
	// ErrUnknownMint is returned when an account references an unregistered
	// asset.
	ErrUnknownMint = errors.New("ledger: unknown mint")
	// ErrEscrowOwnership is returned for an escrow debit that does not come
	// from the owning stream, or when an escrow address is already taken.
	ErrEscrowOwnership = errors.New("ledger: escrow not owned by stream")
	// ErrReadOnly is returned by writes inside View.
	ErrReadOnly = errors.New("ledger: read-only transaction")
)

// Ledger is the single-node asset ledger. Writers are serialized by one
// lock; each Update commits all of its mutations in a single batch or none.
type Ledger struct {
	db *pebblestore.DB
	mu sync.Mutex
}

// New returns a Ledger over db.
func New(db *pebblestore.DB) *Ledger { return &Ledger{db: db} }

// Update runs fn in a read-write transaction. If fn returns an error the
// batch is discarded and no mutation is visible.
func (l *Ledger) Update(ctx context.Context, fn func(*Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.db.NewIndexedBatch()
	defer b.Close()
	if err := fn(&Tx{r: b, b: b}); err != nil {
		return err
	}
	if b.Empty() {
		return nil
	}
	return l.db.CommitBatch(ctx, b)
}

// View runs fn against a consistent snapshot. Writes fail with ErrReadOnly.
func (l *Ledger) View(fn func(*Tx) error) error {
	snap := l.db.NewSnapshot()
	defer snap.Close()
	return fn(&Tx{r: snap})
}

// Tx is a ledger transaction. Reads observe the transaction's own writes.
type Tx struct {
	r pebblestore.Reader
	b *pebble.Batch
}

// Get returns the raw value under key or pebblestore.ErrNotFound.
func (tx *Tx) Get(key []byte) ([]byte, error) { return pebblestore.Get(tx.r, key) }

// Reader exposes the transaction's read view for iterator-based readers.
func (tx *Tx) Reader() pebblestore.Reader { return tx.r }

// Set writes a raw record.
func (tx *Tx) Set(key, value []byte) error {
	if tx.b == nil {
		return ErrReadOnly
	}
	return tx.b.Set(key, value, nil)
}

// Scan iterates raw records under prefix.
func (tx *Tx) Scan(prefix []byte, fn func(key, value []byte) (bool, error)) error {
	return pebblestore.Scan(tx.r, prefix, fn)
}

// RegisterMint declares an asset type.
func (tx *Tx) RegisterMint(m vesting.Address, decimals uint8) (mint.Meta, error) {
	if tx.b == nil {
		return mint.Meta{}, ErrReadOnly
	}
	return mint.Ensure(tx.b, m, decimals)
}

// Mint returns the registered asset or ErrUnknownMint.
func (tx *Tx) Mint(m vesting.Address) (mint.Meta, error) {
	meta, err := mint.Lookup(tx.r, m)
	if errors.Is(err, mint.ErrNotFound) {
		return meta, errors.Join(ErrUnknownMint, err)
	}
	return meta, err
}

// Mints lists the registered assets.
func (tx *Tx) Mints() ([]mint.Meta, error) { return mint.List(tx.r) }
