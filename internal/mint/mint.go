package mint

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
)

// MaxDecimals bounds the display precision of an asset.
const MaxDecimals = 18

var (
	// ErrNotFound is returned by Lookup for an unregistered mint.
	ErrNotFound = errors.New("mint: not found")
	// ErrConflict is returned when a mint is re-registered with different
	// parameters.
	ErrConflict = errors.New("mint: already registered with different decimals")
)

// Meta describes an asset type.
type Meta struct {
	Mint        vesting.Address `json:"mint"`
	Decimals    uint8           `json:"decimals"`
	CreatedAtMs int64           `json:"createdAtMs"`
}

var metaPrefix = []byte("mint/")

func metaKey(m vesting.Address) []byte {
	k := make([]byte, 0, len(metaPrefix)+len(m))
	k = append(k, metaPrefix...)
	return append(k, m...)
}

// Ensure registers a mint in the indexed batch b if absent and returns the
// effective record. Registering an existing mint with the same decimals is a
// no-op.
func Ensure(b *pebble.Batch, m vesting.Address, decimals uint8) (Meta, error) {
	if err := m.Validate(); err != nil {
		return Meta{}, err
	}
	if decimals > MaxDecimals {
		return Meta{}, fmt.Errorf("%w: decimals %d above %d", vesting.ErrInvalidArgument, decimals, MaxDecimals)
	}
	existing, err := Lookup(b, m)
	switch {
	case err == nil:
		if existing.Decimals != decimals {
			return existing, fmt.Errorf("%w: %s has %d", ErrConflict, m, existing.Decimals)
		}
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return Meta{}, err
	}
	meta := Meta{Mint: m, Decimals: decimals, CreatedAtMs: time.Now().UnixMilli()}
	enc, err := json.Marshal(meta)
	if err != nil {
		return Meta{}, err
	}
	if err := b.Set(metaKey(m), enc, nil); err != nil {
		return Meta{}, err
	}
	return meta, nil
}

// Lookup returns the registered mint.
func Lookup(r pebblestore.Reader, m vesting.Address) (Meta, error) {
	b, err := pebblestore.Get(r, metaKey(m))
	if err != nil {
		if pebblestore.IsNotFound(err) {
			return Meta{}, fmt.Errorf("%w: %s", ErrNotFound, m)
		}
		return Meta{}, err
	}
	var meta Meta
	if err := json.Unmarshal(b, &meta); err != nil {
		return Meta{}, fmt.Errorf("mint %s: corrupt record: %w", m, err)
	}
	return meta, nil
}

// List returns every registered mint in key order.
func List(r pebblestore.Reader) ([]Meta, error) {
	var out []Meta
	err := pebblestore.Scan(r, metaPrefix, func(_, v []byte) (bool, error) {
		var meta Meta
		if err := json.Unmarshal(v, &meta); err != nil {
			return false, err
		}
		out = append(out, meta)
		return true, nil
	})
	return out, err
}
