package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	cfgpkg "github.com/rzbill/vesta/internal/config"
	"github.com/rzbill/vesta/internal/ledger"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Runtime wires storage, the ledger and configuration for a single node.
type Runtime struct {
	db     *pebblestore.DB
	ledger *ledger.Ledger
	stats  *pebblestore.Counters
	config cfgpkg.Config
	fees   vesting.FeePolicy
}

// Open validates the configuration, opens storage and registers the
// configured mints.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	fees, err := opts.Config.Fees.Policy()
	if err != nil {
		return nil, err
	}
	stats := &pebblestore.Counters{}
	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval, Metrics: stats})
	if err != nil {
		return nil, err
	}
	rt := &Runtime{db: db, ledger: ledger.New(db), stats: stats, config: opts.Config, fees: fees}
	if len(opts.Config.Mints) > 0 {
		err := rt.ledger.Update(context.Background(), func(tx *ledger.Tx) error {
			for _, m := range opts.Config.Mints {
				if _, err := tx.RegisterMint(vesting.Address(m.Name), m.Decimals); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("register mints: %w", err)
		}
	}
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth verifies the store is readable.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// Ledger returns the asset ledger.
func (r *Runtime) Ledger() *ledger.Ledger { return r.ledger }

// StorageStats reports commit counters since Open.
func (r *Runtime) StorageStats() pebblestore.Stats { return r.stats.Snapshot() }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// FeePolicy is the default fee policy for streams without a partner
// override.
func (r *Runtime) FeePolicy() vesting.FeePolicy { return r.fees }
