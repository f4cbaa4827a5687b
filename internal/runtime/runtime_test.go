package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/rzbill/vesta/internal/config"
	"github.com/rzbill/vesta/internal/ledger"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
)

func TestOpenCloseHealth(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestOpenRegistersConfiguredMints(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Mints = []cfgpkg.MintConfig{{Name: "usdc", Decimals: 6}}
	cfg.Fees.Treasury = "0.5"
	dir := t.TempDir()
	for i := 0; i < 2; i++ { // reopening re-registers idempotently
		rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways, Config: cfg})
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if rt.FeePolicy().TreasuryBps != 50 {
			t.Fatalf("fee policy = %+v", rt.FeePolicy())
		}
		err = rt.Ledger().View(func(tx *ledger.Tx) error {
			_, err := tx.Mint("usdc")
			return err
		})
		if err != nil {
			t.Fatalf("mint not registered: %v", err)
		}
		if rt.StorageStats().Commits == 0 && i == 0 {
			t.Fatalf("expected registration commit to be counted")
		}
		_ = rt.Close()
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Treasury = ""
	if _, err := Open(Options{DataDir: t.TempDir(), Config: cfg}); err == nil {
		t.Fatalf("expected config error")
	}
}
