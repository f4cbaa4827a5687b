package accountsvc

import (
	"context"
	"testing"

	cfgpkg "github.com/rzbill/vesta/internal/config"
	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/mint"
	"github.com/rzbill/vesta/internal/runtime"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
	"github.com/stretchr/testify/require"
)

func newServiceForTest(t *testing.T) *Service {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Fees.Treasury = "0.1"
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return New(rt)
}

func TestRegisterFundBalance(t *testing.T) {
	svc := newServiceForTest(t)
	ctx := context.Background()

	_, err := svc.Fund(ctx, "usdc", "alice", 100)
	require.ErrorIs(t, err, ledger.ErrUnknownMint)

	_, err = svc.RegisterMint(ctx, "usdc", 6)
	require.NoError(t, err)
	_, err = svc.RegisterMint(ctx, "usdc", 9)
	require.ErrorIs(t, err, mint.ErrConflict)

	acct, err := svc.Fund(ctx, "usdc", "alice", 100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), acct.Balance)
	acct, err = svc.Fund(ctx, "usdc", "alice", 50)
	require.NoError(t, err)
	require.Equal(t, uint64(150), acct.Balance)

	_, err = svc.Fund(ctx, "usdc", "alice", 0)
	require.ErrorIs(t, err, vesting.ErrInvalidArgument)

	acct, err = svc.Balance(ctx, "usdc", "nobody")
	require.NoError(t, err)
	require.Zero(t, acct.Balance)

	mints, err := svc.Mints(ctx)
	require.NoError(t, err)
	require.Len(t, mints, 1)
}

func TestPartnerFeesFallBackToDefault(t *testing.T) {
	svc := newServiceForTest(t)
	ctx := context.Background()

	p, ok, err := svc.PartnerFees(ctx, "wallet-co")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, uint32(10), p.TreasuryBps)

	want := vesting.FeePolicy{TreasuryBps: 5, PartnerBps: 20}
	require.NoError(t, svc.SetPartnerFees(ctx, "wallet-co", want))
	p, ok, err = svc.PartnerFees(ctx, "wallet-co")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, p)
}
