package streamsvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rzbill/vesta/internal/activity"
	cfgpkg "github.com/rzbill/vesta/internal/config"
	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/runtime"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
	logpkg "github.com/rzbill/vesta/pkg/log"
	"github.com/stretchr/testify/require"
)

const t0 = 1_700_000_000

type fakeClock struct {
	mu  sync.Mutex
	now int64
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(c.now, 0)
}

func (c *fakeClock) Set(offset int64) {
	c.mu.Lock()
	c.now = t0 + offset
	c.mu.Unlock()
}

func newServiceForTest(t *testing.T, mutate ...func(*cfgpkg.Config)) (*Service, *runtime.Runtime, *fakeClock) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Mints = []cfgpkg.MintConfig{{Name: "usdc", Decimals: 6}}
	for _, m := range mutate {
		m(&cfg)
	}
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	require.NoError(t, rt.Ledger().Update(context.Background(), func(tx *ledger.Tx) error {
		_, err := tx.Credit("usdc", "alice", 10_000)
		return err
	}))

	clock := &fakeClock{now: t0}
	svc := NewWithLogger(rt, logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{})))
	svc.SetClock(clock.Now)
	return svc, rt, clock
}

func referenceRequest() CreateRequest {
	return CreateRequest{
		Recipient:          "bob",
		Mint:               "usdc",
		Start:              t0,
		Cliff:              t0 + 100,
		CliffAmount:        1000,
		Period:             10,
		AmountPerPeriod:    100,
		NetAmountDeposited: 2000,
		Name:               "seed",
		Flags:              vesting.CancelableBySender | vesting.TransferableByRecipient | vesting.CanTopup,
	}
}

func balanceOf(t *testing.T, rt *runtime.Runtime, owner vesting.Address) uint64 {
	t.Helper()
	var bal uint64
	require.NoError(t, rt.Ledger().View(func(tx *ledger.Tx) (err error) {
		bal, err = tx.Balance("usdc", owner)
		return err
	}))
	return bal
}

func TestCreateAndWithdraw(t *testing.T) {
	svc, rt, clock := newServiceForTest(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, "alice", referenceRequest())
	require.NoError(t, err)
	id := res.Stream.ID
	require.Equal(t, uint64(8000), balanceOf(t, rt, "alice"))
	require.Equal(t, uint64(2000), balanceOf(t, rt, res.Stream.Escrow))
	require.Equal(t, vesting.StatusCliff, res.Stream.Status)

	clock.Set(99)
	_, err = svc.Withdraw(ctx, "bob", id, 10)
	require.ErrorIs(t, err, vesting.ErrNothingToWithdraw)

	clock.Set(130)
	w, err := svc.Withdraw(ctx, "bob", id, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1300), w.Payout)
	require.Equal(t, uint64(1300), balanceOf(t, rt, "bob"))
	require.Equal(t, uint64(700), balanceOf(t, rt, res.Stream.Escrow))

	again, err := svc.Withdraw(ctx, "bob", id, 0)
	require.NoError(t, err)
	require.True(t, again.NoOp)
	require.Equal(t, uint64(1300), balanceOf(t, rt, "bob"))

	_, err = svc.Withdraw(ctx, "mallory", id, 0)
	require.ErrorIs(t, err, vesting.ErrUnauthorized)

	clock.Set(1000)
	w, err = svc.Withdraw(ctx, "bob", id, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(700), w.Payout)
	require.True(t, w.Stream.Closed)
	require.Zero(t, balanceOf(t, rt, res.Stream.Escrow))

	page, err := svc.History(ctx, id, activity.ReadOptions{})
	require.NoError(t, err)
	require.Len(t, page.Events, 3)
	require.Equal(t, activity.KindCreated, page.Events[0].Kind)
	require.Equal(t, activity.KindWithdrawn, page.Events[1].Kind)
	require.Equal(t, uint64(1300), page.Events[1].Payout)
}

func TestCancelScenario(t *testing.T) {
	svc, rt, clock := newServiceForTest(t)
	ctx := context.Background()
	res, err := svc.Create(ctx, "alice", referenceRequest())
	require.NoError(t, err)

	clock.Set(130)
	_, err = svc.Cancel(ctx, "bob", res.Stream.ID)
	require.ErrorIs(t, err, vesting.ErrUnauthorized)

	c, err := svc.Cancel(ctx, "alice", res.Stream.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(1300), c.Payout)
	require.Equal(t, uint64(700), c.Refund)
	require.Equal(t, uint64(1300), balanceOf(t, rt, "bob"))
	require.Equal(t, uint64(8700), balanceOf(t, rt, "alice"))
	require.Zero(t, balanceOf(t, rt, res.Stream.Escrow))
	require.Equal(t, vesting.StatusCanceled, c.Stream.Status)

	_, err = svc.Withdraw(ctx, "bob", res.Stream.ID, 0)
	require.ErrorIs(t, err, vesting.ErrStreamClosed)
}

func TestTransferThenWithdraw(t *testing.T) {
	svc, rt, clock := newServiceForTest(t)
	ctx := context.Background()
	res, err := svc.Create(ctx, "alice", referenceRequest())
	require.NoError(t, err)

	clock.Set(50)
	_, err = svc.Transfer(ctx, "bob", res.Stream.ID, "alice")
	require.ErrorIs(t, err, vesting.ErrInvalidRecipient)
	tr, err := svc.Transfer(ctx, "bob", res.Stream.ID, "carol")
	require.NoError(t, err)
	require.Equal(t, vesting.Address("carol"), tr.Stream.Recipient)

	clock.Set(130)
	w, err := svc.Withdraw(ctx, "carol", res.Stream.ID, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1300), w.Payout)
	require.Equal(t, uint64(1300), balanceOf(t, rt, "carol"))
	require.Zero(t, balanceOf(t, rt, "bob"))
}

func TestEscrowRefusedAsPayoutDestination(t *testing.T) {
	svc, rt, clock := newServiceForTest(t)
	ctx := context.Background()
	require.NoError(t, rt.Ledger().Update(ctx, func(tx *ledger.Tx) error {
		_, err := tx.Credit("usdc", "mallory", 5000)
		return err
	}))
	victim, err := svc.Create(ctx, "alice", referenceRequest())
	require.NoError(t, err)

	req := referenceRequest()
	req.Recipient = victim.Stream.Escrow
	_, err = svc.Create(ctx, "mallory", req)
	require.ErrorIs(t, err, vesting.ErrInvalidRecipient)

	req = referenceRequest()
	req.Partner = victim.Stream.Escrow
	_, err = svc.Create(ctx, "mallory", req)
	require.ErrorIs(t, err, vesting.ErrInvalidRecipient)
	require.Equal(t, uint64(5000), balanceOf(t, rt, "mallory"))

	other, err := svc.Create(ctx, "mallory", referenceRequest())
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, "bob", other.Stream.ID, victim.Stream.Escrow)
	require.ErrorIs(t, err, vesting.ErrInvalidRecipient)

	clock.Set(150)
	_, err = svc.Withdraw(ctx, "bob", other.Stream.ID, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(2000), balanceOf(t, rt, victim.Stream.Escrow))

	w, err := svc.Withdraw(ctx, "bob", victim.Stream.ID, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1500), w.Payout)
	c, err := svc.Cancel(ctx, "alice", victim.Stream.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(500), c.Refund)
	require.Zero(t, balanceOf(t, rt, victim.Stream.Escrow))
}

func TestTopupExtendsDuration(t *testing.T) {
	svc, rt, clock := newServiceForTest(t)
	ctx := context.Background()
	res, err := svc.Create(ctx, "alice", referenceRequest())
	require.NoError(t, err)

	clock.Set(150)
	_, err = svc.Topup(ctx, "alice", res.Stream.ID, 0)
	require.ErrorIs(t, err, vesting.ErrInvalidArgument)
	_, err = svc.Topup(ctx, "alice", res.Stream.ID, 9000)
	require.ErrorIs(t, err, vesting.ErrInsufficientFunds)

	up, err := svc.Topup(ctx, "alice", res.Stream.ID, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(3000), up.Stream.NetAmountDeposited)
	require.Equal(t, uint64(t0+300), up.Stream.End)
	require.Equal(t, uint64(7000), balanceOf(t, rt, "alice"))

	clock.Set(230)
	w, err := svc.Withdraw(ctx, "bob", res.Stream.ID, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(2300), w.Payout)
}

func TestCreateRejectionsLeaveBalancesUntouched(t *testing.T) {
	svc, rt, _ := newServiceForTest(t)
	ctx := context.Background()

	req := referenceRequest()
	req.NetAmountDeposited = 20_000
	_, err := svc.Create(ctx, "alice", req)
	require.ErrorIs(t, err, vesting.ErrInsufficientFunds)

	req = referenceRequest()
	req.Mint = "doge"
	_, err = svc.Create(ctx, "alice", req)
	require.ErrorIs(t, err, ledger.ErrUnknownMint)

	req = referenceRequest()
	req.Start = t0 - 1
	_, err = svc.Create(ctx, "alice", req)
	require.ErrorIs(t, err, vesting.ErrInvalidSchedule)

	_, err = svc.Create(ctx, "", referenceRequest())
	require.ErrorIs(t, err, vesting.ErrUnauthorized)

	require.Equal(t, uint64(10_000), balanceOf(t, rt, "alice"))
	all, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCreateIdempotencyKey(t *testing.T) {
	svc, rt, _ := newServiceForTest(t)
	ctx := context.Background()
	req := referenceRequest()
	req.IdempotencyKey = "grant-42"

	first, err := svc.Create(ctx, "alice", req)
	require.NoError(t, err)
	second, err := svc.Create(ctx, "alice", req)
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Stream.ID, second.Stream.ID)
	require.Equal(t, uint64(8000), balanceOf(t, rt, "alice"))
}

func TestFeesRouteToTreasuryAndPartner(t *testing.T) {
	svc, rt, clock := newServiceForTest(t, func(c *cfgpkg.Config) {
		c.Fees = cfgpkg.FeeConfig{Treasury: "0.25", Partner: "0.25", WithdrawTreasury: "1"}
	})
	ctx := context.Background()

	res, err := svc.Create(ctx, "alice", referenceRequest())
	require.NoError(t, err)
	require.Equal(t, vesting.FeeSplit{Treasury: 10}, res.Fee, "partner share falls back to the treasury")
	require.Equal(t, uint64(10_000-2010), balanceOf(t, rt, "alice"))

	require.NoError(t, rt.Ledger().Update(ctx, func(tx *ledger.Tx) error {
		return tx.SetPartnerFees("wallet-co", vesting.FeePolicy{TreasuryBps: 10, PartnerBps: 40})
	}))
	req := referenceRequest()
	req.Partner = "wallet-co"
	res, err = svc.Create(ctx, "alice", req)
	require.NoError(t, err)
	require.Equal(t, vesting.FeeSplit{Treasury: 2, Partner: 8}, res.Fee)
	require.Equal(t, uint64(8), balanceOf(t, rt, "wallet-co"))
	require.Equal(t, uint64(12), balanceOf(t, rt, "treasury"))

	clock.Set(100)
	w, err := svc.Withdraw(ctx, "bob", res.Stream.ID, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), w.Payout)
	require.Zero(t, w.Fee.Total(), "partner policy has no withdrawal fee")
}

func TestTreasuryFundedCreateSkipsOwnFee(t *testing.T) {
	svc, rt, _ := newServiceForTest(t, func(c *cfgpkg.Config) {
		c.Fees = cfgpkg.FeeConfig{Treasury: "1"}
	})
	ctx := context.Background()
	require.NoError(t, rt.Ledger().Update(ctx, func(tx *ledger.Tx) error {
		_, err := tx.Credit("usdc", "treasury", 2000)
		return err
	}))

	res, err := svc.Create(ctx, "treasury", referenceRequest())
	require.NoError(t, err)
	require.Equal(t, vesting.FeeSplit{Treasury: 20}, res.Fee)
	require.Zero(t, balanceOf(t, rt, "treasury"))
	require.Equal(t, uint64(2000), balanceOf(t, rt, res.Stream.Escrow))
}

func TestListFilter(t *testing.T) {
	svc, _, clock := newServiceForTest(t)
	ctx := context.Background()
	a, err := svc.Create(ctx, "alice", referenceRequest())
	require.NoError(t, err)
	req := referenceRequest()
	req.Recipient = "dave"
	_, err = svc.Create(ctx, "alice", req)
	require.NoError(t, err)

	clock.Set(130)
	got, err := svc.List(ctx, `stream.recipient == "bob" && stream.withdrawable >= 1300`, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, a.Stream.ID, got[0].ID)

	got, err = svc.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = svc.List(ctx, "stream.recipient +", 0)
	require.ErrorIs(t, err, vesting.ErrInvalidArgument)

	_, err = svc.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.History(ctx, "missing", activity.ReadOptions{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentWithdrawalsPayOnce(t *testing.T) {
	svc, rt, clock := newServiceForTest(t)
	ctx := context.Background()
	res, err := svc.Create(ctx, "alice", referenceRequest())
	require.NoError(t, err)
	clock.Set(130)

	var wg sync.WaitGroup
	payouts := make([]uint64, 8)
	for i := range payouts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.Withdraw(ctx, "bob", res.Stream.ID, 0)
			if err == nil {
				payouts[i] = r.Payout
			}
		}(i)
	}
	wg.Wait()

	var total uint64
	for _, p := range payouts {
		total += p
	}
	require.Equal(t, uint64(1300), total)
	require.Equal(t, uint64(1300), balanceOf(t, rt, "bob"))
}

func TestLedgerTimeNeverDecreases(t *testing.T) {
	svc, _, clock := newServiceForTest(t)
	clock.Set(500)
	require.Equal(t, uint64(t0+500), svc.ledgerTime())
	clock.Set(100)
	require.Equal(t, uint64(t0+500), svc.ledgerTime())
	clock.Set(600)
	require.Equal(t, uint64(t0+600), svc.ledgerTime())
}
