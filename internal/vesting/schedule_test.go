package vesting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// referenceStream is the stream used throughout the examples: cliff at 100
// releasing 1000, then 100 every 10 seconds, 2000 deposited.
func referenceStream() Stream {
	return Stream{
		ID:                 "ref",
		Sender:             "alice",
		Recipient:          "bob",
		Mint:               "usdc",
		Escrow:             "escrow:ref",
		Treasury:           "treasury",
		Start:              0,
		Cliff:              100,
		CliffAmount:        1000,
		Period:             10,
		AmountPerPeriod:    100,
		NetAmountDeposited: 2000,
	}
}

func TestUnlockedReferenceSchedule(t *testing.T) {
	s := referenceStream()
	tests := []struct {
		now  uint64
		want uint64
	}{
		{0, 0},
		{99, 0},
		{100, 1000},
		{109, 1000},
		{110, 1100},
		{130, 1300},
		{199, 1900},
		{200, 2000},
		{1000, 2000},
		{math.MaxUint64, 2000},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, s.Unlocked(tt.now), "unlocked at %d", tt.now)
		require.Equal(t, tt.want, s.Withdrawable(tt.now), "withdrawable at %d", tt.now)
	}
}

func TestUnlockedBeforeStart(t *testing.T) {
	s := referenceStream()
	s.Start = 50
	s.Cliff = 50
	require.Zero(t, s.Unlocked(49))
	require.Equal(t, uint64(1000), s.Unlocked(50))
}

func TestWithdrawableSubtractsWithdrawn(t *testing.T) {
	s := referenceStream()
	s.WithdrawnAmount = 1200
	require.Zero(t, s.Withdrawable(110), "withdrawn ahead of a lagging clock clamps at zero")
	require.Equal(t, uint64(100), s.Withdrawable(130))
	require.Equal(t, uint64(800), s.Withdrawable(5000))
}

func TestUnlockedSaturatesInsteadOfWrapping(t *testing.T) {
	s := referenceStream()
	s.AmountPerPeriod = math.MaxUint64 / 2
	s.Period = 1
	s.NetAmountDeposited = math.MaxUint64
	require.Equal(t, uint64(math.MaxUint64), s.Unlocked(110))
}

func TestEnd(t *testing.T) {
	s := referenceStream()
	require.Equal(t, uint64(200), s.End())

	s.NetAmountDeposited = 2050
	require.Equal(t, uint64(210), s.End(), "a partial final tick still needs a whole period")

	s.CliffAmount = s.NetAmountDeposited
	require.Equal(t, uint64(100), s.End())

	s.CliffAmount = 0
	s.AmountPerPeriod = 0
	require.Equal(t, uint64(math.MaxUint64), s.End())
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Stream)
	}{
		{"zero deposit", func(s *Stream) { s.NetAmountDeposited = 0 }},
		{"zero period", func(s *Stream) { s.Period = 0 }},
		{"cliff before start", func(s *Stream) { s.Start = 200 }},
		{"cliff amount above deposit", func(s *Stream) { s.CliffAmount = 2001 }},
		{"zero rate with remainder", func(s *Stream) { s.AmountPerPeriod = 0 }},
		{"end overflows", func(s *Stream) {
			s.Cliff = math.MaxUint64 - 5
			s.Start = s.Cliff
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := referenceStream()
			tt.mutate(&s)
			require.ErrorIs(t, s.validateSchedule(), ErrInvalidSchedule)
		})
	}

	s := referenceStream()
	s.AmountPerPeriod = 0
	s.CliffAmount = s.NetAmountDeposited
	require.NoError(t, s.validateSchedule(), "a cliff covering the deposit needs no rate")
}

func genStream(t *rapid.T) Stream {
	start := rapid.Uint64Range(0, 1_000_000).Draw(t, "start")
	net := rapid.Uint64Range(1, 1<<40).Draw(t, "net")
	return Stream{
		ID:                 "gen",
		Sender:             "alice",
		Recipient:          "bob",
		Mint:               "usdc",
		Escrow:             "escrow:gen",
		Treasury:           "treasury",
		Start:              start,
		Cliff:              start + rapid.Uint64Range(0, 100_000).Draw(t, "cliffOffset"),
		CliffAmount:        rapid.Uint64Range(0, net).Draw(t, "cliffAmount"),
		Period:             rapid.Uint64Range(1, 10_000).Draw(t, "period"),
		AmountPerPeriod:    rapid.Uint64Range(1, 1<<40).Draw(t, "amountPerPeriod"),
		NetAmountDeposited: net,
	}
}

func TestUnlockedMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genStream(t)
		t1 := rapid.Uint64().Draw(t, "t1")
		t2 := rapid.Uint64Range(t1, math.MaxUint64).Draw(t, "t2")
		u1, u2 := s.Unlocked(t1), s.Unlocked(t2)
		if u1 > u2 {
			t.Fatalf("unlocked(%d)=%d > unlocked(%d)=%d", t1, u1, t2, u2)
		}
		if u2 > s.NetAmountDeposited {
			t.Fatalf("unlocked %d exceeds deposit %d", u2, s.NetAmountDeposited)
		}
	})
}

func TestUnlockedReachesDepositAtEnd(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := genStream(t)
		end := s.End()
		if got := s.Unlocked(end); got != s.NetAmountDeposited {
			t.Fatalf("unlocked at end %d = %d, want %d", end, got, s.NetAmountDeposited)
		}
		if end > s.Cliff {
			if got := s.Unlocked(end - 1); got >= s.NetAmountDeposited {
				t.Fatalf("deposit already unlocked before end %d", end)
			}
		}
	})
}
