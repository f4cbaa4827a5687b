package id

import (
	"testing"
	"time"
)

func pinClock(t *testing.T, ms *int64) {
	t.Helper()
	NowMs = func() int64 { return *ms }
	t.Cleanup(func() { NowMs = func() int64 { return time.Now().UnixMilli() } })
}

func TestOrderingMonotonic(t *testing.T) {
	now := int64(1000)
	pinClock(t, &now)
	g := NewGenerator()

	a, b := g.Next(), g.Next()
	if a.Compare(b) >= 0 || a.String() >= b.String() {
		t.Fatalf("expected a<b: %s %s", a, b)
	}
}

func TestClockRegressionGuard(t *testing.T) {
	now := int64(1000)
	pinClock(t, &now)
	g := NewGenerator()

	a := g.Next()
	now = 900
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected b>a despite clock regression")
	}
	if b.Time().UnixMilli() != 1000 {
		t.Fatalf("regressed id time = %d", b.Time().UnixMilli())
	}
}

func TestSequenceExhaustionWaitsNextMs(t *testing.T) {
	NowMs = func() int64 { return 2000 }
	t.Cleanup(func() { NowMs = func() int64 { return time.Now().UnixMilli() } })
	g := NewGenerator()
	g.lastMs = 2000
	g.seq = 0xffff

	done := make(chan ID)
	go func() { done <- g.Next() }()
	time.AfterFunc(10*time.Millisecond, func() { NowMs = func() int64 { return 2001 } })

	select {
	case id := <-done:
		if id.Time().UnixMilli() != 2001 {
			t.Fatalf("expected id in next ms, got %d", id.Time().UnixMilli())
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting for sequence rollover")
	}
}

func TestParseRoundTrip(t *testing.T) {
	g := NewGenerator()
	a := g.Next()
	s := a.String()
	if len(s) != EncodedLen {
		t.Fatalf("len = %d", len(s))
	}
	b, err := Parse(s)
	if err != nil || b != a {
		t.Fatalf("Parse(%s) = %v, %v", s, b, err)
	}
	if _, err := Parse("not-an-id"); err == nil {
		t.Fatalf("expected error")
	}
}
