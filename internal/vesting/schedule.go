package vesting

import "math"

// Unlocked returns the cumulative amount released by the schedule at now.
// It is non-decreasing in now and never exceeds NetAmountDeposited. The
// cliff gates everything, including the cliff tranche, until its timestamp.
func (s *Stream) Unlocked(now uint64) uint64 {
	if now < s.Start || now < s.Cliff {
		return 0
	}
	if s.Period == 0 {
		return min(s.CliffAmount, s.NetAmountDeposited)
	}
	ticks := (now - s.Cliff) / s.Period
	streamed, ok := mulChecked(ticks, s.AmountPerPeriod)
	if !ok {
		return s.NetAmountDeposited
	}
	total, ok := addChecked(s.CliffAmount, streamed)
	if !ok {
		return s.NetAmountDeposited
	}
	return min(total, s.NetAmountDeposited)
}

// Withdrawable is the unlocked amount not yet released to the recipient.
func (s *Stream) Withdrawable(now uint64) uint64 {
	return subFloor(s.Unlocked(now), s.WithdrawnAmount)
}

// End returns the first timestamp at which the whole deposit is unlocked.
// It returns math.MaxUint64 when the schedule can never complete.
func (s *Stream) End() uint64 {
	end, ok := s.end()
	if !ok {
		return math.MaxUint64
	}
	return end
}

func (s *Stream) end() (uint64, bool) {
	if s.CliffAmount >= s.NetAmountDeposited {
		return s.Cliff, true
	}
	if s.Period == 0 || s.AmountPerPeriod == 0 {
		return 0, false
	}
	periods := ceilDiv(s.NetAmountDeposited-s.CliffAmount, s.AmountPerPeriod)
	span, ok := mulChecked(periods, s.Period)
	if !ok {
		return 0, false
	}
	return addChecked(s.Cliff, span)
}

// validateSchedule checks the immutable schedule parameters against the
// current deposit.
func (s *Stream) validateSchedule() error {
	if s.NetAmountDeposited == 0 {
		return wrap(ErrInvalidSchedule, "deposit must be positive")
	}
	if s.Period == 0 {
		return wrap(ErrInvalidSchedule, "period must be positive")
	}
	if s.Cliff < s.Start {
		return wrap(ErrInvalidSchedule, "cliff %d precedes start %d", s.Cliff, s.Start)
	}
	if s.CliffAmount > s.NetAmountDeposited {
		return wrap(ErrInvalidSchedule, "cliff amount %d exceeds deposit %d", s.CliffAmount, s.NetAmountDeposited)
	}
	if s.AmountPerPeriod == 0 && s.CliffAmount < s.NetAmountDeposited {
		return wrap(ErrInvalidSchedule, "amount per period must be positive unless the cliff covers the deposit")
	}
	if _, ok := s.end(); !ok {
		return wrap(ErrInvalidSchedule, "schedule end overflows")
	}
	return nil
}
