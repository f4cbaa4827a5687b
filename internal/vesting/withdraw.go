package vesting

// crankDue reports whether an automatic withdrawal may be triggered at now.
// The cadence is measured from the last withdrawal, or from Start before the
// first one.
func (s *Stream) crankDue(now uint64) bool {
	ref := max(s.LastWithdrawnAt, s.Start)
	return now >= ref && now-ref >= s.WithdrawFrequency
}

// Withdraw releases unlocked value to the recipient. requested == 0 asks for
// everything available; a positive request is capped at availability and
// fails with ErrNothingToWithdraw only when nothing is available. Any caller
// other than the recipient is treated as an automatic-withdrawal crank and
// may only ask for the maximum once the withdraw frequency has elapsed.
func Withdraw(s Stream, caller Address, requested, now uint64) (Transition, error) {
	if err := openStream(s); err != nil {
		return Transition{}, err
	}
	if err := s.Authorize(OpWithdraw, caller); err != nil {
		return Transition{}, err
	}
	if caller != s.Recipient {
		if requested != 0 {
			return Transition{}, wrap(ErrUnauthorized, "automatic withdrawal must request the maximum")
		}
		if !s.crankDue(now) {
			return Transition{}, wrap(ErrUnauthorized, "automatic withdrawal not due before %d", max(s.LastWithdrawnAt, s.Start)+s.WithdrawFrequency)
		}
	}

	available := s.Withdrawable(now)
	payout := available
	if requested != 0 {
		if available == 0 {
			return Transition{}, wrap(ErrNothingToWithdraw, "requested %d, available 0", requested)
		}
		payout = min(requested, available)
	}

	t := Transition{Op: OpWithdraw}
	if payout == 0 {
		t.Stream = s
		t.NoOp = true
		return t, nil
	}

	fee := s.Fees.WithdrawalFee(payout, s.HasPartner())
	t.move(s.Escrow, s.Recipient, payout-fee.Total(), "withdraw")
	t.payFees(s.Escrow, &s, fee)
	t.Payout = payout

	s.WithdrawnAmount += payout
	s.LastWithdrawnAt = now
	if s.WithdrawnAmount == s.NetAmountDeposited {
		s.close(now)
	}
	t.Stream = s
	return t, nil
}
