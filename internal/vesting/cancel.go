package vesting

// Cancel terminates the stream: the vested but unwithdrawn amount goes to the
// recipient and the unvested principal back to the sender, leaving the
// escrow empty. The two legs always sum to the escrow balance.
func Cancel(s Stream, caller Address, now uint64) (Transition, error) {
	if err := openStream(s); err != nil {
		return Transition{}, err
	}
	if err := s.Authorize(OpCancel, caller); err != nil {
		return Transition{}, err
	}

	// A caller-supplied clock that ran backwards must not claw back value
	// that was already withdrawn.
	vested := max(s.Unlocked(now), s.WithdrawnAmount)
	toRecipient := vested - s.WithdrawnAmount
	toSender := s.NetAmountDeposited - vested

	t := Transition{Op: OpCancel, Payout: toRecipient, Refund: toSender}
	fee := s.Fees.WithdrawalFee(toRecipient, s.HasPartner())
	t.move(s.Escrow, s.Recipient, toRecipient-fee.Total(), "cancel_recipient")
	t.payFees(s.Escrow, &s, fee)
	t.move(s.Escrow, s.Sender, toSender, "cancel_refund")

	s.WithdrawnAmount = vested
	s.RefundedAmount = toSender
	if toRecipient > 0 {
		s.LastWithdrawnAt = now
	}
	s.CanceledAt = now
	s.close(now)
	t.Stream = s
	return t, nil
}
