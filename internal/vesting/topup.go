package vesting

// Topup adds amount to the escrowed principal. The release rate is fixed, so
// the extra value extends the stream's end rather than speeding it up.
func Topup(s Stream, caller Address, amount uint64) (Transition, error) {
	if err := openStream(s); err != nil {
		return Transition{}, err
	}
	if err := s.Authorize(OpTopup, caller); err != nil {
		return Transition{}, err
	}
	if amount == 0 {
		return Transition{}, wrap(ErrInvalidArgument, "top-up amount is zero")
	}
	net, ok := addChecked(s.NetAmountDeposited, amount)
	if !ok {
		return Transition{}, wrap(ErrInvalidSchedule, "deposit overflows")
	}
	s.NetAmountDeposited = net
	if _, ok := s.end(); !ok {
		return Transition{}, wrap(ErrInvalidSchedule, "schedule end overflows after top-up")
	}
	s.Topups++

	t := Transition{Op: OpTopup, Amount: amount}
	t.move(s.Sender, s.Escrow, amount, "topup")
	t.Stream = s
	return t, nil
}
