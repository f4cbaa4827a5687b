package vesting

// CreateParams carries everything needed to open a stream. Addresses for the
// escrow account and the stream ID are assigned by the caller.
type CreateParams struct {
	ID        string
	Sender    Address
	Recipient Address
	Mint      Address
	Escrow    Address
	Partner   Address
	Treasury  Address

	Start              uint64
	Period             uint64
	AmountPerPeriod    uint64
	Cliff              uint64
	CliffAmount        uint64
	NetAmountDeposited uint64
	WithdrawFrequency  uint64
	Name               string
	Flags              Flags
	Fees               FeePolicy
}

// Create validates p against the ledger time now and returns the initial
// record plus the deposit and fee movements out of the sender's account.
// A zero Cliff means the cliff is at Start.
func Create(p CreateParams, now uint64) (Transition, error) {
	for _, a := range []Address{p.Sender, p.Mint, p.Escrow, p.Treasury} {
		if err := a.Validate(); err != nil {
			return Transition{}, err
		}
	}
	if err := p.Recipient.Validate(); err != nil {
		return Transition{}, wrap(ErrInvalidRecipient, "%v", err)
	}
	if !p.Partner.IsZero() {
		if err := p.Partner.Validate(); err != nil {
			return Transition{}, err
		}
	}
	if p.Sender == p.Recipient {
		return Transition{}, wrap(ErrInvalidRecipient, "sender and recipient are both %s", p.Sender)
	}
	if p.Recipient == p.Escrow || p.Sender == p.Escrow || p.Partner == p.Escrow {
		return Transition{}, wrap(ErrInvalidRecipient, "escrow account collides with a participant")
	}
	name, err := NewLabel(p.Name)
	if err != nil {
		return Transition{}, err
	}
	if err := p.Fees.Validate(); err != nil {
		return Transition{}, err
	}
	if p.Start < now {
		return Transition{}, wrap(ErrInvalidSchedule, "start %d is before ledger time %d", p.Start, now)
	}
	cliff := p.Cliff
	if cliff == 0 {
		cliff = p.Start
	}
	s := Stream{
		ID:                 p.ID,
		Sender:             p.Sender,
		Recipient:          p.Recipient,
		Mint:               p.Mint,
		Escrow:             p.Escrow,
		Partner:            p.Partner,
		Treasury:           p.Treasury,
		Start:              p.Start,
		Period:             p.Period,
		AmountPerPeriod:    p.AmountPerPeriod,
		Cliff:              cliff,
		CliffAmount:        p.CliffAmount,
		NetAmountDeposited: p.NetAmountDeposited,
		WithdrawFrequency:  p.WithdrawFrequency,
		Name:               name,
		Flags:              p.Flags,
		Fees:               p.Fees,
		CreatedAt:          now,
	}
	if err := s.validateSchedule(); err != nil {
		return Transition{}, err
	}
	if s.Flags.Has(AutomaticWithdrawal) && s.WithdrawFrequency == 0 {
		s.WithdrawFrequency = s.Period
	}

	fee := s.Fees.CreationFee(s.NetAmountDeposited, s.HasPartner())
	if _, ok := addChecked(s.NetAmountDeposited, fee.Total()); !ok {
		return Transition{}, wrap(ErrInvalidSchedule, "deposit plus fees overflows")
	}

	t := Transition{Op: OpCreate}
	t.move(s.Sender, s.Escrow, s.NetAmountDeposited, "deposit")
	t.payFees(s.Sender, &s, fee)
	t.Stream = s
	return t, nil
}
