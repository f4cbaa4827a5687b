package vesting

// Movement is one value transfer between two asset accounts of the stream's
// mint. Operations only describe movements; the ledger executes them.
type Movement struct {
	From   Address `json:"from"`
	To     Address `json:"to"`
	Amount uint64  `json:"amount"`
	Memo   string  `json:"memo"`
}

// Transition is the complete, validated effect of one operation: the new
// record and every movement that must commit together with it.
type Transition struct {
	Op        Op
	Stream    Stream
	Movements []Movement

	// Payout is the gross amount released to the recipient (withdraw, cancel).
	Payout uint64
	// Refund is the unvested principal returned to the sender (cancel).
	Refund uint64
	// Amount is the value added by a top-up.
	Amount uint64
	// Fee is the fee charged by this operation.
	Fee FeeSplit
	// PreviousRecipient is set by a recipient transfer.
	PreviousRecipient Address
	// NoOp marks a withdraw that found nothing available in max mode.
	NoOp bool
}

// Debit sums the value the transition takes out of addr. Legs paid back to
// addr itself move nothing and are left out.
func (t Transition) Debit(addr Address) uint64 {
	var total uint64
	for _, m := range t.Movements {
		if m.From == addr && m.To != addr {
			total += m.Amount
		}
	}
	return total
}

func (t *Transition) move(from, to Address, amount uint64, memo string) {
	if amount == 0 {
		return
	}
	t.Movements = append(t.Movements, Movement{From: from, To: to, Amount: amount, Memo: memo})
}

// payFees routes fee to the treasury and partner from the given account.
func (t *Transition) payFees(from Address, s *Stream, fee FeeSplit) {
	partner := s.Partner
	if partner.IsZero() {
		partner = s.Treasury
	}
	t.move(from, s.Treasury, fee.Treasury, "treasury_fee")
	t.move(from, partner, fee.Partner, "partner_fee")
	s.TreasuryFeeTotal += fee.Treasury
	s.PartnerFeeTotal += fee.Partner
	t.Fee = fee
}

func openStream(s Stream) error {
	if s.Closed {
		return wrap(ErrStreamClosed, "stream %s", s.ID)
	}
	return nil
}
