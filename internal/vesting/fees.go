package vesting

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10_000

// FeePolicy prices a stream in basis points. Creation fees are charged on
// top of the escrowed principal; withdrawal fees are carved out of each
// payout. The policy is snapshotted into the stream at creation.
type FeePolicy struct {
	TreasuryBps         uint32 `json:"treasury_bps"`
	PartnerBps          uint32 `json:"partner_bps"`
	WithdrawTreasuryBps uint32 `json:"withdraw_treasury_bps,omitempty"`
	WithdrawPartnerBps  uint32 `json:"withdraw_partner_bps,omitempty"`
}

// FeeSplit is the fee owed to each beneficiary for one event.
type FeeSplit struct {
	Treasury uint64 `json:"treasury"`
	Partner  uint64 `json:"partner"`
}

// Total returns the combined fee. Both parts are bounded by the amount they
// were computed on, so the sum cannot overflow for withdrawal fees; creation
// fees are re-checked by the caller.
func (f FeeSplit) Total() uint64 { return f.Treasury + f.Partner }

// Validate ensures neither event can charge more than 100%.
func (p FeePolicy) Validate() error {
	if uint64(p.TreasuryBps)+uint64(p.PartnerBps) > BpsDenominator {
		return wrap(ErrInvalidArgument, "creation fee exceeds 100%%")
	}
	if uint64(p.WithdrawTreasuryBps)+uint64(p.WithdrawPartnerBps) > BpsDenominator {
		return wrap(ErrInvalidArgument, "withdrawal fee exceeds 100%%")
	}
	return nil
}

// CreationFee prices a deposit of amount. Without a partner the partner
// share is routed to the treasury.
func (p FeePolicy) CreationFee(amount uint64, hasPartner bool) FeeSplit {
	return split(amount, p.TreasuryBps, p.PartnerBps, hasPartner)
}

// WithdrawalFee prices a payout of amount.
func (p FeePolicy) WithdrawalFee(amount uint64, hasPartner bool) FeeSplit {
	return split(amount, p.WithdrawTreasuryBps, p.WithdrawPartnerBps, hasPartner)
}

func split(amount uint64, treasuryBps, partnerBps uint32, hasPartner bool) FeeSplit {
	if amount == 0 {
		return FeeSplit{}
	}
	fs := FeeSplit{
		Treasury: mulDiv(amount, uint64(min(treasuryBps, BpsDenominator)), BpsDenominator),
		Partner:  mulDiv(amount, uint64(min(partnerBps, BpsDenominator)), BpsDenominator),
	}
	if !hasPartner {
		fs.Treasury += fs.Partner
		fs.Partner = 0
	}
	return fs
}
