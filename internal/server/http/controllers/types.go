package controllers

import "github.com/rzbill/vesta/internal/vesting"

type withdrawReq struct {
	// Amount of zero withdraws everything available.
	Amount uint64 `json:"amount"`
}

type transferReq struct {
	NewRecipient vesting.Address `json:"new_recipient"`
}

type topupReq struct {
	Amount uint64 `json:"amount"`
}

type registerMintReq struct {
	Mint     vesting.Address `json:"mint"`
	Decimals uint8           `json:"decimals"`
}

type fundReq struct {
	Mint   vesting.Address `json:"mint"`
	Owner  vesting.Address `json:"owner"`
	Amount uint64          `json:"amount"`
}

// partnerFeesJSON carries fee percentages as decimal strings, "0.25" being
// a quarter of a percent.
type partnerFeesJSON struct {
	Partner             vesting.Address `json:"partner,omitempty"`
	TreasuryPct         string          `json:"treasury_percent"`
	PartnerPct          string          `json:"partner_percent"`
	WithdrawTreasuryPct string          `json:"withdraw_treasury_percent,omitempty"`
	WithdrawPartnerPct  string          `json:"withdraw_partner_percent,omitempty"`
	Override            bool            `json:"override"`
}
