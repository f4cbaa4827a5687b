package streamsvc

import (
	"github.com/rzbill/vesta/internal/activity"
	"github.com/rzbill/vesta/internal/vesting"
)

// CreateRequest holds the caller-supplied parameters of a new stream. The
// sender is always the authenticated caller.
type CreateRequest struct {
	Recipient       vesting.Address `json:"recipient"`
	Mint            vesting.Address `json:"mint"`
	Partner         vesting.Address `json:"partner,omitempty"`
	Start           uint64          `json:"start_time"`
	Period          uint64          `json:"period"`
	AmountPerPeriod uint64          `json:"amount_per_period"`
	// Cliff defaults to Start when zero.
	Cliff              uint64        `json:"cliff"`
	CliffAmount        uint64        `json:"cliff_amount"`
	NetAmountDeposited uint64        `json:"net_amount_deposited"`
	WithdrawFrequency  uint64        `json:"withdraw_frequency"`
	Name               string        `json:"name"`
	Flags              vesting.Flags `json:"flags"`
	// IdempotencyKey, scoped to the sender, makes retries of the same
	// create return the original stream.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// View is a stream record with its schedule evaluated at Now.
type View struct {
	vesting.Stream
	Now           uint64         `json:"now"`
	Unlocked      uint64         `json:"unlocked"`
	Withdrawable  uint64         `json:"withdrawable"`
	End           uint64         `json:"end"`
	EscrowBalance uint64         `json:"escrow_balance"`
	Status        vesting.Status `json:"status"`
}

func newView(s vesting.Stream, now uint64) View {
	return View{
		Stream:        s,
		Now:           now,
		Unlocked:      s.Unlocked(now),
		Withdrawable:  s.Withdrawable(now),
		End:           s.End(),
		EscrowBalance: s.EscrowBalance(),
		Status:        s.Status(now),
	}
}

// Result reports the effect of one stream operation.
type Result struct {
	Stream View             `json:"stream"`
	Payout uint64           `json:"payout,omitempty"`
	Refund uint64           `json:"refund,omitempty"`
	Amount uint64           `json:"amount,omitempty"`
	Fee    vesting.FeeSplit `json:"fee"`
	// NoOp is set when a maximum withdrawal found nothing available.
	NoOp bool `json:"noop,omitempty"`
	// Replayed is set when a create matched an earlier idempotency key.
	Replayed bool `json:"replayed,omitempty"`
	// Seq is the activity sequence recorded for the operation.
	Seq uint64 `json:"seq,omitempty"`
}

// HistoryPage is one page of a stream's activity.
type HistoryPage struct {
	Events []activity.Event `json:"events"`
	Next   activity.Token   `json:"next,omitempty"`
}
