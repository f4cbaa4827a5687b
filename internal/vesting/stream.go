package vesting

import "fmt"

// Stream is the durable record of one escrow agreement. Amounts are integer
// asset units; timestamps are ledger seconds.
type Stream struct {
	ID        string  `json:"id"`
	Sender    Address `json:"sender"`
	Recipient Address `json:"recipient"`
	Mint      Address `json:"mint"`
	Escrow    Address `json:"escrow"`
	Partner   Address `json:"partner,omitempty"`
	Treasury  Address `json:"treasury"`

	Start              uint64    `json:"start_time"`
	Period             uint64    `json:"period"`
	AmountPerPeriod    uint64    `json:"amount_per_period"`
	Cliff              uint64    `json:"cliff"`
	CliffAmount        uint64    `json:"cliff_amount"`
	NetAmountDeposited uint64    `json:"net_amount_deposited"`
	WithdrawFrequency  uint64    `json:"withdraw_frequency"`
	Name               Label     `json:"name"`
	Flags              Flags     `json:"flags"`
	Fees               FeePolicy `json:"fees"`

	WithdrawnAmount  uint64 `json:"withdrawn_amount"`
	RefundedAmount   uint64 `json:"refunded_amount"`
	LastWithdrawnAt  uint64 `json:"last_withdrawn_at"`
	Closed           bool   `json:"closed"`
	CreatedAt        uint64 `json:"created_at"`
	CanceledAt       uint64 `json:"canceled_at,omitempty"`
	ClosedAt         uint64 `json:"closed_at,omitempty"`
	TreasuryFeeTotal uint64 `json:"treasury_fee_total"`
	PartnerFeeTotal  uint64 `json:"partner_fee_total"`
	Topups           uint32 `json:"topups,omitempty"`
}

// HasPartner reports whether fees are split with a partner.
func (s *Stream) HasPartner() bool { return !s.Partner.IsZero() }

// EscrowBalance is the value the escrow account must hold for this stream.
func (s *Stream) EscrowBalance() uint64 {
	return subFloor(subFloor(s.NetAmountDeposited, s.WithdrawnAmount), s.RefundedAmount)
}

// CheckInvariants verifies the record against itself and, when known, the
// escrow account balance.
func (s *Stream) CheckInvariants(escrowBalance uint64) error {
	if s.WithdrawnAmount > s.NetAmountDeposited {
		return fmt.Errorf("stream %s: withdrawn %d exceeds deposit %d", s.ID, s.WithdrawnAmount, s.NetAmountDeposited)
	}
	if s.CliffAmount > s.NetAmountDeposited {
		return fmt.Errorf("stream %s: cliff amount %d exceeds deposit %d", s.ID, s.CliffAmount, s.NetAmountDeposited)
	}
	if s.WithdrawnAmount+s.RefundedAmount > s.NetAmountDeposited {
		return fmt.Errorf("stream %s: released %d+%d exceeds deposit %d", s.ID, s.WithdrawnAmount, s.RefundedAmount, s.NetAmountDeposited)
	}
	if s.Sender == s.Recipient {
		return fmt.Errorf("stream %s: sender equals recipient", s.ID)
	}
	if escrowBalance != s.EscrowBalance() {
		return fmt.Errorf("stream %s: escrow holds %d, record expects %d", s.ID, escrowBalance, s.EscrowBalance())
	}
	return nil
}

// Status is a coarse lifecycle label derived from the record and now.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCliff     Status = "cliff"
	StatusStreaming Status = "streaming"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusClosed    Status = "closed"
)

// Status reports where the stream stands at now.
func (s *Stream) Status(now uint64) Status {
	switch {
	case s.Closed && s.CanceledAt != 0:
		return StatusCanceled
	case s.Closed:
		return StatusClosed
	case now < s.Start:
		return StatusScheduled
	case now < s.Cliff:
		return StatusCliff
	case s.Unlocked(now) >= s.NetAmountDeposited:
		return StatusCompleted
	default:
		return StatusStreaming
	}
}

func (s *Stream) close(now uint64) {
	s.Closed = true
	s.ClosedAt = now
}
