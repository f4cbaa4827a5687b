package vesting

// Op names a stream operation.
type Op string

const (
	OpCreate   Op = "create"
	OpWithdraw Op = "withdraw"
	OpCancel   Op = "cancel"
	OpTransfer Op = "transfer"
	OpTopup    Op = "topup"
)

// Authorize is the single permission check for every operation on an
// existing stream. Withdraw by a non-recipient is only admitted here as an
// automatic-withdrawal crank; Withdraw applies the cadence and amount rules.
func (s *Stream) Authorize(op Op, caller Address) error {
	if caller.IsZero() {
		return wrap(ErrUnauthorized, "%s: no signer", op)
	}
	isSender := caller == s.Sender
	isRecipient := caller == s.Recipient
	var ok bool
	switch op {
	case OpWithdraw:
		ok = isRecipient || s.Flags.Has(AutomaticWithdrawal)
	case OpCancel:
		ok = (isSender && s.Flags.Has(CancelableBySender)) ||
			(isRecipient && s.Flags.Has(CancelableByRecipient))
	case OpTransfer:
		ok = (isSender && s.Flags.Has(TransferableBySender)) ||
			(isRecipient && s.Flags.Has(TransferableByRecipient))
	case OpTopup:
		ok = isSender && s.Flags.Has(CanTopup)
	}
	if !ok {
		return wrap(ErrUnauthorized, "%s not permitted for %s", op, caller)
	}
	return nil
}
