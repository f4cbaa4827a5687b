package vesting

// TransferRecipient reassigns the stream to newRecipient. No value moves and
// the schedule's progress carries over unchanged.
func TransferRecipient(s Stream, caller, newRecipient Address) (Transition, error) {
	if err := openStream(s); err != nil {
		return Transition{}, err
	}
	if err := newRecipient.Validate(); err != nil {
		return Transition{}, wrap(ErrInvalidRecipient, "%v", err)
	}
	if newRecipient == s.Sender {
		return Transition{}, wrap(ErrInvalidRecipient, "new recipient is the sender")
	}
	if newRecipient == s.Recipient {
		return Transition{}, wrap(ErrInvalidRecipient, "stream already belongs to %s", newRecipient)
	}
	if newRecipient == s.Escrow {
		return Transition{}, wrap(ErrInvalidRecipient, "new recipient is the escrow account")
	}
	if err := s.Authorize(OpTransfer, caller); err != nil {
		return Transition{}, err
	}
	t := Transition{Op: OpTransfer, PreviousRecipient: s.Recipient}
	s.Recipient = newRecipient
	t.Stream = s
	return t, nil
}
