package vesting

import (
	"encoding/json"
	"strings"
)

// Flags holds the six capability bits fixed at stream creation.
type Flags uint8

const (
	CancelableBySender Flags = 1 << iota
	CancelableByRecipient
	AutomaticWithdrawal
	TransferableBySender
	TransferableByRecipient
	CanTopup
)

var flagNames = []struct {
	bit  Flags
	name string
}{
	{CancelableBySender, "cancelable_by_sender"},
	{CancelableByRecipient, "cancelable_by_recipient"},
	{AutomaticWithdrawal, "automatic_withdrawal"},
	{TransferableBySender, "transferable_by_sender"},
	{TransferableByRecipient, "transferable_by_recipient"},
	{CanTopup, "can_topup"},
}

// Has reports whether every bit in f2 is set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// String lists the set capabilities joined by '|'.
func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.bit) {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Names returns the set capabilities as a name->bool map, used by the JSON
// and CEL views.
func (f Flags) Names() map[string]bool {
	out := make(map[string]bool, len(flagNames))
	for _, fn := range flagNames {
		out[fn.name] = f.Has(fn.bit)
	}
	return out
}

// FlagsFromNames builds Flags from a name->bool map. Unknown names are
// rejected.
func FlagsFromNames(m map[string]bool) (Flags, error) {
	var f Flags
	for name, on := range m {
		found := false
		for _, fn := range flagNames {
			if fn.name == name {
				found = true
				if on {
					f |= fn.bit
				}
				break
			}
		}
		if !found {
			return 0, wrap(ErrInvalidArgument, "unknown capability %q", name)
		}
	}
	return f, nil
}

func (f Flags) MarshalJSON() ([]byte, error) { return json.Marshal(f.Names()) }

func (f *Flags) UnmarshalJSON(b []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	nf, err := FlagsFromNames(m)
	if err != nil {
		return err
	}
	*f = nf
	return nil
}
