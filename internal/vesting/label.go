package vesting

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// LabelSize is the fixed byte width of a stream name.
const LabelSize = 64

// Label is a fixed-size, zero-padded stream name.
type Label [LabelSize]byte

// NewLabel builds a Label from s. Names longer than LabelSize bytes are
// rejected rather than truncated so a multi-byte rune is never split.
func NewLabel(s string) (Label, error) {
	var l Label
	if len(s) > LabelSize {
		return l, wrap(ErrInvalidArgument, "name longer than %d bytes", LabelSize)
	}
	copy(l[:], s)
	return l, nil
}

// String returns the name without its zero padding.
func (l Label) String() string {
	return string(bytes.TrimRight(l[:], "\x00"))
}

func (l Label) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

func (l *Label) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	nl, err := NewLabel(s)
	if err != nil {
		return err
	}
	*l = nl
	return nil
}

// Address identifies a participant, mint or program-owned account.
type Address string

// MaxAddressLen bounds addresses so they stay usable inside storage keys.
const MaxAddressLen = 128

// Validate rejects the zero address and characters that would break the
// '/'-separated storage keyspace.
func (a Address) Validate() error {
	if a == "" {
		return wrap(ErrInvalidArgument, "empty address")
	}
	if len(a) > MaxAddressLen {
		return wrap(ErrInvalidArgument, "address %.16q... too long", string(a))
	}
	if strings.IndexFunc(string(a), func(r rune) bool { return r == '/' || unicode.IsSpace(r) || !unicode.IsPrint(r) }) >= 0 {
		return wrap(ErrInvalidArgument, "address %q has invalid characters", string(a))
	}
	return nil
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == "" }
