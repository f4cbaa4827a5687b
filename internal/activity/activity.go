package activity

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	"github.com/rzbill/vesta/internal/vesting"
)

// Kind names a recorded stream event.
type Kind string

const (
	KindCreated     Kind = "created"
	KindWithdrawn   Kind = "withdrawn"
	KindCanceled    Kind = "canceled"
	KindTransferred Kind = "transferred"
	KindToppedUp    Kind = "topped_up"
)

// KindOf maps an operation to the event it records.
func KindOf(op vesting.Op) Kind {
	switch op {
	case vesting.OpCreate:
		return KindCreated
	case vesting.OpWithdraw:
		return KindWithdrawn
	case vesting.OpCancel:
		return KindCanceled
	case vesting.OpTransfer:
		return KindTransferred
	default:
		return KindToppedUp
	}
}

// Event is one entry of a stream's history.
type Event struct {
	Seq               uint64             `json:"seq"`
	Kind              Kind               `json:"kind"`
	Stream            string             `json:"stream"`
	Caller            vesting.Address    `json:"caller"`
	At                uint64             `json:"at"`
	Payout            uint64             `json:"payout,omitempty"`
	Refund            uint64             `json:"refund,omitempty"`
	Amount            uint64             `json:"amount,omitempty"`
	Fee               vesting.FeeSplit   `json:"fee"`
	Recipient         vesting.Address    `json:"recipient,omitempty"`
	PreviousRecipient vesting.Address    `json:"previous_recipient,omitempty"`
	Movements         []vesting.Movement `json:"movements,omitempty"`
}

// FromTransition builds the event recording t.
func FromTransition(t vesting.Transition, caller vesting.Address, at uint64) Event {
	return Event{
		Kind:              KindOf(t.Op),
		Stream:            t.Stream.ID,
		Caller:            caller,
		At:                at,
		Payout:            t.Payout,
		Refund:            t.Refund,
		Amount:            t.Amount,
		Fee:               t.Fee,
		Recipient:         t.Stream.Recipient,
		PreviousRecipient: t.PreviousRecipient,
		Movements:         t.Movements,
	}
}

// Store is the transactional key/value surface Append writes through; the
// ledger transaction satisfies it so history commits with the operation.
type Store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// Append assigns the next sequence of ev.Stream and writes the entry and
// the updated sequence into s.
func Append(s Store, ev Event) (uint64, error) {
	if ev.Stream == "" {
		return 0, fmt.Errorf("activity: event without stream")
	}
	last, err := lastSeq(s, ev.Stream)
	if err != nil {
		return 0, err
	}
	ev.Seq = last + 1
	payload, err := json.Marshal(ev)
	if err != nil {
		return 0, err
	}
	if err := s.Set(keyEntry(ev.Stream, ev.Seq), encodeRecord([]byte(ev.Kind), payload)); err != nil {
		return 0, err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], ev.Seq)
	if err := s.Set(keyMeta(ev.Stream), meta[:]); err != nil {
		return 0, err
	}
	return ev.Seq, nil
}

func lastSeq(s Store, stream string) (uint64, error) {
	b, err := s.Get(keyMeta(stream))
	if err != nil {
		if pebblestore.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	if len(b) < 8 {
		return 0, fmt.Errorf("activity: stream %s: corrupt meta", stream)
	}
	return binary.BigEndian.Uint64(b[:8]), nil
}
