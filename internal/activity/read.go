package activity

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
)

// Token is an opaque resume position: the next sequence to read.
type Token uint64

// ReadOptions bounds a history read.
type ReadOptions struct {
	// Start is inclusive; zero begins at the first (or, reversed, last) entry.
	Start   Token
	Limit   int
	Reverse bool
	// Kinds, when non-empty, keeps only the listed kinds.
	Kinds []Kind
}

// Read returns up to Limit events of stream and the token to resume from,
// which is zero once the history is exhausted. Entries failing their
// checksum are reported as errors.
func Read(r pebblestore.Reader, stream string, opts ReadOptions) ([]Event, Token, error) {
	low := keyEntry(stream, 0)
	iter, err := r.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: pebblestore.PrefixEnd(low[:len(low)-8])})
	if err != nil {
		return nil, 0, err
	}
	defer iter.Close()

	var valid bool
	switch {
	case opts.Reverse && opts.Start == 0:
		valid = iter.Last()
	case opts.Reverse:
		valid = iter.SeekLT(keyEntry(stream, uint64(opts.Start)+1))
	default:
		valid = iter.SeekGE(keyEntry(stream, uint64(opts.Start)))
	}
	step := iter.Next
	if opts.Reverse {
		step = iter.Prev
	}

	var out []Event
	for ; valid && (opts.Limit <= 0 || len(out) < opts.Limit); valid = step() {
		seq := binary.BigEndian.Uint64(iter.Key()[len(low)-8:])
		kind, payload, ok := decodeRecord(iter.Value())
		if !ok {
			return out, 0, fmt.Errorf("activity: stream %s seq %d: corrupt entry", stream, seq)
		}
		if !wanted(opts.Kinds, Kind(kind)) {
			continue
		}
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return out, 0, fmt.Errorf("activity: stream %s seq %d: %w", stream, seq, err)
		}
		ev.Seq = seq
		out = append(out, ev)
	}
	if err := iter.Error(); err != nil {
		return out, 0, err
	}
	var next Token
	if valid {
		next = Token(binary.BigEndian.Uint64(iter.Key()[len(low)-8:]))
	}
	return out, next, nil
}

func wanted(kinds []Kind, k Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}
