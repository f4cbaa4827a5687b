package id

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"
)

// Size is the byte length of an ID.
const Size = 16

// ID is a sortable 128-bit identifier: [6 bytes ms timestamp][2 bytes
// sequence][8 bytes random]. The random tail keeps IDs from separate
// processes sharing a data directory from colliding.
type ID [Size]byte

// Zero is the unset ID.
var Zero ID

var encoding = base32.NewEncoding("0123456789abcdefghjkmnpqrstvwxyz").WithPadding(base32.NoPadding)

// EncodedLen is the length of String's output.
var EncodedLen = encoding.EncodedLen(Size)

// String returns the lowercase Crockford base32 form, which sorts like the
// raw bytes.
func (i ID) String() string { return encoding.EncodeToString(i[:]) }

// Time returns the millisecond timestamp embedded in the ID.
func (i ID) Time() time.Time {
	var b [8]byte
	copy(b[2:], i[:6])
	return time.UnixMilli(int64(binary.BigEndian.Uint64(b[:])))
}

// Compare returns -1, 0 or 1.
func (i ID) Compare(other ID) int {
	for idx := 0; idx < Size; idx++ {
		switch {
		case i[idx] < other[idx]:
			return -1
		case i[idx] > other[idx]:
			return 1
		}
	}
	return 0
}

func (i ID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *ID) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*i = p
	return nil
}

// Parse decodes the String form.
func Parse(s string) (ID, error) {
	var out ID
	if len(s) != EncodedLen {
		return out, fmt.Errorf("id: %q has length %d, want %d", s, len(s), EncodedLen)
	}
	b, err := encoding.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("id: %q: %w", s, err)
	}
	copy(out[:], b)
	return out, nil
}

// NowMs returns the current time in milliseconds since the Unix epoch.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Generator produces strictly increasing IDs within one process.
type Generator struct {
	mu     sync.Mutex
	lastMs int64
	seq    uint16
}

func NewGenerator() *Generator { return &Generator{} }

// Next returns a new ID. A regressing clock is pinned to the last seen
// millisecond; when the sequence is exhausted Next waits for the clock.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := max(NowMs(), g.lastMs)
	switch {
	case ms != g.lastMs:
		g.seq = 0
	case g.seq == math.MaxUint16:
		for ms <= g.lastMs {
			time.Sleep(time.Millisecond / 8)
			ms = NowMs()
		}
		g.seq = 0
	default:
		g.seq++
	}
	g.lastMs = ms

	var id ID
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(ms))
	copy(id[0:6], ts[2:])
	binary.BigEndian.PutUint16(id[6:8], g.seq)
	_, _ = rand.Read(id[8:])
	return id
}
