package activity

import (
	"encoding/binary"
	"hash/crc32"
)

// Entry encoding: varint kindLen | kind | payload | crc32c(kind|payload).
// The kind is kept outside the JSON payload so readers can filter without
// decoding it.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func encodeRecord(kind, payload []byte) []byte {
	out := make([]byte, 0, binary.MaxVarintLen64+len(kind)+len(payload)+4)
	out = binary.AppendUvarint(out, uint64(len(kind)))
	out = append(out, kind...)
	out = append(out, payload...)
	crc := crc32.Update(0, castagnoli, kind)
	crc = crc32.Update(crc, castagnoli, payload)
	return binary.BigEndian.AppendUint32(out, crc)
}

// decodeRecord returns views into b; callers copy what they keep.
func decodeRecord(b []byte) (kind, payload []byte, ok bool) {
	if len(b) < 1+4 {
		return nil, nil, false
	}
	klen, n := binary.Uvarint(b)
	if n <= 0 || uint64(len(b)-n-4) < klen {
		return nil, nil, false
	}
	kind = b[n : n+int(klen)]
	payload = b[n+int(klen) : len(b)-4]
	crc := crc32.Update(0, castagnoli, kind)
	crc = crc32.Update(crc, castagnoli, payload)
	if crc != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return nil, nil, false
	}
	return kind, payload, true
}
