package activity

import "encoding/binary"

// Layout, sorted per stream:
//
//	act/{stream}/m               last sequence, 8 bytes big-endian
//	act/{stream}/e/{seq_be8}     encoded entry

var (
	actPrefix  = []byte("act/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
)

func keyMeta(stream string) []byte {
	k := make([]byte, 0, len(actPrefix)+len(stream)+len(metaSuffix))
	k = append(k, actPrefix...)
	k = append(k, stream...)
	return append(k, metaSuffix...)
}

func keyEntry(stream string, seq uint64) []byte {
	k := make([]byte, 0, len(actPrefix)+len(stream)+len(entrySeg)+8)
	k = append(k, actPrefix...)
	k = append(k, stream...)
	k = append(k, entrySeg...)
	return binary.BigEndian.AppendUint64(k, seq)
}
