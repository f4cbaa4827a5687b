package streamsvc

// Keyspace:
// - stream/{id}              JSON vesting.Stream
// - idem/{sender}/{key}      stream id created under an idempotency key

var (
	streamPrefix = []byte("stream/")
	idemPrefix   = []byte("idem/")
)

func streamKey(id string) []byte {
	b := make([]byte, 0, len(streamPrefix)+len(id))
	b = append(b, streamPrefix...)
	return append(b, id...)
}

func idemKey(sender, key string) []byte {
	b := make([]byte, 0, len(idemPrefix)+len(sender)+1+len(key))
	b = append(b, idemPrefix...)
	b = append(b, sender...)
	b = append(b, '/')
	return append(b, key...)
}
