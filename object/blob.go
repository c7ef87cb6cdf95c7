package object

// Blob is a versioned file's raw byte contents. The payload encoding is
// the identity function: the blob IS the file bytes (§4.1).
type Blob struct {
	Content []byte
}

// Encode returns the blob's payload bytes (pre-framing).
func (b *Blob) Encode() []byte { return b.Content }

// DecodeBlob wraps raw payload bytes read back from the store.
func DecodeBlob(payload []byte) *Blob {
	return &Blob{Content: payload}
}
