// Package object implements gud's content-addressed object model: the
// framed blob/tree/commit encoding, SHA-1 hashing, and the tree builder and
// reader that translate between a flat path snapshot and a tree object
// graph.
package object

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/pjbgf/sha1cd"
)

// HashSize is the width, in bytes, of a gud object identifier.
const HashSize = 20

// HexSize is the width, in hex characters, of a gud object identifier.
const HexSize = HashSize * 2

// ErrMalformedHash is returned when a string cannot be parsed as a hash.
var ErrMalformedHash = errors.New("gud: malformed hash")

// Hash identifies an object by the SHA-1 digest of its framed content.
// The hash function is collision-detecting (sha1cd) rather than bare
// crypto/sha1, but the on-disk layout never assumes anything about the
// algorithm beyond its 20-byte length (see DESIGN.md).
type Hash [HashSize]byte

// ZeroHash is the hash with all bytes zero; it never identifies a real
// object. ReadTree treats it as the root of the empty "no commits yet"
// tree.
var ZeroHash Hash

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == ZeroHash }

// String returns the 40-character lowercase hex encoding of h.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Dir and File split a hash into the fan-out directory component and the
// remaining filename, per §4.1's `<aa>/<38-hex>` layout.
func (h Hash) Dir() string  { return h.String()[:2] }
func (h Hash) File() string { return h.String()[2:] }

// NewHash parses a 40-character lowercase hex string into a Hash.
func NewHash(s string) (Hash, error) {
	var h Hash
	if len(s) != HexSize {
		return h, fmt.Errorf("gud: %q is not a %d-character hash: %w", s, HexSize, ErrMalformedHash)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("gud: %q is not valid hex: %w", s, ErrMalformedHash)
	}
	copy(h[:], b)
	return h, nil
}

// MustHash is like NewHash but panics on error; intended for literals in
// tests and constants.
func MustHash(s string) Hash {
	h, err := NewHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

// Sum returns the content-addressed hash of framed object bytes.
func Sum(framed []byte) Hash {
	hasher := sha1cd.New()
	hasher.Write(framed)
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}
