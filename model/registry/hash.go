package registry

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// HashLen is the size of all digests used by the registry core. Document
// roots, proof nodes and token identifiers are all 256-bit values.
const HashLen = 32

// Hash represents a fixed-width 256-bit digest. Comparisons between hashes
// are unsigned lexicographic over the raw byte representation.
type Hash [HashLen]byte

// ZeroHash is the default value for a hash, treated as "unset" throughout.
var ZeroHash = Hash{}

// HashFromBytes converts a byte slice to a hash; it errors if the slice has
// the wrong length.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLen {
		return h, fmt.Errorf("invalid hash length: got %d, expected %d", len(b), HashLen)
	}
	copy(h[:], b)
	return h, nil
}

// HexStringToHash converts a hex string to a hash.
func HexStringToHash(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("could not decode hex string: %w", err)
	}
	return HashFromBytes(b)
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Less implements the ordering used when combining sibling hashes: plain
// byte-wise comparison, no numeric interpretation.
func (h Hash) Less(other Hash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}
