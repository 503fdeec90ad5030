package merkle

import (
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"

	"github.com/anchorage/registry-go/model/registry"
)

// DepositAddressLen is the byte width of the cross-chain deposit address
// folded into a bundled hash.
const DepositAddressLen = 20

// HashOf combines two digests in the given order: blake2b-256(a || b). This
// is the combine used by the static pre-image phase, where child order is
// fixed by the document tree shape.
func HashOf(a, b registry.Hash) registry.Hash {
	h := make([]byte, 0, 2*registry.HashLen)
	h = append(h, a[:]...)
	h = append(h, b[:]...)
	return registry.Hash(blake2b.Sum256(h))
}

// SortHashOf combines two digests order-independently: the byte-wise smaller
// one goes first. Sibling order at a tree level is not significant for
// inclusion proofs, only the pairing is.
func SortHashOf(a, b registry.Hash) registry.Hash {
	if a.Less(b) {
		return HashOf(a, b)
	}
	return HashOf(b, a)
}

// BundledHash folds the deposit address and every proof's leaf hash, in
// input order, into a single keccak-256 digest. Unlike the sorted combine
// used for proof verification this is order-sensitive: the same proofs in a
// different order produce a different bundle.
func BundledHash(proofs []registry.Proof, depositAddress [DepositAddressLen]byte) registry.Hash {
	preimage := make([]byte, 0, DepositAddressLen+len(proofs)*registry.HashLen)
	preimage = append(preimage, depositAddress[:]...)
	for _, proof := range proofs {
		preimage = append(preimage, proof.LeafHash[:]...)
	}

	var bundled registry.Hash
	copy(bundled[:], gethcrypto.Keccak256(preimage))
	return bundled
}
