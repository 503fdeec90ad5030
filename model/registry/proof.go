package registry

// Proof is a single Merkle inclusion proof: a leaf hash plus the sibling
// hashes, in the order they must be combined, from the leaf towards the
// document root. Proofs are supplied by the caller per mint request and are
// never persisted.
type Proof struct {
	LeafHash     Hash
	SortedHashes []Hash
}

// NewProof constructs an inclusion proof for the given leaf.
func NewProof(leaf Hash, sortedHashes ...Hash) Proof {
	return Proof{
		LeafHash:     leaf,
		SortedHashes: sortedHashes,
	}
}

// StaticProofs are the three fixed pre-image components of a document root:
//
//	docRoot = H(H(basicDataRoot, zkDataRoot), signatureRoot)
//
// They are supplied per call and checked against the anchored root before
// any individual proof is considered.
type StaticProofs [3]Hash

func (s StaticProofs) BasicDataRoot() Hash {
	return s[0]
}

func (s StaticProofs) ZKDataRoot() Hash {
	return s[1]
}

func (s StaticProofs) SignatureRoot() Hash {
	return s[2]
}

// Leaves extracts the leaf hashes of a batch of proofs, preserving input
// order.
func Leaves(proofs []Proof) []Hash {
	leaves := make([]Hash, 0, len(proofs))
	for _, proof := range proofs {
		leaves = append(leaves, proof.LeafHash)
	}
	return leaves
}
