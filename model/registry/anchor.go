package registry

// Anchor is an on-chain commitment binding an identifier to the root hash of
// a document's Merkle tree. Anchors are written by an external anchoring
// transaction and read by the registry during mint; re-anchoring simply
// replaces the stored value.
type Anchor struct {
	// ID is the content address of the anchor.
	ID Hash
	// DocRoot is the committed document root hash.
	DocRoot Hash
	// AnchoredBlock is the block height at which the anchor was committed.
	AnchoredBlock uint64
}
