// Package merkle implements batch verification of document Merkle proofs
// against an anchored document root.
//
// The document tree has a fixed two-level top:
//
//	          docRoot
//	          /      \
//	  signingRoot    signatureRoot
//	    /      \
//	basic      zk
//
// where basic, zk and signatureRoot are the static pre-image components
// supplied with every batch. Below the static level, inclusion proofs are
// ordinary sibling chains combined with a sorted (order-independent) hash.
package merkle

import (
	"github.com/anchorage/registry-go/model/registry"
)

// ValidateProofs checks that every proof in the batch is consistent with the
// given document root. A batch with zero proofs is invalid: at least one
// data leaf must be proven.
//
// The verifier is memoized across the batch. Every hash it computes or is
// given (the static components, each sibling, each intermediate) is cached
// in a shared match set, and a proof is accepted as soon as its chain
// reaches any cached hash. Proofs sharing upper-tree nodes with an earlier
// proof in the same batch can therefore be submitted with their chains
// truncated at the shared node, and a proof whose leaf was already proven
// needs no chain at all.
func ValidateProofs(docRoot registry.Hash, proofs []registry.Proof, staticProofs registry.StaticProofs) bool {
	if len(proofs) == 0 {
		return false
	}

	matches, ok := preMatches(staticProofs, docRoot)
	if !ok {
		return false
	}

	valid := true
	for _, proof := range proofs {
		valid = validateProof(matches, proof) && valid
	}
	return valid
}

// matchSet caches every hash proven so far within one batch.
type matchSet map[registry.Hash]struct{}

func (m matchSet) add(h registry.Hash) {
	m[h] = struct{}{}
}

func (m matchSet) has(h registry.Hash) bool {
	_, ok := m[h]
	return ok
}

// preMatches reconstructs the document root from the three static proof
// components and seeds the match set with every hash of the static phase.
// If the reconstruction does not equal the anchored root, the whole batch is
// rejected before any individual proof is looked at.
func preMatches(staticProofs registry.StaticProofs, docRoot registry.Hash) (matchSet, bool) {
	matches := make(matchSet)

	basic := staticProofs.BasicDataRoot()
	zk := staticProofs.ZKDataRoot()
	signature := staticProofs.SignatureRoot()

	matches.add(basic)
	matches.add(zk)
	signingRoot := HashOf(basic, zk)
	matches.add(signingRoot)
	matches.add(signature)
	calcDocRoot := HashOf(signingRoot, signature)
	matches.add(calcDocRoot)

	return matches, calcDocRoot == docRoot
}

// validateProof folds the sibling chain of a single proof, starting at its
// leaf, caching every sibling and every computed intermediate. It succeeds
// as soon as a computed hash (or the leaf itself) is already in the match
// set; if the chain is exhausted without a match, the proof is invalid.
func validateProof(matches matchSet, proof registry.Proof) bool {
	current := proof.LeafHash
	if matches.has(current) {
		return true
	}

	for _, sibling := range proof.SortedHashes {
		matches.add(sibling)
		current = SortHashOf(current, sibling)
		if matches.has(current) {
			return true
		}
		matches.add(current)
	}

	return false
}
