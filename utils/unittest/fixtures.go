package unittest

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anchorage/registry-go/merkle"
	"github.com/anchorage/registry-go/model/registry"
)

func HashFixture() registry.Hash {
	var h registry.Hash
	_, _ = rand.Read(h[:])
	return h
}

func HashFixtures(n int) []registry.Hash {
	hashes := make([]registry.Hash, 0, n)
	for i := 0; i < n; i++ {
		hashes = append(hashes, HashFixture())
	}
	return hashes
}

func AccountFixture() registry.AccountID {
	var a registry.AccountID
	_, _ = rand.Read(a[:])
	return a
}

func DepositAddressFixture() [merkle.DepositAddressLen]byte {
	var a [merkle.DepositAddressLen]byte
	_, _ = rand.Read(a[:])
	return a
}

func AnchorFixture(docRoot registry.Hash) registry.Anchor {
	return registry.Anchor{
		ID:            HashFixture(),
		DocRoot:       docRoot,
		AnchoredBlock: 42,
	}
}

func MetadataFixture(length int) []byte {
	metadata := make([]byte, length)
	for i := range metadata {
		metadata[i] = 'x'
	}
	return metadata
}

// Document is a fixture for an anchored document: a sorted Merkle tree over
// data leaves forming the basic data root, combined with random zk and
// signature roots into the static pre-image phase.
type Document struct {
	DocRoot registry.Hash
	Static  registry.StaticProofs

	leaves []registry.Hash
	levels [][]registry.Hash
}

// DocumentFixture builds a document over leafCount data leaves; leafCount
// must be a power of two.
func DocumentFixture(t testing.TB, leafCount int) *Document {
	require.True(t, leafCount > 0 && leafCount&(leafCount-1) == 0,
		"leaf count must be a power of two")

	leaves := HashFixtures(leafCount)

	levels := [][]registry.Hash{leaves}
	for level := leaves; len(level) > 1; {
		next := make([]registry.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, merkle.SortHashOf(level[i], level[i+1]))
		}
		levels = append(levels, next)
		level = next
	}

	basicRoot := levels[len(levels)-1][0]
	zkRoot := HashFixture()
	signatureRoot := HashFixture()
	static := registry.StaticProofs{basicRoot, zkRoot, signatureRoot}
	docRoot := merkle.HashOf(merkle.HashOf(basicRoot, zkRoot), signatureRoot)

	return &Document{
		DocRoot: docRoot,
		Static:  static,
		leaves:  leaves,
		levels:  levels,
	}
}

// Leaf returns the i-th data leaf.
func (d *Document) Leaf(i int) registry.Hash {
	return d.leaves[i]
}

// Proof returns the full inclusion proof for the i-th data leaf: its
// sibling chain up to the basic data root.
func (d *Document) Proof(i int) registry.Proof {
	siblings := make([]registry.Hash, 0, len(d.levels)-1)
	index := i
	for _, level := range d.levels[:len(d.levels)-1] {
		siblings = append(siblings, level[index^1])
		index /= 2
	}
	return registry.NewProof(d.leaves[i], siblings...)
}

// TruncatedProof returns the inclusion proof for the i-th data leaf cut to
// its first n siblings.
func (d *Document) TruncatedProof(i int, n int) registry.Proof {
	proof := d.Proof(i)
	proof.SortedHashes = proof.SortedHashes[:n]
	return proof
}
