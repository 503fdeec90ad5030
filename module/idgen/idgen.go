// Package idgen generates token identifiers from a randomness seed, the
// requesting account and a monotonically increasing nonce, mirroring the
// hash-based id derivation of the host runtime.
package idgen

import (
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/anchorage/registry-go/model/registry"
	"github.com/anchorage/registry-go/module"
)

// Seeded derives token ids as blake2b-256(seed || account || nonce). The
// nonce is incremented on every generation, so ids never repeat for a fixed
// seed. Safe for concurrent use, though the registry core serializes calls.
type Seeded struct {
	mu    sync.Mutex
	seed  registry.Hash
	nonce uint64
}

var _ module.TokenIDGenerator = (*Seeded)(nil)

// NewSeeded creates a generator with the given randomness seed. The host
// supplies a fresh seed per execution window; tests use a fixed one.
func NewSeeded(seed registry.Hash) *Seeded {
	return &Seeded{seed: seed}
}

// Generate returns the next token id for the given account.
func (g *Seeded) Generate(account registry.AccountID) registry.Hash {
	g.mu.Lock()
	defer g.mu.Unlock()

	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], g.nonce)
	g.nonce++

	input := make([]byte, 0, registry.HashLen+registry.AccountIDLen+len(nonce))
	input = append(input, g.seed[:]...)
	input = append(input, account[:]...)
	input = append(input, nonce[:]...)

	return registry.Hash(blake2b.Sum256(input))
}
