package operation

import (
	"github.com/anchorage/registry-go/model/registry"
)

// Key prefixes. Each logical map of the registry store gets its own
// namespace in the key space; keys are the prefix byte followed by the raw
// entity id, which keeps iteration order stable and encoding deterministic.
const (
	codeAnchor byte = 1
)

func makePrefix(code byte, id registry.Hash) []byte {
	key := make([]byte, 0, 1+registry.HashLen)
	key = append(key, code)
	key = append(key, id[:]...)
	return key
}
