package module

import (
	"github.com/anchorage/registry-go/model/registry"
)

// TokenIDGenerator produces fresh token identifiers for tokens created
// without a caller-supplied id. The host's randomness source is an external
// collaborator, so the generator sits behind this interface; tests inject a
// deterministic seed.
type TokenIDGenerator interface {
	Generate(account registry.AccountID) registry.Hash
}
