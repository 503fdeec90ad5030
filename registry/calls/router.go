package calls

import (
	"fmt"

	"github.com/anchorage/registry-go/model/registry"
)

// FinishMinter finalizes an approved mint request. The registry ledger
// implements it.
type FinishMinter interface {
	FinishMint(sender registry.AccountID, uid registry.RegistryID, tokenID registry.Hash,
		owner registry.AccountID, metadata []byte) error
}

// Router applies inbound call payloads to the runtime. The sender is the
// verified signed origin of the payload, supplied by the host.
type Router struct {
	registry FinishMinter
}

// NewRouter creates a router targeting the given registry ledger.
func NewRouter(registry FinishMinter) *Router {
	return &Router{registry: registry}
}

// Apply decodes the payload and invokes the matching runtime operation on
// behalf of the sender.
func (r *Router) Apply(sender registry.AccountID, payload []byte) error {
	call, err := DecodeCall(payload)
	if err != nil {
		return fmt.Errorf("could not decode call: %w", err)
	}

	switch c := call.(type) {
	case FinishMintCall:
		return r.registry.FinishMint(sender, c.UID, c.TokenID, c.Owner, c.Metadata)
	default:
		return fmt.Errorf("call %T: %w", call, ErrUnknownCall)
	}
}
