package module

import (
	"github.com/anchorage/registry-go/model/registry"
)

// Dispatcher invokes an external validator with an encoded call payload. The
// invocation mechanism (sandboxed code execution on the host) is opaque to
// the registry core; the validator is expected to eventually call back into
// the registry ledger, but completion is not temporally bounded and may
// never happen.
type Dispatcher interface {

	// Dispatch sends the encoded payload to the validator at the given
	// address, transferring value and granting at most gasBudget execution
	// gas. A returned error means the call could not be dispatched at all,
	// not that validation failed.
	Dispatch(validator registry.AccountID, payload []byte, value registry.Balance, gasBudget uint64) error
}
