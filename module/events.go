package module

import (
	"github.com/anchorage/registry-go/model/registry"
)

// Events is the sink for ledger events. Emission is fire-and-forget; the
// order of Emit calls within one operation is part of that operation's
// contract and must be preserved by implementations.
type Events interface {
	Emit(event registry.Event)
}
