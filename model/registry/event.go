package registry

// Events are emitted by the ledgers after all state writes of an operation
// have been applied, in the order documented on each operation. The host
// runtime consumes them fire-and-forget through the module.Events sink.

type EventType string

const (
	EventNewRegistry    EventType = "registry.NewRegistry"
	EventMintNft        EventType = "registry.MintNft"
	EventTransfer       EventType = "nft.Transfer"
	EventApproval       EventType = "nft.Approval"
	EventApprovalForAll EventType = "nft.ApprovalForAll"
)

// Event is implemented by all registry event payloads.
type Event interface {
	Type() EventType
}

// NewRegistryEvent signals that an account created a registry with the given
// uid.
type NewRegistryEvent struct {
	Account AccountID
	UID     RegistryID
}

func (e NewRegistryEvent) Type() EventType { return EventNewRegistry }

// MintNftEvent signals that a token was minted through a registry.
type MintNftEvent struct {
	UID     RegistryID
	TokenID Hash
}

func (e MintNftEvent) Type() EventType { return EventMintNft }

// TransferEvent signals an ownership change. A zero From means the token was
// minted, a zero To means it was burned.
type TransferEvent struct {
	From    AccountID
	To      AccountID
	TokenID Hash
}

func (e TransferEvent) Type() EventType { return EventTransfer }

// ApprovalEvent signals that a single-token delegate was set.
type ApprovalEvent struct {
	Owner    AccountID
	Delegate AccountID
	TokenID  Hash
}

func (e ApprovalEvent) Type() EventType { return EventApproval }

// ApprovalForAllEvent signals that an operator was granted or revoked for
// all of an owner's tokens.
type ApprovalForAllEvent struct {
	Owner    AccountID
	Operator AccountID
	Approved bool
}

func (e ApprovalForAllEvent) Type() EventType { return EventApprovalForAll }
