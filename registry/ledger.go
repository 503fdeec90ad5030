// Package registry implements the document-anchored NFT registry: creation
// of registries bound to external validators, and the two-phase mint that
// ties a Merkle-proven document commitment to token issuance.
//
// A mint spans two top-level operations. Mint validates the request (anchor
// lookup, batch proof verification) and dispatches it to the registry's
// validator; FinishMint is the validator's callback that actually creates
// the token, records its metadata and reserves the metadata deposit. The
// registry never touches token ownership state directly; all ownership
// mutations go through the token ledger's public entry points.
package registry

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/anchorage/registry-go/merkle"
	model "github.com/anchorage/registry-go/model/registry"
	"github.com/anchorage/registry-go/module"
	"github.com/anchorage/registry-go/nft"
	"github.com/anchorage/registry-go/registry/calls"
	"github.com/anchorage/registry-go/storage"
)

// pendingMint marks a token id whose mint request was dispatched to a
// validator and has not been finalized or cancelled yet. Reserving the id
// closes the window in which two requests for the same id could race to the
// validator.
type pendingMint struct {
	uid       model.RegistryID
	requester model.AccountID
}

// Ledger is the registry state machine. All public operations validate
// their full precondition set, including currency sufficiency, before
// performing any write, so a failed call leaves every store untouched.
type Ledger struct {
	mu   sync.Mutex
	log  zerolog.Logger
	conf Config

	anchors    storage.Anchors
	tokens     *nft.Ledger
	currency   module.Currency
	events     module.Events
	dispatcher module.Dispatcher

	nextUID    model.RegistryID
	validators map[model.RegistryID]model.AccountID
	registries map[model.AccountID]model.RegistryID
	nonces     map[model.RegistryID]uint64
	tokenInfo  map[model.Hash]model.TokenInfo
	pending    map[model.Hash]pendingMint
}

var _ calls.FinishMinter = (*Ledger)(nil)

// NewLedger creates a registry ledger wired to its collaborators.
func NewLedger(
	log zerolog.Logger,
	conf Config,
	anchors storage.Anchors,
	tokens *nft.Ledger,
	currency module.Currency,
	events module.Events,
	dispatcher module.Dispatcher,
) (*Ledger, error) {

	err := conf.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l := &Ledger{
		log:        log.With().Str("component", "registry_ledger").Logger(),
		conf:       conf,
		anchors:    anchors,
		tokens:     tokens,
		currency:   currency,
		events:     events,
		dispatcher: dispatcher,
		validators: make(map[model.RegistryID]model.AccountID),
		registries: make(map[model.AccountID]model.RegistryID),
		nonces:     make(map[model.RegistryID]uint64),
		tokenInfo:  make(map[model.Hash]model.TokenInfo),
		pending:    make(map[model.Hash]pendingMint),
	}
	return l, nil
}

// NewRegistry creates a registry bound to the given validator address and
// returns its uid. The validator address must not back another registry
// already. The configured registry deposit is reserved from the sender.
func (l *Ledger) NewRegistry(sender, validator model.AccountID) (model.RegistryID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, bound := l.registries[validator]; bound {
		return 0, ErrValidationFnAlreadyExists
	}
	if l.nextUID == math.MaxUint64 {
		return 0, ErrCounterOverflow
	}
	if l.conf.RegistryDeposit > 0 {
		err := l.currency.Reserve(sender, l.conf.RegistryDeposit)
		if err != nil {
			return 0, fmt.Errorf("could not reserve registry deposit: %w", err)
		}
	}

	uid := l.nextUID
	l.nextUID++
	l.validators[uid] = validator
	l.registries[validator] = uid

	l.log.Info().
		Uint64("uid", uint64(uid)).
		Str("validator", validator.String()).
		Msg("registry created")

	l.events.Emit(model.NewRegistryEvent{Account: sender, UID: uid})

	return uid, nil
}

// Mint validates a mint request against the anchored document and, if every
// check passes, reserves the token id as pending and dispatches the request
// to the registry's validator. No token is created here; issuance happens
// when the validator calls back FinishMint.
//
// Guards run in a fixed order so error precedence is deterministic:
// registry existence, token availability, metadata bounds, anchor
// existence, proof validation.
func (l *Ledger) Mint(
	sender model.AccountID,
	uid model.RegistryID,
	tokenID model.Hash,
	metadata []byte,
	anchorID model.Hash,
	proofs []model.Proof,
	staticProofs model.StaticProofs,
	value model.Balance,
	gasBudget uint64,
) error {

	l.mu.Lock()

	validator, registered := l.validators[uid]
	if !registered {
		l.mu.Unlock()
		return ErrValidationFnNotExisted
	}
	if _, isPending := l.pending[tokenID]; isPending || l.tokens.Exists(tokenID) {
		l.mu.Unlock()
		return ErrTokenAlreadyExisted
	}
	if len(metadata) < l.conf.MinMetadataLength || len(metadata) > l.conf.MaxMetadataLength {
		l.mu.Unlock()
		return ErrMetadataLengthInvalid
	}

	anchor, err := l.anchors.ByID(anchorID)
	if errors.Is(err, storage.ErrNotFound) {
		l.mu.Unlock()
		return ErrDocumentNotAnchored
	}
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("could not look up anchor: %w", err)
	}

	if !merkle.ValidateProofs(anchor.DocRoot, proofs, staticProofs) {
		l.mu.Unlock()
		return ErrProofValidationFailure
	}

	payload := calls.ValidateCall{
		UID:      uid,
		TokenID:  tokenID,
		Owner:    sender,
		Metadata: metadata,
		Leaves:   model.Leaves(proofs),
	}.Encode()

	// The pending mark must be visible before the dispatch: the validator
	// may call back within the same execution window.
	l.pending[tokenID] = pendingMint{uid: uid, requester: sender}
	l.mu.Unlock()

	err = l.dispatcher.Dispatch(validator, payload, value, gasBudget)
	if err != nil {
		l.mu.Lock()
		delete(l.pending, tokenID)
		l.mu.Unlock()
		return fmt.Errorf("could not dispatch to validation function: %w", err)
	}

	l.log.Info().
		Uint64("uid", uint64(uid)).
		Str("token_id", tokenID.String()).
		Str("anchor_id", anchorID.String()).
		Msg("mint request dispatched")

	return nil
}

// FinishMint is the validator callback finalizing an approved mint. The
// sender must be the validator registered for the uid, and a pending mark
// for the token id must match the uid and the requesting owner. It mints
// the token, reserves the metadata deposit from the owner, records metadata
// and registry association, and bumps the registry nonce.
func (l *Ledger) FinishMint(
	sender model.AccountID,
	uid model.RegistryID,
	tokenID model.Hash,
	owner model.AccountID,
	metadata []byte,
) error {

	l.mu.Lock()
	defer l.mu.Unlock()

	validator, registered := l.validators[uid]
	if !registered {
		return ErrValidationFnNotExisted
	}
	if sender != validator {
		return ErrNotValidationFn
	}
	if l.tokens.Exists(tokenID) {
		return ErrTokenAlreadyExisted
	}
	// A pending mark may only be consumed by the registry it was made
	// under, for the owner that requested it.
	if request, isPending := l.pending[tokenID]; isPending {
		if request.uid != uid {
			return ErrPendingOtherRegistry
		}
		if request.requester != owner {
			return ErrPendingOtherOwner
		}
	}
	if l.nonces[uid] == math.MaxUint64 {
		return ErrCounterOverflow
	}

	deposit := l.conf.MintBaseFee + model.Balance(len(metadata))*l.conf.MintPerByteFee
	err := l.currency.Reserve(owner, deposit)
	if err != nil {
		return fmt.Errorf("could not reserve metadata deposit: %w", err)
	}

	err = l.tokens.Mint(owner, tokenID)
	if err != nil {
		// Unreachable after the existence guard; undo the reservation so
		// the failure leaves no trace.
		l.currency.Unreserve(owner, deposit)
		return fmt.Errorf("could not mint token: %w", err)
	}

	l.tokenInfo[tokenID] = model.TokenInfo{
		Metadata: metadata,
		Deposit:  deposit,
		Registry: uid,
	}
	l.nonces[uid]++
	delete(l.pending, tokenID)

	l.log.Info().
		Uint64("uid", uint64(uid)).
		Str("token_id", tokenID.String()).
		Str("owner", owner.String()).
		Uint64("deposit", uint64(deposit)).
		Msg("mint finalized")

	l.events.Emit(model.MintNftEvent{UID: uid, TokenID: tokenID})

	return nil
}

// CancelMint reclaims a token id whose mint request never came back from
// the validator. Only the original requester may cancel.
func (l *Ledger) CancelMint(sender model.AccountID, tokenID model.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	request, isPending := l.pending[tokenID]
	if !isPending {
		return ErrNoPendingMint
	}
	if request.requester != sender {
		return ErrNotPendingRequester
	}

	delete(l.pending, tokenID)
	return nil
}

// TransferFrom moves the token to a new owner and repatriates its reserved
// metadata deposit from the old owner to the new one. Ownership checks are
// delegated to the token ledger and validated before any write.
func (l *Ledger) TransferFrom(sender, from, to model.AccountID, tokenID model.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.tokens.EnsureCanTransfer(sender, from, tokenID)
	if err != nil {
		return err
	}

	info, tracked := l.tokenInfo[tokenID]
	if tracked && info.Deposit > 0 {
		err = l.currency.RepatriateReserved(from, to, info.Deposit)
		if err != nil {
			return fmt.Errorf("could not repatriate token deposit: %w", err)
		}
	}

	err = l.tokens.TransferFrom(sender, from, to, tokenID)
	if err != nil {
		// Unreachable after EnsureCanTransfer; move the deposit back so a
		// defensive failure stays all-or-nothing.
		if tracked && info.Deposit > 0 {
			_ = l.currency.RepatriateReserved(to, from, info.Deposit)
		}
		return fmt.Errorf("could not transfer token: %w", err)
	}

	return nil
}

// Burn destroys the token, releases its metadata deposit back to the owner
// and deletes the registry-side records. The sender must be the owner, the
// approved delegate, or an approved operator.
func (l *Ledger) Burn(sender model.AccountID, tokenID model.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner, err := l.tokens.OwnerOf(tokenID)
	if err != nil {
		return err
	}
	if !l.tokens.IsApprovedOrOwner(sender, tokenID) {
		return nft.ErrNotOwnerOrApprover
	}

	err = l.tokens.Burn(tokenID)
	if err != nil {
		return fmt.Errorf("could not burn token: %w", err)
	}

	info, tracked := l.tokenInfo[tokenID]
	if tracked {
		if info.Deposit > 0 {
			l.currency.Unreserve(owner, info.Deposit)
		}
		delete(l.tokenInfo, tokenID)
	}

	l.log.Info().
		Str("token_id", tokenID.String()).
		Str("owner", owner.String()).
		Msg("token burned")

	return nil
}

// ValidatorOf returns the validator address registered for the uid.
func (l *Ledger) ValidatorOf(uid model.RegistryID) (model.AccountID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	validator, registered := l.validators[uid]
	if !registered {
		return model.ZeroAccountID, ErrValidationFnNotExisted
	}
	return validator, nil
}

// MetadataOf returns the metadata recorded for a minted token.
func (l *Ledger) MetadataOf(tokenID model.Hash) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, tracked := l.tokenInfo[tokenID]
	if !tracked {
		return nil, nft.ErrTokenNotExists
	}
	return info.Metadata, nil
}

// DepositOf returns the currency deposit reserved for a minted token.
func (l *Ledger) DepositOf(tokenID model.Hash) (model.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, tracked := l.tokenInfo[tokenID]
	if !tracked {
		return 0, nft.ErrTokenNotExists
	}
	return info.Deposit, nil
}

// RegistryOf returns the registry a token was minted through.
func (l *Ledger) RegistryOf(tokenID model.Hash) (model.RegistryID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, tracked := l.tokenInfo[tokenID]
	if !tracked {
		return 0, nft.ErrTokenNotExists
	}
	return info.Registry, nil
}

// NonceOf returns the number of tokens minted through the registry.
func (l *Ledger) NonceOf(uid model.RegistryID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.nonces[uid]
}

// NextUID returns the uid the next registry will be assigned.
func (l *Ledger) NextUID() model.RegistryID {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.nextUID
}

// IsPending checks whether a mint request for the token id is awaiting its
// validator callback.
func (l *Ledger) IsPending(tokenID model.Hash) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, isPending := l.pending[tokenID]
	return isPending
}
