// Package nft implements the ERC721-style token ledger: authoritative
// ownership, approval and enumeration state for opaque token identifiers.
//
// The ledger exclusively owns its maps; other components mutate tokens only
// through its public entry points. Every operation validates all of its
// preconditions before writing anything, so a failed call leaves the ledger
// untouched.
package nft

import (
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/anchorage/registry-go/model/registry"
	"github.com/anchorage/registry-go/module"
)

type ownedKey struct {
	owner registry.AccountID
	index uint64
}

type operatorKey struct {
	owner    registry.AccountID
	operator registry.AccountID
}

// Ledger is the in-memory token ownership store. Enumeration is maintained
// as a dense array simulated by two parallel maps (slot-to-id and id-to-slot),
// both globally and per owner, kept in sync on every insert and removal.
type Ledger struct {
	mu     sync.RWMutex
	log    zerolog.Logger
	events module.Events
	idgen  module.TokenIDGenerator

	owners            map[registry.Hash]registry.AccountID
	approvals         map[registry.Hash]registry.AccountID
	operatorApprovals map[operatorKey]bool
	balances          map[registry.AccountID]uint64

	totalSupply      uint64
	allTokens        map[uint64]registry.Hash
	allTokensIndex   map[registry.Hash]uint64
	ownedTokens      map[ownedKey]registry.Hash
	ownedTokensIndex map[registry.Hash]uint64
}

// NewLedger creates an empty token ledger. The id generator is only used by
// CreateToken and may be nil if tokens are always minted with explicit ids.
func NewLedger(log zerolog.Logger, events module.Events, idgen module.TokenIDGenerator) *Ledger {
	return &Ledger{
		log:               log.With().Str("component", "nft_ledger").Logger(),
		events:            events,
		idgen:             idgen,
		owners:            make(map[registry.Hash]registry.AccountID),
		approvals:         make(map[registry.Hash]registry.AccountID),
		operatorApprovals: make(map[operatorKey]bool),
		balances:          make(map[registry.AccountID]uint64),
		allTokens:         make(map[uint64]registry.Hash),
		allTokensIndex:    make(map[registry.Hash]uint64),
		ownedTokens:       make(map[ownedKey]registry.Hash),
		ownedTokensIndex:  make(map[registry.Hash]uint64),
	}
}

// Mint creates the token under the given owner and appends it to both the
// global and the owner's enumeration. It fails with ErrTokenAlreadyExists
// if the id is already owned. Emits a Transfer event with a zero sender.
func (l *Ledger) Mint(to registry.AccountID, tokenID registry.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.owners[tokenID]; exists {
		return ErrTokenAlreadyExists
	}
	if l.totalSupply == math.MaxUint64 {
		return ErrCounterOverflow
	}
	if l.balances[to] == math.MaxUint64 {
		return ErrCounterOverflow
	}

	l.addTokenToAllEnumeration(tokenID)
	l.addTokenToOwnerEnumeration(to, tokenID)
	l.owners[tokenID] = to

	l.log.Debug().
		Str("token_id", tokenID.String()).
		Str("owner", to.String()).
		Msg("token minted")

	l.events.Emit(registry.TransferEvent{To: to, TokenID: tokenID})

	return nil
}

// Burn destroys the token, removing it from both enumerations and clearing
// any approval. Authorization is the caller's concern; the ledger only
// requires that the token exists. Emits a Transfer event with a zero
// receiver.
func (l *Ledger) Burn(tokenID registry.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner, exists := l.owners[tokenID]
	if !exists {
		return ErrTokenNotExists
	}
	if l.totalSupply == 0 || l.balances[owner] == 0 {
		return ErrCounterUnderflow
	}

	l.removeTokenFromAllEnumeration(tokenID)
	l.removeTokenFromOwnerEnumeration(owner, tokenID)
	delete(l.approvals, tokenID)
	delete(l.owners, tokenID)

	l.log.Debug().
		Str("token_id", tokenID.String()).
		Str("owner", owner.String()).
		Msg("token burned")

	l.events.Emit(registry.TransferEvent{From: owner, TokenID: tokenID})

	return nil
}

// TransferFrom moves the token from one owner to another. The sender must
// be the owner, the approved delegate, or an approved operator of the
// owner. The global enumeration is untouched; only the per-owner
// enumerations change. Any single-token approval is cleared.
func (l *Ledger) TransferFrom(sender, from, to registry.AccountID, tokenID registry.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.ensureCanTransfer(sender, from, tokenID)
	if err != nil {
		return err
	}
	if l.balances[to] == math.MaxUint64 {
		return ErrCounterOverflow
	}

	l.removeTokenFromOwnerEnumeration(from, tokenID)
	l.addTokenToOwnerEnumeration(to, tokenID)
	delete(l.approvals, tokenID)
	l.owners[tokenID] = to

	l.log.Debug().
		Str("token_id", tokenID.String()).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("token transferred")

	l.events.Emit(registry.TransferEvent{From: from, To: to, TokenID: tokenID})

	return nil
}

// Approve sets the single-token delegate. The sender must be the owner or
// an approved operator of the owner, and the delegate must not be the owner
// itself.
func (l *Ledger) Approve(sender, to registry.AccountID, tokenID registry.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner, exists := l.owners[tokenID]
	if !exists {
		return ErrTokenNotExists
	}
	if to == owner {
		return ErrOwnerAlwaysApproved
	}
	if sender != owner && !l.operatorApprovals[operatorKey{owner: owner, operator: sender}] {
		return ErrNotOwnerOrApprover
	}

	l.approvals[tokenID] = to

	l.events.Emit(registry.ApprovalEvent{Owner: owner, Delegate: to, TokenID: tokenID})

	return nil
}

// SetApprovalForAll grants or revokes an operator for all of the sender's
// tokens. Delegating to oneself is rejected.
func (l *Ledger) SetApprovalForAll(sender, to registry.AccountID, approved bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if to == sender {
		return ErrSelfApproval
	}

	key := operatorKey{owner: sender, operator: to}
	if approved {
		l.operatorApprovals[key] = true
	} else {
		delete(l.operatorApprovals, key)
	}

	l.events.Emit(registry.ApprovalForAllEvent{Owner: sender, Operator: to, Approved: approved})

	return nil
}

// CreateToken mints a token with a generated identifier to the sender and
// returns the id.
func (l *Ledger) CreateToken(sender registry.AccountID) (registry.Hash, error) {
	tokenID := l.idgen.Generate(sender)
	err := l.Mint(sender, tokenID)
	if err != nil {
		return registry.ZeroHash, err
	}
	return tokenID, nil
}

// OwnerOf returns the owner of the token, or ErrTokenNotExists.
func (l *Ledger) OwnerOf(tokenID registry.Hash) (registry.AccountID, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	owner, exists := l.owners[tokenID]
	if !exists {
		return registry.ZeroAccountID, ErrTokenNotExists
	}
	return owner, nil
}

// Exists checks whether the token has an owner.
func (l *Ledger) Exists(tokenID registry.Hash) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, exists := l.owners[tokenID]
	return exists
}

// BalanceOf returns the number of tokens held by the account.
func (l *Ledger) BalanceOf(account registry.AccountID) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[account]
}

// TotalSupply returns the total number of minted tokens.
func (l *Ledger) TotalSupply() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.totalSupply
}

// TokenByIndex returns the token at the given position in the global
// enumeration, 0 <= index < TotalSupply.
func (l *Ledger) TokenByIndex(index uint64) (registry.Hash, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index >= l.totalSupply {
		return registry.ZeroHash, ErrIndexOutOfBounds
	}
	return l.allTokens[index], nil
}

// TokenOfOwnerByIndex returns the token at the given position in the
// owner's enumeration, 0 <= index < BalanceOf(owner).
func (l *Ledger) TokenOfOwnerByIndex(owner registry.AccountID, index uint64) (registry.Hash, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index >= l.balances[owner] {
		return registry.ZeroHash, ErrIndexOutOfBounds
	}
	return l.ownedTokens[ownedKey{owner: owner, index: index}], nil
}

// GetApproved returns the single-token delegate, if one is set.
func (l *Ledger) GetApproved(tokenID registry.Hash) (registry.AccountID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	delegate, ok := l.approvals[tokenID]
	return delegate, ok
}

// IsApprovedForAll checks whether the operator may act on all of the
// owner's tokens.
func (l *Ledger) IsApprovedForAll(owner, operator registry.AccountID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.operatorApprovals[operatorKey{owner: owner, operator: operator}]
}

// IsApprovedOrOwner checks whether the spender may act on the token: it is
// the owner, the approved delegate, or an approved operator of the owner.
// An unowned token has no approved spenders.
func (l *Ledger) IsApprovedOrOwner(spender registry.AccountID, tokenID registry.Hash) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.isApprovedOrOwner(spender, tokenID)
}

// EnsureCanTransfer validates the full precondition set of TransferFrom
// without mutating anything. Callers that must combine a transfer with
// their own writes use it to front-load all guards.
func (l *Ledger) EnsureCanTransfer(sender, from registry.AccountID, tokenID registry.Hash) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.ensureCanTransfer(sender, from, tokenID)
}

func (l *Ledger) ensureCanTransfer(sender, from registry.AccountID, tokenID registry.Hash) error {
	owner, exists := l.owners[tokenID]
	if !exists {
		return ErrTokenNotExists
	}
	if owner != from {
		return ErrNotTokenOwner
	}
	if !l.isApprovedOrOwner(sender, tokenID) {
		return ErrNotOwnerOrApprover
	}
	return nil
}

func (l *Ledger) isApprovedOrOwner(spender registry.AccountID, tokenID registry.Hash) bool {
	owner, exists := l.owners[tokenID]
	if !exists {
		return false
	}
	if owner == spender {
		return true
	}
	if delegate, ok := l.approvals[tokenID]; ok && delegate == spender {
		return true
	}
	return l.operatorApprovals[operatorKey{owner: owner, operator: spender}]
}

// addTokenToAllEnumeration appends the token to the global dense array and
// bumps the supply.
func (l *Ledger) addTokenToAllEnumeration(tokenID registry.Hash) {
	index := l.totalSupply
	l.allTokens[index] = tokenID
	l.allTokensIndex[tokenID] = index
	l.totalSupply++
}

// addTokenToOwnerEnumeration appends the token to the owner's dense array
// and bumps the owner's balance.
func (l *Ledger) addTokenToOwnerEnumeration(to registry.AccountID, tokenID registry.Hash) {
	index := l.balances[to]
	l.ownedTokens[ownedKey{owner: to, index: index}] = tokenID
	l.ownedTokensIndex[tokenID] = index
	l.balances[to] = index + 1
}

// removeTokenFromAllEnumeration removes the token from the global dense
// array. If the token is not the last entry, the last entry is swapped into
// its slot and both the forward and the reverse map are updated for the
// moved token before the tail is truncated.
func (l *Ledger) removeTokenFromAllEnumeration(tokenID registry.Hash) {
	lastIndex := l.totalSupply - 1
	index := l.allTokensIndex[tokenID]

	if index != lastIndex {
		movedID := l.allTokens[lastIndex]
		l.allTokens[index] = movedID
		l.allTokensIndex[movedID] = index
	}

	delete(l.allTokens, lastIndex)
	delete(l.allTokensIndex, tokenID)
	l.totalSupply = lastIndex
}

// removeTokenFromOwnerEnumeration removes the token from the owner's dense
// array with the same swap-to-end-then-pop scheme.
func (l *Ledger) removeTokenFromOwnerEnumeration(from registry.AccountID, tokenID registry.Hash) {
	lastIndex := l.balances[from] - 1
	index := l.ownedTokensIndex[tokenID]

	if index != lastIndex {
		movedID := l.ownedTokens[ownedKey{owner: from, index: lastIndex}]
		l.ownedTokens[ownedKey{owner: from, index: index}] = movedID
		l.ownedTokensIndex[movedID] = index
	}

	delete(l.ownedTokens, ownedKey{owner: from, index: lastIndex})
	delete(l.ownedTokensIndex, tokenID)
	if lastIndex == 0 {
		delete(l.balances, from)
	} else {
		l.balances[from] = lastIndex
	}
}
