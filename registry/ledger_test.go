package registry_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/anchorage/registry-go/model/registry"
	"github.com/anchorage/registry-go/module"
	"github.com/anchorage/registry-go/module/idgen"
	"github.com/anchorage/registry-go/nft"
	"github.com/anchorage/registry-go/registry"
	"github.com/anchorage/registry-go/registry/calls"
	"github.com/anchorage/registry-go/storage/stdmap"
	"github.com/anchorage/registry-go/utils/unittest"
)

const gasBudget = 100_000

type harness struct {
	ledger     *registry.Ledger
	tokens     *nft.Ledger
	anchors    *stdmap.Anchors
	currency   *unittest.CurrencyMock
	events     *unittest.EventRecorder
	dispatcher *unittest.DispatcherMock
	conf       registry.Config
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		anchors:    stdmap.NewAnchors(),
		currency:   unittest.NewCurrencyMock(),
		events:     unittest.NewEventRecorder(),
		dispatcher: unittest.NewDispatcherMock(),
		conf:       registry.DefaultConfig(),
	}
	h.tokens = nft.NewLedger(unittest.Logger(), h.events, idgen.NewSeeded(unittest.HashFixture()))

	var err error
	h.ledger, err = registry.NewLedger(unittest.Logger(), h.conf,
		h.anchors, h.tokens, h.currency, h.events, h.dispatcher)
	require.NoError(t, err)

	return h
}

// register funds the creator and creates a registry for a fresh validator
// address.
func (h *harness) register(t *testing.T) (model.RegistryID, model.AccountID) {
	creator := unittest.AccountFixture()
	validator := unittest.AccountFixture()
	h.currency.Deposit(creator, h.conf.RegistryDeposit)
	uid, err := h.ledger.NewRegistry(creator, validator)
	require.NoError(t, err)
	return uid, validator
}

// anchored builds a document fixture and commits an anchor for it.
func (h *harness) anchored(t *testing.T) (*unittest.Document, model.Hash) {
	doc := unittest.DocumentFixture(t, 4)
	anchor := unittest.AnchorFixture(doc.DocRoot)
	require.NoError(t, h.anchors.Store(anchor))
	return doc, anchor.ID
}

func TestNewRegistry(t *testing.T) {
	h := newHarness(t)
	creator := unittest.AccountFixture()
	validator := unittest.AccountFixture()
	h.currency.Deposit(creator, h.conf.RegistryDeposit)

	uid, err := h.ledger.NewRegistry(creator, validator)
	require.NoError(t, err)
	assert.Equal(t, model.RegistryID(0), uid)
	assert.Equal(t, model.RegistryID(1), h.ledger.NextUID())

	actual, err := h.ledger.ValidatorOf(uid)
	require.NoError(t, err)
	assert.Equal(t, validator, actual)
	assert.Equal(t, h.conf.RegistryDeposit, h.currency.ReservedOf(creator))

	created := h.events.ByType(model.EventNewRegistry)
	require.Len(t, created, 1)
	assert.Equal(t, model.NewRegistryEvent{Account: creator, UID: uid}, created[0])
}

func TestNewRegistryDuplicateValidator(t *testing.T) {
	h := newHarness(t)
	_, validator := h.register(t)

	other := unittest.AccountFixture()
	h.currency.Deposit(other, h.conf.RegistryDeposit)

	_, err := h.ledger.NewRegistry(other, validator)
	assert.ErrorIs(t, err, registry.ErrValidationFnAlreadyExists)
	assert.Equal(t, model.RegistryID(1), h.ledger.NextUID())
	assert.Equal(t, model.Balance(0), h.currency.ReservedOf(other))
}

func TestNewRegistryInsufficientDeposit(t *testing.T) {
	h := newHarness(t)
	creator := unittest.AccountFixture()

	_, err := h.ledger.NewRegistry(creator, unittest.AccountFixture())
	assert.ErrorIs(t, err, module.ErrInsufficientBalance)
	assert.Equal(t, model.RegistryID(0), h.ledger.NextUID())
}

// The full two-phase flow: a validated mint request is dispatched to the
// validator, and the validator's callback mints the token, records the
// metadata and reserves the deposit.
func TestMintTwoPhase(t *testing.T) {
	h := newHarness(t)
	uid, validator := h.register(t)
	doc, anchorID := h.anchored(t)

	sender := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	metadata := unittest.MetadataFixture(10)
	proofs := []model.Proof{doc.Proof(0)}

	err := h.ledger.Mint(sender, uid, tokenID, metadata, anchorID, proofs, doc.Static, 0, gasBudget)
	require.NoError(t, err)

	// phase one: no token yet, the id is pending, the validator was called
	assert.False(t, h.tokens.Exists(tokenID))
	assert.True(t, h.ledger.IsPending(tokenID))
	require.Equal(t, 1, h.dispatcher.Size())

	dispatch := h.dispatcher.Last()
	assert.Equal(t, validator, dispatch.Validator)
	assert.Equal(t, uint64(gasBudget), dispatch.GasBudget)

	request, err := calls.DecodeValidate(dispatch.Payload)
	require.NoError(t, err)
	assert.Equal(t, uid, request.UID)
	assert.Equal(t, tokenID, request.TokenID)
	assert.Equal(t, sender, request.Owner)
	assert.Equal(t, metadata, request.Metadata)
	assert.Equal(t, []model.Hash{doc.Leaf(0)}, request.Leaves)

	// phase two: the validator calls back
	deposit := h.conf.MintBaseFee + 10*h.conf.MintPerByteFee
	h.currency.Deposit(sender, deposit)
	err = h.ledger.FinishMint(validator, uid, tokenID, sender, metadata)
	require.NoError(t, err)

	owner, err := h.tokens.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, sender, owner)
	assert.Equal(t, uint64(1), h.tokens.TotalSupply())
	assert.False(t, h.ledger.IsPending(tokenID))
	assert.Equal(t, uint64(1), h.ledger.NonceOf(uid))
	assert.Equal(t, deposit, h.currency.ReservedOf(sender))

	stored, err := h.ledger.MetadataOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, metadata, stored)

	storedDeposit, err := h.ledger.DepositOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, deposit, storedDeposit)

	through, err := h.ledger.RegistryOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, uid, through)

	minted := h.events.ByType(model.EventMintNft)
	require.Len(t, minted, 1)
	assert.Equal(t, model.MintNftEvent{UID: uid, TokenID: tokenID}, minted[0])
}

// The validator may run within the same execution window: the dispatcher
// routes the request straight back through the call codec.
func TestMintSynchronousCallback(t *testing.T) {
	h := newHarness(t)
	uid, validator := h.register(t)
	doc, anchorID := h.anchored(t)

	sender := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	metadata := unittest.MetadataFixture(12)
	h.currency.Deposit(sender, h.conf.MintBaseFee+12*h.conf.MintPerByteFee)

	router := calls.NewRouter(h.ledger)
	h.dispatcher.Handler = func(dispatch unittest.Dispatch) error {
		request, err := calls.DecodeValidate(dispatch.Payload)
		if err != nil {
			return err
		}
		callback := calls.FinishMintCall{
			UID:      request.UID,
			TokenID:  request.TokenID,
			Owner:    request.Owner,
			Metadata: request.Metadata,
		}
		return router.Apply(validator, callback.Encode())
	}

	err := h.ledger.Mint(sender, uid, tokenID, metadata, anchorID,
		[]model.Proof{doc.Proof(1)}, doc.Static, 0, gasBudget)
	require.NoError(t, err)

	owner, err := h.tokens.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, sender, owner)
	assert.False(t, h.ledger.IsPending(tokenID))
}

func TestMintGuards(t *testing.T) {
	h := newHarness(t)
	uid, _ := h.register(t)
	doc, anchorID := h.anchored(t)

	sender := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	metadata := unittest.MetadataFixture(10)
	proofs := []model.Proof{doc.Proof(0)}

	// no state change may survive a failed mint
	checkClean := func(t *testing.T) {
		assert.False(t, h.tokens.Exists(tokenID))
		assert.False(t, h.ledger.IsPending(tokenID))
		assert.Equal(t, 0, h.dispatcher.Size())
		assert.Equal(t, uint64(0), h.tokens.TotalSupply())
		assert.Equal(t, model.Balance(0), h.currency.ReservedOf(sender))
	}

	t.Run("unregistered uid", func(t *testing.T) {
		err := h.ledger.Mint(sender, uid+1, tokenID, metadata, anchorID, proofs, doc.Static, 0, gasBudget)
		assert.ErrorIs(t, err, registry.ErrValidationFnNotExisted)
		checkClean(t)
	})

	t.Run("metadata too short", func(t *testing.T) {
		err := h.ledger.Mint(sender, uid, tokenID, unittest.MetadataFixture(9), anchorID, proofs, doc.Static, 0, gasBudget)
		assert.ErrorIs(t, err, registry.ErrMetadataLengthInvalid)
		checkClean(t)
	})

	t.Run("metadata too long", func(t *testing.T) {
		err := h.ledger.Mint(sender, uid, tokenID, unittest.MetadataFixture(101), anchorID, proofs, doc.Static, 0, gasBudget)
		assert.ErrorIs(t, err, registry.ErrMetadataLengthInvalid)
		checkClean(t)
	})

	t.Run("document not anchored", func(t *testing.T) {
		err := h.ledger.Mint(sender, uid, tokenID, metadata, unittest.HashFixture(), proofs, doc.Static, 0, gasBudget)
		assert.ErrorIs(t, err, registry.ErrDocumentNotAnchored)
		checkClean(t)
	})

	t.Run("invalid proof", func(t *testing.T) {
		invalid := []model.Proof{model.NewProof(unittest.HashFixture(), unittest.HashFixtures(2)...)}
		err := h.ledger.Mint(sender, uid, tokenID, metadata, anchorID, invalid, doc.Static, 0, gasBudget)
		assert.ErrorIs(t, err, registry.ErrProofValidationFailure)
		checkClean(t)
	})

	t.Run("empty proof batch", func(t *testing.T) {
		err := h.ledger.Mint(sender, uid, tokenID, metadata, anchorID, nil, doc.Static, 0, gasBudget)
		assert.ErrorIs(t, err, registry.ErrProofValidationFailure)
		checkClean(t)
	})

	// metadata bounds are checked before the anchor lookup, so a request
	// failing both reports the metadata error
	t.Run("guard precedence", func(t *testing.T) {
		err := h.ledger.Mint(sender, uid, tokenID, unittest.MetadataFixture(5), unittest.HashFixture(), proofs, doc.Static, 0, gasBudget)
		assert.ErrorIs(t, err, registry.ErrMetadataLengthInvalid)
		checkClean(t)
	})

	// a rejected call executed twice fails identically both times
	t.Run("failed calls are idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			err := h.ledger.Mint(sender, uid, tokenID, metadata, unittest.HashFixture(), proofs, doc.Static, 0, gasBudget)
			assert.ErrorIs(t, err, registry.ErrDocumentNotAnchored)
			checkClean(t)
		}
	})
}

func TestMintDuplicateRequest(t *testing.T) {
	h := newHarness(t)
	uid, _ := h.register(t)
	doc, anchorID := h.anchored(t)

	sender := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	metadata := unittest.MetadataFixture(10)
	proofs := []model.Proof{doc.Proof(0)}

	err := h.ledger.Mint(sender, uid, tokenID, metadata, anchorID, proofs, doc.Static, 0, gasBudget)
	require.NoError(t, err)

	// the id is reserved while the request is pending
	err = h.ledger.Mint(sender, uid, tokenID, metadata, anchorID, proofs, doc.Static, 0, gasBudget)
	assert.ErrorIs(t, err, registry.ErrTokenAlreadyExisted)
	assert.Equal(t, 1, h.dispatcher.Size())
}

func TestMintDispatchFailure(t *testing.T) {
	h := newHarness(t)
	uid, _ := h.register(t)
	doc, anchorID := h.anchored(t)

	sender := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	h.dispatcher.Err = errors.New("contract trapped")

	err := h.ledger.Mint(sender, uid, tokenID, unittest.MetadataFixture(10), anchorID,
		[]model.Proof{doc.Proof(0)}, doc.Static, 0, gasBudget)
	require.Error(t, err)

	// the failed dispatch released the pending reservation
	assert.False(t, h.ledger.IsPending(tokenID))

	h.dispatcher.Err = nil
	err = h.ledger.Mint(sender, uid, tokenID, unittest.MetadataFixture(10), anchorID,
		[]model.Proof{doc.Proof(0)}, doc.Static, 0, gasBudget)
	require.NoError(t, err)
}

func TestFinishMintGuards(t *testing.T) {
	h := newHarness(t)
	uid, validator := h.register(t)
	doc, anchorID := h.anchored(t)

	sender := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	metadata := unittest.MetadataFixture(10)

	err := h.ledger.Mint(sender, uid, tokenID, metadata, anchorID,
		[]model.Proof{doc.Proof(0)}, doc.Static, 0, gasBudget)
	require.NoError(t, err)

	checkClean := func(t *testing.T) {
		assert.False(t, h.tokens.Exists(tokenID))
		assert.Equal(t, uint64(0), h.tokens.TotalSupply())
		assert.Equal(t, uint64(0), h.ledger.NonceOf(uid))
		assert.Equal(t, model.Balance(0), h.currency.ReservedOf(sender))
		assert.Empty(t, h.events.ByType(model.EventMintNft))
	}

	t.Run("unknown registry", func(t *testing.T) {
		err := h.ledger.FinishMint(validator, uid+1, tokenID, sender, metadata)
		assert.ErrorIs(t, err, registry.ErrValidationFnNotExisted)
		checkClean(t)
	})

	t.Run("wrong sender", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			err := h.ledger.FinishMint(unittest.AccountFixture(), uid, tokenID, sender, metadata)
			assert.ErrorIs(t, err, registry.ErrNotValidationFn)
			checkClean(t)
		}
	})

	t.Run("owner cannot cover deposit", func(t *testing.T) {
		err := h.ledger.FinishMint(validator, uid, tokenID, sender, metadata)
		assert.ErrorIs(t, err, module.ErrInsufficientBalance)
		checkClean(t)
		// the request stays pending and can still be finalized
		assert.True(t, h.ledger.IsPending(tokenID))
	})

	t.Run("already minted", func(t *testing.T) {
		h.currency.Deposit(sender, 1000)
		require.NoError(t, h.ledger.FinishMint(validator, uid, tokenID, sender, metadata))

		err := h.ledger.FinishMint(validator, uid, tokenID, sender, metadata)
		assert.ErrorIs(t, err, registry.ErrTokenAlreadyExisted)
		assert.Equal(t, uint64(1), h.tokens.TotalSupply())
		assert.Equal(t, uint64(1), h.ledger.NonceOf(uid))
	})
}

// A pending mark may only be consumed by the registry that made it, for
// the owner that requested it.
func TestFinishMintPendingMismatch(t *testing.T) {
	h := newHarness(t)
	uidA, validatorA := h.register(t)
	uidB, validatorB := h.register(t)
	doc, anchorID := h.anchored(t)

	sender := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	metadata := unittest.MetadataFixture(10)
	h.currency.Deposit(sender, 1000)

	err := h.ledger.Mint(sender, uidA, tokenID, metadata, anchorID,
		[]model.Proof{doc.Proof(0)}, doc.Static, 0, gasBudget)
	require.NoError(t, err)

	// the other registry's validator cannot finalize the request
	err = h.ledger.FinishMint(validatorB, uidB, tokenID, sender, metadata)
	assert.ErrorIs(t, err, registry.ErrPendingOtherRegistry)
	assert.False(t, h.tokens.Exists(tokenID))
	assert.True(t, h.ledger.IsPending(tokenID))

	// the right registry cannot divert the token to another owner
	err = h.ledger.FinishMint(validatorA, uidA, tokenID, unittest.AccountFixture(), metadata)
	assert.ErrorIs(t, err, registry.ErrPendingOtherOwner)
	assert.True(t, h.ledger.IsPending(tokenID))

	// the matching callback still goes through
	require.NoError(t, h.ledger.FinishMint(validatorA, uidA, tokenID, sender, metadata))
	owner, err := h.tokens.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, sender, owner)
}

func TestCancelMint(t *testing.T) {
	h := newHarness(t)
	uid, _ := h.register(t)
	doc, anchorID := h.anchored(t)

	sender := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	metadata := unittest.MetadataFixture(10)
	proofs := []model.Proof{doc.Proof(0)}

	err := h.ledger.CancelMint(sender, tokenID)
	assert.ErrorIs(t, err, registry.ErrNoPendingMint)

	require.NoError(t, h.ledger.Mint(sender, uid, tokenID, metadata, anchorID, proofs, doc.Static, 0, gasBudget))

	err = h.ledger.CancelMint(unittest.AccountFixture(), tokenID)
	assert.ErrorIs(t, err, registry.ErrNotPendingRequester)
	assert.True(t, h.ledger.IsPending(tokenID))

	require.NoError(t, h.ledger.CancelMint(sender, tokenID))
	assert.False(t, h.ledger.IsPending(tokenID))

	// the id is free for a new request
	require.NoError(t, h.ledger.Mint(sender, uid, tokenID, metadata, anchorID, proofs, doc.Static, 0, gasBudget))
}

// mintToken drives a complete two-phase mint and returns the reserved
// deposit.
func (h *harness) mintToken(t *testing.T, uid model.RegistryID, validator model.AccountID,
	owner model.AccountID, tokenID model.Hash) model.Balance {

	doc, anchorID := h.anchored(t)
	metadata := unittest.MetadataFixture(10)
	deposit := h.conf.MintBaseFee + 10*h.conf.MintPerByteFee
	h.currency.Deposit(owner, deposit)

	err := h.ledger.Mint(owner, uid, tokenID, metadata, anchorID,
		[]model.Proof{doc.Proof(0)}, doc.Static, 0, gasBudget)
	require.NoError(t, err)
	err = h.ledger.FinishMint(validator, uid, tokenID, owner, metadata)
	require.NoError(t, err)

	return deposit
}

func TestTransferFromMovesDeposit(t *testing.T) {
	h := newHarness(t)
	uid, validator := h.register(t)

	from := unittest.AccountFixture()
	to := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	deposit := h.mintToken(t, uid, validator, from, tokenID)

	require.NoError(t, h.ledger.TransferFrom(from, from, to, tokenID))

	owner, err := h.tokens.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, to, owner)
	assert.Equal(t, model.Balance(0), h.currency.ReservedOf(from))
	assert.Equal(t, deposit, h.currency.ReservedOf(to))
}

func TestTransferFromUnauthorized(t *testing.T) {
	h := newHarness(t)
	uid, validator := h.register(t)

	from := unittest.AccountFixture()
	stranger := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	deposit := h.mintToken(t, uid, validator, from, tokenID)

	err := h.ledger.TransferFrom(stranger, from, stranger, tokenID)
	assert.ErrorIs(t, err, nft.ErrNotOwnerOrApprover)

	owner, err := h.tokens.OwnerOf(tokenID)
	require.NoError(t, err)
	assert.Equal(t, from, owner)
	assert.Equal(t, deposit, h.currency.ReservedOf(from))
}

func TestBurnReleasesDeposit(t *testing.T) {
	h := newHarness(t)
	uid, validator := h.register(t)

	owner := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	deposit := h.mintToken(t, uid, validator, owner, tokenID)
	require.Equal(t, deposit, h.currency.ReservedOf(owner))

	require.NoError(t, h.ledger.Burn(owner, tokenID))

	assert.False(t, h.tokens.Exists(tokenID))
	assert.Equal(t, model.Balance(0), h.currency.ReservedOf(owner))
	assert.Equal(t, deposit, h.currency.FreeOf(owner))

	_, err := h.ledger.MetadataOf(tokenID)
	assert.ErrorIs(t, err, nft.ErrTokenNotExists)
	_, err = h.ledger.DepositOf(tokenID)
	assert.ErrorIs(t, err, nft.ErrTokenNotExists)

	// the id can be minted again
	assert.False(t, h.ledger.IsPending(tokenID))
}

func TestBurnGuards(t *testing.T) {
	h := newHarness(t)
	uid, validator := h.register(t)

	owner := unittest.AccountFixture()
	stranger := unittest.AccountFixture()
	tokenID := unittest.HashFixture()
	h.mintToken(t, uid, validator, owner, tokenID)

	err := h.ledger.Burn(owner, unittest.HashFixture())
	assert.ErrorIs(t, err, nft.ErrTokenNotExists)

	err = h.ledger.Burn(stranger, tokenID)
	assert.ErrorIs(t, err, nft.ErrNotOwnerOrApprover)
	assert.True(t, h.tokens.Exists(tokenID))

	// an approved delegate may burn
	require.NoError(t, h.tokens.Approve(owner, stranger, tokenID))
	require.NoError(t, h.ledger.Burn(stranger, tokenID))
}
