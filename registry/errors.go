package registry

import (
	"errors"
)

var (
	// ErrValidationFnNotExisted is returned when the referenced registry
	// uid has no validator registered.
	ErrValidationFnNotExisted = errors.New("no validation function registered for registry")

	// ErrValidationFnAlreadyExists is returned when the validator address
	// is already bound to a registry. A validator address backs at most one
	// registry, so a callback sender identifies its registry unambiguously.
	ErrValidationFnAlreadyExists = errors.New("validation function already bound to a registry")

	// ErrNotValidationFn is returned when a mint callback does not come
	// from the registry's validator.
	ErrNotValidationFn = errors.New("sender is not the validation function of this registry")

	// ErrTokenAlreadyExisted is returned when the token id is already
	// minted or has a mint request pending validation.
	ErrTokenAlreadyExisted = errors.New("token already minted or pending")

	// ErrMetadataLengthInvalid is returned when the metadata length is
	// outside the configured bounds.
	ErrMetadataLengthInvalid = errors.New("metadata length out of bounds")

	// ErrDocumentNotAnchored is returned when no anchor exists for the
	// given anchor id.
	ErrDocumentNotAnchored = errors.New("document not anchored")

	// ErrProofValidationFailure is returned when the supplied proofs are
	// not consistent with the anchored document root.
	ErrProofValidationFailure = errors.New("proof validation failed")

	// ErrNoPendingMint is returned when cancelling a token id that has no
	// pending mint request.
	ErrNoPendingMint = errors.New("no pending mint for token")

	// ErrPendingOtherRegistry is returned when a validator tries to
	// finalize a token id whose mint request is pending under a different
	// registry.
	ErrPendingOtherRegistry = errors.New("mint request is pending under another registry")

	// ErrPendingOtherOwner is returned when a finalization names an owner
	// other than the account that requested the mint.
	ErrPendingOtherOwner = errors.New("mint request was made for another owner")

	// ErrNotPendingRequester is returned when an account other than the
	// original mint requester tries to cancel the request.
	ErrNotPendingRequester = errors.New("sender did not request this mint")

	// ErrCounterOverflow guards the uid and nonce counters; checked on
	// every increment, unreachable before the counters span uint64.
	ErrCounterOverflow = errors.New("counter overflow")
)
