package nft

import (
	"errors"
)

var (
	// ErrTokenAlreadyExists is returned when minting a token id that is
	// already owned.
	ErrTokenAlreadyExists = errors.New("token already exists")

	// ErrTokenNotExists is returned when the referenced token has no owner.
	ErrTokenNotExists = errors.New("token does not exist")

	// ErrNotTokenOwner is returned when the stated owner does not own the
	// token.
	ErrNotTokenOwner = errors.New("account is not the token owner")

	// ErrNotOwnerOrApprover is returned when the sender is neither the
	// owner, the approved delegate, nor an approved operator.
	ErrNotOwnerOrApprover = errors.New("account is not owner or approver of the token")

	// ErrOwnerAlwaysApproved is returned when approving the owner for its
	// own token; the owner is implicitly approved.
	ErrOwnerAlwaysApproved = errors.New("owner is implicitly approved")

	// ErrSelfApproval is returned when an account sets itself as operator.
	ErrSelfApproval = errors.New("cannot set approval for own account")

	// ErrIndexOutOfBounds is returned by enumeration lookups past the end.
	ErrIndexOutOfBounds = errors.New("enumeration index out of bounds")

	// ErrCounterOverflow and ErrCounterUnderflow guard the supply and
	// balance counters. They are checked on every mutation but are not
	// reachable before the counters span the full uint64 range.
	ErrCounterOverflow  = errors.New("counter overflow")
	ErrCounterUnderflow = errors.New("counter underflow")
)
