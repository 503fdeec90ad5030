package module

import (
	"errors"

	"github.com/anchorage/registry-go/model/registry"
)

// ErrInsufficientBalance is returned by Reserve when the account does not
// hold enough free balance to cover the requested amount.
var ErrInsufficientBalance = errors.New("insufficient balance to reserve")

// Currency is the host ledger's currency facility as seen by the registry
// core. All calls are atomic and fail fast; the core invokes them only after
// every other guard of an operation has passed, so a currency failure aborts
// the operation with no partial writes.
type Currency interface {

	// Reserve moves the given amount of the account's free balance into its
	// reserved balance. It returns ErrInsufficientBalance if the free
	// balance does not cover the amount.
	Reserve(account registry.AccountID, amount registry.Balance) error

	// Unreserve moves up to the given amount of the account's reserved
	// balance back into its free balance.
	Unreserve(account registry.AccountID, amount registry.Balance)

	// RepatriateReserved moves the given amount of reserved balance from
	// one account to another, keeping it reserved under the receiving
	// account.
	RepatriateReserved(from, to registry.AccountID, amount registry.Balance) error
}
