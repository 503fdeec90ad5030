package registry

import (
	"encoding/hex"
	"fmt"
)

// AccountIDLen is the byte width of account identifiers, matching the
// 20-byte addressing used for deposit accounts.
const AccountIDLen = 20

// AccountID identifies an account on the host ledger. The registry core
// never interprets it; it only compares and stores it.
type AccountID [AccountIDLen]byte

// ZeroAccountID is an unset account, never a valid owner.
var ZeroAccountID = AccountID{}

// AccountIDFromBytes converts a byte slice to an account identifier.
func AccountIDFromBytes(b []byte) (AccountID, error) {
	var a AccountID
	if len(b) != AccountIDLen {
		return a, fmt.Errorf("invalid account id length: got %d, expected %d", len(b), AccountIDLen)
	}
	copy(a[:], b)
	return a, nil
}

func (a AccountID) Bytes() []byte {
	return a[:]
}

func (a AccountID) String() string {
	return hex.EncodeToString(a[:])
}

// RegistryID is the sequential identifier assigned to a registry when it is
// created. It doubles as the wire tag for validator callbacks.
type RegistryID uint64

// Balance is an amount of the host ledger's currency.
type Balance uint64
