package storage

import (
	"errors"
)

// ErrNotFound is returned when no entry exists for the queried key.
// Implementations translate their engine's own not-found error
// (e.g. badger.ErrKeyNotFound) into this sentinel.
var ErrNotFound = errors.New("key not found")
