// Package stdmap implements in-memory stores backed by Go maps, for hosts
// that keep the registry state in their own snapshotting machinery and for
// tests.
package stdmap

import (
	"sync"

	"github.com/anchorage/registry-go/model/registry"
	"github.com/anchorage/registry-go/storage"
)

// Anchors implements an in-memory anchor store guarded by a read-write
// mutex.
type Anchors struct {
	sync.RWMutex
	anchors map[registry.Hash]registry.Anchor
}

var _ storage.Anchors = (*Anchors)(nil)

// NewAnchors creates an empty in-memory anchor store.
func NewAnchors() *Anchors {
	return &Anchors{
		anchors: make(map[registry.Hash]registry.Anchor),
	}
}

// Store commits the anchor, replacing any previous commitment under the
// same id.
func (a *Anchors) Store(anchor registry.Anchor) error {
	a.Lock()
	defer a.Unlock()
	a.anchors[anchor.ID] = anchor
	return nil
}

// ByID retrieves the anchor with the given id, returning
// storage.ErrNotFound if it was never committed.
func (a *Anchors) ByID(anchorID registry.Hash) (registry.Anchor, error) {
	a.RLock()
	defer a.RUnlock()
	anchor, exists := a.anchors[anchorID]
	if !exists {
		return registry.Anchor{}, storage.ErrNotFound
	}
	return anchor, nil
}

// Size returns the number of committed anchors.
func (a *Anchors) Size() uint {
	a.RLock()
	defer a.RUnlock()
	return uint(len(a.anchors))
}
