// Package badger implements the persistent stores of the registry on top
// of a badger key-value database, with msgpack-encoded values and a
// read-through LRU cache per resource.
package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/anchorage/registry-go/model/registry"
	storagemodel "github.com/anchorage/registry-go/storage"
	"github.com/anchorage/registry-go/storage/badger/operation"
)

// Anchors implements the persistent anchor store.
type Anchors struct {
	db    *badger.DB
	cache *cache
}

var _ storagemodel.Anchors = (*Anchors)(nil)

// NewAnchors creates an anchor store on the given database handle.
func NewAnchors(db *badger.DB) *Anchors {

	retrieve := func(anchorID registry.Hash) (interface{}, error) {
		var anchor registry.Anchor
		err := db.View(operation.RetrieveAnchor(anchorID, &anchor))
		return anchor, err
	}

	a := &Anchors{
		db: db,
		cache: newCache(
			withLimit(1000),
			withRetrieve(retrieve),
		),
	}

	return a
}

// Store commits the anchor, replacing any previous commitment under the
// same id.
func (a *Anchors) Store(anchor registry.Anchor) error {
	err := a.db.Update(operation.UpsertAnchor(anchor))
	if err != nil {
		return fmt.Errorf("could not store anchor: %w", err)
	}
	a.cache.Insert(anchor.ID, anchor)
	return nil
}

// ByID retrieves the anchor with the given id, returning
// storage.ErrNotFound if it was never committed.
func (a *Anchors) ByID(anchorID registry.Hash) (registry.Anchor, error) {
	resource, err := a.cache.Get(anchorID)
	if err != nil {
		return registry.Anchor{}, err
	}
	return resource.(registry.Anchor), nil
}
