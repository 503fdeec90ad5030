package storage

import (
	"github.com/anchorage/registry-go/model/registry"
)

// Anchors represents the store of committed document anchors: a
// content-addressed map from anchor id to the anchored document root.
type Anchors interface {

	// Store commits the anchor under its id, replacing any previous
	// commitment for the same id.
	Store(anchor registry.Anchor) error

	// ByID retrieves the anchor with the given id. It returns ErrNotFound
	// if no anchor exists for the id.
	ByID(anchorID registry.Hash) (registry.Anchor, error)
}
