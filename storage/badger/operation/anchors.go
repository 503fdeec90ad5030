package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/anchorage/registry-go/model/registry"
)

// UpsertAnchor commits the anchor under its id, replacing any previous
// commitment. Re-anchoring is an explicit replace, so the write path is an
// upsert rather than an insert.
func UpsertAnchor(anchor registry.Anchor) func(*badger.Txn) error {
	return upsert(makePrefix(codeAnchor, anchor.ID), anchor)
}

// RetrieveAnchor loads the anchor with the given id.
func RetrieveAnchor(anchorID registry.Hash, anchor *registry.Anchor) func(*badger.Txn) error {
	return retrieve(makePrefix(codeAnchor, anchorID), anchor)
}
