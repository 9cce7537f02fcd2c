// Package store persists the ordered collection of saved transaction snapshots.
//
// The collection is stored as one JSON document under a logical key and is
// rewritten wholesale on every mutation; there is no partial persistence.
// Readers attached to the same backend observe mutations through a ChangeBus
// carrying the collection key.
//
// Consistency is best effort and last-write-wins: two views that append
// concurrently from stale reads can overwrite each other's document. A
// document that fails to parse is treated as an empty collection.
package store
