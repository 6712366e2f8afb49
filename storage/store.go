// Package storage provides the content-addressed record stores consumed by
// the query façade. Keys are 20-byte record ids; values are raw records
// ([p1][p2][body]). The façade only reads; writers exist for fixtures.
package storage

import (
	"github.com/bitfsorg/eagerapi-go/hgid"
	"github.com/bitfsorg/eagerapi-go/record"
)

// Store is the read side of a record store.
type Store interface {
	// Get returns the record stored under id, or ErrNotFound.
	// Any other error is an I/O failure.
	Get(id hgid.ID) ([]byte, error)
}

// Writer stores records. Records are immutable once written.
type Writer interface {
	Put(id hgid.ID, data []byte) error
}

// BookmarkSource returns a snapshot of all bookmarks.
type BookmarkSource interface {
	Bookmarks() (map[string]hgid.ID, error)
}

// AddRecord encodes a record, stores it under its SHA-1 and returns the id.
func AddRecord(w Writer, p1, p2 hgid.ID, body []byte) (hgid.ID, error) {
	data := record.Encode(p1, p2, body)
	id := hgid.Sum(data)
	if err := w.Put(id, data); err != nil {
		return hgid.Null, err
	}
	return id, nil
}

// validateBookmark rejects names that cannot round-trip through the
// line-oriented bookmark listing.
func validateBookmark(name string) error {
	if name == "" {
		return ErrInvalidBookmark
	}
	for _, r := range name {
		if r == '\n' || r == 0 {
			return ErrInvalidBookmark
		}
	}
	return nil
}
