package storage

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/eagerapi-go/hgid"
)

// Resolver reads records from several local stores in priority order, for
// example a writable cache layered over a read-only fixture.
type Resolver struct {
	Sources []Store // consulted in order
	Cache   Writer  // optional; receives records found in a later source
}

// Compile-time interface check.
var _ Store = (*Resolver)(nil)

// NewResolver creates a Resolver over sources.
func NewResolver(sources ...Store) *Resolver {
	return &Resolver{Sources: sources}
}

// Get returns the first record found for id. Only ErrNotFound moves on to
// the next source; other errors are real failures.
func (r *Resolver) Get(id hgid.ID) ([]byte, error) {
	if len(r.Sources) == 0 {
		return nil, ErrNoSources
	}

	for i, src := range r.Sources {
		data, err := src.Get(id)
		if err == nil {
			if i > 0 && r.Cache != nil {
				// Verify content before caching it under its id.
				if hgid.Sum(data) == id {
					_ = r.Cache.Put(id, data) // best-effort cache
				}
			}
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("resolver: source %d: %w", i, err)
		}
	}

	return nil, fmt.Errorf("resolver: %w: %s", ErrNotFound, id)
}
