package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/eagerapi-go/hgid"
)

// failingStore returns err for every Get.
type failingStore struct{ err error }

func (f failingStore) Get(hgid.ID) ([]byte, error) { return nil, f.err }

func TestResolver_FirstSourceWins(t *testing.T) {
	a, b := NewMemStore(), NewMemStore()
	id := makeID(1)
	require.NoError(t, a.Put(id, []byte("from a")))
	require.NoError(t, b.Put(id, []byte("from b")))

	data, err := NewResolver(a, b).Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("from a"), data)
}

func TestResolver_FallsThroughNotFound(t *testing.T) {
	cache, fixture := NewMemStore(), NewMemStore()
	id, err := AddRecord(fixture, hgid.Null, hgid.Null, []byte("fixture"))
	require.NoError(t, err)

	r := NewResolver(cache, fixture)
	r.Cache = cache

	data, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, hgid.Sum(data), id)

	// Verified content is written back to the cache.
	cached, err := cache.Get(id)
	require.NoError(t, err)
	assert.Equal(t, data, cached)
}

func TestResolver_DoesNotCacheMismatchedContent(t *testing.T) {
	cache, fixture := NewMemStore(), NewMemStore()
	id := makeID(1)
	require.NoError(t, fixture.Put(id, []byte("not hashing to id")))

	r := NewResolver(cache, fixture)
	r.Cache = cache
	_, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestResolver_AllMissing(t *testing.T) {
	_, err := NewResolver(NewMemStore(), NewMemStore()).Get(makeID(1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_RealErrorStops(t *testing.T) {
	boom := errors.New("disk on fire")
	fixture := NewMemStore()
	id, err := AddRecord(fixture, hgid.Null, hgid.Null, []byte("x"))
	require.NoError(t, err)

	_, err = NewResolver(failingStore{boom}, fixture).Get(id)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestResolver_NoSources(t *testing.T) {
	_, err := NewResolver().Get(makeID(1))
	assert.ErrorIs(t, err, ErrNoSources)
}
