package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/eagerapi-go/hgid"
	"github.com/bitfsorg/eagerapi-go/record"
)

// --- Helper functions ---

// makeID creates a deterministic id from a seed.
func makeID(seed byte) hgid.ID {
	return hgid.Sum([]byte{seed})
}

// newTestStore creates a FileStore in a temporary directory.
func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// newTestBoltStore creates a BoltStore in a temporary directory.
func newTestBoltStore(t *testing.T, c Compression) *BoltStore {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "db", "eager.db"), c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// recordStore is the surface shared by every store implementation.
type recordStore interface {
	Store
	Writer
	BookmarkSource
	SetBookmark(name string, id hgid.ID) error
}

func allStores(t *testing.T) map[string]recordStore {
	return map[string]recordStore{
		"mem":       NewMemStore(),
		"file":      newTestStore(t),
		"bolt":      newTestBoltStore(t, CompressNone),
		"bolt-zstd": newTestBoltStore(t, CompressZstd),
		"bolt-lz4":  newTestBoltStore(t, CompressLZ4),
		"bolt-gzip": newTestBoltStore(t, CompressGZIP),
	}
}

// --- Shared behaviour ---

func TestStores_PutGet(t *testing.T) {
	for name, store := range allStores(t) {
		t.Run(name, func(t *testing.T) {
			data := record.Encode(makeID(1), hgid.Null, []byte("file content\n"))
			id := hgid.Sum(data)

			require.NoError(t, store.Put(id, data))
			got, err := store.Get(id)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestStores_GetNotFound(t *testing.T) {
	for name, store := range allStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(makeID(0xFF))
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NotErrorIs(t, err, ErrIOFailure)
		})
	}
}

func TestStores_PutEmpty(t *testing.T) {
	for name, store := range allStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, store.Put(makeID(1), nil), ErrEmptyContent)
		})
	}
}

func TestStores_AddRecord(t *testing.T) {
	for name, store := range allStores(t) {
		t.Run(name, func(t *testing.T) {
			id, err := AddRecord(store, makeID(1), makeID(2), []byte("body"))
			require.NoError(t, err)

			data, err := store.Get(id)
			require.NoError(t, err)
			assert.Equal(t, id, hgid.Sum(data))
			assert.Equal(t, hgid.NewParents(makeID(1), makeID(2)), record.Parents(data))
		})
	}
}

func TestStores_Bookmarks(t *testing.T) {
	for name, store := range allStores(t) {
		t.Run(name, func(t *testing.T) {
			marks, err := store.Bookmarks()
			require.NoError(t, err)
			assert.Empty(t, marks)

			require.NoError(t, store.SetBookmark("master", makeID(1)))
			require.NoError(t, store.SetBookmark("stable", makeID(2)))
			require.NoError(t, store.SetBookmark("master", makeID(3)))

			marks, err = store.Bookmarks()
			require.NoError(t, err)
			assert.Equal(t, map[string]hgid.ID{"master": makeID(3), "stable": makeID(2)}, marks)

			assert.ErrorIs(t, store.SetBookmark("", makeID(1)), ErrInvalidBookmark)
			assert.ErrorIs(t, store.SetBookmark("a\nb", makeID(1)), ErrInvalidBookmark)
		})
	}
}

func TestStores_BookmarksSnapshotIsCopy(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.SetBookmark("master", makeID(1)))

	snap, err := store.Bookmarks()
	require.NoError(t, err)
	snap["master"] = makeID(9)

	again, err := store.Bookmarks()
	require.NoError(t, err)
	assert.Equal(t, makeID(1), again["master"])
}

func TestStores_ConcurrentReads(t *testing.T) {
	for name, store := range allStores(t) {
		t.Run(name, func(t *testing.T) {
			ids := make([]hgid.ID, 16)
			for i := range ids {
				id, err := AddRecord(store, hgid.Null, hgid.Null, []byte{byte(i), 'x'})
				require.NoError(t, err)
				ids[i] = id
			}

			var wg sync.WaitGroup
			for _, id := range ids {
				wg.Add(1)
				go func(id hgid.ID) {
					defer wg.Done()
					_, err := store.Get(id)
					assert.NoError(t, err)
				}(id)
			}
			wg.Wait()
		})
	}
}

// --- FileStore tests ---

func TestNewFileStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.NotNil(t, store)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.ErrorIs(t, err, ErrInvalidBaseDir)
}

func TestIDToPath(t *testing.T) {
	id := makeID(0x42)
	hexID := id.Hex()
	assert.Equal(t, filepath.Join("/base", hexID[:2], hexID), IDToPath("/base", id))
}

func TestFileStore_Has(t *testing.T) {
	store := newTestStore(t)
	id := makeID(1)

	ok, err := store.Has(id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(id, []byte("data")))
	ok, err = store.Has(id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStore_List(t *testing.T) {
	store := newTestStore(t)
	ids := []hgid.ID{makeID(1), makeID(2), makeID(3)}
	for _, id := range ids {
		require.NoError(t, store.Put(id, []byte("data")))
	}
	require.NoError(t, store.SetBookmark("master", makeID(1)))

	// Foreign files are ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(store.baseDir, "zz"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(store.baseDir, ids[0].Hex()[:2], "junk"), []byte("x"), 0600))

	got, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, got)
}

func TestFileStore_GetIOFailure(t *testing.T) {
	store := newTestStore(t)
	id := makeID(1)
	// A directory where the record file should be makes ReadFile fail.
	require.NoError(t, os.MkdirAll(IDToPath(store.baseDir, id), 0700))

	_, err := store.Get(id)
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStore_BookmarkWithSpace(t *testing.T) {
	store := newTestStore(t)
	assert.ErrorIs(t, store.SetBookmark("a b", makeID(1)), ErrInvalidBookmark)
}

func TestFileStore_CorruptBookmarksFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(store.baseDir, bookmarksFile), []byte("nothex master\n"), 0600))

	_, err := store.Bookmarks()
	assert.ErrorIs(t, err, ErrIOFailure)
}

// --- BoltStore tests ---

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eager.db")
	store, err := OpenBoltStore(path, CompressZstd)
	require.NoError(t, err)

	id, err := AddRecord(store, hgid.Null, hgid.Null, []byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, store.SetBookmark("master", id))
	require.NoError(t, store.Close())

	// Reopening with a different compression still reads old frames.
	store, err = OpenBoltStore(path, CompressLZ4)
	require.NoError(t, err)
	defer store.Close()

	data, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), record.Body(data))

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	marks, err := store.Bookmarks()
	require.NoError(t, err)
	assert.Equal(t, id, marks["master"])
}

func TestBoltStore_InvalidCompression(t *testing.T) {
	_, err := OpenBoltStore(filepath.Join(t.TempDir(), "eager.db"), Compression(42))
	assert.ErrorIs(t, err, ErrUnsupportedCompression)
}
