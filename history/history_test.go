package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/eagerapi-go/fetch"
	"github.com/bitfsorg/eagerapi-go/hgid"
	"github.com/bitfsorg/eagerapi-go/record"
	"github.com/bitfsorg/eagerapi-go/storage"
)

// --- Helper functions ---

func put(t *testing.T, s *storage.MemStore, p1, p2 hgid.ID, body string) hgid.ID {
	t.Helper()
	id, err := storage.AddRecord(s, p1, p2, []byte(body))
	require.NoError(t, err)
	return id
}

func putRenamed(t *testing.T, s *storage.MemStore, p1, p2 hgid.ID, src hgid.Key, content string) hgid.ID {
	t.Helper()
	body, err := record.EncodeRenameBody(src, []byte(content))
	require.NoError(t, err)
	id, err := storage.AddRecord(s, p1, p2, body)
	require.NoError(t, err)
	return id
}

func entries(t *testing.T, results []fetch.Result[Entry]) []Entry {
	t.Helper()
	out := make([]Entry, 0, len(results))
	for _, r := range results {
		require.NoError(t, r.Err)
		out = append(out, r.Value)
	}
	return out
}

func keysOf(es []Entry) []hgid.Key {
	out := make([]hgid.Key, 0, len(es))
	for _, e := range es {
		out = append(out, e.Key)
	}
	return out
}

type brokenStore struct{ err error }

func (b brokenStore) Get(hgid.ID) ([]byte, error) { return nil, b.err }

// --- Walk ---

func TestWalk_Linear(t *testing.T) {
	s := storage.NewMemStore()
	r1 := put(t, s, hgid.Null, hgid.Null, "v1")
	r2 := put(t, s, r1, hgid.Null, "v2")

	got := entries(t, Walk(context.Background(), s, []hgid.Key{hgid.NewKey("a", r2)}, nil))
	require.Len(t, got, 2)

	assert.Equal(t, hgid.NewKey("a", r2), got[0].Key)
	assert.Equal(t, [2]hgid.Key{hgid.NewKey("a", r1), hgid.NewKey("a", hgid.Null)}, got[0].Parents)
	assert.True(t, got[0].LinkNode.IsNull())

	assert.Equal(t, hgid.NewKey("a", r1), got[1].Key)
	assert.True(t, got[1].Parents[0].ID.IsNull())
	assert.True(t, got[1].Parents[1].ID.IsNull())
}

func TestWalk_DiamondVisitedOnce(t *testing.T) {
	s := storage.NewMemStore()
	root := put(t, s, hgid.Null, hgid.Null, "root")
	left := put(t, s, root, hgid.Null, "left")
	right := put(t, s, root, hgid.Null, "right")
	merge := put(t, s, left, right, "merge")

	got := entries(t, Walk(context.Background(), s, []hgid.Key{hgid.NewKey("f", merge)}, nil))
	assert.ElementsMatch(t, []hgid.Key{
		hgid.NewKey("f", merge),
		hgid.NewKey("f", left),
		hgid.NewKey("f", right),
		hgid.NewKey("f", root),
	}, keysOf(got))
	assert.Equal(t, hgid.NewKey("f", merge), got[0].Key)
}

func TestWalk_DuplicateInputKeys(t *testing.T) {
	s := storage.NewMemStore()
	r1 := put(t, s, hgid.Null, hgid.Null, "v1")
	k := hgid.NewKey("a", r1)

	got := entries(t, Walk(context.Background(), s, []hgid.Key{k, k}, nil))
	assert.Len(t, got, 1)
}

func TestWalk_SameIDDifferentPaths(t *testing.T) {
	s := storage.NewMemStore()
	r1 := put(t, s, hgid.Null, hgid.Null, "shared")

	got := entries(t, Walk(context.Background(), s, []hgid.Key{hgid.NewKey("a", r1), hgid.NewKey("b", r1)}, nil))
	assert.Equal(t, []hgid.Key{hgid.NewKey("a", r1), hgid.NewKey("b", r1)}, keysOf(got))
}

func TestWalk_FollowsRename(t *testing.T) {
	s := storage.NewMemStore()
	old := put(t, s, hgid.Null, hgid.Null, "old content")
	src := hgid.NewKey("old/name", old)
	prior := put(t, s, hgid.Null, hgid.Null, "new before merge")
	renamed := putRenamed(t, s, prior, hgid.Null, src, "new content")

	got := entries(t, Walk(context.Background(), s, []hgid.Key{hgid.NewKey("new/name", renamed)}, nil))
	require.Len(t, got, 3)

	assert.Equal(t, [2]hgid.Key{hgid.NewKey("new/name", prior), src}, got[0].Parents)
	assert.Contains(t, keysOf(got), src)
	assert.Contains(t, keysOf(got), hgid.NewKey("new/name", prior))
}

func TestWalk_RenameIntoFirstSlot(t *testing.T) {
	s := storage.NewMemStore()
	old := put(t, s, hgid.Null, hgid.Null, "old")
	other := put(t, s, hgid.Null, hgid.Null, "other")
	src := hgid.NewKey("old", old)
	renamed := putRenamed(t, s, hgid.Null, other, src, "new")

	got := entries(t, Walk(context.Background(), s, []hgid.Key{hgid.NewKey("new", renamed)}, nil))
	require.Len(t, got, 3)
	assert.Equal(t, [2]hgid.Key{src, hgid.NewKey("new", other)}, got[0].Parents)
}

func TestWalk_RenameIgnoredWithoutNullSlot(t *testing.T) {
	s := storage.NewMemStore()
	old := put(t, s, hgid.Null, hgid.Null, "old")
	a := put(t, s, hgid.Null, hgid.Null, "a")
	b := put(t, s, hgid.Null, hgid.Null, "b")
	src := hgid.NewKey("old", old)

	tests := []struct {
		name   string
		p1, p2 hgid.ID
		want   int
	}{
		{"both null", hgid.Null, hgid.Null, 1},
		{"both set", a, b, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := putRenamed(t, s, tt.p1, tt.p2, src, "new "+tt.name)
			got := entries(t, Walk(context.Background(), s, []hgid.Key{hgid.NewKey("new", id)}, nil))
			assert.Len(t, got, tt.want)
			assert.NotContains(t, keysOf(got), src)
			assert.Equal(t, [2]hgid.Key{hgid.NewKey("new", tt.p1), hgid.NewKey("new", tt.p2)}, got[0].Parents)
		})
	}
}

func TestWalk_MissingRecordIsPerItem(t *testing.T) {
	s := storage.NewMemStore()
	r1 := put(t, s, hgid.Null, hgid.Null, "v1")
	missing := hgid.Sum([]byte("nowhere"))

	results := Walk(context.Background(), s, []hgid.Key{hgid.NewKey("x", missing), hgid.NewKey("a", r1)}, nil)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, storage.ErrNotFound)
	require.NoError(t, results[1].Err)
	assert.Equal(t, hgid.NewKey("a", r1), results[1].Value.Key)
}

func TestWalk_MissingParentIsPerItem(t *testing.T) {
	s := storage.NewMemStore()
	ghost := hgid.Sum([]byte("ghost"))
	child := put(t, s, ghost, hgid.Null, "child")

	results := Walk(context.Background(), s, []hgid.Key{hgid.NewKey("a", child)}, nil)
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, storage.ErrNotFound)
}

func TestWalk_StoreFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	results := Walk(context.Background(), brokenStore{err: boom}, []hgid.Key{hgid.NewKey("a", hgid.Sum([]byte("a")))}, nil)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, boom)
}

func TestWalk_ShortRecord(t *testing.T) {
	s := storage.NewMemStore()
	id := hgid.Sum([]byte("short"))
	require.NoError(t, s.Put(id, []byte("short")))

	results := Walk(context.Background(), s, []hgid.Key{hgid.NewKey("a", id)}, nil)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrBadRecord)
}

func TestWalk_DepthIgnored(t *testing.T) {
	s := storage.NewMemStore()
	r1 := put(t, s, hgid.Null, hgid.Null, "v1")
	r2 := put(t, s, r1, hgid.Null, "v2")
	depth := uint32(1)

	got := entries(t, Walk(context.Background(), s, []hgid.Key{hgid.NewKey("a", r2)}, &depth))
	assert.Len(t, got, 2)
}

func TestWalk_Empty(t *testing.T) {
	assert.Empty(t, Walk(context.Background(), storage.NewMemStore(), nil, nil))
}

func TestWalk_CancelledContext(t *testing.T) {
	s := storage.NewMemStore()
	r1 := put(t, s, hgid.Null, hgid.Null, "v1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Walk(ctx, s, []hgid.Key{hgid.NewKey("a", r1)}, nil)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestWalk_FailureCarriesKey(t *testing.T) {
	missing := hgid.NewKey("gone", hgid.Sum([]byte("gone")))
	results := Walk(context.Background(), storage.NewMemStore(), []hgid.Key{missing}, nil)
	require.Len(t, results, 1)

	var le *LookupError
	require.ErrorAs(t, results[0].Err, &le)
	assert.Equal(t, missing, le.Key)
	assert.Contains(t, le.Error(), "gone@")
}
