package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/eagerapi-go/dag"
	"github.com/bitfsorg/eagerapi-go/hgid"
)

// --- Helper functions ---

func cid(name string) hgid.ID { return hgid.Sum([]byte(name)) }

// newTestGraph builds c0 - c1 - c2 - c3 - c4 with a side branch
// c1 - s1 merged into c3.
func newTestGraph(t *testing.T) *dag.MemGraph {
	t.Helper()
	g := dag.NewMemGraph()
	add := func(name string, parents ...string) {
		ps := make([]dag.Vertex, 0, len(parents))
		for _, p := range parents {
			ps = append(ps, dag.Vertex(cid(p).Bytes()))
		}
		_, err := g.Add(dag.Vertex(cid(name).Bytes()), ps...)
		require.NoError(t, err)
	}
	add("c0")
	add("c1", "c0")
	add("c2", "c1")
	add("s1", "c1")
	add("c3", "c2", "s1")
	add("c4", "c3")
	return g
}

// --- LocationToHash ---

func TestLocationToHash(t *testing.T) {
	g := newTestGraph(t)
	got, err := LocationToHash(context.Background(), g, []Request{
		{Location: Location{Descendant: cid("c4"), Distance: 1}, Count: 2},
		{Location: Location{Descendant: cid("c4"), Distance: 3}, Count: 10},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Location{Descendant: cid("c4"), Distance: 1}, got[0].Location)
	assert.Equal(t, []hgid.ID{cid("c3"), cid("c2")}, got[0].IDs)
	assert.Equal(t, uint64(2), got[0].Count)

	assert.Equal(t, []hgid.ID{cid("c1"), cid("c0")}, got[1].IDs)
	assert.Equal(t, uint64(2), got[1].Count)
}

func TestLocationToHash_PastRoot(t *testing.T) {
	g := newTestGraph(t)
	got, err := LocationToHash(context.Background(), g, []Request{
		{Location: Location{Descendant: cid("c1"), Distance: 5}, Count: 1},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].IDs)
	assert.Zero(t, got[0].Count)
}

func TestLocationToHash_UnknownDescendant(t *testing.T) {
	g := newTestGraph(t)
	_, err := LocationToHash(context.Background(), g, []Request{
		{Location: Location{Descendant: cid("nope")}, Count: 1},
	})
	assert.ErrorIs(t, err, ErrGraph)
	assert.ErrorIs(t, err, dag.ErrVertexNotFound)
}

func TestLocationToHash_MalformedName(t *testing.T) {
	g := &dag.MockGraph{
		ResolveRelativePathsFn: func(_ context.Context, paths []dag.AncestorPath) ([]dag.ResolvedPath, error) {
			return []dag.ResolvedPath{{Path: paths[0], Names: []dag.Vertex{dag.Vertex("short")}}}, nil
		},
	}
	_, err := LocationToHash(context.Background(), g, []Request{
		{Location: Location{Descendant: cid("c4")}, Count: 1},
	})
	assert.ErrorIs(t, err, ErrMalformedID)
	assert.ErrorIs(t, err, hgid.ErrInvalidLength)
}

// --- HashToLocation ---

func TestHashToLocation(t *testing.T) {
	g := newTestGraph(t)
	got, err := HashToLocation(context.Background(), g,
		[]hgid.ID{cid("c4")},
		[]hgid.ID{cid("c2"), cid("s1"), cid("nope"), cid("c4")})
	require.NoError(t, err)

	assert.Equal(t, []HashToLocationResponse{
		{ID: cid("c2"), Location: Location{Descendant: cid("c4"), Distance: 2}},
		{ID: cid("s1"), Location: Location{Descendant: cid("s1"), Distance: 0}},
		{ID: cid("c4"), Location: Location{Descendant: cid("c4"), Distance: 0}},
	}, got)
}

func TestHashToLocation_BatchDistances(t *testing.T) {
	anchor := cid("head")
	g := &dag.MockGraph{
		ResolveNamesToRelativePathsFn: func(context.Context, []dag.Vertex, []dag.Vertex) ([]dag.ResolvedPath, error) {
			return []dag.ResolvedPath{{
				Path:  dag.AncestorPath{X: dag.Vertex(anchor.Bytes()), N: 4, BatchSize: 3},
				Names: []dag.Vertex{dag.Vertex(cid("a").Bytes()), dag.Vertex(cid("b").Bytes()), dag.Vertex(cid("c").Bytes())},
			}}, nil
		},
	}
	got, err := HashToLocation(context.Background(), g, nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, r := range got {
		assert.Equal(t, anchor, r.Location.Descendant)
		assert.Equal(t, uint64(4+i), r.Location.Distance)
	}
}

func TestHashToLocation_MalformedAnchor(t *testing.T) {
	g := &dag.MockGraph{
		ResolveNamesToRelativePathsFn: func(context.Context, []dag.Vertex, []dag.Vertex) ([]dag.ResolvedPath, error) {
			return []dag.ResolvedPath{{
				Path:  dag.AncestorPath{X: dag.Vertex("bad"), BatchSize: 1},
				Names: []dag.Vertex{dag.Vertex(cid("a").Bytes())},
			}}, nil
		},
	}
	_, err := HashToLocation(context.Background(), g, nil, nil)
	assert.ErrorIs(t, err, ErrMalformedID)
}

func TestHashToLocation_UnknownHead(t *testing.T) {
	g := newTestGraph(t)
	_, err := HashToLocation(context.Background(), g, []hgid.ID{cid("nope")}, []hgid.ID{cid("c1")})
	assert.ErrorIs(t, err, ErrGraph)
}

// --- Round trip ---

func TestRoundTrip(t *testing.T) {
	g := newTestGraph(t)
	ctx := context.Background()
	ids := []hgid.ID{cid("c0"), cid("c1"), cid("c2"), cid("s1"), cid("c3"), cid("c4")}

	located, err := HashToLocation(ctx, g, []hgid.ID{cid("c4")}, ids)
	require.NoError(t, err)
	require.Len(t, located, len(ids))

	for _, l := range located {
		back, err := LocationToHash(ctx, g, []Request{{Location: l.Location, Count: 1}})
		require.NoError(t, err)
		require.Len(t, back, 1)
		assert.Equal(t, []hgid.ID{l.ID}, back[0].IDs)
	}
}
