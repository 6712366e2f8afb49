// Package dag defines the commit-graph index consumed by the query façade
// and ships an in-memory implementation that can be persisted to bbolt.
//
// Vertex names are opaque bytes. The graph never assumes a width; callers
// that surface names as fixed-width ids must validate them.
package dag

import (
	"context"
	"iter"
)

// Vertex is a commit name.
type Vertex []byte

// Id is a compact graph position. Parents always have smaller ids than
// their children.
type Id uint64

// AncestorPath addresses the commits X~N, X~(N+1), ... X~(N+BatchSize-1)
// where "~" follows first parents.
type AncestorPath struct {
	X         Vertex
	N         uint64
	BatchSize uint64
}

// ResolvedPath pairs a path with the names it resolved to. Names[i] is
// X~(N+i).
type ResolvedPath struct {
	Path  AncestorPath
	Names []Vertex
}

// FlatSegment is a contiguous range Low..High (inclusive) where every id
// after Low has exactly one parent, the previous id. Parents lists the
// parents of Low.
type FlatSegment struct {
	Low     Id   `cbor:"1,keyasint" json:"low"`
	High    Id   `cbor:"2,keyasint" json:"high"`
	Parents []Id `cbor:"3,keyasint" json:"parents"`
}

// CloneData is enough to rebuild a (sub)graph: its segments plus names for
// the ids the segments mention.
type CloneData[V any] struct {
	FlatSegments []FlatSegment `cbor:"1,keyasint" json:"flat_segments"`
	IDMap        map[Id]V      `cbor:"2,keyasint" json:"idmap"`
}

// Set is an ancestry set.
type Set interface {
	// Len returns the number of vertices in the set.
	Len() int
	// IterRev yields the vertices from the highest id to the lowest.
	// A consumer may stop early.
	IterRev(ctx context.Context) iter.Seq2[Vertex, error]
}

// Graph is the commit-graph index.
type Graph interface {
	// Only returns ancestors(heads) - ancestors(common).
	Only(ctx context.Context, heads, common []Vertex) (Set, error)

	// ParentNames returns the parents of v in order.
	ParentNames(ctx context.Context, v Vertex) ([]Vertex, error)

	// ResolveRelativePaths expands each path into ancestor names.
	ResolveRelativePaths(ctx context.Context, paths []AncestorPath) ([]ResolvedPath, error)

	// ResolveNamesToRelativePaths expresses names reachable from heads as
	// paths relative to a vertex the caller is expected to know.
	// Unreachable names are omitted.
	ResolveNamesToRelativePaths(ctx context.Context, heads, names []Vertex) ([]ResolvedPath, error)

	// ExportCloneData exports the whole graph.
	ExportCloneData(ctx context.Context) (CloneData[Vertex], error)

	// PullFastForwardMaster exports ancestors(newMaster) - ancestors(oldMaster).
	PullFastForwardMaster(ctx context.Context, oldMaster, newMaster Vertex) (CloneData[Vertex], error)
}
