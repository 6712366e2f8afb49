package dag

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
)

type vertexEntry struct {
	name    Vertex
	parents []Id
}

// MemGraph is an append-only in-memory graph. Vertices must be added after
// their parents, so ids are a topological order.
type MemGraph struct {
	mu       sync.RWMutex
	vertices []vertexEntry
	byName   map[string]Id
}

// Compile-time interface check.
var _ Graph = (*MemGraph)(nil)

// NewMemGraph creates an empty graph.
func NewMemGraph() *MemGraph {
	return &MemGraph{byName: make(map[string]Id)}
}

// Add appends name with the given parents and returns its id.
func (g *MemGraph) Add(name Vertex, parents ...Vertex) (Id, error) {
	if len(name) == 0 {
		return 0, ErrEmptyName
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.byName[string(name)]; ok {
		return 0, fmt.Errorf("%w: %x", ErrDuplicateVertex, []byte(name))
	}
	var pids []Id
	for _, p := range parents {
		pid, ok := g.byName[string(p)]
		if !ok {
			return 0, fmt.Errorf("%w: parent %x", ErrVertexNotFound, []byte(p))
		}
		pids = append(pids, pid)
	}

	id := Id(len(g.vertices))
	g.vertices = append(g.vertices, vertexEntry{name: bytes.Clone(name), parents: pids})
	g.byName[string(name)] = id
	return id, nil
}

// Len returns the number of vertices.
func (g *MemGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// IdOf returns the id of name.
func (g *MemGraph) IdOf(name Vertex) (Id, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lookup(name)
}

func (g *MemGraph) lookup(name Vertex) (Id, error) {
	id, ok := g.byName[string(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %x", ErrVertexNotFound, []byte(name))
	}
	return id, nil
}

func (g *MemGraph) name(id Id) Vertex {
	return bytes.Clone(g.vertices[id].name)
}

// ancestors returns the membership of ancestors(ids), inclusive.
func (g *MemGraph) ancestors(ids []Id) []bool {
	seen := make([]bool, len(g.vertices))
	stack := slices.Clone(ids)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, g.vertices[id].parents...)
	}
	return seen
}

// Only returns ancestors(heads) - ancestors(common). Heads must exist;
// common names the graph does not know are ignored.
func (g *MemGraph) Only(ctx context.Context, heads, common []Vertex) (Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	headIDs := make([]Id, 0, len(heads))
	for _, h := range heads {
		id, err := g.lookup(h)
		if err != nil {
			return nil, err
		}
		headIDs = append(headIDs, id)
	}
	var commonIDs []Id
	for _, c := range common {
		if id, err := g.lookup(c); err == nil {
			commonIDs = append(commonIDs, id)
		}
	}

	include := g.ancestors(headIDs)
	exclude := g.ancestors(commonIDs)
	set := &memSet{}
	for id := range include {
		if include[id] && !exclude[id] {
			set.names = append(set.names, g.name(Id(id)))
		}
	}
	return set, nil
}

// ParentNames returns the parents of v.
func (g *MemGraph) ParentNames(ctx context.Context, v Vertex) ([]Vertex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	id, err := g.lookup(v)
	if err != nil {
		return nil, err
	}
	parents := make([]Vertex, 0, len(g.vertices[id].parents))
	for _, p := range g.vertices[id].parents {
		parents = append(parents, g.name(p))
	}
	return parents, nil
}

// firstParent returns the first parent of id.
func (g *MemGraph) firstParent(id Id) (Id, bool) {
	ps := g.vertices[id].parents
	if len(ps) == 0 {
		return 0, false
	}
	return ps[0], true
}

// ResolveRelativePaths walks N first parents from X, then collects up to
// BatchSize names. A chain that ends early yields fewer names.
func (g *MemGraph) ResolveRelativePaths(ctx context.Context, paths []AncestorPath) ([]ResolvedPath, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]ResolvedPath, 0, len(paths))
	for _, p := range paths {
		id, err := g.lookup(p.X)
		if err != nil {
			return nil, err
		}
		resolved := ResolvedPath{Path: AncestorPath{X: bytes.Clone(p.X), N: p.N, BatchSize: p.BatchSize}}

		ok := true
		for i := uint64(0); i < p.N && ok; i++ {
			id, ok = g.firstParent(id)
		}
		for i := uint64(0); i < p.BatchSize && ok; i++ {
			resolved.Names = append(resolved.Names, g.name(id))
			id, ok = g.firstParent(id)
		}
		out = append(out, resolved)
	}
	return out, nil
}

type anchorDistance struct {
	anchor Id
	n      uint64
}

// ResolveNamesToRelativePaths locates each name on a first-parent chain.
// Chains are tried from the heads first, then from non-first parents of
// merges (highest id first), so a name is expressed relative to the
// nearest vertex the caller can be assumed to know.
func (g *MemGraph) ResolveNamesToRelativePaths(ctx context.Context, heads, names []Vertex) ([]ResolvedPath, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	headIDs := make([]Id, 0, len(heads))
	for _, h := range heads {
		id, err := g.lookup(h)
		if err != nil {
			return nil, err
		}
		headIDs = append(headIDs, id)
	}

	reachable := g.ancestors(headIDs)
	anchors := slices.Clone(headIDs)
	for id := len(g.vertices) - 1; id >= 0; id-- {
		if !reachable[id] {
			continue
		}
		if ps := g.vertices[id].parents; len(ps) > 1 {
			anchors = append(anchors, ps[1:]...)
		}
	}

	located := make(map[Id]anchorDistance)
	for _, anchor := range anchors {
		id, ok, n := anchor, true, uint64(0)
		for ok {
			if _, done := located[id]; done {
				break
			}
			located[id] = anchorDistance{anchor: anchor, n: n}
			id, ok = g.firstParent(id)
			n++
		}
	}

	var out []ResolvedPath
	for _, name := range names {
		id, err := g.lookup(name)
		if err != nil {
			continue
		}
		loc, ok := located[id]
		if !ok {
			continue
		}
		out = append(out, ResolvedPath{
			Path:  AncestorPath{X: g.name(loc.anchor), N: loc.n, BatchSize: 1},
			Names: []Vertex{g.name(id)},
		})
	}
	return out, nil
}

// ExportCloneData exports every vertex.
func (g *MemGraph) ExportCloneData(ctx context.Context) (CloneData[Vertex], error) {
	if err := ctx.Err(); err != nil {
		return CloneData[Vertex]{}, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	all := make([]bool, len(g.vertices))
	for i := range all {
		all[i] = true
	}
	return g.export(all), nil
}

// PullFastForwardMaster exports the vertices newMaster adds over oldMaster.
func (g *MemGraph) PullFastForwardMaster(ctx context.Context, oldMaster, newMaster Vertex) (CloneData[Vertex], error) {
	if err := ctx.Err(); err != nil {
		return CloneData[Vertex]{}, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	oldID, err := g.lookup(oldMaster)
	if err != nil {
		return CloneData[Vertex]{}, err
	}
	newID, err := g.lookup(newMaster)
	if err != nil {
		return CloneData[Vertex]{}, err
	}

	include := g.ancestors([]Id{newID})
	if !include[oldID] {
		return CloneData[Vertex]{}, fmt.Errorf("%w: %x is not an ancestor of %x", ErrNotFastForward, []byte(oldMaster), []byte(newMaster))
	}
	exclude := g.ancestors([]Id{oldID})
	for id := range include {
		include[id] = include[id] && !exclude[id]
	}
	return g.export(include), nil
}

// export builds flat segments over the member ids. The id map names every
// member plus every outside parent a segment refers to.
func (g *MemGraph) export(member []bool) CloneData[Vertex] {
	data := CloneData[Vertex]{IDMap: make(map[Id]Vertex)}
	var cur *FlatSegment
	for i := range member {
		if !member[i] {
			cur = nil
			continue
		}
		id := Id(i)
		ps := g.vertices[id].parents
		if cur != nil && len(ps) == 1 && ps[0] == cur.High {
			cur.High = id
		} else {
			data.FlatSegments = append(data.FlatSegments, FlatSegment{Low: id, High: id, Parents: slices.Clone(ps)})
			cur = &data.FlatSegments[len(data.FlatSegments)-1]
			for _, p := range ps {
				data.IDMap[p] = g.name(p)
			}
		}
		data.IDMap[id] = g.name(id)
	}
	return data
}

type memSet struct {
	names []Vertex // ascending id order
}

func (s *memSet) Len() int { return len(s.names) }

func (s *memSet) IterRev(ctx context.Context) iter.Seq2[Vertex, error] {
	return func(yield func(Vertex, error) bool) {
		for i := len(s.names) - 1; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(s.names[i], nil) {
				return
			}
		}
	}
}
