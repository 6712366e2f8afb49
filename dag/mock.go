package dag

import "context"

// MockGraph is a test double for Graph. A nil function field falls through
// to Base, which must then be set.
type MockGraph struct {
	Base Graph

	OnlyFn                        func(ctx context.Context, heads, common []Vertex) (Set, error)
	ParentNamesFn                 func(ctx context.Context, v Vertex) ([]Vertex, error)
	ResolveRelativePathsFn        func(ctx context.Context, paths []AncestorPath) ([]ResolvedPath, error)
	ResolveNamesToRelativePathsFn func(ctx context.Context, heads, names []Vertex) ([]ResolvedPath, error)
	ExportCloneDataFn             func(ctx context.Context) (CloneData[Vertex], error)
	PullFastForwardMasterFn       func(ctx context.Context, oldMaster, newMaster Vertex) (CloneData[Vertex], error)
}

var _ Graph = (*MockGraph)(nil)

func (m *MockGraph) Only(ctx context.Context, heads, common []Vertex) (Set, error) {
	if m.OnlyFn != nil {
		return m.OnlyFn(ctx, heads, common)
	}
	return m.Base.Only(ctx, heads, common)
}
func (m *MockGraph) ParentNames(ctx context.Context, v Vertex) ([]Vertex, error) {
	if m.ParentNamesFn != nil {
		return m.ParentNamesFn(ctx, v)
	}
	return m.Base.ParentNames(ctx, v)
}
func (m *MockGraph) ResolveRelativePaths(ctx context.Context, paths []AncestorPath) ([]ResolvedPath, error) {
	if m.ResolveRelativePathsFn != nil {
		return m.ResolveRelativePathsFn(ctx, paths)
	}
	return m.Base.ResolveRelativePaths(ctx, paths)
}
func (m *MockGraph) ResolveNamesToRelativePaths(ctx context.Context, heads, names []Vertex) ([]ResolvedPath, error) {
	if m.ResolveNamesToRelativePathsFn != nil {
		return m.ResolveNamesToRelativePathsFn(ctx, heads, names)
	}
	return m.Base.ResolveNamesToRelativePaths(ctx, heads, names)
}
func (m *MockGraph) ExportCloneData(ctx context.Context) (CloneData[Vertex], error) {
	if m.ExportCloneDataFn != nil {
		return m.ExportCloneDataFn(ctx)
	}
	return m.Base.ExportCloneData(ctx)
}
func (m *MockGraph) PullFastForwardMaster(ctx context.Context, oldMaster, newMaster Vertex) (CloneData[Vertex], error) {
	if m.PullFastForwardMasterFn != nil {
		return m.PullFastForwardMasterFn(ctx, oldMaster, newMaster)
	}
	return m.Base.PullFastForwardMaster(ctx, oldMaster, newMaster)
}

// NewSet returns a Set over names given in ascending id order.
func NewSet(names ...Vertex) Set {
	return &memSet{names: names}
}
