// Package location translates between commit ids and positions expressed
// relative to a known descendant on the first-parent chain.
package location

import (
	"context"
	"fmt"

	"github.com/bitfsorg/eagerapi-go/dag"
	"github.com/bitfsorg/eagerapi-go/hgid"
)

// Location names the commit Distance first-parent steps below Descendant.
type Location struct {
	Descendant hgid.ID `json:"descendant"`
	Distance   uint64  `json:"distance"`
}

// Request asks for Count consecutive ancestors starting at Location.
type Request struct {
	Location Location `json:"location"`
	Count    uint64   `json:"count"`
}

// LocationToHashResponse answers a Request. Count always equals len(IDs)
// and may be smaller than requested when the chain ends early.
type LocationToHashResponse struct {
	Location Location  `json:"location"`
	IDs      []hgid.ID `json:"hgids"`
	Count    uint64    `json:"count"`
}

// HashToLocationResponse places one commit id.
type HashToLocationResponse struct {
	ID       hgid.ID  `json:"hgid"`
	Location Location `json:"location"`
}

// LocationToHash resolves each request to its ancestor ids. Either every
// request resolves or the call fails.
func LocationToHash(ctx context.Context, g dag.Graph, reqs []Request) ([]LocationToHashResponse, error) {
	paths := make([]dag.AncestorPath, 0, len(reqs))
	for _, r := range reqs {
		paths = append(paths, dag.AncestorPath{
			X:         dag.Vertex(r.Location.Descendant.Bytes()),
			N:         r.Location.Distance,
			BatchSize: r.Count,
		})
	}
	resolved, err := g.ResolveRelativePaths(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGraph, err)
	}
	if err := checkResolved(resolved); err != nil {
		return nil, err
	}

	out := make([]LocationToHashResponse, 0, len(resolved))
	for _, rp := range resolved {
		ids := make([]hgid.ID, 0, len(rp.Names))
		for _, n := range rp.Names {
			ids = append(ids, mustID(n))
		}
		out = append(out, LocationToHashResponse{
			Location: Location{Descendant: mustID(rp.Path.X), Distance: rp.Path.N},
			IDs:      ids,
			Count:    uint64(len(ids)),
		})
	}
	return out, nil
}

// HashToLocation locates ids relative to masterHeads. Ids the graph cannot
// place are left out of the result.
func HashToLocation(ctx context.Context, g dag.Graph, masterHeads, ids []hgid.ID) ([]HashToLocationResponse, error) {
	resolved, err := g.ResolveNamesToRelativePaths(ctx, vertices(masterHeads), vertices(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGraph, err)
	}
	if err := checkResolved(resolved); err != nil {
		return nil, err
	}

	var out []HashToLocationResponse
	for _, rp := range resolved {
		descendant := mustID(rp.Path.X)
		for i, n := range rp.Names {
			out = append(out, HashToLocationResponse{
				ID:       mustID(n),
				Location: Location{Descendant: descendant, Distance: rp.Path.N + uint64(i)},
			})
		}
	}
	return out, nil
}

func vertices(ids []hgid.ID) []dag.Vertex {
	out := make([]dag.Vertex, 0, len(ids))
	for _, id := range ids {
		out = append(out, dag.Vertex(id.Bytes()))
	}
	return out
}

// checkResolved validates every name before any response is built.
func checkResolved(resolved []dag.ResolvedPath) error {
	for _, rp := range resolved {
		if err := CheckID(rp.Path.X); err != nil {
			return err
		}
		for _, n := range rp.Names {
			if err := CheckID(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckID reports whether v is a valid commit id.
func CheckID(v dag.Vertex) error {
	if _, err := hgid.FromSlice(v); err != nil {
		return fmt.Errorf("%w: %x: %w", ErrMalformedID, []byte(v), err)
	}
	return nil
}

// mustID converts a name already accepted by CheckID.
func mustID(v dag.Vertex) hgid.ID {
	id, err := hgid.FromSlice(v)
	if err != nil {
		panic(err)
	}
	return id
}
