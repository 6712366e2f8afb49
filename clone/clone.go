// Package clone assembles graph exports for new clones and fast-forward
// pulls, converting vertex names to commit ids.
package clone

import (
	"context"
	"fmt"

	"github.com/bitfsorg/eagerapi-go/dag"
	"github.com/bitfsorg/eagerapi-go/hgid"
)

// Data is clone data keyed by commit id.
type Data = dag.CloneData[hgid.ID]

// Full exports the whole graph.
func Full(ctx context.Context, g dag.Graph) (Data, error) {
	raw, err := g.ExportCloneData(ctx)
	if err != nil {
		return Data{}, fmt.Errorf("%w: %w", ErrGraph, err)
	}
	return convert(raw)
}

// FastForward exports what newMaster adds on top of oldMaster.
func FastForward(ctx context.Context, g dag.Graph, oldMaster, newMaster hgid.ID) (Data, error) {
	raw, err := g.PullFastForwardMaster(ctx, dag.Vertex(oldMaster.Bytes()), dag.Vertex(newMaster.Bytes()))
	if err != nil {
		return Data{}, fmt.Errorf("%w: %w", ErrGraph, err)
	}
	return convert(raw)
}

// convert validates every id-map value before building the result.
func convert(raw dag.CloneData[dag.Vertex]) (Data, error) {
	idmap := make(map[dag.Id]hgid.ID, len(raw.IDMap))
	for k, v := range raw.IDMap {
		id, err := hgid.FromSlice(v)
		if err != nil {
			return Data{}, fmt.Errorf("%w: id %d: %w", ErrMalformedID, k, err)
		}
		idmap[k] = id
	}
	return Data{FlatSegments: raw.FlatSegments, IDMap: idmap}, nil
}
