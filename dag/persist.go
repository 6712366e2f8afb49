package dag

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"
)

var bucketGraph = []byte("graph")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("dag: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("dag: CBOR decoder initialization failed: " + err.Error())
	}
}

// storedVertex is the bucket value for one id.
type storedVertex struct {
	Name    []byte `cbor:"1,keyasint"`
	Parents []Id   `cbor:"2,keyasint"`
}

func idKey(id Id) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id))
	return k[:]
}

// SaveBolt replaces the graph bucket in db with the contents of g.
func SaveBolt(db *bbolt.DB, g *MemGraph) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketGraph); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("dag: reset bucket: %w", err)
		}
		b, err := tx.CreateBucket(bucketGraph)
		if err != nil {
			return fmt.Errorf("dag: create bucket: %w", err)
		}
		for i, v := range g.vertices {
			val, err := encMode.Marshal(storedVertex{Name: v.name, Parents: v.parents})
			if err != nil {
				return fmt.Errorf("dag: encode vertex %d: %w", i, err)
			}
			if err := b.Put(idKey(Id(i)), val); err != nil {
				return fmt.Errorf("dag: put vertex %d: %w", i, err)
			}
		}
		return nil
	})
}

// LoadBolt rebuilds a MemGraph from the graph bucket in db. A database
// without the bucket yields an empty graph.
func LoadBolt(db *bbolt.DB) (*MemGraph, error) {
	g := NewMemGraph()
	err := db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketGraph)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, val []byte) error {
			if len(k) != 8 || binary.BigEndian.Uint64(k) != uint64(len(g.vertices)) {
				return fmt.Errorf("%w: unexpected key %x", ErrCorruptIndex, k)
			}
			var sv storedVertex
			if err := decMode.Unmarshal(val, &sv); err != nil {
				return fmt.Errorf("%w: decode vertex %x: %w", ErrCorruptIndex, k, err)
			}
			parents := make([]Vertex, 0, len(sv.Parents))
			for _, p := range sv.Parents {
				if int(p) >= len(g.vertices) {
					return fmt.Errorf("%w: vertex %x has forward parent %d", ErrCorruptIndex, k, p)
				}
				parents = append(parents, g.vertices[p].name)
			}
			if _, err := g.Add(sv.Name, parents...); err != nil {
				return fmt.Errorf("%w: %w", ErrCorruptIndex, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}
