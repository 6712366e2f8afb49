// Package history walks file ancestry through the record store, following
// renames recorded in file metadata.
package history

import (
	"context"
	"fmt"

	"github.com/bitfsorg/eagerapi-go/fetch"
	"github.com/bitfsorg/eagerapi-go/hgid"
	"github.com/bitfsorg/eagerapi-go/record"
	"github.com/bitfsorg/eagerapi-go/storage"
)

// Entry is one node of file history. Parents keeps the record's slot
// order; an absent parent has a null id. LinkNode is always null since the
// store does not track introducing commits.
type Entry struct {
	Key      hgid.Key    `json:"key"`
	Parents  [2]hgid.Key `json:"parents"`
	LinkNode hgid.ID     `json:"linknode"`
}

// Walk visits every ancestor of keys, each at most once, and returns one
// result per visited key. A key whose record cannot be read becomes a
// failed result and the walk carries on with the rest. depth is accepted
// for protocol compatibility and ignored.
func Walk(ctx context.Context, store storage.Store, keys []hgid.Key, depth *uint32) []fetch.Result[Entry] {
	_ = depth

	var out []fetch.Result[Entry]
	visited := make(map[hgid.Key]struct{})
	stack := make([]hgid.Key, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		stack = append(stack, keys[i])
	}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			out = append(out, fetch.Fail[Entry](err))
			return out
		}

		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}

		entry, err := visit(store, key)
		if err != nil {
			out = append(out, fetch.Fail[Entry](err))
			continue
		}
		for _, p := range entry.Parents {
			if !p.ID.IsNull() {
				stack = append(stack, p)
			}
		}
		out = append(out, fetch.OK(entry))
	}
	return out
}

func visit(store storage.Store, key hgid.Key) (Entry, error) {
	data, err := store.Get(key.ID)
	if err != nil {
		return Entry{}, &LookupError{Key: key, Err: err}
	}
	parents, body, err := record.Parse(data)
	if err != nil {
		return Entry{}, &LookupError{Key: key, Err: fmt.Errorf("%w: %w", ErrBadRecord, err)}
	}

	slots := [2]hgid.Key{
		hgid.NewKey(key.Path, parents.P1),
		hgid.NewKey(key.Path, parents.P2),
	}
	if src, ok := record.ExtractRename(body); ok {
		switch {
		case parents.P1.IsNull() && !parents.P2.IsNull():
			slots[0] = src
		case !parents.P1.IsNull() && parents.P2.IsNull():
			slots[1] = src
		}
	}
	return Entry{Key: key, Parents: slots}, nil
}
