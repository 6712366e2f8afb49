package dag

import "errors"

var (
	// ErrVertexNotFound indicates a vertex name is not in the graph.
	ErrVertexNotFound = errors.New("dag: vertex not found")

	// ErrDuplicateVertex indicates a vertex with this name already exists.
	ErrDuplicateVertex = errors.New("dag: duplicate vertex")

	// ErrNotFastForward indicates the old master is not an ancestor of the new one.
	ErrNotFastForward = errors.New("dag: not a fast-forward")

	// ErrEmptyName indicates a vertex name is empty.
	ErrEmptyName = errors.New("dag: empty vertex name")

	// ErrCorruptIndex indicates the persisted graph cannot be decoded.
	ErrCorruptIndex = errors.New("dag: corrupt graph index")
)
