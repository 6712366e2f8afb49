package clone

import "errors"

var (
	// ErrMalformedID indicates the graph exported a name that is not a
	// fixed-width commit id.
	ErrMalformedID = errors.New("clone: malformed commit id")

	// ErrGraph wraps failures reported by the graph index.
	ErrGraph = errors.New("clone: graph export failed")
)
