package location

import "errors"

var (
	// ErrMalformedID indicates the graph returned a name that is not a
	// fixed-width commit id.
	ErrMalformedID = errors.New("location: malformed commit id")

	// ErrGraph wraps failures reported by the graph index.
	ErrGraph = errors.New("location: graph lookup failed")
)
