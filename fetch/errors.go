package fetch

import "errors"

var (
	// ErrClosed is yielded by Entries once the sequence has been taken.
	ErrClosed = errors.New("fetch: closed")
)
