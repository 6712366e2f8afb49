package history

import (
	"errors"
	"fmt"

	"github.com/bitfsorg/eagerapi-go/hgid"
)

var (
	// ErrBadRecord indicates a stored record is too short to carry parents.
	ErrBadRecord = errors.New("history: malformed record")
)

// LookupError is a per-key failure.
type LookupError struct {
	Key hgid.Key
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("history: %s: %v", e.Key, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
