package record

import "errors"

var (
	// ErrShortRecord indicates a record is shorter than the two-slot parent prefix.
	ErrShortRecord = errors.New("record: shorter than parent prefix")

	// ErrInvalidCopyPath indicates a rename source path cannot be written into a header.
	ErrInvalidCopyPath = errors.New("record: invalid copy source path")
)
