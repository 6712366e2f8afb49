package hgid

import "errors"

var (
	// ErrInvalidLength indicates an identifier is not exactly 20 bytes.
	ErrInvalidLength = errors.New("hgid: identifier must be 20 bytes")

	// ErrInvalidHex indicates a hex identifier is malformed or not 40 characters.
	ErrInvalidHex = errors.New("hgid: invalid hex identifier")
)
