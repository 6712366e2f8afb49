// Package record parses and builds the local blob record format:
//
//	[p1: 20 bytes][p2: 20 bytes][body]
//
// A file body may begin with a metadata block delimited by "\x01\n" that
// records the copy source of a renamed file.
package record

import (
	"fmt"

	"github.com/bitfsorg/eagerapi-go/hgid"
)

// PrefixLen is the length of the parent prefix.
const PrefixLen = hgid.Len * 2

// Split returns the parents and the body of data. The store guarantees that
// records are at least PrefixLen bytes; Split does not re-validate that.
func Split(data []byte) (p1, p2 hgid.ID, body []byte) {
	copy(p1[:], data[:hgid.Len])
	copy(p2[:], data[hgid.Len:PrefixLen])
	return p1, p2, data[PrefixLen:]
}

// Parse is the checked variant of Split.
func Parse(data []byte) (hgid.Parents, []byte, error) {
	if len(data) < PrefixLen {
		return hgid.Parents{}, nil, fmt.Errorf("%w: %d bytes", ErrShortRecord, len(data))
	}
	p1, p2, body := Split(data)
	return hgid.NewParents(p1, p2), body, nil
}

// Parents returns only the parent prefix of data.
func Parents(data []byte) hgid.Parents {
	p1, p2, _ := Split(data)
	return hgid.NewParents(p1, p2)
}

// Body returns data without the parent prefix.
func Body(data []byte) []byte {
	return data[PrefixLen:]
}

// Encode builds a record from two parents and a body.
func Encode(p1, p2 hgid.ID, body []byte) []byte {
	out := make([]byte, 0, PrefixLen+len(body))
	out = append(out, p1[:]...)
	out = append(out, p2[:]...)
	return append(out, body...)
}
