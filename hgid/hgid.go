// Package hgid defines the fixed-width content identifiers and path keys
// shared by the record codec, the stores and the query façade.
package hgid

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Len is the width of an identifier in bytes (SHA-1 output).
const Len = 20

// HexLen is the width of an identifier rendered as hex.
const HexLen = Len * 2

// ID is a content or commit hash. The zero value is the null id.
type ID [Len]byte

// Null is the reserved "no parent" identifier.
var Null ID

// FromSlice copies b into an ID. b must be exactly Len bytes; anything else
// is corrupt input and is rejected rather than truncated or padded.
func FromSlice(b []byte) (ID, error) {
	var id ID
	if len(b) != Len {
		return id, fmt.Errorf("%w: got %d bytes", ErrInvalidLength, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// FromHex parses a 40 character hex string.
func FromHex(s string) (ID, error) {
	var id ID
	if len(s) != HexLen {
		return id, fmt.Errorf("%w: got %d characters", ErrInvalidHex, len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return Null, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return id, nil
}

// MustFromHex is FromHex for constants in tests and fixtures.
func MustFromHex(s string) ID {
	id, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Sum returns the SHA-1 identifier of data.
func Sum(data []byte) ID {
	return ID(sha1.Sum(data))
}

// IsNull reports whether id is the null id.
func (id ID) IsNull() bool {
	return id == Null
}

// Bytes returns a copy of the identifier bytes.
func (id ID) Bytes() []byte {
	b := make([]byte, Len)
	copy(b, id[:])
	return b
}

// Hex renders the identifier as lowercase hex.
func (id ID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ID) String() string {
	return id.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Key identifies one revision of a path. Two keys are equal only when both
// the path and the id match.
type Key struct {
	Path string `json:"path"`
	ID   ID     `json:"hgid"`
}

// NewKey builds a key.
func NewKey(path string, id ID) Key {
	return Key{Path: path, ID: id}
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.Path, k.ID.Hex()[:8])
}

// Parents holds the two parent slots of a record.
type Parents struct {
	P1 ID `json:"p1"`
	P2 ID `json:"p2"`
}

// NewParents builds a Parents value from the two slots.
func NewParents(p1, p2 ID) Parents {
	return Parents{P1: p1, P2: p2}
}

// Count returns the number of non-null parents.
func (p Parents) Count() int {
	n := 0
	if !p.P1.IsNull() {
		n++
	}
	if !p.P2.IsNull() {
		n++
	}
	return n
}

// List returns the non-null parents in slot order.
func (p Parents) List() []ID {
	var ids []ID
	for _, id := range [2]ID{p.P1, p.P2} {
		if !id.IsNull() {
			ids = append(ids, id)
		}
	}
	return ids
}
