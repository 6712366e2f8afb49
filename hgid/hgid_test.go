package hgid

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHex = "1f0b2c3d4e5f60718293a4b5c6d7e8f901234567"

// --- FromSlice tests ---

func TestFromSlice(t *testing.T) {
	id := MustFromHex(sampleHex)
	got, err := FromSlice(id[:])
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestFromSlice_InvalidLength(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"short", make([]byte, 19)},
		{"long", make([]byte, 21)},
		{"sha256 width", make([]byte, 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromSlice(tt.in)
			assert.ErrorIs(t, err, ErrInvalidLength)
		})
	}
}

// --- FromHex tests ---

func TestFromHex(t *testing.T) {
	id, err := FromHex(sampleHex)
	require.NoError(t, err)
	assert.Equal(t, sampleHex, id.Hex())
	assert.Equal(t, sampleHex, id.String())
}

func TestFromHex_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short", sampleHex[:39]},
		{"long", sampleHex + "0"},
		{"non-hex", strings.Repeat("z", HexLen)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromHex(tt.in)
			assert.ErrorIs(t, err, ErrInvalidHex)
		})
	}
}

func TestMustFromHex_Panics(t *testing.T) {
	assert.Panics(t, func() { MustFromHex("abc") })
}

// --- ID tests ---

func TestNull(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.False(t, MustFromHex(sampleHex).IsNull())
	assert.Equal(t, strings.Repeat("0", HexLen), Null.Hex())
}

func TestSum(t *testing.T) {
	// SHA-1 of the empty string.
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", Sum(nil).Hex())
}

func TestBytesIsCopy(t *testing.T) {
	id := MustFromHex(sampleHex)
	b := id.Bytes()
	b[0] = 0xFF
	assert.Equal(t, byte(0x1f), id[0])
}

func TestTextMarshaling(t *testing.T) {
	key := NewKey("a/b.txt", MustFromHex(sampleHex))
	data, err := json.Marshal(key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"a/b.txt","hgid":"`+sampleHex+`"}`, string(data))

	var decoded Key
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, key, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"path":"x","hgid":"00"}`), &decoded))
}

// --- Key tests ---

func TestKeyEquality(t *testing.T) {
	id := MustFromHex(sampleHex)
	seen := map[Key]struct{}{NewKey("a", id): {}}

	_, ok := seen[NewKey("a", id)]
	assert.True(t, ok)
	_, ok = seen[NewKey("b", id)]
	assert.False(t, ok, "same id under a different path is a distinct key")
}

// --- Parents tests ---

func TestParents(t *testing.T) {
	a := MustFromHex(sampleHex)
	b := Sum([]byte("b"))

	tests := []struct {
		name  string
		p     Parents
		count int
		list  []ID
	}{
		{"none", NewParents(Null, Null), 0, nil},
		{"p1 only", NewParents(a, Null), 1, []ID{a}},
		{"p2 only", NewParents(Null, b), 1, []ID{b}},
		{"both", NewParents(a, b), 2, []ID{a, b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.count, tt.p.Count())
			assert.Equal(t, tt.list, tt.p.List())
		})
	}
}
