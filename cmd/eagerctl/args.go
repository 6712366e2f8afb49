package main

import (
	"fmt"
	"strings"

	"github.com/bitfsorg/eagerapi-go/hgid"
)

// parseKey parses "path@hex".
func parseKey(s string) (hgid.Key, error) {
	i := strings.LastIndexByte(s, '@')
	if i < 0 {
		return hgid.Key{}, fmt.Errorf("key %q: want path@hex", s)
	}
	id, err := hgid.FromHex(s[i+1:])
	if err != nil {
		return hgid.Key{}, fmt.Errorf("key %q: %w", s, err)
	}
	return hgid.NewKey(s[:i], id), nil
}

func parseKeys(args []string) ([]hgid.Key, error) {
	keys := make([]hgid.Key, 0, len(args))
	for _, a := range args {
		k, err := parseKey(a)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func parseIDs(args []string) ([]hgid.ID, error) {
	ids := make([]hgid.ID, 0, len(args))
	for _, a := range args {
		id, err := hgid.FromHex(a)
		if err != nil {
			return nil, fmt.Errorf("id %q: %w", a, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseOptionalID parses hex, treating "" as the null id.
func parseOptionalID(s string) (hgid.ID, error) {
	if s == "" {
		return hgid.Null, nil
	}
	return hgid.FromHex(s)
}
