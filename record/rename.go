package record

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bitfsorg/eagerapi-go/hgid"
)

// Sentinel opens and closes the metadata block of a file body.
var Sentinel = []byte("\x01\n")

const (
	copyKey    = "copy"
	copyRevKey = "copyrev"
)

// ExtractRename returns the copy source recorded in the metadata block of
// body. It reports false unless the block is properly closed and carries both
// a valid "copy" path and a valid "copyrev" id. Only the bytes up to the
// closing sentinel are examined.
func ExtractRename(body []byte) (hgid.Key, bool) {
	header, ok := metadataBlock(body)
	if !ok {
		return hgid.Key{}, false
	}

	var (
		path    string
		rev     hgid.ID
		hasPath bool
		hasRev  bool
	)
	for _, line := range strings.Split(string(header), "\n") {
		line = strings.TrimSuffix(line, "\r")
		kv := strings.Split(line, ": ")
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case copyKey:
			if validPath(kv[1]) {
				path, hasPath = kv[1], true
			} else {
				hasPath = false
			}
		case copyRevKey:
			id, err := hgid.FromHex(kv[1])
			hasRev = err == nil
			if hasRev {
				rev = id
			}
		}
	}
	if !hasPath || !hasRev {
		return hgid.Key{}, false
	}
	return hgid.NewKey(path, rev), true
}

// StripMetadata returns body without its metadata block, if any.
func StripMetadata(body []byte) []byte {
	header, ok := metadataBlock(body)
	if !ok {
		return body
	}
	return body[len(Sentinel)+len(header)+len(Sentinel):]
}

// EncodeRenameBody prefixes content with a metadata block naming src as the
// copy source.
func EncodeRenameBody(src hgid.Key, content []byte) ([]byte, error) {
	if !validPath(src.Path) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCopyPath, src.Path)
	}
	var buf bytes.Buffer
	buf.Write(Sentinel)
	fmt.Fprintf(&buf, "%s: %s\n", copyKey, src.Path)
	fmt.Fprintf(&buf, "%s: %s\n", copyRevKey, src.ID.Hex())
	buf.Write(Sentinel)
	buf.Write(content)
	return buf.Bytes(), nil
}

// metadataBlock returns the bytes between the opening and closing sentinels.
func metadataBlock(body []byte) ([]byte, bool) {
	if !bytes.HasPrefix(body, Sentinel) {
		return nil, false
	}
	rest := body[len(Sentinel):]
	end := bytes.Index(rest, Sentinel)
	if end < 0 {
		return nil, false
	}
	return rest[:end], true
}

// validPath checks the repository path rules: relative, no empty, "." or
// ".." components, no NUL.
func validPath(p string) bool {
	if p == "" || strings.ContainsRune(p, 0) {
		return false
	}
	for _, comp := range strings.Split(p, "/") {
		if comp == "" || comp == "." || comp == ".." {
			return false
		}
	}
	return true
}
