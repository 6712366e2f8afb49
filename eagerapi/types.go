package eagerapi

import (
	"github.com/bitfsorg/eagerapi-go/hgid"
)

// ResponseMeta describes the (simulated) transport response.
type ResponseMeta struct {
	Version string `json:"version"`
	Status  int    `json:"status"`
	Server  string `json:"server,omitempty"`
}

// FileMetadata carries optional per-file facts. The local store records
// none of them, so every field is left unset.
type FileMetadata struct {
	Size        *uint64  `json:"size,omitempty"`
	ContentSHA1 *hgid.ID `json:"content_sha1,omitempty"`
}

// FileEntry is one file revision.
type FileEntry struct {
	Key      hgid.Key     `json:"key"`
	Parents  hgid.Parents `json:"parents"`
	Data     []byte       `json:"data"`
	Metadata FileMetadata `json:"metadata"`
}

// Size reports the content length.
func (e FileEntry) Size() int { return len(e.Data) }

// TreeAttributes selects what a tree entry carries.
type TreeAttributes struct {
	ManifestBlob  bool `json:"manifest_blob"`
	Parents       bool `json:"parents"`
	ChildMetadata bool `json:"child_metadata"`
}

// DefaultTreeAttributes returns the blob and parents, without child
// metadata.
func DefaultTreeAttributes() TreeAttributes {
	return TreeAttributes{ManifestBlob: true, Parents: true}
}

// TreeEntry is one tree revision. Data and Parents are nil unless
// requested.
type TreeEntry struct {
	Key     hgid.Key      `json:"key"`
	Data    []byte        `json:"data,omitempty"`
	Parents *hgid.Parents `json:"parents,omitempty"`
}

// Size reports the blob length.
func (e TreeEntry) Size() int { return len(e.Data) }

// CommitRevlogData is a raw commit record, parent prefix included.
type CommitRevlogData struct {
	ID   hgid.ID `json:"hgid"`
	Data []byte  `json:"revlog_data"`
}

// Size reports the record length.
func (c CommitRevlogData) Size() int { return len(c.Data) }

// CommitKnownResponse reports whether the store holds a commit.
type CommitKnownResponse struct {
	ID    hgid.ID `json:"hgid"`
	Known bool    `json:"known"`
}

// CommitGraphEntry is one commit with its parents.
type CommitGraphEntry struct {
	ID      hgid.ID   `json:"hgid"`
	Parents []hgid.ID `json:"parents"`
}

// BookmarkEntry resolves a bookmark name. ID is nil when the name is not
// set.
type BookmarkEntry struct {
	Name string   `json:"bookmark"`
	ID   *hgid.ID `json:"hgid,omitempty"`
}

// Request shapes for methods this repository does not implement.

// AnyID names an object of any kind.
type AnyID struct {
	Kind string `json:"kind"`
	ID   []byte `json:"id"`
}

// LookupResponse answers a lookup.
type LookupResponse struct {
	Index int          `json:"index"`
	Token *UploadToken `json:"token,omitempty"`
}

// UploadToken acknowledges uploaded content.
type UploadToken struct {
	ID   AnyID  `json:"id"`
	Data []byte `json:"data,omitempty"`
}

// FileUpload is one file content upload.
type FileUpload struct {
	ID   AnyID  `json:"id"`
	Data []byte `json:"data"`
}

// FilenodeUpload is one file revision upload.
type FilenodeUpload struct {
	Key     hgid.Key     `json:"key"`
	Parents hgid.Parents `json:"parents"`
	Token   UploadToken  `json:"token"`
}

// TreeUpload is one tree revision upload.
type TreeUpload struct {
	ID      hgid.ID      `json:"hgid"`
	Parents hgid.Parents `json:"parents"`
	Data    []byte       `json:"data"`
}

// ChangesetUpload is one commit upload.
type ChangesetUpload struct {
	ID   hgid.ID `json:"hgid"`
	Data []byte  `json:"data"`
}

// MutationEntry records commit rewrites accompanying a changeset upload.
type MutationEntry struct {
	Successor    hgid.ID   `json:"successor"`
	Predecessors []hgid.ID `json:"predecessors"`
}

// UploadResponse acknowledges one uploaded item.
type UploadResponse struct {
	Index int         `json:"index"`
	Token UploadToken `json:"token"`
}
