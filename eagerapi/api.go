package eagerapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/bitfsorg/eagerapi-go/clone"
	"github.com/bitfsorg/eagerapi-go/dag"
	"github.com/bitfsorg/eagerapi-go/fetch"
	"github.com/bitfsorg/eagerapi-go/hgid"
	"github.com/bitfsorg/eagerapi-go/history"
	"github.com/bitfsorg/eagerapi-go/location"
	"github.com/bitfsorg/eagerapi-go/logutil"
	"github.com/bitfsorg/eagerapi-go/record"
)

// API is the batch query protocol. Every method takes a repository name,
// which a local repository ignores.
type API interface {
	Health(ctx context.Context) (ResponseMeta, error)
	Files(ctx context.Context, repo string, keys []hgid.Key) (*fetch.Fetch[FileEntry], error)
	History(ctx context.Context, repo string, keys []hgid.Key, length *uint32) (*fetch.Fetch[history.Entry], error)
	Trees(ctx context.Context, repo string, keys []hgid.Key, attrs *TreeAttributes) (*fetch.Fetch[TreeEntry], error)
	CompleteTrees(ctx context.Context, repo string, rootDir string, mfNodes, baseMfNodes []hgid.ID, depth *int) (*fetch.Fetch[TreeEntry], error)
	CommitRevlogData(ctx context.Context, repo string, ids []hgid.ID) (*fetch.Fetch[CommitRevlogData], error)
	CloneData(ctx context.Context, repo string) (clone.Data, error)
	PullFastForwardMaster(ctx context.Context, repo string, oldMaster, newMaster hgid.ID) (clone.Data, error)
	FullIdmapCloneData(ctx context.Context, repo string) (clone.Data, error)
	CommitLocationToHash(ctx context.Context, repo string, reqs []location.Request) (*fetch.Fetch[location.LocationToHashResponse], error)
	CommitHashToLocation(ctx context.Context, repo string, masterHeads, ids []hgid.ID) (*fetch.Fetch[location.HashToLocationResponse], error)
	CommitKnown(ctx context.Context, repo string, ids []hgid.ID) (*fetch.Fetch[CommitKnownResponse], error)
	CommitGraph(ctx context.Context, repo string, heads, common []hgid.ID) (*fetch.Fetch[CommitGraphEntry], error)
	Bookmarks(ctx context.Context, repo string, names []string) (*fetch.Fetch[BookmarkEntry], error)
	LookupBatch(ctx context.Context, repo string, items []AnyID) (*fetch.Fetch[LookupResponse], error)
	ProcessFilesUpload(ctx context.Context, repo string, data []FileUpload) (*fetch.Fetch[UploadToken], error)
	UploadFilenodesBatch(ctx context.Context, repo string, items []FilenodeUpload) (*fetch.Fetch[UploadResponse], error)
	UploadTreesBatch(ctx context.Context, repo string, items []TreeUpload) (*fetch.Fetch[UploadResponse], error)
	UploadChangesets(ctx context.Context, repo string, changesets []ChangesetUpload, mutations []MutationEntry) (*fetch.Fetch[UploadResponse], error)
}

// Compile-time interface check.
var _ API = (*Repo)(nil)

// begin tags a call with a request id and logs its arguments.
func (r *Repo) begin(ctx context.Context, method string, args ...any) *slog.Logger {
	l := r.logger.With("request", uuid.NewString(), "method", method)
	l.DebugContext(ctx, method, args...)
	return l
}

func (r *Repo) get(ctx context.Context, l *slog.Logger, id hgid.ID) ([]byte, error) {
	data, err := r.store.Get(id)
	if err != nil {
		se := storeError(id, err)
		if se.Status == http.StatusNotFound {
			l.Log(ctx, logutil.LevelTrace, "not found", "id", id.Hex())
		}
		return nil, se
	}
	l.Log(ctx, logutil.LevelTrace, "found", "id", id.Hex(), "bytes", len(data))
	return data, nil
}

func (r *Repo) record(ctx context.Context, l *slog.Logger, id hgid.ID) (hgid.Parents, []byte, error) {
	data, err := r.get(ctx, l, id)
	if err != nil {
		return hgid.Parents{}, nil, err
	}
	parents, body, err := record.Parse(data)
	if err != nil {
		return hgid.Parents{}, nil, internal(fmt.Errorf("%s: %w", id, err))
	}
	return parents, bytes.Clone(body), nil
}

// Health reports a canned success.
func (r *Repo) Health(ctx context.Context) (ResponseMeta, error) {
	return ResponseMeta{Version: "HTTP/1.1", Status: http.StatusOK, Server: ServerName}, nil
}

// Files returns the content and parents of each key.
func (r *Repo) Files(ctx context.Context, _ string, keys []hgid.Key) (*fetch.Fetch[FileEntry], error) {
	l := r.begin(ctx, "files", "keys", logutil.Stringers(keys))
	results := make([]fetch.Result[FileEntry], 0, len(keys))
	for _, key := range keys {
		parents, body, err := r.record(ctx, l, key.ID)
		if err != nil {
			results = append(results, fetch.Fail[FileEntry](err))
			continue
		}
		results = append(results, fetch.OK(FileEntry{Key: key, Parents: parents, Data: body}))
	}
	return fetch.FromResults(results), nil
}

// History returns every ancestor of keys, following renames. length is
// ignored.
func (r *Repo) History(ctx context.Context, _ string, keys []hgid.Key, length *uint32) (*fetch.Fetch[history.Entry], error) {
	l := r.begin(ctx, "history", "keys", logutil.Stringers(keys))
	results := history.Walk(ctx, r.store, keys, length)
	for i, res := range results {
		if res.Err != nil {
			results[i].Err = historyError(ctx, l, res.Err)
		}
	}
	return fetch.FromResults(results), nil
}

func historyError(ctx context.Context, l *slog.Logger, err error) error {
	var le *history.LookupError
	if !errors.As(err, &le) {
		return internal(err)
	}
	se := storeError(le.Key.ID, le.Err)
	if se.Status == http.StatusNotFound {
		l.Log(ctx, logutil.LevelTrace, "not found", "id", le.Key.ID.Hex())
	}
	return se
}

// Trees returns tree entries carrying what attrs asks for. A nil attrs
// means DefaultTreeAttributes. Child metadata cannot be computed and
// rejects the whole call.
func (r *Repo) Trees(ctx context.Context, _ string, keys []hgid.Key, attrs *TreeAttributes) (*fetch.Fetch[TreeEntry], error) {
	l := r.begin(ctx, "trees", "keys", logutil.Stringers(keys))
	a := DefaultTreeAttributes()
	if attrs != nil {
		a = *attrs
	}
	if a.ChildMetadata {
		return nil, invalidRequest("child metadata is not supported for trees")
	}

	results := make([]fetch.Result[TreeEntry], 0, len(keys))
	for _, key := range keys {
		parents, body, err := r.record(ctx, l, key.ID)
		if err != nil {
			results = append(results, fetch.Fail[TreeEntry](err))
			continue
		}
		entry := TreeEntry{Key: key}
		if a.ManifestBlob {
			entry.Data = body
		}
		if a.Parents {
			entry.Parents = &parents
		}
		results = append(results, fetch.OK(entry))
	}
	return fetch.FromResults(results), nil
}

// CompleteTrees is not supported.
func (r *Repo) CompleteTrees(context.Context, string, string, []hgid.ID, []hgid.ID, *int) (*fetch.Fetch[TreeEntry], error) {
	return nil, notImplemented("complete_trees")
}

// CommitRevlogData returns raw commit records, parent prefix included.
func (r *Repo) CommitRevlogData(ctx context.Context, _ string, ids []hgid.ID) (*fetch.Fetch[CommitRevlogData], error) {
	l := r.begin(ctx, "revlog_data", "ids", logutil.Stringers(ids))
	results := make([]fetch.Result[CommitRevlogData], 0, len(ids))
	for _, id := range ids {
		data, err := r.get(ctx, l, id)
		if err != nil {
			results = append(results, fetch.Fail[CommitRevlogData](err))
			continue
		}
		results = append(results, fetch.OK(CommitRevlogData{ID: id, Data: bytes.Clone(data)}))
	}
	return fetch.FromResults(results), nil
}

// CloneData exports the whole commit graph.
func (r *Repo) CloneData(ctx context.Context, _ string) (clone.Data, error) {
	r.begin(ctx, "clone_data")
	data, err := clone.Full(ctx, r.graph)
	if err != nil {
		return clone.Data{}, internal(err)
	}
	return data, nil
}

// PullFastForwardMaster exports the commits newMaster adds over oldMaster.
func (r *Repo) PullFastForwardMaster(ctx context.Context, _ string, oldMaster, newMaster hgid.ID) (clone.Data, error) {
	r.begin(ctx, "pull_fast_forward_master", "old", oldMaster, "new", newMaster)
	data, err := clone.FastForward(ctx, r.graph, oldMaster, newMaster)
	if err != nil {
		return clone.Data{}, internal(err)
	}
	return data, nil
}

// FullIdmapCloneData is not supported.
func (r *Repo) FullIdmapCloneData(context.Context, string) (clone.Data, error) {
	return clone.Data{}, notImplemented("full_idmap_clone_data")
}

// CommitLocationToHash resolves graph locations to commit ids.
func (r *Repo) CommitLocationToHash(ctx context.Context, _ string, reqs []location.Request) (*fetch.Fetch[location.LocationToHashResponse], error) {
	r.begin(ctx, "commit_location_to_hash", "requests", len(reqs))
	resp, err := location.LocationToHash(ctx, r.graph, reqs)
	if err != nil {
		return nil, internal(err)
	}
	return fetch.FromResults(okAll(resp)), nil
}

// CommitHashToLocation places ids relative to masterHeads. Ids outside the
// master group are omitted.
func (r *Repo) CommitHashToLocation(ctx context.Context, _ string, masterHeads, ids []hgid.ID) (*fetch.Fetch[location.HashToLocationResponse], error) {
	r.begin(ctx, "commit_hash_to_location", "heads", logutil.Stringers(masterHeads), "ids", logutil.Stringers(ids))
	resp, err := location.HashToLocation(ctx, r.graph, masterHeads, ids)
	if err != nil {
		return nil, internal(err)
	}
	return fetch.FromResults(okAll(resp)), nil
}

// CommitKnown reports whether the store holds each id. Graph membership
// is not consulted.
func (r *Repo) CommitKnown(ctx context.Context, _ string, ids []hgid.ID) (*fetch.Fetch[CommitKnownResponse], error) {
	l := r.begin(ctx, "commit_known", "ids", logutil.Stringers(ids))
	results := make([]fetch.Result[CommitKnownResponse], 0, len(ids))
	for _, id := range ids {
		_, err := r.get(ctx, l, id)
		switch {
		case err == nil:
			results = append(results, fetch.OK(CommitKnownResponse{ID: id, Known: true}))
		case errors.Is(err, ErrNotFound):
			results = append(results, fetch.OK(CommitKnownResponse{ID: id, Known: false}))
		default:
			results = append(results, fetch.Fail[CommitKnownResponse](err))
		}
	}
	return fetch.FromResults(results), nil
}

// CommitGraph streams ancestors(heads) - ancestors(common) from the
// highest graph position down, each with its parents.
func (r *Repo) CommitGraph(ctx context.Context, _ string, heads, common []hgid.ID) (*fetch.Fetch[CommitGraphEntry], error) {
	r.begin(ctx, "commit_graph", "heads", logutil.Stringers(heads), "common", logutil.Stringers(common))
	set, err := r.graph.Only(ctx, vertices(heads), vertices(common))
	if err != nil {
		return nil, internal(err)
	}

	return fetch.Stream(ctx, func(ctx context.Context, emit func(fetch.Result[CommitGraphEntry]) bool) error {
		for v, err := range set.IterRev(ctx) {
			if err != nil {
				return internal(err)
			}
			if !emit(r.graphEntry(ctx, v)) {
				return nil
			}
		}
		return nil
	}), nil
}

func (r *Repo) graphEntry(ctx context.Context, v dag.Vertex) fetch.Result[CommitGraphEntry] {
	id, err := hgid.FromSlice(v)
	if err != nil {
		return fetch.Fail[CommitGraphEntry](internal(err))
	}
	names, err := r.graph.ParentNames(ctx, v)
	if err != nil {
		return fetch.Fail[CommitGraphEntry](internal(err))
	}
	parents := make([]hgid.ID, 0, len(names))
	for _, n := range names {
		p, err := hgid.FromSlice(n)
		if err != nil {
			return fetch.Fail[CommitGraphEntry](internal(fmt.Errorf("parent of %s: %w", id, err)))
		}
		parents = append(parents, p)
	}
	return fetch.OK(CommitGraphEntry{ID: id, Parents: parents})
}

// Bookmarks resolves names against one snapshot of the bookmark map.
// Unknown names yield an entry without an id.
func (r *Repo) Bookmarks(ctx context.Context, _ string, names []string) (*fetch.Fetch[BookmarkEntry], error) {
	r.begin(ctx, "bookmarks", "names", logutil.List(names, func(s string) string { return s }))
	var snapshot map[string]hgid.ID
	if r.bookmarks != nil {
		var err error
		snapshot, err = r.bookmarks.Bookmarks()
		if err != nil {
			return nil, internal(err)
		}
	}

	results := make([]fetch.Result[BookmarkEntry], 0, len(names))
	for _, name := range names {
		entry := BookmarkEntry{Name: name}
		if id, ok := snapshot[name]; ok {
			entry.ID = &id
		}
		results = append(results, fetch.OK(entry))
	}
	return fetch.FromResults(results), nil
}

// LookupBatch is not supported.
func (r *Repo) LookupBatch(context.Context, string, []AnyID) (*fetch.Fetch[LookupResponse], error) {
	return nil, notImplemented("lookup_batch")
}

// ProcessFilesUpload is not supported.
func (r *Repo) ProcessFilesUpload(context.Context, string, []FileUpload) (*fetch.Fetch[UploadToken], error) {
	return nil, notImplemented("process_files_upload")
}

// UploadFilenodesBatch is not supported.
func (r *Repo) UploadFilenodesBatch(context.Context, string, []FilenodeUpload) (*fetch.Fetch[UploadResponse], error) {
	return nil, notImplemented("upload_filenodes_batch")
}

// UploadTreesBatch is not supported.
func (r *Repo) UploadTreesBatch(context.Context, string, []TreeUpload) (*fetch.Fetch[UploadResponse], error) {
	return nil, notImplemented("upload_trees_batch")
}

// UploadChangesets is not supported.
func (r *Repo) UploadChangesets(context.Context, string, []ChangesetUpload, []MutationEntry) (*fetch.Fetch[UploadResponse], error) {
	return nil, notImplemented("upload_changesets")
}

func vertices(ids []hgid.ID) []dag.Vertex {
	out := make([]dag.Vertex, 0, len(ids))
	for _, id := range ids {
		out = append(out, dag.Vertex(id.Bytes()))
	}
	return out
}

func okAll[T any](values []T) []fetch.Result[T] {
	out := make([]fetch.Result[T], 0, len(values))
	for _, v := range values {
		out = append(out, fetch.OK(v))
	}
	return out
}
