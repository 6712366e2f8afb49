// Package eagerapi answers the EdenAPI batch query protocol from a local
// record store and commit graph, without any network round trip.
package eagerapi

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitfsorg/eagerapi-go/config"
	"github.com/bitfsorg/eagerapi-go/dag"
	"github.com/bitfsorg/eagerapi-go/logutil"
	"github.com/bitfsorg/eagerapi-go/storage"
)

// DBFile is the database name inside a repository directory.
const DBFile = "eager.db"

// ObjectsDir holds loose records. Records found there are copied into the
// database on first read.
const ObjectsDir = "objects"

// ServerName is reported by Health.
const ServerName = "EagerRepo"

// Repo serves protocol requests. It keeps no state between calls beyond
// its collaborators.
type Repo struct {
	store     storage.Store
	graph     dag.Graph
	bookmarks storage.BookmarkSource
	logger    *slog.Logger
	closer    io.Closer
}

// Option configures a Repo.
type Option func(*Repo)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repo) { r.logger = l }
}

// WithBookmarks sets the bookmark source. By default the store is used if
// it can list bookmarks.
func WithBookmarks(b storage.BookmarkSource) Option {
	return func(r *Repo) { r.bookmarks = b }
}

// New creates a Repo over store and graph.
func New(store storage.Store, graph dag.Graph, opts ...Option) *Repo {
	r := &Repo{store: store, graph: graph, logger: logutil.NewDiscard()}
	if b, ok := store.(storage.BookmarkSource); ok {
		r.bookmarks = b
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DBPath returns the database location for a repository directory.
func DBPath(dir string) string {
	return filepath.Join(dir, DBFile)
}

// Open opens the repository at dir, creating an empty one if needed.
func Open(dir string, compression storage.Compression, opts ...Option) (*Repo, error) {
	bolt, err := storage.OpenBoltStore(DBPath(dir), compression)
	if err != nil {
		return nil, internal(fmt.Errorf("open %s: %w", dir, err))
	}
	graph, err := dag.LoadBolt(bolt.DB())
	if err != nil {
		_ = bolt.Close()
		return nil, internal(fmt.Errorf("load graph %s: %w", dir, err))
	}

	var store storage.Store = bolt
	loose := filepath.Join(dir, ObjectsDir)
	if info, err := os.Stat(loose); err == nil && info.IsDir() {
		files, err := storage.NewFileStore(loose)
		if err != nil {
			_ = bolt.Close()
			return nil, internal(fmt.Errorf("open %s: %w", loose, err))
		}
		resolver := storage.NewResolver(bolt, files)
		resolver.Cache = bolt
		store = resolver
	}

	r := New(store, graph, append([]Option{WithBookmarks(bolt)}, opts...)...)
	r.closer = bolt
	return r, nil
}

// Close releases the database when the Repo was opened from disk.
func (r *Repo) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// URLToDir extracts the directory from an "eager:" or "eager://" URL.
func URLToDir(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, "eager://")
	if !ok {
		rest, ok = strings.CutPrefix(url, "eager:")
	}
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// OpenFromConfig opens the repository named by paths.default or, failing
// that, edenapi.url. It returns ErrNotConfigured when neither is an eager
// URL.
func OpenFromConfig(cfg config.Config, opts ...Option) (*Repo, error) {
	for _, value := range []string{cfg.Paths.Default, cfg.EdenAPI.URL} {
		dir, ok := URLToDir(value)
		if !ok {
			continue
		}
		compression, err := cfg.StoreCompression()
		if err != nil {
			return nil, fmt.Errorf("eagerapi: %w", err)
		}
		return Open(dir, compression, opts...)
	}
	return nil, ErrNotConfigured
}
