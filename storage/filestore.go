package storage

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bitfsorg/eagerapi-go/hgid"
)

// bookmarksFile holds "<hex> <name>" lines in the store root.
const bookmarksFile = "bookmarks"

// FileStore implements Store using the local filesystem.
// Records are stored at: {baseDir}/{hex(id[:1])}/{hex(id)}
// The first byte (2 hex chars) is used as a subdirectory for sharding.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

// Compile-time interface checks.
var (
	_ Store          = (*FileStore)(nil)
	_ Writer         = (*FileStore)(nil)
	_ BookmarkSource = (*FileStore)(nil)
)

// NewFileStore creates a new file-based record store.
// The directory is created if it does not exist.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, ErrInvalidBaseDir
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	return &FileStore{
		baseDir: baseDir,
	}, nil
}

// IDToPath converts an id to its filesystem path.
// Uses first byte as subdirectory for sharding: {base}/{ab}/{abcdef...}
func IDToPath(baseDir string, id hgid.ID) string {
	hexID := id.Hex()
	return filepath.Join(baseDir, hexID[:2], hexID)
}

// Put stores a record under id.
func (fs *FileStore) Put(id hgid.ID, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyContent
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	path := IDToPath(fs.baseDir, id)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Get retrieves the record stored under id.
func (fs *FileStore) Get(id hgid.ID) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	data, err := os.ReadFile(IDToPath(fs.baseDir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return data, nil
}

// Has checks if a record exists for id.
func (fs *FileStore) Has(id hgid.ID) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, err := os.Stat(IDToPath(fs.baseDir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return true, nil
}

// List returns all stored ids by scanning the shard directories.
func (fs *FileStore) List() ([]hgid.ID, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	var result []hgid.ID
	for _, entry := range entries {
		if !entry.IsDir() || !hexShard(entry.Name()) {
			continue
		}

		files, err := os.ReadDir(filepath.Join(fs.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			id, err := hgid.FromHex(f.Name())
			if err != nil {
				continue // skip foreign files
			}
			result = append(result, id)
		}
	}
	return result, nil
}

// SetBookmark points name at id, rewriting the bookmarks file.
func (fs *FileStore) SetBookmark(name string, id hgid.ID) error {
	if err := validateBookmark(name); err != nil {
		return err
	}
	if strings.ContainsRune(name, ' ') {
		return fmt.Errorf("%w: %q contains a space", ErrInvalidBookmark, name)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	marks, err := fs.readBookmarks()
	if err != nil {
		return err
	}
	marks[name] = id

	names := make([]string, 0, len(marks))
	for n := range marks {
		names = append(names, n)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	for _, n := range names {
		fmt.Fprintf(&buf, "%s %s\n", marks[n].Hex(), n)
	}
	if err := os.WriteFile(filepath.Join(fs.baseDir, bookmarksFile), buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Bookmarks returns a snapshot of the bookmarks file.
func (fs *FileStore) Bookmarks() (map[string]hgid.ID, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.readBookmarks()
}

func (fs *FileStore) readBookmarks() (map[string]hgid.ID, error) {
	marks := make(map[string]hgid.ID)
	f, err := os.Open(filepath.Join(fs.baseDir, bookmarksFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return marks, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		hexID, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed bookmark line %q", ErrIOFailure, line)
		}
		id, err := hgid.FromHex(hexID)
		if err != nil {
			return nil, fmt.Errorf("%w: bookmark %q: %w", ErrIOFailure, name, err)
		}
		marks[name] = id
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return marks, nil
}

// hexShard reports whether name looks like a shard directory.
func hexShard(name string) bool {
	if len(name) != 2 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}
