package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/eagerapi-go/hgid"
)

var (
	bucketRecords   = []byte("records")
	bucketBookmarks = []byte("bookmarks")
)

// BoltStore wraps a bbolt database holding framed records and bookmarks.
type BoltStore struct {
	db          *bbolt.DB
	compression Compression
}

// Compile-time interface checks.
var (
	_ Store          = (*BoltStore)(nil)
	_ Writer         = (*BoltStore)(nil)
	_ BookmarkSource = (*BoltStore)(nil)
)

// OpenBoltStore opens or creates the bbolt database at dbPath. New records
// are written with the given compression; existing records keep theirs.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string, compression Compression) (*BoltStore, error) {
	if _, err := ParseCompression(compression.String()); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", ErrIOFailure, err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt db: %w", ErrIOFailure, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRecords, bucketBookmarks} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create buckets: %w", ErrIOFailure, err)
	}

	return &BoltStore{db: db, compression: compression}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// DB exposes the database so other components (the graph index) can keep
// their buckets in the same file.
func (s *BoltStore) DB() *bbolt.DB { return s.db }

// Put stores a record under id.
func (s *BoltStore) Put(id hgid.ID, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyContent
	}
	frame, err := EncodeFrame(data, s.compression)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).Put(id[:], frame)
	})
	if err != nil {
		return fmt.Errorf("%w: put record: %w", ErrIOFailure, err)
	}
	return nil
}

// Get retrieves the record stored under id.
func (s *BoltStore) Get(id hgid.ID) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		frame := tx.Bucket(bucketRecords).Get(id[:])
		if frame == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		// frame is only valid inside the transaction.
		decoded, err := DecodeFrame(frame)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIOFailure, err)
		}
		data = make([]byte, len(decoded))
		copy(data, decoded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Count returns the number of stored records.
func (s *BoltStore) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketRecords).Stats().KeyN
		return nil
	})
	return n, err
}

// SetBookmark points name at id.
func (s *BoltStore) SetBookmark(name string, id hgid.ID) error {
	if err := validateBookmark(name); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBookmarks).Put([]byte(name), id[:])
	})
	if err != nil {
		return fmt.Errorf("%w: put bookmark: %w", ErrIOFailure, err)
	}
	return nil
}

// Bookmarks returns a snapshot of every bookmark, read in one transaction.
func (s *BoltStore) Bookmarks() (map[string]hgid.ID, error) {
	marks := make(map[string]hgid.ID)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBookmarks).ForEach(func(k, v []byte) error {
			id, err := hgid.FromSlice(v)
			if err != nil {
				return fmt.Errorf("bookmark %q: %w", k, err)
			}
			marks[string(k)] = id
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list bookmarks: %w", ErrIOFailure, err)
	}
	return marks, nil
}
