package storage

import "errors"

var (
	// ErrNotFound indicates no record exists for the given id.
	ErrNotFound = errors.New("storage: content not found")

	// ErrIOFailure indicates a file or database read/write error.
	ErrIOFailure = errors.New("storage: I/O failure")

	// ErrEmptyContent indicates an attempt to store empty content.
	ErrEmptyContent = errors.New("storage: content is empty")

	// ErrInvalidBaseDir indicates the base directory path is invalid.
	ErrInvalidBaseDir = errors.New("storage: invalid base directory")

	// ErrUnsupportedCompression indicates an unsupported compression scheme.
	ErrUnsupportedCompression = errors.New("storage: unsupported compression scheme")

	// ErrCorruptFrame indicates a stored value cannot be decoded.
	ErrCorruptFrame = errors.New("storage: corrupt stored frame")

	// ErrDecompressedTooLarge indicates decompressed data exceeds the safety limit.
	ErrDecompressedTooLarge = errors.New("storage: decompressed data exceeds maximum size")

	// ErrInvalidBookmark indicates a bookmark name is empty or contains a newline.
	ErrInvalidBookmark = errors.New("storage: invalid bookmark name")

	// ErrNoSources indicates a Resolver was built without any store.
	ErrNoSources = errors.New("storage: resolver has no sources")
)
