// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"trace\", \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrInvalidCompression indicates the store compression is not recognized.
	ErrInvalidCompression = errors.New("config: invalid compression (must be \"none\", \"lz4\", \"zstd\", or \"gzip\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigFile indicates the configuration file cannot be parsed.
	ErrInvalidConfigFile = errors.New("config: invalid configuration file")
)
