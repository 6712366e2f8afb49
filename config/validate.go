// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"

	"github.com/bitfsorg/eagerapi-go/logutil"
	"github.com/bitfsorg/eagerapi-go/storage"
)

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if !logutil.ValidLevel(cfg.LogLevel) {
		return ErrInvalidLogLevel
	}

	if _, err := storage.ParseCompression(cfg.Compression); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCompression, err)
	}

	return nil
}

// StoreCompression returns the parsed compression setting.
func (c Config) StoreCompression() (storage.Compression, error) {
	comp, err := storage.ParseCompression(c.Compression)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidCompression, err)
	}
	return comp, nil
}
