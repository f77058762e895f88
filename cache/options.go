package cache

import (
	"log/slog"

	"github.com/go-git/go-billy/v5"

	"github.com/meigma/zipvfs/internal/zipreader"
)

const (
	// DefaultCapacity is the number of snapshots kept when WithCapacity is
	// not given.
	DefaultCapacity = 20

	// DefaultConcurrency is the number of archives that may be opened at the
	// same time when WithConcurrency is not given.
	DefaultConcurrency = 10
)

// Opener opens the archive at path with the given strategy.
type Opener func(kind zipreader.Kind, path string) (zipreader.Reader, error)

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity sets the maximum number of resident snapshots.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		c.capacity = n
	}
}

// WithConcurrency bounds how many archives are opened concurrently.
func WithConcurrency(n int) Option {
	return func(c *Cache) {
		c.concurrency = n
	}
}

// WithFilesystem sets the filesystem used for metadata queries and as the byte
// source of the overlay and remote strategies.
func WithFilesystem(fsys billy.Filesystem) Option {
	return func(c *Cache) {
		c.fs = fsys
	}
}

// WithForceOverlay selects the overlay strategy for every archive.
func WithForceOverlay(force bool) Option {
	return func(c *Cache) {
		c.forceOverlay = force
	}
}

// WithCRCTimestamps stores each entry's CRC-32 as its timestamp instead of
// its modification time.
func WithCRCTimestamps(enabled bool) Option {
	return func(c *Cache) {
		c.crcTimestamps = enabled
	}
}

// WithLocality replaces the probe deciding whether an archive is on a local
// mount. It is not consulted on Windows, where drive letters decide.
func WithLocality(probe func(path string) bool) Option {
	return func(c *Cache) {
		c.locality = probe
	}
}

// WithLogger sets the logger for cache diagnostics.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithOpener replaces the function that opens archives.
func WithOpener(open Opener) Option {
	return func(c *Cache) {
		c.opener = open
	}
}
