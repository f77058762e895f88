// Package cache keeps a bounded set of open archives shared by all callers.
//
// A Cache maps each Owner to a Snapshot: an open zipreader.Reader, the index
// of its entries and the file metadata observed when it was opened. Every
// Acquire compares that metadata with the file on disk and reopens the
// archive when it changed. Least-recently-used snapshots are evicted once the
// capacity is exceeded; their readers are closed when the last handle is
// released.
//
// A Cache is meant to be constructed once and passed to every caller.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/zipvfs/internal/zipreader"
)

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Invalidations uint64
	Opens         uint64
	Resident      int
}

// Cache is a concurrency-safe LRU of archive snapshots keyed by Owner.
type Cache struct {
	capacity      int
	concurrency   int
	fs            billy.Filesystem
	forceOverlay  bool
	crcTimestamps bool
	locality      func(string) bool
	goos          string
	opener        Opener
	logger        *slog.Logger

	mu      sync.Mutex
	lru     *simplelru.LRU[*Owner, *Snapshot]
	pending []*Snapshot

	opens      singleflight.Group
	sem        *semaphore.Weighted
	generation atomic.Uint64

	hits          atomic.Uint64
	misses        atomic.Uint64
	evictions     atomic.Uint64
	invalidations atomic.Uint64
	opened        atomic.Uint64
}

// New creates a Cache with the given options.
func New(opts ...Option) (*Cache, error) {
	c := &Cache{
		capacity:    DefaultCapacity,
		concurrency: DefaultConcurrency,
		goos:        runtime.GOOS,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.capacity < 1 {
		return nil, fmt.Errorf("cache: capacity must be > 0, got %d", c.capacity)
	}
	if c.concurrency < 1 {
		return nil, fmt.Errorf("cache: concurrency must be > 0, got %d", c.concurrency)
	}
	if c.fs == nil {
		c.fs = osfs.New("/")
	}
	if c.opener == nil {
		fsys := c.fs
		c.opener = func(kind zipreader.Kind, path string) (zipreader.Reader, error) {
			return zipreader.Open(kind, path, zipreader.WithFilesystem(fsys))
		}
	}

	lru, err := simplelru.NewLRU[*Owner, *Snapshot](c.capacity, c.onEvicted)
	if err != nil {
		return nil, err
	}
	c.lru = lru
	c.sem = semaphore.NewWeighted(int64(c.concurrency))
	return c, nil
}

func (c *Cache) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Acquire returns a handle to an up-to-date snapshot of the owner's archive,
// opening the archive if it is not cached or changed on disk. The caller must
// Release the handle.
func (c *Cache) Acquire(owner *Owner) (*Handle, error) {
	for {
		if snap, ok := c.cached(owner); ok {
			meta, err := c.stat(owner.path)
			if err == nil && meta.Equal(snap.meta) {
				c.hits.Add(1)
				hitMetric.Inc()
				c.log().Debug("handle cache hit",
					slog.String("path", owner.path),
					slog.Uint64("generation", snap.generation))
				return newHandle(snap), nil
			}
			snap.release()
			c.log().Debug("archive changed on disk",
				slog.String("path", owner.path),
				slog.Uint64("generation", snap.generation))
			c.remove(owner, snap)
		}

		c.misses.Add(1)
		missMetric.Inc()
		v, err, _ := c.opens.Do(strconv.FormatUint(owner.id, 10), func() (any, error) {
			return c.load(owner)
		})
		if err != nil {
			return nil, err
		}
		snap := v.(*Snapshot) //nolint:errcheck // type assertion always succeeds when err is nil
		if snap.retain() {
			return newHandle(snap), nil
		}
		// Evicted before this caller could take a reference.
	}
}

// Invalidate drops the owner's snapshot. Handles already acquired stay usable.
func (c *Cache) Invalidate(owner *Owner) {
	c.withLock(func() {
		if c.lru.Remove(owner) {
			c.invalidations.Add(1)
			invalidationMetric.Inc()
		}
	})
}

// Clear drops every snapshot.
func (c *Cache) Clear() {
	c.withLock(func() {
		c.lru.Purge()
	})
}

// Len returns the number of resident snapshots.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns activity counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Evictions:     c.evictions.Load(),
		Invalidations: c.invalidations.Load(),
		Opens:         c.opened.Load(),
		Resident:      c.Len(),
	}
}

// cached returns the owner's snapshot with a reference taken.
func (c *Cache) cached(owner *Owner) (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.lru.Get(owner)
	if !ok || !snap.retain() {
		return nil, false
	}
	return snap, true
}

// remove drops snap if it is still the owner's cached snapshot. A caller that
// lost the race to a concurrent reopen leaves the newer snapshot alone.
func (c *Cache) remove(owner *Owner, snap *Snapshot) {
	c.withLock(func() {
		if current, ok := c.lru.Peek(owner); ok && current == snap {
			c.lru.Remove(owner)
			c.invalidations.Add(1)
			invalidationMetric.Inc()
		}
	})
}

// load opens the owner's archive and publishes the snapshot, unless a fresh
// one was published since the caller looked.
func (c *Cache) load(owner *Owner) (*Snapshot, error) {
	meta, err := c.stat(owner.path)
	if err != nil {
		return nil, err
	}

	var fresh *Snapshot
	c.withLock(func() {
		if current, ok := c.lru.Peek(owner); ok && current.meta.Equal(meta) {
			fresh = current
		}
	})
	if fresh != nil {
		return fresh, nil
	}

	snap, err := c.open(owner, meta)
	if err != nil {
		return nil, err
	}
	c.withLock(func() {
		// Add replaces in place without eviction, so an older snapshot has to
		// leave through Remove to be disposed.
		c.lru.Remove(owner)
		if c.lru.Add(owner, snap) {
			c.evictions.Add(1)
			evictionMetric.Inc()
		}
	})
	return snap, nil
}

func (c *Cache) open(owner *Owner, meta Meta) (*Snapshot, error) {
	if err := c.sem.Acquire(context.Background(), 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	kind := zipreader.Select(owner.path, zipreader.SelectOptions{
		ForceOverlay: c.forceOverlay,
		GOOS:         c.goos,
		Probe:        c.locality,
	})
	r, err := c.opener(kind, owner.path)
	if err != nil {
		return nil, err
	}
	snap := newSnapshot(owner.path, r, meta, c.generation.Add(1), c.crcTimestamps, c.log())

	c.opened.Add(1)
	openMetric.WithLabelValues(kind.String()).Inc()
	c.log().Debug("archive opened",
		slog.String("path", owner.path),
		slog.String("reader", kind.String()),
		slog.Int("entries", snap.index.Len()),
		slog.Uint64("generation", snap.generation))
	return snap, nil
}

func (c *Cache) stat(path string) (Meta, error) {
	info, err := c.fs.Stat(path)
	if err != nil {
		return Meta{}, err
	}
	return Meta{ModTime: info.ModTime(), Size: info.Size()}, nil
}

// onEvicted runs with c.mu held. Snapshots are disposed after the lock is
// released.
func (c *Cache) onEvicted(_ *Owner, snap *Snapshot) {
	c.pending = append(c.pending, snap)
}

func (c *Cache) withLock(fn func()) {
	c.mu.Lock()
	fn()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, snap := range pending {
		snap.dispose()
	}
}
