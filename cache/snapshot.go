package cache

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/meigma/zipvfs/internal/entryindex"
	"github.com/meigma/zipvfs/internal/zipreader"
)

// Meta is the archive file metadata a snapshot was taken against.
type Meta struct {
	ModTime time.Time
	Size    int64
}

// Equal reports whether m and o describe the same file state.
func (m Meta) Equal(o Meta) bool {
	return m.Size == o.Size && m.ModTime.Equal(o.ModTime)
}

// Snapshot is an open archive together with the index of its entries.
//
// The index is immutable once the snapshot is published and may be read
// concurrently. The reader is closed once the snapshot has left the cache and
// every handle to it has been released.
type Snapshot struct {
	path       string
	reader     zipreader.Reader
	index      *entryindex.Map
	meta       Meta
	generation uint64
	logger     *slog.Logger

	mu       sync.Mutex
	refs     int
	disposed bool
	closed   bool
}

func newSnapshot(path string, r zipreader.Reader, meta Meta, generation uint64, crcTimestamps bool, logger *slog.Logger) *Snapshot {
	return &Snapshot{
		path:       path,
		reader:     r,
		index:      buildIndex(r, meta, crcTimestamps),
		meta:       meta,
		generation: generation,
		logger:     logger,
	}
}

// buildIndex enumerates the reader into a fresh index. Directories missing
// from the archive are synthesized with the archive modification time.
func buildIndex(r zipreader.Reader, meta Meta, crcTimestamps bool) *entryindex.Map {
	entries := slices.Collect(r.Entries())
	b := entryindex.NewBuilder(len(entries), meta.ModTime.UnixMilli())
	for _, e := range entries {
		ts := e.Modified.UnixMilli()
		if crcTimestamps {
			ts = int64(e.CRC32)
		}
		b.Add(e.Name, e.IsDir, e.Size, ts)
	}
	return b.Map()
}

// Path returns the archive path.
func (s *Snapshot) Path() string { return s.path }

// Meta returns the file metadata captured when the archive was opened.
func (s *Snapshot) Meta() Meta { return s.meta }

// Generation increases with every archive open performed by a cache.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Kind reports the strategy the archive was opened with.
func (s *Snapshot) Kind() zipreader.Kind { return s.reader.Kind() }

// Index returns the entry index.
func (s *Snapshot) Index() *entryindex.Map { return s.index }

// Reader returns the open archive.
func (s *Snapshot) Reader() zipreader.Reader { return s.reader }

// Lookup resolves a relative path in the index. The path is normalized the
// same way archive names are.
func (s *Snapshot) Lookup(rel string) (*entryindex.Entry, bool) {
	key, ok := entryindex.Normalize(rel)
	if !ok {
		return nil, false
	}
	return s.index.Get(key)
}

// Open streams the content of an indexed entry.
func (s *Snapshot) Open(e *entryindex.Entry) (io.ReadCloser, error) {
	return s.reader.Open(entryindex.Path(e))
}

// retain takes a reference. It fails once the snapshot has been disposed.
func (s *Snapshot) retain() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	s.refs++
	return true
}

func (s *Snapshot) release() {
	s.mu.Lock()
	s.refs--
	shouldClose := s.disposed && s.refs == 0 && !s.closed
	if shouldClose {
		s.closed = true
	}
	s.mu.Unlock()

	if shouldClose {
		s.close()
	}
}

// dispose marks the snapshot as no longer cached. The reader is closed now if
// nobody holds it, otherwise by the last release.
func (s *Snapshot) dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	shouldClose := s.refs == 0 && !s.closed
	if shouldClose {
		s.closed = true
	}
	s.mu.Unlock()

	if shouldClose {
		s.close()
	}
}

func (s *Snapshot) close() {
	if err := s.reader.Close(); err != nil {
		s.logger.Warn("failed to close archive",
			slog.String("path", s.path),
			slog.Uint64("generation", s.generation),
			slog.Any("error", err))
		return
	}
	s.logger.Debug("archive closed",
		slog.String("path", s.path),
		slog.Uint64("generation", s.generation))
}
