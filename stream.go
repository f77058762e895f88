package zipvfs

import (
	"io"
	"io/fs"
	"sync"

	"github.com/meigma/zipvfs/cache"
)

// entryStream streams a large entry and owns the cache handle that keeps
// its archive open.
type entryStream struct {
	rc     io.ReadCloser
	handle *cache.Handle

	mu     sync.Mutex
	closed bool
	err    error
}

func newEntryStream(rc io.ReadCloser, handle *cache.Handle) *entryStream {
	return &entryStream{rc: rc, handle: handle}
}

// Read holds the lock for the whole call so that a concurrent Close waits
// for it instead of closing the entry reader underneath it.
func (s *entryStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fs.ErrClosed
	}
	return s.rc.Read(p)
}

// Close closes the entry reader and releases the archive. Subsequent calls
// return the first result. Close waits for an in-flight Read.
func (s *entryStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.err
	}
	s.closed = true
	s.err = s.rc.Close()
	s.handle.Release()
	return s.err
}
