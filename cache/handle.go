package cache

import "sync"

// Handle is a borrowed reference to a cached snapshot. The snapshot stays
// usable until Release, even if the cache drops it in the meantime.
type Handle struct {
	snap *Snapshot
	once sync.Once
}

func newHandle(snap *Snapshot) *Handle {
	return &Handle{snap: snap}
}

// Snapshot returns the borrowed snapshot.
func (h *Handle) Snapshot() *Snapshot {
	return h.snap
}

// Release returns the handle to the cache. Calling it more than once has no
// effect.
func (h *Handle) Release() {
	h.once.Do(h.snap.release)
}
