package cache

import (
	"path/filepath"
	"sync/atomic"
)

var ownerSeq atomic.Uint64

// Owner is the identity under which a snapshot is cached. Two owners of the
// same archive path never share a snapshot.
type Owner struct {
	id   uint64
	path string
}

// NewOwner returns a new identity for the archive at path. Relative paths are
// made absolute.
func NewOwner(path string) *Owner {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Owner{id: ownerSeq.Add(1), path: path}
}

// Path returns the archive path.
func (o *Owner) Path() string { return o.path }

// ID returns a process-unique number for the owner.
func (o *Owner) ID() uint64 { return o.id }
