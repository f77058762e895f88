package zipvfs

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when the archive has no entry at the path.
	// It matches fs.ErrNotExist.
	ErrNotFound = fmt.Errorf("zipvfs: entry not found: %w", fs.ErrNotExist)

	// ErrOversizedContent is returned by ContentsToBytes when the entry is
	// larger than the size limit allows.
	ErrOversizedContent = errors.New("zipvfs: entry too large to load")

	// ErrUnreadable is returned when the archive cannot be opened or an entry
	// cannot be decompressed. The underlying cause is wrapped as well.
	ErrUnreadable = errors.New("zipvfs: archive unreadable")

	// ErrIsDirectory is returned when content is requested for a directory.
	ErrIsDirectory = errors.New("zipvfs: is a directory")
)

// PathError records an error and the archive entry that caused it.
type PathError struct {
	Op      string
	Archive string
	Path    string
	Err     error
}

func (e *PathError) Error() string {
	return e.Op + " " + e.Archive + "!/" + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

func unreadable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnreadable, err)
}
