// Package zipreader provides interchangeable strategies for reading zip-format
// archives behind a single Reader interface.
package zipreader

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// ErrClosed is the panic value (wrapped) for use of a Reader after Close.
var ErrClosed = errors.New("zipreader: use of closed reader")

// Entry describes one record of an archive.
type Entry struct {
	// Name is the entry name as stored in the archive. Directory names may
	// carry a trailing slash.
	Name string

	IsDir          bool
	Size           uint64
	CompressedSize uint64
	CRC32          uint32
	Modified       time.Time
}

// Reader is a readable archive.
//
// Implementations are safe for concurrent use until Close. Any call after
// Close panics with an error wrapping ErrClosed.
type Reader interface {
	// Entry returns the entry stored under name. A directory may be looked up
	// with or without its trailing slash.
	Entry(name string) (Entry, bool)

	// Entries enumerates every entry, files and directories, in an
	// implementation-defined order.
	Entries() iter.Seq[Entry]

	// Open returns the decompressed content of the named entry.
	Open(name string) (io.ReadCloser, error)

	// Kind reports the strategy backing this reader.
	Kind() Kind

	// Close releases the resources held by the reader.
	Close() error
}

// Kind identifies a reading strategy.
type Kind uint8

const (
	// KindNative reads a local file through a buffered OS handle.
	KindNative Kind = iota
	// KindOverlay mounts the archive as an io/fs view and walks it.
	KindOverlay
	// KindRemote reads through a block read-ahead cache to minimize I/O calls.
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindOverlay:
		return "overlay"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Option configures Open.
type Option func(*config)

type config struct {
	fs               billy.Filesystem
	blockSize        int64
	maxBlocks        int
	maxBlocksPerRead int
}

// WithFilesystem sets the filesystem the overlay and remote strategies open
// the archive through. The native strategy always uses the OS directly.
func WithFilesystem(fsys billy.Filesystem) Option {
	return func(c *config) {
		c.fs = fsys
	}
}

// WithBlockSize sets the read-ahead block size of the remote strategy.
func WithBlockSize(n int64) Option {
	return func(c *config) {
		c.blockSize = n
	}
}

// WithMaxBlocks sets how many blocks the remote strategy keeps in memory.
func WithMaxBlocks(n int) Option {
	return func(c *config) {
		c.maxBlocks = n
	}
}

// Open opens the archive at path with the given strategy.
func Open(kind Kind, path string, opts ...Option) (Reader, error) {
	cfg := config{
		blockSize:        DefaultBlockSize,
		maxBlocks:        DefaultMaxBlocks,
		maxBlocksPerRead: DefaultMaxBlocksPerRead,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.fs == nil {
		cfg.fs = osfs.New("/")
	}

	var (
		r   Reader
		err error
	)
	switch kind {
	case KindNative:
		r, err = openNative(path)
	case KindOverlay:
		r, err = openOverlay(cfg.fs, path)
	case KindRemote:
		r, err = openRemote(cfg.fs, path, &cfg)
	default:
		return nil, fmt.Errorf("zipreader: unknown reader kind %d", kind)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// guard tracks whether a reader has been closed.
type guard struct {
	path   string
	closed atomic.Bool
}

// check panics if the reader has been closed.
func (g *guard) check() {
	if g.closed.Load() {
		panic(fmt.Errorf("%w: %s", ErrClosed, g.path))
	}
}

// markClosed reports whether this call is the one that closed the reader.
func (g *guard) markClosed() bool {
	return g.closed.CompareAndSwap(false, true)
}

func isDirName(name string) bool {
	return strings.HasSuffix(name, "/")
}
