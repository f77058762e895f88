package zipvfs

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/meigma/zipvfs/cache"
	"github.com/meigma/zipvfs/internal/entryindex"
	"github.com/meigma/zipvfs/internal/sizing"
)

// Handler reads the entries of one archive through a shared cache.
//
// Each Handler is a distinct owner: two Handlers for the same path hold
// separate snapshots. A Handler is safe for concurrent use.
type Handler struct {
	owner  *cache.Owner
	cache  *cache.Cache
	limit  SizeLimit
	logger *slog.Logger
}

// New returns a Handler for the archive at archivePath backed by c.
func New(archivePath string, c *cache.Cache, opts ...Option) *Handler {
	h := &Handler{
		owner: cache.NewOwner(archivePath),
		cache: c,
		limit: DefaultSizeLimit(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) log() *slog.Logger {
	if h.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.logger
}

// Path returns the absolute path of the archive.
func (h *Handler) Path() string {
	return h.owner.Path()
}

// CreateEntriesMap returns every entry of the archive keyed by relative path,
// including synthesized intermediate directories and the root "". The map
// belongs to the caller; the entries it holds are shared and must not be
// modified.
func (h *Handler) CreateEntriesMap() (*EntryMap, error) {
	handle, err := h.acquire("entries", "")
	if err != nil {
		return nil, err
	}
	defer handle.Release()
	return handle.Snapshot().Index().Clone(), nil
}

// Stat returns the entry at rel.
func (h *Handler) Stat(rel string) (*EntryInfo, error) {
	handle, err := h.acquire("stat", rel)
	if err != nil {
		return nil, err
	}
	defer handle.Release()

	e, ok := handle.Snapshot().Lookup(rel)
	if !ok {
		return nil, h.pathError("stat", rel, ErrNotFound)
	}
	return e, nil
}

// Exists reports whether the archive has an entry at rel. Errors opening the
// archive are reported as absence.
func (h *Handler) Exists(rel string) bool {
	_, err := h.Stat(rel)
	return err == nil
}

// ContentsToBytes returns the decompressed content of the file at rel. It
// fails with ErrOversizedContent instead of loading entries the size limit
// rejects.
func (h *Handler) ContentsToBytes(rel string) ([]byte, error) {
	handle, err := h.acquire("read", rel)
	if err != nil {
		return nil, err
	}
	defer handle.Release()

	snap := handle.Snapshot()
	e, err := h.lookupFile(snap, "read", rel)
	if err != nil {
		return nil, err
	}
	if ext := extension(rel); h.limit.IsTooLarge(e.Size, ext) {
		return nil, h.pathError("read", rel, oversized(e.Size))
	}
	return h.readEntry(snap, e, rel)
}

// OpenInputStream returns a reader over the content of the file at rel.
//
// Entries within the size limit are decompressed up front and the archive is
// released before OpenInputStream returns. Larger entries are streamed: the
// returned reader keeps the archive open until it is closed. Close may be
// called more than once.
func (h *Handler) OpenInputStream(rel string) (io.ReadCloser, error) {
	handle, err := h.acquire("open", rel)
	if err != nil {
		return nil, err
	}

	snap := handle.Snapshot()
	e, err := h.lookupFile(snap, "open", rel)
	if err != nil {
		handle.Release()
		return nil, err
	}

	if !h.limit.IsTooLarge(e.Size, extension(rel)) {
		defer handle.Release()
		data, err := h.readEntry(snap, e, rel)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	rc, err := snap.Open(e)
	if err != nil {
		handle.Release()
		return nil, h.pathError("open", rel, unreadable(err))
	}
	h.log().Debug("streaming large entry",
		slog.String("archive", h.Path()),
		slog.String("path", rel),
		slog.String("size", humanize.IBytes(e.Size)))
	return newEntryStream(rc, handle), nil
}

// CRCTable returns the CRC-32 of every file in the archive keyed by relative
// path.
func (h *Handler) CRCTable() (map[string]uint64, error) {
	handle, err := h.acquire("crc", "")
	if err != nil {
		return nil, err
	}
	defer handle.Release()

	snap := handle.Snapshot()
	table := make(map[string]uint64, snap.Index().Len())
	for e := range snap.Reader().Entries() {
		if e.IsDir {
			continue
		}
		rel, ok := entryindex.Normalize(e.Name)
		if !ok || rel == "" {
			continue
		}
		if _, dup := table[rel]; !dup {
			table[rel] = uint64(e.CRC32)
		}
	}
	return table, nil
}

// Invalidate drops the cached snapshot of the archive. The next access
// reopens it.
func (h *Handler) Invalidate() {
	h.cache.Invalidate(h.owner)
}

func (h *Handler) acquire(op, rel string) (*cache.Handle, error) {
	handle, err := h.cache.Acquire(h.owner)
	if err != nil {
		return nil, h.pathError(op, rel, unreadable(err))
	}
	return handle, nil
}

func (h *Handler) lookupFile(snap *cache.Snapshot, op, rel string) (*EntryInfo, error) {
	e, ok := snap.Lookup(rel)
	if !ok {
		return nil, h.pathError(op, rel, ErrNotFound)
	}
	if e.IsDir {
		return nil, h.pathError(op, rel, ErrIsDirectory)
	}
	return e, nil
}

func (h *Handler) readEntry(snap *cache.Snapshot, e *EntryInfo, rel string) ([]byte, error) {
	rc, err := snap.Open(e)
	if err != nil {
		return nil, h.pathError("read", rel, unreadable(err))
	}
	defer rc.Close()

	data, err := sizing.ReadExact(rc, e.Size)
	if err != nil {
		return nil, h.pathError("read", rel, unreadable(err))
	}
	return data, nil
}

func (h *Handler) pathError(op, rel string, err error) error {
	return &PathError{Op: op, Archive: h.Path(), Path: rel, Err: err}
}

func oversized(size uint64) error {
	return &sizeError{size: size}
}

type sizeError struct {
	size uint64
}

func (e *sizeError) Error() string {
	return ErrOversizedContent.Error() + " (" + humanize.IBytes(e.size) + ")"
}

func (e *sizeError) Unwrap() error { return ErrOversizedContent }
