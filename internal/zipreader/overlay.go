package zipreader

import (
	"fmt"
	"io"
	"io/fs"
	"iter"

	"github.com/go-git/go-billy/v5"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/meigma/zipvfs/internal/entryindex"
)

// overlayReader mounts the archive as an io/fs view and answers every query
// with generic filesystem calls. Directories are synthesized by the view even
// when the archive has no record for them.
type overlayReader struct {
	guard
	file billy.File
	view *zip.Reader
}

func openOverlay(fsys billy.Filesystem, path string) (*overlayReader, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	view, err := zip.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mount %s: %w", path, err)
	}
	view.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	return &overlayReader{
		guard: guard{path: path},
		file:  f,
		view:  view,
	}, nil
}

func (r *overlayReader) Entry(name string) (Entry, bool) {
	r.check()
	name, ok := viewName(name)
	if !ok {
		return Entry{}, false
	}
	info, err := fs.Stat(r.view, name)
	if err != nil {
		return Entry{}, false
	}
	return r.fromInfo(name, info), true
}

func (r *overlayReader) Entries() iter.Seq[Entry] {
	r.check()
	return func(yield func(Entry) bool) {
		_ = fs.WalkDir(r.view, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped.
				return nil //nolint:nilerr // walk continues past broken entries
			}
			if p == "." {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil //nolint:nilerr // entry vanished from the view
			}
			if !yield(r.fromInfo(p, info)) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

func (r *overlayReader) Open(name string) (io.ReadCloser, error) {
	r.check()
	key, ok := viewName(name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return r.view.Open(key)
}

func (r *overlayReader) Kind() Kind { return KindOverlay }

func (r *overlayReader) Close() error {
	if !r.markClosed() {
		return nil
	}
	return r.file.Close()
}

// fromInfo converts view metadata into an Entry. The CRC is not part of the
// generic file info, so it is fetched through a separate attribute query.
func (r *overlayReader) fromInfo(name string, info fs.FileInfo) Entry {
	e := Entry{
		Name:     name,
		IsDir:    info.IsDir(),
		Modified: info.ModTime(),
	}
	if e.IsDir {
		e.Name += "/"
		return e
	}
	e.Size = uint64(info.Size()) //nolint:gosec // view sizes are never negative
	if h, ok := r.attributes(name); ok {
		e.CompressedSize = h.CompressedSize64
		e.CRC32 = h.CRC32
	}
	return e
}

// attributes returns the raw zip header of name.
func (r *overlayReader) attributes(name string) (*zip.FileHeader, bool) {
	info, err := fs.Stat(r.view, name)
	if err != nil {
		return nil, false
	}
	h, ok := info.Sys().(*zip.FileHeader)
	return h, ok
}

// viewName maps an entry name onto the path the io/fs view serves it under.
func viewName(name string) (string, bool) {
	key, ok := entryindex.Normalize(name)
	if !ok || key == "" || !fs.ValidPath(key) {
		return "", false
	}
	return key, true
}
