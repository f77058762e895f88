package zipreader

import (
	"io"
	"io/fs"
	"iter"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/meigma/zipvfs/internal/entryindex"
)

// table indexes the central directory of a parsed archive by normalized entry
// name, so lookups agree with the paths the entry index hands out.
type table struct {
	files []*zip.File
	names map[string]*zip.File
}

func newTable(zr *zip.Reader) *table {
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	t := &table{
		files: zr.File,
		names: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		key, ok := entryindex.Normalize(f.Name)
		if !ok || key == "" {
			continue
		}
		// The first record wins when names collide after normalization.
		if _, dup := t.names[key]; !dup {
			t.names[key] = f
		}
	}
	return t
}

func (t *table) lookup(name string) (*zip.File, bool) {
	key, ok := entryindex.Normalize(name)
	if !ok || key == "" {
		return nil, false
	}
	f, ok := t.names[key]
	return f, ok
}

func (t *table) entry(name string) (Entry, bool) {
	f, ok := t.lookup(name)
	if !ok {
		return Entry{}, false
	}
	return fromHeader(&f.FileHeader), true
}

func (t *table) entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, f := range t.files {
			if !yield(fromHeader(&f.FileHeader)) {
				return
			}
		}
	}
}

func (t *table) open(name string) (io.ReadCloser, error) {
	f, ok := t.lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return f.Open()
}

func fromHeader(h *zip.FileHeader) Entry {
	return Entry{
		Name:           h.Name,
		IsDir:          isDirName(h.Name) || h.Mode().IsDir(),
		Size:           h.UncompressedSize64,
		CompressedSize: h.CompressedSize64,
		CRC32:          h.CRC32,
		Modified:       h.Modified,
	}
}
