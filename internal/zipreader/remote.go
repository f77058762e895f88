package zipreader

import (
	"fmt"
	"io"
	"iter"

	"github.com/go-git/go-billy/v5"
	"github.com/klauspost/compress/zip"
)

// remoteReader parses the archive through a blockSource so that the
// central directory and neighbouring entries are fetched in few, large reads.
// It suits archives on network or virtualized mounts where each read is a
// round trip.
type remoteReader struct {
	guard
	file billy.File
	src  *blockSource
	t    *table
}

func openRemote(fsys billy.Filesystem, path string, cfg *config) (*remoteReader, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, err
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := newRemoteReader(f, path, info.Size(), cfg)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func newRemoteReader(f billy.File, path string, size int64, cfg *config) (*remoteReader, error) {
	src, err := newBlockSource(f, size, cfg)
	if err != nil {
		return nil, err
	}
	if err := src.Prefetch(size-tailPrefetch, tailPrefetch); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	zr, err := zip.NewReader(src, size)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &remoteReader{
		guard: guard{path: path},
		file:  f,
		src:   src,
		t:     newTable(zr),
	}, nil
}

func (r *remoteReader) Entry(name string) (Entry, bool) {
	r.check()
	return r.t.entry(name)
}

func (r *remoteReader) Entries() iter.Seq[Entry] {
	r.check()
	return r.t.entries()
}

func (r *remoteReader) Open(name string) (io.ReadCloser, error) {
	r.check()
	return r.t.open(name)
}

func (r *remoteReader) Kind() Kind { return KindRemote }

func (r *remoteReader) Close() error {
	if !r.markClosed() {
		return nil
	}
	r.src.blocks.Purge()
	return r.file.Close()
}
