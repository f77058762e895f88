package zipreader

import (
	"io"
	"iter"

	"github.com/klauspost/compress/zip"
)

// nativeReader reads a local archive through an OS file handle.
type nativeReader struct {
	guard
	rc *zip.ReadCloser
	t  *table
}

func openNative(path string) (*nativeReader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &nativeReader{
		guard: guard{path: path},
		rc:    rc,
		t:     newTable(&rc.Reader),
	}, nil
}

func (r *nativeReader) Entry(name string) (Entry, bool) {
	r.check()
	return r.t.entry(name)
}

func (r *nativeReader) Entries() iter.Seq[Entry] {
	r.check()
	return r.t.entries()
}

func (r *nativeReader) Open(name string) (io.ReadCloser, error) {
	r.check()
	return r.t.open(name)
}

func (r *nativeReader) Kind() Kind { return KindNative }

func (r *nativeReader) Close() error {
	if !r.markClosed() {
		return nil
	}
	return r.rc.Close()
}
