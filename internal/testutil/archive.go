// Package testutil builds zip fixtures for tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Method values accepted by File.Method.
const (
	Store   = zip.Store
	Deflate = zip.Deflate
	Zstd    = zstd.ZipMethodWinZip
)

// FixtureTime is the modification time stamped on fixture entries that do
// not set one.
var FixtureTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// File describes one fixture entry. Names ending in "/" are directories.
type File struct {
	Name     string
	Content  string
	Method   uint16
	Modified time.Time
}

// ZipBytes encodes files into an in-memory archive.
func ZipBytes(tb testing.TB, files []File) []byte {
	tb.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())
	for _, f := range files {
		modified := f.Modified
		if modified.IsZero() {
			modified = FixtureTime
		}
		h := &zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: modified,
		}
		if len(f.Name) > 0 && f.Name[len(f.Name)-1] == '/' {
			h.Method = zip.Store
		}
		w, err := zw.CreateHeader(h)
		if err != nil {
			tb.Fatalf("create %s: %v", f.Name, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			tb.Fatalf("write %s: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

// WriteZip writes an archive of files into dir and returns its absolute path.
func WriteZip(tb testing.TB, dir, name string, files []File) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, ZipBytes(tb, files), 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		tb.Fatalf("abs %s: %v", path, err)
	}
	return abs
}

// Rewrite replaces the archive at path and moves its modification time to
// modified so that staleness checks observe the change even on filesystems
// with coarse timestamps.
func Rewrite(tb testing.TB, path string, files []File, modified time.Time) {
	tb.Helper()

	if err := os.WriteFile(path, ZipBytes(tb, files), 0o644); err != nil {
		tb.Fatalf("rewrite %s: %v", path, err)
	}
	if err := os.Chtimes(path, modified, modified); err != nil {
		tb.Fatalf("chtimes %s: %v", path, err)
	}
}

// Sample returns a small archive mixing compression methods, nested
// directories and an explicit directory record.
func Sample() []File {
	return []File{
		{Name: "a/b/c.txt", Content: "helloworld", Method: Deflate},
		{Name: "a/stored.txt", Content: "stored bytes", Method: Store},
		{Name: "docs/", Method: Store},
		{Name: "docs/readme.md", Content: "# readme\n", Method: Zstd},
		{Name: "top.txt", Content: "top", Method: Deflate},
	}
}
