package entryindex

import (
	"path"
	"strings"
)

// Builder populates a Map from raw archive records, creating the root entry
// and any intermediate directories the archive does not list explicitly.
type Builder struct {
	m         *Map
	root      *Entry
	timestamp int64
}

// NewBuilder returns a Builder for about sizeHint records. Synthesized
// directories and the root receive dirTimestamp.
func NewBuilder(sizeHint int, dirTimestamp int64) *Builder {
	m := New(sizeHint + 1)
	root := &Entry{IsDir: true, Timestamp: dirTimestamp}
	m.Put("", root)
	return &Builder{m: m, root: root, timestamp: dirTimestamp}
}

// Add records one archive entry and returns its descriptor. Names are
// normalized first; Add returns nil for names that are empty after
// normalization or that escape the archive root.
//
// The first record for a path wins: later records normalizing to the same
// path, including explicit records for synthesized directories, return the
// existing entry. A file record whose path later gains children becomes a
// directory.
func (b *Builder) Add(name string, isDir bool, size uint64, timestamp int64) *Entry {
	rel, ok := Normalize(name)
	if !ok || rel == "" {
		return nil
	}
	if existing, found := b.m.Get(rel); found {
		return existing
	}
	parentPath, short := split(rel)
	e := &Entry{
		Name:      short,
		Parent:    b.dir(parentPath),
		IsDir:     isDir,
		Size:      size,
		Timestamp: timestamp,
	}
	if isDir {
		e.Size = 0
	}
	b.m.Put(rel, e)
	return e
}

// Map returns the populated map. The Builder must not be used afterwards.
func (b *Builder) Map() *Map {
	m := b.m
	b.m = nil
	return m
}

// dir returns the directory entry for rel, creating it and its ancestors
// when missing. A file entry found at rel is turned into a directory: a path
// with children is a directory whatever the archive recorded for it.
func (b *Builder) dir(rel string) *Entry {
	if rel == "" {
		return b.root
	}
	if e, ok := b.m.Get(rel); ok {
		if !e.IsDir {
			e.IsDir = true
			e.Size = 0
		}
		return e
	}
	parentPath, short := split(rel)
	e := &Entry{
		Name:      short,
		Parent:    b.dir(parentPath),
		IsDir:     true,
		Timestamp: b.timestamp,
	}
	b.m.Put(rel, e)
	return e
}

// Normalize converts a raw archive entry name into a clean relative path.
// It reports false for names that resolve outside the archive root.
func Normalize(name string) (string, bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.Trim(name, "/")
	if name == "" {
		return "", true
	}
	clean := path.Clean(name)
	if clean == "." {
		return "", true
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

func split(rel string) (parent, name string) {
	i := strings.LastIndexByte(rel, '/')
	if i < 0 {
		return "", rel
	}
	return rel[:i], rel[i+1:]
}
