// Package entryindex maps archive-relative paths to entry descriptors without
// storing a path string per entry.
//
// Entries form a tree through their Parent links. The full path of an entry is
// never stored; it is either compared segment by segment against a candidate
// path (lookup) or rebuilt on demand (rehash and iteration).
package entryindex

// Entry describes one archive entry (file or directory).
//
// Entries are immutable once the index holding them is published.
type Entry struct {
	// Name is the final path segment. It is empty only for the index root.
	Name string

	// Parent is the enclosing directory, or nil for the index root.
	Parent *Entry

	// IsDir reports whether the entry is a directory.
	IsDir bool

	// Size is the uncompressed size in bytes.
	Size uint64

	// Timestamp is the archive modification time in Unix milliseconds, or the
	// entry CRC-32 when the index was built with CRC timestamps.
	Timestamp int64
}

// Path rebuilds the relative path of e by walking its parent links.
// The root entry has the empty path.
func Path(e *Entry) string {
	return string(appendPath(nil, e))
}

// appendPath appends the path of e to buf. Segments are appended reversed,
// leaf first, and the accumulated suffix is reversed once at the end.
func appendPath(buf []byte, e *Entry) []byte {
	start := len(buf)
	for cur := e; cur != nil; cur = cur.Parent {
		if cur.Name == "" {
			continue
		}
		if len(buf) > start {
			buf = append(buf, '/')
		}
		for i := len(cur.Name) - 1; i >= 0; i-- {
			buf = append(buf, cur.Name[i])
		}
	}
	reverse(buf[start:])
	return buf
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// matches reports whether e is the entry for path. It consumes path from the
// end, one segment per ancestor, and succeeds only when the whole path is
// consumed exactly at the root.
func matches(e *Entry, path string) bool {
	end := len(path)
	for cur := e; cur != nil; {
		name := cur.Name
		if len(name) > end || path[end-len(name):end] != name {
			return false
		}
		end -= len(name)
		cur = cur.Parent
		if cur != nil && cur.Name != "" {
			if end == 0 || path[end-1] != '/' {
				return false
			}
			end--
		}
	}
	return end == 0
}
