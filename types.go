package zipvfs

import "github.com/meigma/zipvfs/internal/entryindex"

// EntryInfo describes one archive entry. Its full path is not stored; use
// EntryPath to rebuild it.
type EntryInfo = entryindex.Entry

// EntryMap maps relative paths to entries.
type EntryMap = entryindex.Map

// EntryPath returns the relative path of e inside its archive.
func EntryPath(e *EntryInfo) string {
	return entryindex.Path(e)
}
