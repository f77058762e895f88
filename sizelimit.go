package zipvfs

import (
	"path"
	"strings"
)

// DefaultMaxSize is the largest entry DefaultSizeLimit lets ContentsToBytes
// load into memory.
const DefaultMaxSize uint64 = 20 << 20

// SizeLimit decides whether an entry is too large to be held in memory.
// ext is the lower-case file extension without the leading dot.
type SizeLimit interface {
	IsTooLarge(size uint64, ext string) bool
}

// SizeLimitFunc adapts a function to SizeLimit.
type SizeLimitFunc func(size uint64, ext string) bool

// IsTooLarge calls f.
func (f SizeLimitFunc) IsTooLarge(size uint64, ext string) bool {
	return f(size, ext)
}

// ExtensionLimits is a SizeLimit with per-extension overrides.
type ExtensionLimits struct {
	// Default applies to extensions without an override.
	Default uint64

	// ByExtension maps lower-case extensions without the dot to limits.
	ByExtension map[string]uint64
}

// IsTooLarge reports whether size exceeds the limit for ext.
func (l ExtensionLimits) IsTooLarge(size uint64, ext string) bool {
	limit := l.Default
	if v, ok := l.ByExtension[ext]; ok {
		limit = v
	}
	return size > limit
}

// Limit returns the limit applied to ext.
func (l ExtensionLimits) Limit(ext string) uint64 {
	if v, ok := l.ByExtension[ext]; ok {
		return v
	}
	return l.Default
}

// DefaultSizeLimit returns the limit used when no WithSizeLimit option is
// given: DefaultMaxSize for every extension.
func DefaultSizeLimit() ExtensionLimits {
	return ExtensionLimits{Default: DefaultMaxSize}
}

// extension returns the lower-case extension of rel without the dot.
func extension(rel string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(rel), "."))
}
