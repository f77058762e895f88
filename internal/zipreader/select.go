package zipreader

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
)

// SelectOptions controls strategy selection.
type SelectOptions struct {
	// ForceOverlay selects KindOverlay for every archive.
	ForceOverlay bool

	// GOOS overrides the host OS used by the locality heuristic.
	GOOS string

	// Probe reports whether path exists on a local mount. Defaults to
	// ProbeLocal.
	Probe func(path string) bool
}

// Select picks the reading strategy for the archive at path: native for
// local files, remote otherwise, unless the overlay strategy is forced.
func Select(path string, opts SelectOptions) Kind {
	if opts.ForceOverlay {
		return KindOverlay
	}
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	probe := opts.Probe
	if probe == nil {
		probe = ProbeLocal
	}
	if IsLocal(path, goos, probe) {
		return KindNative
	}
	return KindRemote
}

// IsLocal applies the locality heuristic. On Windows a path is local when it
// starts with a drive letter, including behind the \\?\ and //?/ prefixes;
// UNC shares and WSL paths are not. Elsewhere the probe decides.
func IsLocal(path, goos string, probe func(string) bool) bool {
	if goos == "windows" {
		return hasDriveLetter(path)
	}
	return probe(path)
}

// ProbeLocal stats path directly on the host filesystem, bypassing any
// caching layer.
func ProbeLocal(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, err = osfs.New("/").Stat(abs)
	return err == nil
}

func hasDriveLetter(path string) bool {
	for _, prefix := range []string{`\\?\`, `//?/`} {
		if strings.HasPrefix(path, prefix) {
			path = path[len(prefix):]
			break
		}
	}
	if len(path) < 3 {
		return false
	}
	c := path[0]
	isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
	return isLetter && path[1] == ':' && (path[2] == '\\' || path[2] == '/')
}
