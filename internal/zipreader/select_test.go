package zipreader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	t.Parallel()

	always := func(string) bool { return true }
	never := func(string) bool { return false }

	tests := []struct {
		name string
		path string
		opts SelectOptions
		want Kind
	}{
		{"force overlay wins", `C:\x.jar`, SelectOptions{ForceOverlay: true, GOOS: "windows"}, KindOverlay},
		{"windows drive", `C:\libs\x.jar`, SelectOptions{GOOS: "windows"}, KindNative},
		{"windows forward slash", `d:/libs/x.jar`, SelectOptions{GOOS: "windows"}, KindNative},
		{"windows long prefix", `\\?\C:\libs\x.jar`, SelectOptions{GOOS: "windows"}, KindNative},
		{"windows long prefix slashes", `//?/C:/libs/x.jar`, SelectOptions{GOOS: "windows"}, KindNative},
		{"windows unc", `\\server\share\x.jar`, SelectOptions{GOOS: "windows"}, KindRemote},
		{"windows wsl", `\\wsl$\Ubuntu\home\x.jar`, SelectOptions{GOOS: "windows"}, KindRemote},
		{"windows drive ignores probe", `C:\x.jar`, SelectOptions{GOOS: "windows", Probe: never}, KindNative},
		{"unix probe hit", "/opt/x.jar", SelectOptions{GOOS: "linux", Probe: always}, KindNative},
		{"unix probe miss", "/mnt/remote/x.jar", SelectOptions{GOOS: "linux", Probe: never}, KindRemote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Select(tt.path, tt.opts))
		})
	}
}

func TestProbeLocal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.True(t, ProbeLocal(dir))
	assert.False(t, ProbeLocal(filepath.Join(dir, "absent.jar")))
}
