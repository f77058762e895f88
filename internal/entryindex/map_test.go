package entryindex

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds the entries for a slash-separated path under root and returns
// the leaf.
func chain(root *Entry, rel string) *Entry {
	parent := root
	for _, name := range strings.Split(rel, "/") {
		parent = &Entry{Name: name, Parent: parent}
	}
	return parent
}

func TestPath(t *testing.T) {
	t.Parallel()

	root := &Entry{IsDir: true}
	tests := []string{
		"a",
		"a/b/c.txt",
		"META-INF/MANIFEST.MF",
		"données/été/ünïcödé.txt",
		"日本/語.txt",
	}
	for _, rel := range tests {
		t.Run(rel, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, rel, Path(chain(root, rel)))
		})
	}
	assert.Empty(t, Path(root))
}

func TestMatches(t *testing.T) {
	t.Parallel()

	root := &Entry{IsDir: true}
	leaf := chain(root, "a/b/c.txt")

	tests := []struct {
		path string
		want bool
	}{
		{"a/b/c.txt", true},
		{"b/c.txt", false},
		{"x/a/b/c.txt", false},
		{"a/bc.txt", false},
		{"a/b/c.tx", false},
		{"ab/c.txt", false},
		{"a//b/c.txt", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, matches(leaf, tt.path))
		})
	}
	assert.True(t, matches(root, ""))
	assert.False(t, matches(root, "a"))
}

func TestMapRoundTrip(t *testing.T) {
	t.Parallel()

	root := &Entry{IsDir: true}
	m := New(0)
	m.Put("", root)

	paths := []string{
		"a/b/c.txt",
		"a/b/d.txt",
		"a/b",
		"a",
		"deep/er/and/deeper/still/file.bin",
		"ñ/ß/文件.txt",
		"META-INF/MANIFEST.MF",
	}
	entries := make(map[string]*Entry, len(paths))
	for _, p := range paths {
		e := chain(root, p)
		entries[p] = e
		m.Put(p, e)
	}

	assert.Equal(t, len(paths)+1, m.Len())
	for _, p := range paths {
		got, ok := m.Get(p)
		require.True(t, ok, p)
		assert.Same(t, entries[p], got)
		assert.Equal(t, p, Path(got))
	}
	_, ok := m.Get("a/b/x.txt")
	assert.False(t, ok)
}

func TestMapPutReplaces(t *testing.T) {
	t.Parallel()

	root := &Entry{IsDir: true}
	m := New(4)
	first := &Entry{Name: "f", Parent: root, Size: 1}
	second := &Entry{Name: "f", Parent: root, Size: 2}

	m.Put("f", first)
	m.Put("f", second)

	assert.Equal(t, 1, m.Len())
	got, ok := m.Get("f")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestMapRehashPreservesMembership(t *testing.T) {
	t.Parallel()

	root := &Entry{IsDir: true}
	m := New(0)
	initial := m.Capacity()

	const n = 5000
	entries := make([]*Entry, n)
	for i := range n {
		dir := &Entry{Name: fmt.Sprintf("d%03d", i%97), Parent: root, IsDir: true}
		e := &Entry{Name: fmt.Sprintf("file-%d.class", i), Parent: dir, Size: uint64(i)}
		entries[i] = e
		m.Put(Path(e), e)
	}

	require.Equal(t, n, m.Len())
	assert.Greater(t, m.Capacity(), initial*4, "expected at least two rehashes")
	assert.LessOrEqual(t, m.Len()*loadDen, m.Capacity()*loadNum)
	for i, e := range entries {
		got, ok := m.Get(fmt.Sprintf("d%03d/file-%d.class", i%97, i))
		require.True(t, ok)
		assert.Same(t, e, got)
	}
}

func TestMapGrowthSchedule(t *testing.T) {
	t.Parallel()

	m := &Map{slots: make([]*Entry, 100)}
	m.rehash()
	assert.Equal(t, 200, m.Capacity())

	m = &Map{slots: make([]*Entry, 2000)}
	m.rehash()
	assert.Equal(t, 3000, m.Capacity())
}

func TestMapRemovePanics(t *testing.T) {
	t.Parallel()

	empty := New(0)
	assert.PanicsWithValue(t, ErrUnsupported, func() { empty.Remove("a") })

	root := &Entry{IsDir: true}
	full := New(0)
	full.Put("a", chain(root, "a"))
	assert.PanicsWithValue(t, ErrUnsupported, func() { full.Remove("a") })
	assert.Equal(t, 1, full.Len())
}

func TestMapAll(t *testing.T) {
	t.Parallel()

	root := &Entry{IsDir: true}
	m := New(0)
	m.Put("", root)
	want := map[string]bool{"": true}
	for _, p := range []string{"x", "x/y", "x/y/z.txt", "w.txt"} {
		m.Put(p, chain(root, p))
		want[p] = true
	}

	got := make(map[string]bool)
	for p, e := range m.All() {
		got[p] = true
		assert.Equal(t, p, Path(e))
	}
	assert.Equal(t, want, got)
}

func TestMapAllStopsEarly(t *testing.T) {
	t.Parallel()

	root := &Entry{IsDir: true}
	m := New(0)
	for _, p := range []string{"a", "b", "c"} {
		m.Put(p, chain(root, p))
	}
	count := 0
	for range m.All() {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestMapClone(t *testing.T) {
	t.Parallel()

	b := NewBuilder(2, 0)
	leaf := b.Add("x/y.txt", false, 3, 0)
	m := b.Map()

	c := m.Clone()
	assert.Equal(t, m.Len(), c.Len())
	got, ok := c.Get("x/y.txt")
	require.True(t, ok)
	assert.Same(t, leaf, got)

	c.Put("z.txt", &Entry{Name: "z.txt"})
	_, ok = m.Get("z.txt")
	assert.False(t, ok)
	assert.Equal(t, m.Len()+1, c.Len())
}
