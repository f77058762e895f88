package entryindex

import (
	"errors"
	"iter"
	"slices"

	"github.com/zeebo/xxh3"
)

// ErrUnsupported is the panic value for operations the index does not support.
var ErrUnsupported = errors.New("entryindex: operation not supported")

const (
	defaultCapacity = 16

	// Occupancy never exceeds loadNum/loadDen of capacity.
	loadNum = 5
	loadDen = 8

	// Below this capacity the table doubles on growth; above it grows by half.
	doublingLimit = 1000
)

// Map is an open-addressing hash table from relative path to *Entry.
//
// Keys are implicit: a slot holds only the entry, and a candidate path is
// compared against the entry's name chain. Slots are never cleared
// individually. A Map is not safe for concurrent mutation; once built it may
// be read from any number of goroutines.
type Map struct {
	slots []*Entry
	count int
}

// New returns an empty Map sized to hold sizeHint entries without growing.
func New(sizeHint int) *Map {
	return &Map{slots: make([]*Entry, capacityFor(sizeHint))}
}

// capacityFor returns the smallest capacity that keeps n entries within the
// load factor.
func capacityFor(n int) int {
	c := n*loadDen/loadNum + 1
	if c < defaultCapacity {
		return defaultCapacity
	}
	return c
}

// Len returns the number of entries in the map.
func (m *Map) Len() int {
	return m.count
}

// Capacity returns the number of slots in the backing array.
func (m *Map) Capacity() int {
	return len(m.slots)
}

// Get returns the entry stored for path.
func (m *Map) Get(path string) (*Entry, bool) {
	i, ok := m.find(m.slots, path)
	if !ok {
		return nil, false
	}
	return m.slots[i], true
}

// Put stores e under path, replacing any entry already stored for path.
// path must be the path that Path(e) rebuilds.
func (m *Map) Put(path string, e *Entry) {
	if e == nil {
		panic("entryindex: nil entry")
	}
	if (m.count+1)*loadDen > len(m.slots)*loadNum {
		m.rehash()
	}
	i, found := m.find(m.slots, path)
	if i < 0 {
		// The load factor guarantees a free slot.
		panic("entryindex: table full")
	}
	m.slots[i] = e
	if !found {
		m.count++
	}
}

// Remove always panics with ErrUnsupported: entries are only dropped with the
// whole map.
func (m *Map) Remove(string) {
	panic(ErrUnsupported)
}

// Clone returns a map with the same slots. Entries are shared, not copied.
func (m *Map) Clone() *Map {
	return &Map{slots: slices.Clone(m.slots), count: m.count}
}

// All returns an iterator over (path, entry) pairs in slot order. Each path
// is rebuilt from the entry's parent chain.
func (m *Map) All() iter.Seq2[string, *Entry] {
	return func(yield func(string, *Entry) bool) {
		var buf []byte
		for _, e := range m.slots {
			if e == nil {
				continue
			}
			buf = appendPath(buf[:0], e)
			if !yield(string(buf), e) {
				return
			}
		}
	}
}

// find probes slots for path. It returns the index holding a matching entry
// and true, or the first empty index and false. It returns -1, false when the
// probe wraps around a full table.
func (m *Map) find(slots []*Entry, path string) (int, bool) {
	n := len(slots)
	if n == 0 {
		return -1, false
	}
	start := slot(path, n)
	i := start
	for {
		e := slots[i]
		if e == nil {
			return i, false
		}
		if matches(e, path) {
			return i, true
		}
		i++
		if i == n {
			i = 0
		}
		if i == start {
			return -1, false
		}
	}
}

// rehash grows the table and reinserts every entry under its rebuilt path.
func (m *Map) rehash() {
	n := len(m.slots)
	var grown int
	switch {
	case n == 0:
		grown = defaultCapacity
	case n < doublingLimit:
		grown = n * 2
	default:
		grown = n * 3 / 2
	}
	slots := make([]*Entry, grown)
	var buf []byte
	for _, e := range m.slots {
		if e == nil {
			continue
		}
		buf = appendPath(buf[:0], e)
		i, _ := m.find(slots, string(buf))
		slots[i] = e
	}
	m.slots = slots
}

func slot(path string, n int) int {
	return int(xxh3.HashString(path) % uint64(n))
}
