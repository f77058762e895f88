package zipreader

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, data []byte, blockSize int64, maxBlocks, perRead int) *blockSource {
	t.Helper()
	s, err := newBlockSource(bytes.NewReader(data), int64(len(data)), &config{
		blockSize:        blockSize,
		maxBlocks:        maxBlocks,
		maxBlocksPerRead: perRead,
	})
	require.NoError(t, err)
	return s
}

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestBlockSourceReadAt(t *testing.T) {
	t.Parallel()

	data := pattern(1000)
	s := newTestSource(t, data, 64, 32, 0)

	tests := []struct {
		name string
		off  int64
		size int
	}{
		{"first block", 0, 10},
		{"spans blocks", 60, 10},
		{"aligned", 128, 64},
		{"many blocks", 5, 700},
		{"tail", 990, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.size)
			n, err := s.ReadAt(buf, tt.off)
			require.NoError(t, err)
			assert.Equal(t, tt.size, n)
			assert.Equal(t, data[tt.off:tt.off+int64(tt.size)], buf)
		})
	}
}

func TestBlockSourceShortReadAtEnd(t *testing.T) {
	t.Parallel()

	data := pattern(100)
	s := newTestSource(t, data, 64, 4, 0)

	buf := make([]byte, 20)
	n, err := s.ReadAt(buf, 90)
	assert.Equal(t, 10, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, data[90:], buf[:n])

	_, err = s.ReadAt(buf, 100)
	assert.ErrorIs(t, err, io.EOF)

	_, err = s.ReadAt(buf, -1)
	assert.Error(t, err)
}

func TestBlockSourceCachesBlocks(t *testing.T) {
	t.Parallel()

	s := newTestSource(t, pattern(1024), 256, 8, 0)
	buf := make([]byte, 16)
	for i := range 10 {
		_, err := s.ReadAt(buf, int64(i*16))
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), s.Reads())
}

func TestBlockSourcePrefetch(t *testing.T) {
	t.Parallel()

	data := pattern(1024)
	s := newTestSource(t, data, 128, 16, 0)
	require.NoError(t, s.Prefetch(1024-300, 300))
	assert.Equal(t, int64(1), s.Reads())

	buf := make([]byte, 300)
	_, err := s.ReadAt(buf, 1024-300)
	require.NoError(t, err)
	assert.Equal(t, data[1024-300:], buf)
	assert.Equal(t, int64(1), s.Reads())
}

func TestBlockSourceBypassesLargeReads(t *testing.T) {
	t.Parallel()

	data := pattern(4096)
	s := newTestSource(t, data, 64, 4, 2)
	buf := make([]byte, 1024)
	_, err := s.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, data[:1024], buf)
	assert.Equal(t, 0, s.blocks.Len())
}

func TestBlockSourceConcurrentReads(t *testing.T) {
	t.Parallel()

	data := pattern(2048)
	s := newTestSource(t, data, 256, 16, 0)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Go(func() {
			off := int64(i*37) % 2000
			buf := make([]byte, 40)
			n, err := s.ReadAt(buf, off)
			if err != nil && err != io.EOF {
				t.Error(err)
				return
			}
			assert.Equal(t, data[off:off+int64(n)], buf[:n])
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, s.Reads(), int64(8))
}

func TestNewBlockSourceRejectsZeroBlockSize(t *testing.T) {
	t.Parallel()

	_, err := newBlockSource(bytes.NewReader(nil), 0, &config{})
	assert.Error(t, err)
}
