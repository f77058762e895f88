package zipreader

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/zipvfs/internal/sizing"
)

const (
	// DefaultBlockSize is the read-ahead unit of the remote strategy.
	DefaultBlockSize int64 = 128 << 10

	// DefaultMaxBlocks is the number of blocks the remote strategy keeps.
	DefaultMaxBlocks = 64

	// DefaultMaxBlocksPerRead bypasses the block cache for reads spanning
	// more blocks than this.
	DefaultMaxBlocksPerRead = 8

	// tailPrefetch covers the end-of-central-directory record plus its
	// maximum comment length.
	tailPrefetch int64 = 64<<10 + 22
)

// blockSource serves ReadAt calls from fixed-size, aligned blocks kept in an
// in-memory LRU. Many small reads against the same region of the archive
// collapse into one read of the underlying source.
type blockSource struct {
	src              io.ReaderAt
	size             int64
	blockSize        int64
	maxBlocksPerRead int
	blocks           *lru.Cache[int64, []byte]
	fetches          singleflight.Group
	reads            atomic.Int64
}

func newBlockSource(src io.ReaderAt, size int64, cfg *config) (*blockSource, error) {
	if cfg.blockSize <= 0 {
		return nil, errors.New("zipreader: block size must be > 0")
	}
	blocks, err := lru.New[int64, []byte](max(cfg.maxBlocks, 1))
	if err != nil {
		return nil, err
	}
	return &blockSource{
		src:              src,
		size:             size,
		blockSize:        cfg.blockSize,
		maxBlocksPerRead: cfg.maxBlocksPerRead,
		blocks:           blocks,
	}, nil
}

// Reads returns the number of reads issued against the underlying source.
func (s *blockSource) Reads() int64 {
	return s.reads.Load()
}

// ReadAt implements io.ReaderAt.
func (s *blockSource) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("read at %d: negative offset", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}

	expected := int64(len(p))
	if off+expected > s.size {
		expected = s.size - off
	}

	startBlock := off / s.blockSize
	endBlock := (off + expected - 1) / s.blockSize
	if s.maxBlocksPerRead > 0 && endBlock-startBlock+1 > int64(s.maxBlocksPerRead) {
		s.reads.Add(1)
		return s.src.ReadAt(p, off)
	}

	var n int64
	for index := startBlock; index <= endBlock; index++ {
		data, err := s.block(index)
		if err != nil {
			return int(n), err
		}
		blockStart := index * s.blockSize
		copyStart := max(off, blockStart)
		copyEnd := min(off+expected, blockStart+int64(len(data)))
		if copyEnd > copyStart {
			copy(p[copyStart-off:copyEnd-off], data[copyStart-blockStart:copyEnd-blockStart])
			n += copyEnd - copyStart
		}
	}

	if n < int64(len(p)) {
		return int(n), io.EOF
	}
	return int(n), nil
}

// Prefetch loads every block overlapping [off, off+length) with a single
// read of the underlying source.
func (s *blockSource) Prefetch(off, length int64) error {
	if off < 0 {
		off = 0
	}
	end := min(off+length, s.size)
	if end <= off {
		return nil
	}
	first := off / s.blockSize
	last := (end - 1) / s.blockSize
	start := first * s.blockSize
	stop := min((last+1)*s.blockSize, s.size)

	buf, err := s.readRange(start, stop-start)
	if err != nil {
		return err
	}
	for index := first; index <= last; index++ {
		lo := (index - first) * s.blockSize
		hi := min(lo+s.blockSize, int64(len(buf)))
		s.blocks.Add(index, buf[lo:hi])
	}
	return nil
}

func (s *blockSource) block(index int64) ([]byte, error) {
	if data, ok := s.blocks.Get(index); ok {
		return data, nil
	}
	v, err, _ := s.fetches.Do(strconv.FormatInt(index, 10), func() (any, error) {
		if data, ok := s.blocks.Get(index); ok {
			return data, nil
		}
		start := index * s.blockSize
		data, err := s.readRange(start, min(s.blockSize, s.size-start))
		if err != nil {
			return nil, err
		}
		s.blocks.Add(index, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil //nolint:errcheck // type assertion always succeeds when err is nil
}

func (s *blockSource) readRange(off, length int64) ([]byte, error) {
	n, err := sizing.ToInt(uint64(length)) //nolint:gosec // callers pass non-negative lengths
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	s.reads.Add(1)
	read, err := s.src.ReadAt(buf, off)
	if read == n {
		return buf, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, err
}
