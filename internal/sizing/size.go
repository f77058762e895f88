// Package sizing provides safe size conversions and exact-length reads.
package sizing

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrOverflow is returned when a declared size does not fit the target type.
var ErrOverflow = errors.New("size overflow")

// ErrTrailingData is returned when a reader yields more bytes than declared.
var ErrTrailingData = errors.New("trailing data after declared size")

// ToInt converts a uint64 to int, returning ErrOverflow if it doesn't fit.
func ToInt(size uint64) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, ErrOverflow
	}
	return int(size), nil
}

// ReadExact reads exactly size bytes from r into a new buffer and checks that
// r has nothing left. A short stream is reported as io.ErrUnexpectedEOF.
func ReadExact(r io.Reader, size uint64) ([]byte, error) {
	n, err := ToInt(size)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("short read (%d of %d bytes): %w", read, n, io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	if err := ensureDrained(r); err != nil {
		return nil, err
	}
	return buf, nil
}

func ensureDrained(r io.Reader) error {
	var scratch [1]byte
	for {
		n, err := r.Read(scratch[:])
		if n > 0 {
			return ErrTrailingData
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
