package sizing

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	t.Parallel()

	n, err := ToInt(42)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = ToInt(math.MaxUint64)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestReadExact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		size    uint64
		want    string
		wantErr error
	}{
		{name: "exact", input: "helloworld", size: 10, want: "helloworld"},
		{name: "empty", input: "", size: 0, want: ""},
		{name: "short", input: "hello", size: 10, wantErr: io.ErrUnexpectedEOF},
		{name: "trailing", input: "helloworld!", size: 10, wantErr: ErrTrailingData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ReadExact(strings.NewReader(tt.input), tt.size)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestReadExactOneByteReader(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("z"), 4096)
	got, err := ReadExact(iotest.OneByteReader(bytes.NewReader(data)), uint64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
