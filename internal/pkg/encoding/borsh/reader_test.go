package borsh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	t.Run("reads a mixed layout", func(t *testing.T) {
		data := []byte{
			0x01,                   // u8
			0x2a, 0x00, 0x00, 0x00, // u32 42
			0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // u64 256
			0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c', // string
			0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // u128 7
			0xde, 0xad, // fixed [2]
		}

		r := NewReader(data)
		assert.True(t, r.Bool())
		assert.Equal(t, uint32(42), r.U32())
		assert.Equal(t, uint64(256), r.U64())
		assert.Equal(t, "abc", r.String())

		u128 := r.U128()
		assert.Equal(t, byte(7), u128[0])

		assert.Equal(t, []byte{0xde, 0xad}, r.Fixed(2))
		require.NoError(t, r.Err())
		assert.Zero(t, r.Remaining())
	})

	t.Run("truncation is sticky", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x02})

		assert.Equal(t, uint8(1), r.U8())
		assert.Zero(t, r.U64())
		assert.Zero(t, r.U8(), "reads after an error return zero values")
		assert.ErrorIs(t, r.Err(), ErrTruncated)
	})

	t.Run("string longer than the data", func(t *testing.T) {
		r := NewReader([]byte{0x05, 0x00, 0x00, 0x00, 'a'})

		assert.Empty(t, r.String())
		assert.ErrorIs(t, r.Err(), ErrTruncated)
	})

	t.Run("absurd string length", func(t *testing.T) {
		r := NewReader([]byte{0xff, 0xff, 0xff, 0xff})

		assert.Empty(t, r.String())
		assert.ErrorIs(t, r.Err(), ErrTruncated)
	})

	t.Run("fixed copies the bytes", func(t *testing.T) {
		data := []byte{1, 2, 3}
		b := NewReader(data).Fixed(3)
		data[0] = 9
		assert.Equal(t, []byte{1, 2, 3}, b)
	})
}
