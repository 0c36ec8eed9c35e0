// Package borsh reads the little-endian, length-prefixed Borsh layout used by
// Solana programs to store account data.
//
// Reader keeps the first error it hits; every later read returns a zero value,
// so a whole struct can be decoded before checking Err once.
package borsh

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when the data ends before a read completes.
var ErrTruncated = errors.New("borsh: truncated data")

// maxStringLen bounds length prefixes so corrupted data fails fast.
const maxStringLen = 1 << 20

type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns how many bytes have not been consumed yet.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}

	if n < 0 || r.Remaining() < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.off, r.Remaining())
		return nil
	}

	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Bool() bool {
	return r.U8() != 0
}

func (r *Reader) U32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) U64() uint64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// U128 returns the raw little-endian bytes of a u128.
func (r *Reader) U128() [16]byte {
	var out [16]byte
	copy(out[:], r.next(16))
	return out
}

// Fixed reads a fixed-size byte array, e.g. a [u8; 32] public key.
func (r *Reader) Fixed(n int) []byte {
	b := r.next(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// String reads a u32 length prefix followed by that many bytes.
func (r *Reader) String() string {
	n := r.U32()
	if r.err == nil && n > maxStringLen {
		r.err = fmt.Errorf("%w: string length %d exceeds %d", ErrTruncated, n, maxStringLen)
		return ""
	}
	return string(r.next(int(n)))
}
