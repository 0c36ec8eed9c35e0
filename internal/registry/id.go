package registry

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// maxID is 2^128 - 1.
var maxID = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// IDFromUint128 builds the canonical UUID form of a 128-bit identifier given
// as its high and low 64-bit halves.
func IDFromUint128(hi, lo uint64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], hi)
	binary.BigEndian.PutUint64(id[8:], lo)
	return id
}

// IDFromBig converts an ABI-decoded uint128. Negative values and values wider
// than 128 bits are rejected.
func IDFromBig(v *big.Int) (uuid.UUID, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(maxID) > 0 {
		return uuid.Nil, fmt.Errorf("%w: id %v is not a u128", ErrInvalidPayload, v)
	}

	var id uuid.UUID
	v.FillBytes(id[:])
	return id, nil
}

// IDFromDecimal parses a u128 written as a base-10 string.
func IDFromDecimal(s string) (uuid.UUID, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: id %q is not a decimal integer", ErrInvalidPayload, s)
	}

	return IDFromBig(v)
}

// IDFromLittleEndian converts a borsh-encoded u128.
func IDFromLittleEndian(b [16]byte) uuid.UUID {
	var id uuid.UUID
	for i := range b {
		id[15-i] = b[i]
	}
	return id
}

// IDToBig is the inverse of IDFromBig.
func IDToBig(id uuid.UUID) *big.Int {
	return new(big.Int).SetBytes(id[:])
}

// IDToDecimal is the inverse of IDFromDecimal.
func IDToDecimal(id uuid.UUID) string {
	return IDToBig(id).String()
}
