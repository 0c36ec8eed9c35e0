// Package cursor defines the durable resumption marker of one network's
// indexing progress.
//
// A Cursor is a closed sum type: it is either None (nothing indexed yet),
// Transaction (the last published transaction of a signature-paginated
// network) or Block (the last fully scanned block of a block-scanned
// network). The zero value is None.
package cursor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCursor is returned when a stored cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// Kind identifies the active variant of a Cursor.
type Kind uint8

const (
	KindNone Kind = iota
	KindTransaction
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransaction:
		return "tx"
	case KindBlock:
		return "block"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Cursor is an opaque, comparable resumption position.
type Cursor struct {
	kind   Kind
	tx     string
	height uint64
}

// None returns the cursor that starts indexing from the beginning.
func None() Cursor {
	return Cursor{}
}

// Transaction returns a cursor positioned at the given transaction reference.
func Transaction(id string) Cursor {
	return Cursor{kind: KindTransaction, tx: id}
}

// Block returns a cursor positioned at the given block height.
func Block(height uint64) Cursor {
	return Cursor{kind: KindBlock, height: height}
}

func (c Cursor) Kind() Kind { return c.kind }

func (c Cursor) IsNone() bool { return c.kind == KindNone }

// TransactionID returns the transaction reference, and false for other variants.
func (c Cursor) TransactionID() (string, bool) {
	return c.tx, c.kind == KindTransaction
}

// Height returns the block height, and false for other variants.
func (c Cursor) Height() (uint64, bool) {
	return c.height, c.kind == KindBlock
}

// After reports whether c is strictly further than prev. Any non-None cursor
// is after None. Block cursors compare by height. Transaction references are
// opaque, so a transaction cursor is after another one when they differ.
// Cursors of different non-None variants are never ordered.
func (c Cursor) After(prev Cursor) bool {
	switch {
	case c.kind == KindNone:
		return false
	case prev.kind == KindNone:
		return true
	case c.kind != prev.kind:
		return false
	case c.kind == KindBlock:
		return c.height > prev.height
	default:
		return c.tx != prev.tx
	}
}

// String encodes the cursor as "none", "tx:<id>" or "block:<height>".
func (c Cursor) String() string {
	switch c.kind {
	case KindTransaction:
		return "tx:" + c.tx
	case KindBlock:
		return "block:" + strconv.FormatUint(c.height, 10)
	default:
		return "none"
	}
}

// Parse decodes the String form of a cursor.
func Parse(s string) (Cursor, error) {
	if s == "none" {
		return None(), nil
	}

	prefix, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return Cursor{}, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}

	switch prefix {
	case "tx":
		return Transaction(value), nil
	case "block":
		height, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return Cursor{}, fmt.Errorf("%w: %q: %w", ErrInvalidCursor, s, err)
		}
		return Block(height), nil
	default:
		return Cursor{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidCursor, prefix)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Cursor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Cursor) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}
