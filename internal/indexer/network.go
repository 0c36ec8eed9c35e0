package indexer

import (
	"context"
	"errors"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/registry"
)

var (
	// ErrNetworkNotRegistered is returned when operating on a network the service does not run.
	ErrNetworkNotRegistered = errors.New("network not registered")

	// ErrNotYetVisible is returned by adapters when a referenced transaction is
	// still unknown to the node after the visibility timeout.
	ErrNotYetVisible = errors.New("transaction not yet visible")
)

// RawItem references one unprocessed unit of network data: a transaction
// hash, a signature or a receipt id.
type RawItem struct {
	Ref     string        // network-specific reference, unique within the network
	Ordinal uint64        // block height or slot, for ordering and display
	Cursor  cursor.Cursor // position the network is at once this item is published
	Payload any           // adapter-private data handed back to the decoder
}

// Batch is an ordered, bounded group of items and the cursor it advances to
// once every item has been published.
type Batch struct {
	Items []RawItem
	Next  cursor.Cursor
}

// CaughtUp reports whether the batch carries nothing new relative to from.
func (b Batch) CaughtUp(from cursor.Cursor) bool {
	return len(b.Items) == 0 && !b.Next.After(from)
}

// Network lists the registry transactions of one network.
type Network interface {
	// ListSince returns, oldest first, at most maxItems references to
	// transactions that happened after c, and the cursor the batch ends at.
	// An empty batch with Next equal to c means the network head was reached.
	ListSince(ctx context.Context, c cursor.Cursor, maxItems int) (Batch, error)
}

// Decoder turns one raw item into the registry events it produced.
type Decoder interface {
	// Decode returns zero or more events in instruction order. Items that
	// touch the registry with malformed arguments fail with an error wrapping
	// registry.ErrInvalidPayload. Any other error is considered transient.
	Decode(ctx context.Context, item RawItem) ([]registry.Event, error)
}

// AssignBlockCursors sets the cursor of every item of a block-scanned window
// that started at block start. Items must be in block order. The last item of
// a block completes it; earlier ones only complete the block before, so a
// batch trimmed between them is resumed from that block.
func AssignBlockCursors(items []RawItem, from cursor.Cursor, start uint64) []RawItem {
	for i := range items {
		height := items[i].Ordinal
		switch {
		case i == len(items)-1 || items[i+1].Ordinal != height:
			items[i].Cursor = cursor.Block(height)
		case height == start:
			items[i].Cursor = from
		default:
			items[i].Cursor = cursor.Block(height - 1)
		}
	}

	return items
}
