package indexer

import (
	"context"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/pkg/logger"
	"github.com/gabapcia/registrywatch/internal/pkg/types"
)

// Fetcher applies the batch policy of one network on top of its adapter:
// references are deduplicated, the batch is bounded to the configured size and
// the next cursor is always set.
type Fetcher struct {
	network Network
	limit   int
}

// NewFetcher returns a Fetcher bounded to limit items per batch. A limit
// below 1 is treated as 1.
func NewFetcher(network Network, limit int) *Fetcher {
	return &Fetcher{network: network, limit: max(limit, 1)}
}

// Next returns the batch that follows from.
func (f *Fetcher) Next(ctx context.Context, from cursor.Cursor) (Batch, error) {
	batch, err := f.network.ListSince(ctx, from, f.limit)
	if err != nil {
		return Batch{}, err
	}

	return f.normalize(ctx, from, batch), nil
}

func (f *Fetcher) normalize(ctx context.Context, from cursor.Cursor, batch Batch) Batch {
	var (
		seen  = types.NewSet[string]()
		items = make([]RawItem, 0, len(batch.Items))
	)
	for _, item := range batch.Items {
		if seen.Insert(item.Ref) {
			items = append(items, item)
		}
	}

	next := batch.Next
	if next.IsNone() && len(items) > 0 {
		next = items[len(items)-1].Cursor
	}

	if len(items) > f.limit {
		trimmedNext := items[f.limit-1].Cursor
		if trimmedNext.After(from) {
			items, next = items[:f.limit], trimmedNext
		} else {
			// Every kept item shares a position with the trimmed tail (one
			// oversized block); trimming would never advance the cursor.
			logger.Warn(ctx, "batch exceeds size limit and cannot be split",
				"batch.size", len(items),
				"batch.limit", f.limit,
				"cursor.value", from.String(),
			)
		}
	}

	if next.IsNone() {
		next = from
	}

	return Batch{Items: items, Next: next}
}
