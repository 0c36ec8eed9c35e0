package indexer

import (
	"context"
	"errors"

	"github.com/gabapcia/registrywatch/internal/cursor"
)

// ErrNoCursorFound is returned by LoadCursor when nothing has been committed
// yet for the requested network.
var ErrNoCursorFound = errors.New("no cursor found for network")

// CursorStorage persists the single durable checkpoint of each network.
type CursorStorage interface {
	// LoadCursor returns the last committed cursor of network, or
	// ErrNoCursorFound.
	LoadCursor(ctx context.Context, network string) (cursor.Cursor, error)

	// CommitCursor overwrites the cursor of network. It is only called after
	// every event up to c has been published.
	CommitCursor(ctx context.Context, network string, c cursor.Cursor) error

	// ResetCursor deletes the cursor of network so indexing restarts from the
	// beginning. Resetting a missing cursor is not an error.
	ResetCursor(ctx context.Context, network string) error
}

// nopCursor keeps nothing: every start begins from cursor.None.
type nopCursor struct{}

var _ CursorStorage = nopCursor{}

func (nopCursor) LoadCursor(context.Context, string) (cursor.Cursor, error) {
	return cursor.None(), ErrNoCursorFound
}

func (nopCursor) CommitCursor(context.Context, string, cursor.Cursor) error {
	return nil
}

func (nopCursor) ResetCursor(context.Context, string) error {
	return nil
}
