package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/indexer"

	"github.com/redis/go-redis/v9"
)

// cursorKeyPrefix is the namespace of every key written by the indexer.
const cursorKeyPrefix = "registrywatch"

// cursorKey returns the key holding the cursor of a network:
//
//	"registrywatch:cursor:<network>"
func cursorKey(network string) string {
	return fmt.Sprintf("%s:cursor:%s", cursorKeyPrefix, network)
}

// CommitCursor stores c as the cursor of network, with no expiration.
func (c *client) CommitCursor(ctx context.Context, network string, cur cursor.Cursor) error {
	return c.conn.Set(ctx, cursorKey(network), cur.String(), 0).Err()
}

// LoadCursor returns the cursor of network, or indexer.ErrNoCursorFound when
// none was committed yet.
func (c *client) LoadCursor(ctx context.Context, network string) (cursor.Cursor, error) {
	val, err := c.conn.Get(ctx, cursorKey(network)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = indexer.ErrNoCursorFound
		}

		return cursor.None(), err
	}

	return cursor.Parse(val)
}

// ResetCursor deletes the cursor of network.
func (c *client) ResetCursor(ctx context.Context, network string) error {
	return c.conn.Del(ctx, cursorKey(network)).Err()
}

var _ indexer.CursorStorage = (*client)(nil)
