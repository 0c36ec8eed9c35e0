// Package badger keeps network cursors in an embedded Badger database, for
// single-node deployments without a Redis or Postgres server.
package badger

import (
	"context"
	"errors"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/indexer"

	"github.com/dgraph-io/badger/v4"
)

const cursorKeyPrefix = "cursor/"

type client struct {
	db *badger.DB
}

var _ indexer.CursorStorage = (*client)(nil)

// NewClient opens the database stored at path. An empty path keeps the data
// in memory, which is only useful in tests.
func NewClient(path string) (*client, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &client{db: db}, nil
}

func (c *client) Close() error {
	return c.db.Close()
}

func cursorKey(network string) []byte {
	return []byte(cursorKeyPrefix + network)
}

func (c *client) LoadCursor(_ context.Context, network string) (cursor.Cursor, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cursorKey(network))
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return cursor.None(), indexer.ErrNoCursorFound
	}
	if err != nil {
		return cursor.None(), err
	}

	return cursor.Parse(string(val))
}

func (c *client) CommitCursor(_ context.Context, network string, cur cursor.Cursor) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cursorKey(network), []byte(cur.String()))
	})
}

func (c *client) ResetCursor(_ context.Context, network string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cursorKey(network))
	})
}
