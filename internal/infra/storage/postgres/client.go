// Package postgres keeps network cursors in a Postgres table, next to the
// data of the services that consume the published events.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/indexer"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createTableQuery = `
		CREATE TABLE IF NOT EXISTS registry_cursors (
			network    TEXT PRIMARY KEY,
			cursor     TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	loadCursorQuery = `SELECT cursor FROM registry_cursors WHERE network = $1`

	commitCursorQuery = `
		INSERT INTO registry_cursors (network, cursor, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (network)
		DO UPDATE SET cursor = EXCLUDED.cursor, updated_at = now()`

	resetCursorQuery = `DELETE FROM registry_cursors WHERE network = $1`
)

// querier is the subset of *pgxpool.Pool the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type client struct {
	db    querier
	close func()
}

var _ indexer.CursorStorage = (*client)(nil)

// NewClient connects to dsn and creates the cursor table when missing.
func NewClient(ctx context.Context, dsn string) (*client, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	c := &client{db: pool, close: pool.Close}
	if err := c.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return c, nil
}

func (c *client) migrate(ctx context.Context) error {
	if _, err := c.db.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("create registry_cursors: %w", err)
	}
	return nil
}

func (c *client) Close() {
	if c.close != nil {
		c.close()
	}
}

func (c *client) LoadCursor(ctx context.Context, network string) (cursor.Cursor, error) {
	var val string
	err := c.db.QueryRow(ctx, loadCursorQuery, network).Scan(&val)
	if errors.Is(err, pgx.ErrNoRows) {
		return cursor.None(), indexer.ErrNoCursorFound
	}
	if err != nil {
		return cursor.None(), err
	}

	return cursor.Parse(val)
}

func (c *client) CommitCursor(ctx context.Context, network string, cur cursor.Cursor) error {
	_, err := c.db.Exec(ctx, commitCursorQuery, network, cur.String())
	return err
}

func (c *client) ResetCursor(ctx context.Context, network string) error {
	_, err := c.db.Exec(ctx, resetCursorQuery, network)
	return err
}
