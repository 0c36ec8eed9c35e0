package postgres

import (
	"context"
	"testing"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/indexer"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB is an in-memory registry_cursors table answering the store's queries.
type fakeDB struct {
	rows    map[string]string
	execErr error
}

type fakeRow struct {
	val string
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.val
	return nil
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}

	switch sql {
	case commitCursorQuery:
		f.rows[args[0].(string)] = args[1].(string)
	case resetCursorQuery:
		delete(f.rows, args[0].(string))
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	val, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{val: val}
}

func newTestClient() (*client, *fakeDB) {
	db := &fakeDB{rows: make(map[string]string)}
	return &client{db: db}, db
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(t.Context(), "")
	assert.Error(t, err)
}

func TestClient_Cursor(t *testing.T) {
	t.Run("missing cursor", func(t *testing.T) {
		c, _ := newTestClient()

		got, err := c.LoadCursor(t.Context(), "ethereum")
		assert.ErrorIs(t, err, indexer.ErrNoCursorFound)
		assert.True(t, got.IsNone())
	})

	t.Run("commit upserts and load parses", func(t *testing.T) {
		c, db := newTestClient()

		require.NoError(t, c.CommitCursor(t.Context(), "ethereum", cursor.Block(1)))
		require.NoError(t, c.CommitCursor(t.Context(), "ethereum", cursor.Block(2)))
		assert.Equal(t, map[string]string{"ethereum": "block:2"}, db.rows)

		got, err := c.LoadCursor(t.Context(), "ethereum")
		require.NoError(t, err)
		assert.Equal(t, cursor.Block(2), got)
	})

	t.Run("reset", func(t *testing.T) {
		c, _ := newTestClient()

		require.NoError(t, c.CommitCursor(t.Context(), "solana", cursor.Transaction("sig")))
		require.NoError(t, c.ResetCursor(t.Context(), "solana"))

		_, err := c.LoadCursor(t.Context(), "solana")
		assert.ErrorIs(t, err, indexer.ErrNoCursorFound)
	})

	t.Run("database errors are returned", func(t *testing.T) {
		c, db := newTestClient()
		db.execErr = assert.AnError

		assert.ErrorIs(t, c.CommitCursor(t.Context(), "near", cursor.Block(1)), assert.AnError)
		assert.ErrorIs(t, c.migrate(t.Context()), assert.AnError)
	})

	t.Run("corrupted value", func(t *testing.T) {
		c, db := newTestClient()
		db.rows["near"] = "height:1"

		_, err := c.LoadCursor(t.Context(), "near")
		assert.ErrorIs(t, err, cursor.ErrInvalidCursor)
	})
}
