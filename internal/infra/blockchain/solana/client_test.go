package solana

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/indexer"
	jsonrpctest "github.com/gabapcia/registrywatch/internal/pkg/transport/jsonrpc/mocks"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/btcsuite/btcutil/base58"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pubkey(n byte) string {
	return base58.Encode(bytes.Repeat([]byte{n}, pubkeySize))
}

var testProgram = pubkey(1)

func newTestClient(t *testing.T, opts ...Option) (*client, *jsonrpctest.Client) {
	t.Helper()

	conn := jsonrpctest.NewClient(t)
	c, err := NewClient(conn, "solana", testProgram, opts...)
	require.NoError(t, err)

	return c, conn
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return data
}

func signatures(sigs ...string) []signatureInfo {
	out := make([]signatureInfo, 0, len(sigs))
	for i, sig := range sigs {
		out = append(out, signatureInfo{Signature: sig, Slot: uint64(100 - i)})
	}
	return out
}

func pageQuery(before, until string) any {
	return mock.MatchedBy(func(opts map[string]any) bool {
		b, _ := opts["before"].(string)
		u, _ := opts["until"].(string)
		return b == before && u == until && opts["commitment"] == "confirmed"
	})
}

func TestNewClient(t *testing.T) {
	t.Run("rejects an invalid program id", func(t *testing.T) {
		_, err := NewClient(jsonrpctest.NewClient(t), "solana", "0xnotbase58")
		assert.Error(t, err)
	})

	t.Run("page size is bounded by the node limit", func(t *testing.T) {
		c, _ := newTestClient(t, WithPageSize(5000))
		assert.Equal(t, defaultPageSize, c.pageSize)

		c, _ = newTestClient(t, WithPageSize(0))
		assert.Equal(t, 1, c.pageSize)
	})
}

func TestClient_ListSince(t *testing.T) {
	t.Run("walks every page and returns signatures oldest first", func(t *testing.T) {
		c, conn := newTestClient(t, WithPageSize(2))

		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("", "s1")).
			Return(rawJSON(t, signatures("s5", "s4")), nil).Once()
		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("s4", "s1")).
			Return(rawJSON(t, signatures("s3", "s2")), nil).Once()
		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("s2", "s1")).
			Return(json.RawMessage(`[]`), nil).Once()

		batch, err := c.ListSince(t.Context(), cursor.Transaction("s1"), 10)
		require.NoError(t, err)

		require.Len(t, batch.Items, 4)
		for i, want := range []string{"s2", "s3", "s4", "s5"} {
			assert.Equal(t, want, batch.Items[i].Ref)
			assert.Equal(t, cursor.Transaction(want), batch.Items[i].Cursor)
		}
		assert.True(t, batch.Next.IsNone(), "the fetcher derives the next cursor from the kept items")
	})

	t.Run("short page ends the walk", func(t *testing.T) {
		c, conn := newTestClient(t, WithPageSize(3))

		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("", "")).
			Return(rawJSON(t, signatures("s2", "s1")), nil).Once()

		batch, err := c.ListSince(t.Context(), cursor.None(), 10)
		require.NoError(t, err)

		require.Len(t, batch.Items, 2)
		assert.Equal(t, "s1", batch.Items[0].Ref)
		assert.Equal(t, uint64(99), batch.Items[0].Ordinal)
	})

	t.Run("caught up when nothing follows the cursor", func(t *testing.T) {
		c, conn := newTestClient(t)

		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("", "s9")).
			Return(json.RawMessage(`[]`), nil).Once()

		batch, err := c.ListSince(t.Context(), cursor.Transaction("s9"), 10)
		require.NoError(t, err)

		assert.True(t, batch.CaughtUp(cursor.Transaction("s9")))
	})

	t.Run("catching up reads the history once", func(t *testing.T) {
		c, conn := newTestClient(t, WithPageSize(2))

		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("", "")).
			Return(rawJSON(t, signatures("s6", "s5")), nil).Once()
		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("s5", "")).
			Return(rawJSON(t, signatures("s4", "s3")), nil).Once()
		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("s3", "")).
			Return(rawJSON(t, signatures("s2", "s1")), nil).Once()
		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("s1", "")).
			Return(json.RawMessage(`[]`), nil).Once()
		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("", "s6")).
			Return(json.RawMessage(`[]`), nil).Once()

		fetcher := indexer.NewFetcher(c, 2)
		from := cursor.None()

		var served [][]string
		for range 3 {
			batch, err := fetcher.Next(t.Context(), from)
			require.NoError(t, err)

			var refs []string
			for _, item := range batch.Items {
				refs = append(refs, item.Ref)
			}
			served = append(served, refs)
			from = batch.Next
		}

		assert.Equal(t, [][]string{{"s1", "s2"}, {"s3", "s4"}, {"s5", "s6"}}, served)
		conn.AssertNumberOfCalls(t, "Fetch", 4)

		batch, err := fetcher.Next(t.Context(), from)
		require.NoError(t, err)
		assert.True(t, batch.CaughtUp(from))
		conn.AssertNumberOfCalls(t, "Fetch", 5)
	})

	t.Run("a retried batch is served again from the backlog", func(t *testing.T) {
		c, conn := newTestClient(t, WithPageSize(3))

		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("", "s0")).
			Return(rawJSON(t, signatures("s3", "s2", "s1")), nil).Once()
		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("s1", "s0")).
			Return(json.RawMessage(`[]`), nil).Once()

		first, err := c.ListSince(t.Context(), cursor.Transaction("s0"), 1)
		require.NoError(t, err)
		again, err := c.ListSince(t.Context(), cursor.Transaction("s0"), 1)
		require.NoError(t, err)
		next, err := c.ListSince(t.Context(), cursor.Transaction("s1"), 5)
		require.NoError(t, err)

		assert.Equal(t, first, again)
		require.Len(t, next.Items, 2)
		assert.Equal(t, "s2", next.Items[0].Ref)
		assert.Equal(t, "s3", next.Items[1].Ref)
	})

	t.Run("signatures of one slot keep the node order", func(t *testing.T) {
		c, conn := newTestClient(t, WithPageSize(5))

		sameSlot := []signatureInfo{
			{Signature: "late", Slot: 42},
			{Signature: "early", Slot: 42},
		}
		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, pageQuery("", "")).
			Return(rawJSON(t, sameSlot), nil).Once()

		batch, err := c.ListSince(t.Context(), cursor.None(), 10)
		require.NoError(t, err)

		require.Len(t, batch.Items, 2)
		assert.Equal(t, "early", batch.Items[0].Ref)
		assert.Equal(t, "late", batch.Items[1].Ref)
		assert.Equal(t, batch.Items[0].Ordinal, batch.Items[1].Ordinal)
	})

	t.Run("rejects block cursors", func(t *testing.T) {
		c, _ := newTestClient(t)

		_, err := c.ListSince(t.Context(), cursor.Block(10), 10)
		assert.ErrorIs(t, err, cursor.ErrInvalidCursor)
	})

	t.Run("propagates rpc failures", func(t *testing.T) {
		c, conn := newTestClient(t)
		conn.On("Fetch", mock.Anything, "getSignaturesForAddress", testProgram, mock.Anything).Return(nil, assert.AnError).Once()

		_, err := c.ListSince(t.Context(), cursor.None(), 10)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestDecodeAccountData(t *testing.T) {
	payload := []byte("registry account")

	t.Run("base64", func(t *testing.T) {
		out, err := decodeAccountData([]string{base64.StdEncoding.EncodeToString(payload), "base64"})
		require.NoError(t, err)
		assert.Equal(t, payload, out)
	})

	t.Run("base64 and zstd", func(t *testing.T) {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		compressed := enc.EncodeAll(payload, nil)
		require.NoError(t, enc.Close())

		out, err := decodeAccountData([]string{base64.StdEncoding.EncodeToString(compressed), "base64+zstd"})
		require.NoError(t, err)
		assert.Equal(t, payload, out)
	})

	for name, pair := range map[string][]string{
		"missing encoding":     {"AAAA"},
		"bad base64":           {"!!", "base64"},
		"corrupt zstd":         {base64.StdEncoding.EncodeToString(payload), "base64+zstd"},
		"unsupported encoding": {"AAAA", "jsonParsed"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decodeAccountData(pair)
			assert.ErrorIs(t, err, registry.ErrInvalidPayload)
		})
	}
}
