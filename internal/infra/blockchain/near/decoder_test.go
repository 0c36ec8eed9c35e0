package near

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/gabapcia/registrywatch/internal/indexer"
	"github.com/gabapcia/registrywatch/internal/pkg/resilience/poll"
	"github.com/gabapcia/registrywatch/internal/pkg/transport/jsonrpc"
	jsonrpctest "github.com/gabapcia/registrywatch/internal/pkg/transport/jsonrpc/mocks"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func functionCallAction(t *testing.T, method string, args any) any {
	t.Helper()

	return map[string]any{
		"FunctionCall": map[string]any{
			"method_name": method,
			"args":        base64.StdEncoding.EncodeToString(rawJSON(t, args)),
			"gas":         30000000000000,
			"deposit":     "0",
		},
	}
}

func expectReceipt(t *testing.T, conn *jsonrpctest.Client, receiver, predecessor string, actions ...any) {
	t.Helper()

	conn.On("Call", mock.Anything, "EXPERIMENTAL_receipt", map[string]any{"receipt_id": "r1"}).
		Return(rawJSON(t, map[string]any{
			"receipt_id":     "r1",
			"receiver_id":    receiver,
			"predecessor_id": predecessor,
			"receipt": map[string]any{
				"Action": map[string]any{"signer_id": predecessor, "actions": actions},
			},
		}), nil).Once()
}

// viewResult encodes v the way NEAR returns view call results: as an array
// of byte values.
func viewResult(t *testing.T, v any) json.RawMessage {
	t.Helper()

	data := rawJSON(t, v)
	values := make([]int, len(data))
	for i, b := range data {
		values[i] = int(b)
	}

	return rawJSON(t, map[string]any{"result": values, "logs": []string{}, "block_height": 99})
}

func expectView(t *testing.T, conn *jsonrpctest.Client, method string, args, result any) {
	t.Helper()

	wantArgs := base64.StdEncoding.EncodeToString(rawJSON(t, args))
	conn.On("Call", mock.Anything, "query", mock.MatchedBy(func(p map[string]any) bool {
		return p["request_type"] == "call_function" &&
			p["account_id"] == testContract &&
			p["method_name"] == method &&
			p["args_base64"] == wantArgs
	})).Return(viewResult(t, result), nil).Once()
}

func reporterJSON(status string) map[string]any {
	return map[string]any{
		"id":               "1",
		"account_id":       "alice.near",
		"name":             "Tracer",
		"role":             "Tracer",
		"status":           status,
		"stake":            "1000000000000000000000000",
		"url":              "https://tracer.example",
		"unlock_timestamp": 1700000000,
	}
}

func nearItem() indexer.RawItem {
	return indexer.RawItem{Ref: "r1", Ordinal: 99}
}

func TestClient_Decode(t *testing.T) {
	t.Run("create address", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "alice.near",
			functionCallAction(t, "create_address", map[string]any{"address": "bad.near", "category": "Scam", "risk_score": 5, "case_id": "2"}),
		)
		expectView(t, conn, "get_address", map[string]any{"address": "bad.near"}, map[string]any{
			"address":             "bad.near",
			"category":            "Scam",
			"risk_score":          5,
			"case_id":             "2",
			"reporter_id":         "1",
			"confirmations_count": 0,
		})

		events, err := c.Decode(t.Context(), nearItem())
		require.NoError(t, err)
		require.Len(t, events, 1)

		ev := events[0]
		assert.Equal(t, registry.OpCreateAddress, ev.Operation)
		assert.Equal(t, "near", ev.Network)
		assert.Equal(t, "r1", ev.TxRef)
		assert.Equal(t, uint64(99), ev.Ordinal)
		assert.Equal(t, registry.Address{
			Address:    "bad.near",
			Category:   registry.CategoryScam,
			RiskScore:  5,
			CaseID:     registry.IDFromUint128(0, 2),
			ReporterID: registry.IDFromUint128(0, 1),
		}, *ev.Address)
	})

	t.Run("local receipt is decoded from the listed transaction", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectView(t, conn, "get_address", map[string]any{"address": "bad.near"}, map[string]any{
			"address":             "bad.near",
			"category":            "Scam",
			"risk_score":          5,
			"case_id":             "2",
			"reporter_id":         "1",
			"confirmations_count": 0,
		})

		var actions []json.RawMessage
		require.NoError(t, json.Unmarshal(rawJSON(t, []any{
			functionCallAction(t, "create_address", map[string]any{"address": "bad.near", "category": "Scam", "risk_score": 5, "case_id": "2"}),
		}), &actions))

		tx := transactionResponse{Hash: "tx-self", SignerID: testContract, ReceiverID: testContract, Actions: actions}
		events, err := c.Decode(t.Context(), indexer.RawItem{Ref: "tx-self", Ordinal: 99, Payload: tx.localReceipt()})
		require.NoError(t, err)
		require.Len(t, events, 1)

		assert.Equal(t, "tx-self", events[0].TxRef)
		assert.Equal(t, registry.OpCreateAddress, events[0].Operation)
		conn.AssertNotCalled(t, "Call", mock.Anything, "EXPERIMENTAL_receipt", mock.Anything)
	})

	t.Run("create reporter and case in one receipt", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "authority.near",
			functionCallAction(t, "create_reporter", map[string]any{"id": "1", "account_id": "alice.near", "name": "Tracer", "role": "Tracer", "url": ""}),
			"CreateAccount",
			functionCallAction(t, "create_case", map[string]any{"id": "2", "name": "Hack", "url": ""}),
		)
		expectView(t, conn, "get_reporter", map[string]any{"id": "1"}, reporterJSON("Inactive"))
		expectView(t, conn, "get_case", map[string]any{"id": "2"}, map[string]any{
			"id": "2", "name": "Hack", "reporter_id": "1", "status": "Open", "url": "https://case.example",
		})

		events, err := c.Decode(t.Context(), nearItem())
		require.NoError(t, err)
		require.Len(t, events, 2)

		r := events[0].Reporter
		require.NotNil(t, r)
		assert.Equal(t, 0, events[0].Index)
		assert.Equal(t, registry.IDFromUint128(0, 1), r.ID)
		assert.Equal(t, registry.RoleTracer, r.Role)
		assert.Equal(t, registry.ReporterInactive, r.Status)
		assert.Equal(t, "1000000000000000000000000", r.Stake.String())

		require.NotNil(t, events[1].Case)
		assert.Equal(t, 2, events[1].Index)
		assert.Equal(t, registry.CaseOpen, events[1].Case.Status)
	})

	t.Run("stake deposit activates the sender", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "stake-token.near",
			functionCallAction(t, "ft_on_transfer", map[string]any{"sender_id": "alice.near", "amount": "1000", "msg": ""}),
		)
		expectView(t, conn, "get_reporter_by_account", map[string]any{"account_id": "alice.near"}, reporterJSON("Active"))

		events, err := c.Decode(t.Context(), nearItem())
		require.NoError(t, err)
		require.Len(t, events, 1)

		assert.Equal(t, registry.OpActivateReporter, events[0].Operation)
		assert.Equal(t, registry.ReporterActive, events[0].Reporter.Status)
		assert.Empty(t, events[0].Reporter.Name)
	})

	t.Run("unstake reads the reporter of the caller", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "alice.near", functionCallAction(t, "unstake", map[string]any{}))
		expectView(t, conn, "get_reporter_by_account", map[string]any{"account_id": "alice.near"}, reporterJSON("Inactive"))

		events, err := c.Decode(t.Context(), nearItem())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, registry.OpUnstakeReporter, events[0].Operation)
	})

	t.Run("confirm asset", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "alice.near",
			functionCallAction(t, "confirm_asset", map[string]any{"address": "nft.near", "id": "42"}),
		)
		expectView(t, conn, "get_asset", map[string]any{"address": "nft.near", "id": "42"}, map[string]any{
			"address": "nft.near", "id": "42", "category": "Theft", "risk_score": 9,
			"case_id": "2", "reporter_id": "1", "confirmations_count": 3,
		})

		events, err := c.Decode(t.Context(), nearItem())
		require.NoError(t, err)
		require.Len(t, events, 1)

		a := events[0].Asset
		require.NotNil(t, a)
		assert.Equal(t, "42", a.AssetID)
		assert.Equal(t, registry.CategoryTheft, a.Category)
		assert.Equal(t, uint64(3), a.Confirmations)
	})

	t.Run("unknown methods and other receivers are skipped", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "alice.near",
			functionCallAction(t, "get_authority", map[string]any{}),
			map[string]any{"Transfer": map[string]any{"deposit": "1"}},
		)

		events, err := c.Decode(t.Context(), nearItem())
		require.NoError(t, err)
		assert.Empty(t, events)

		c, conn = newTestClient(t)
		expectReceipt(t, conn, "other.near", "alice.near",
			functionCallAction(t, "create_case", map[string]any{"id": "2"}),
		)

		events, err = c.Decode(t.Context(), nearItem())
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("missing entity arguments are an invalid payload", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "alice.near",
			functionCallAction(t, "update_case", map[string]any{"name": "Hack"}),
		)

		_, err := c.Decode(t.Context(), nearItem())
		assert.ErrorIs(t, err, registry.ErrInvalidPayload)
	})

	t.Run("malformed arguments are an invalid payload", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "alice.near", map[string]any{
			"FunctionCall": map[string]any{"method_name": "create_case", "args": "%%%"},
		})

		_, err := c.Decode(t.Context(), nearItem())
		assert.ErrorIs(t, err, registry.ErrInvalidPayload)
	})

	t.Run("unknown category is an invalid payload", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "alice.near",
			functionCallAction(t, "update_address", map[string]any{"address": "bad.near"}),
		)
		expectView(t, conn, "get_address", map[string]any{"address": "bad.near"}, map[string]any{
			"address": "bad.near", "category": "Piracy", "risk_score": 5, "case_id": "2", "reporter_id": "1",
		})

		_, err := c.Decode(t.Context(), nearItem())
		assert.ErrorIs(t, err, registry.ErrUnknownCategory)
	})

	t.Run("view call panics are an invalid payload", func(t *testing.T) {
		c, conn := newTestClient(t)
		expectReceipt(t, conn, testContract, "alice.near",
			functionCallAction(t, "create_case", map[string]any{"id": "2"}),
		)
		conn.On("Call", mock.Anything, "query", mock.Anything).
			Return(nil, &jsonrpc.ProviderError{Code: -32000, Cause: causeContractExecution}).Once()

		_, err := c.Decode(t.Context(), nearItem())
		assert.ErrorIs(t, err, registry.ErrInvalidPayload)
	})

	t.Run("receipt not yet visible", func(t *testing.T) {
		c, conn := newTestClient(t, WithPoller(poll.New(poll.WithTimeout(0), poll.WithInterval(time.Millisecond))))
		conn.On("Call", mock.Anything, "EXPERIMENTAL_receipt", map[string]any{"receipt_id": "r1"}).
			Return(nil, &jsonrpc.ProviderError{Code: -32000, Cause: causeUnknownReceipt}).Once()

		_, err := c.Decode(t.Context(), nearItem())
		assert.ErrorIs(t, err, indexer.ErrNotYetVisible)
	})

	t.Run("transport failures are transient", func(t *testing.T) {
		c, conn := newTestClient(t)
		conn.On("Call", mock.Anything, "EXPERIMENTAL_receipt", mock.Anything).Return(nil, assert.AnError).Once()

		_, err := c.Decode(t.Context(), nearItem())
		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, registry.ErrInvalidPayload)
	})
}
