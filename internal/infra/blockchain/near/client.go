// Package near indexes the registry contract on NEAR. Finalized blocks are
// scanned in windows for action receipts addressed to the contract, local
// ones included; entity state is read back through view calls.
package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/indexer"
	"github.com/gabapcia/registrywatch/internal/pkg/logger"
	"github.com/gabapcia/registrywatch/internal/pkg/resilience/poll"
	"github.com/gabapcia/registrywatch/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/registrywatch/internal/registry"
)

const defaultWindowSize = 100

// Error causes reported by NEAR nodes.
const (
	causeUnknownBlock      = "UNKNOWN_BLOCK"
	causeUnknownReceipt    = "UNKNOWN_RECEIPT"
	causeContractExecution = "CONTRACT_EXECUTION_ERROR"
)

type (
	blockResponse struct {
		Header struct {
			Height uint64 `json:"height"`
		} `json:"header"`
		Chunks []struct {
			ChunkHash      string `json:"chunk_hash"`
			HeightIncluded uint64 `json:"height_included"`
		} `json:"chunks"`
	}

	actionReceipt struct {
		SignerID string            `json:"signer_id"`
		Actions  []json.RawMessage `json:"actions"`
	}

	receiptResponse struct {
		ReceiptID     string `json:"receipt_id"`
		PredecessorID string `json:"predecessor_id"`
		ReceiverID    string `json:"receiver_id"`
		Receipt       struct {
			Action *actionReceipt `json:"Action"`
		} `json:"receipt"`
	}

	transactionResponse struct {
		Hash       string            `json:"hash"`
		SignerID   string            `json:"signer_id"`
		ReceiverID string            `json:"receiver_id"`
		Actions    []json.RawMessage `json:"actions"`
	}

	chunkResponse struct {
		Transactions []transactionResponse `json:"transactions"`
		Receipts     []receiptResponse     `json:"receipts"`
	}

	queryResponse struct {
		Result []int  `json:"result"`
		Error  string `json:"error"`
	}
)

// client implements indexer.Network and indexer.Decoder for a NEAR network.
type client struct {
	conn     jsonrpc.Client
	network  string
	contract string

	windowSize uint64
	startBlock uint64
	poller     poll.Poller
}

var (
	_ indexer.Network = (*client)(nil)
	_ indexer.Decoder = (*client)(nil)
)

type config struct {
	windowSize uint64
	startBlock uint64
	poller     poll.Poller
}

type Option func(*config)

// NewClient returns the adapter of network, watching the registry deployed
// under the contract account.
func NewClient(conn jsonrpc.Client, network, contract string, opts ...Option) (*client, error) {
	if contract == "" {
		return nil, errors.New("registry contract account is required")
	}

	cfg := config{
		windowSize: defaultWindowSize,
		poller:     poll.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		conn:       conn,
		network:    network,
		contract:   contract,
		windowSize: max(cfg.windowSize, 1),
		startBlock: cfg.startBlock,
		poller:     cfg.poller,
	}, nil
}

// WithWindowSize sets how many block heights one batch scans at most.
func WithWindowSize(n uint64) Option {
	return func(c *config) {
		c.windowSize = n
	}
}

// WithStartBlock sets the first height scanned when no cursor was committed.
func WithStartBlock(n uint64) Option {
	return func(c *config) {
		c.startBlock = n
	}
}

// WithPoller sets how long the client waits for receipts the node does not
// know yet.
func WithPoller(p poll.Poller) Option {
	return func(c *config) {
		c.poller = p
	}
}

// hasCause reports whether err is a provider error with the given cause.
func hasCause(err error, cause string) bool {
	var providerErr *jsonrpc.ProviderError
	return errors.As(err, &providerErr) && providerErr.Cause == cause
}

func (c *client) call(ctx context.Context, method string, params, out any) error {
	data, err := c.conn.Call(ctx, method, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", method, err)
	}

	return nil
}

func (c *client) finalHeight(ctx context.Context) (uint64, error) {
	var block blockResponse
	if err := c.call(ctx, "block", map[string]any{"finality": "final"}, &block); err != nil {
		return 0, err
	}

	return block.Header.Height, nil
}

// block returns the block at height, or false when the height was skipped.
func (c *client) block(ctx context.Context, height uint64) (blockResponse, bool, error) {
	var block blockResponse
	err := c.call(ctx, "block", map[string]any{"block_id": height}, &block)
	if hasCause(err, causeUnknownBlock) {
		return blockResponse{}, false, nil
	}
	if err != nil {
		return blockResponse{}, false, err
	}

	return block, true, nil
}

func (c *client) chunk(ctx context.Context, hash string) (chunkResponse, error) {
	var chunk chunkResponse
	err := c.call(ctx, "chunk", map[string]any{"chunk_id": hash}, &chunk)
	return chunk, err
}

// localReceipt returns the receipt a transaction the contract signed for
// itself turns into. Such receipts run in the chunk of their transaction and
// are never listed among the chunk receipts.
func (t transactionResponse) localReceipt() receiptResponse {
	var r receiptResponse
	r.ReceiptID = t.Hash
	r.PredecessorID = t.SignerID
	r.ReceiverID = t.ReceiverID
	r.Receipt.Action = &actionReceipt{SignerID: t.SignerID, Actions: t.Actions}
	return r
}

// blockItems returns the action receipts of height addressed to the contract.
// Local receipts come first, the order the runtime applies them in.
func (c *client) blockItems(ctx context.Context, height uint64) ([]indexer.RawItem, error) {
	block, ok, err := c.block(ctx, height)
	if err != nil || !ok {
		return nil, err
	}

	var items []indexer.RawItem
	for _, header := range block.Chunks {
		// chunks carried over from an earlier height were listed there
		if header.HeightIncluded != height {
			continue
		}

		chunk, err := c.chunk(ctx, header.ChunkHash)
		if err != nil {
			return nil, err
		}

		for _, tx := range chunk.Transactions {
			if tx.ReceiverID != c.contract || tx.SignerID != tx.ReceiverID {
				continue
			}

			items = append(items, indexer.RawItem{Ref: tx.Hash, Ordinal: height, Payload: tx.localReceipt()})
		}

		for _, r := range chunk.Receipts {
			if r.ReceiverID != c.contract || r.Receipt.Action == nil {
				continue
			}

			items = append(items, indexer.RawItem{Ref: r.ReceiptID, Ordinal: height})
		}
	}

	return items, nil
}

func (c *client) firstBlock(from cursor.Cursor) (uint64, error) {
	switch from.Kind() {
	case cursor.KindNone:
		return c.startBlock, nil
	case cursor.KindBlock:
		height, _ := from.Height()
		return height + 1, nil
	default:
		return 0, fmt.Errorf("%w: %s networks resume from block cursors, got %s", cursor.ErrInvalidCursor, c.network, from)
	}
}

// ListSince implements indexer.Network. Heights are scanned one by one and
// the window is closed early at the last block that fits in maxItems.
func (c *client) ListSince(ctx context.Context, from cursor.Cursor, maxItems int) (indexer.Batch, error) {
	start, err := c.firstBlock(from)
	if err != nil {
		return indexer.Batch{}, err
	}

	head, err := c.finalHeight(ctx)
	if err != nil {
		return indexer.Batch{}, err
	}

	if head < start {
		return indexer.Batch{Next: from}, nil
	}

	var (
		items []indexer.RawItem
		end   = min(start+c.windowSize-1, head)
	)
	for height := start; height <= end; height++ {
		found, err := c.blockItems(ctx, height)
		if err != nil {
			return indexer.Batch{}, err
		}

		if maxItems > 0 && len(items)+len(found) > maxItems {
			if height > start {
				end = height - 1
				break
			}

			logger.Warn(ctx, "block holds more registry receipts than the batch size",
				"indexer.network", c.network,
				"block.height", height,
				"batch.limit", maxItems,
			)
		}

		items = append(items, found...)
		if maxItems > 0 && len(items) >= maxItems {
			end = height
			break
		}
	}

	return indexer.Batch{Items: indexer.AssignBlockCursors(items, from, start), Next: cursor.Block(end)}, nil
}

// fetchReceipt waits until the node knows the receipt.
func (c *client) fetchReceipt(ctx context.Context, id string) (receiptResponse, error) {
	var receipt receiptResponse
	err := c.poller.Until(ctx, func(ctx context.Context) (bool, error) {
		err := c.call(ctx, "EXPERIMENTAL_receipt", map[string]any{"receipt_id": id}, &receipt)
		if hasCause(err, causeUnknownReceipt) {
			return false, nil
		}

		return err == nil, err
	})
	if errors.Is(err, poll.ErrTimeout) {
		return receiptResponse{}, fmt.Errorf("%w: receipt %s", indexer.ErrNotYetVisible, id)
	}

	return receipt, err
}

// view runs a read-only contract method at the final block and decodes its
// JSON result into out.
func (c *client) view(ctx context.Context, method string, args, out any) error {
	encoded, err := json.Marshal(args)
	if err != nil {
		return err
	}

	params := map[string]any{
		"request_type": "call_function",
		"finality":     "final",
		"account_id":   c.contract,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(encoded),
	}

	var resp queryResponse
	err = c.call(ctx, "query", params, &resp)
	if hasCause(err, causeContractExecution) {
		return fmt.Errorf("%w: %s: %w", registry.ErrInvalidPayload, method, err)
	}
	if err != nil {
		return err
	}

	if resp.Error != "" {
		return fmt.Errorf("%w: %s: %s", registry.ErrInvalidPayload, method, resp.Error)
	}

	result := make([]byte, len(resp.Result))
	for i, b := range resp.Result {
		if b < 0 || b > 0xff {
			return fmt.Errorf("%w: %s returned a non-byte value %d", registry.ErrInvalidPayload, method, b)
		}
		result[i] = byte(b)
	}

	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("%w: %s result: %w", registry.ErrInvalidPayload, method, err)
	}

	return nil
}
