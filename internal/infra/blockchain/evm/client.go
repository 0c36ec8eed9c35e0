// Package evm indexes the registry contract on EVM networks. Batches are built
// by scanning block windows with eth_getLogs; each transaction is then decoded
// from its receipt and the entity state read back with eth_call.
package evm

import (
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/indexer"
	"github.com/gabapcia/registrywatch/internal/pkg/logger"
	"github.com/gabapcia/registrywatch/internal/pkg/resilience/poll"
	"github.com/gabapcia/registrywatch/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/registrywatch/internal/pkg/types"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

//go:embed registry.abi.json
var registryABI string

const defaultWindowSize = 1000

type (
	logResponse struct {
		Address     common.Address `json:"address"`
		Topics      []common.Hash  `json:"topics"`
		Data        hexutil.Bytes  `json:"data"`
		BlockNumber hexutil.Uint64 `json:"blockNumber"`
		TxHash      common.Hash    `json:"transactionHash"`
		LogIndex    hexutil.Uint   `json:"logIndex"`
		Removed     bool           `json:"removed"`
	}

	receiptResponse struct {
		TransactionHash common.Hash    `json:"transactionHash"`
		BlockNumber     hexutil.Uint64 `json:"blockNumber"`
		Status          hexutil.Uint64 `json:"status"`
		Logs            []logResponse  `json:"logs"`
	}
)

// client implements indexer.Network and indexer.Decoder for one EVM network.
type client struct {
	conn     jsonrpc.Client
	network  string
	contract common.Address
	abi      abi.ABI
	topics   []common.Hash

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

// NewClient returns the adapter of network, watching the registry deployed at contract.
func NewClient(conn jsonrpc.Client, network, contract string, opts ...Option) (*client, error) {
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("invalid registry contract address %q", contract)
	}

	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}

	cfg := config{
		windowSize: defaultWindowSize,
		poller:     poll.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	topics := make([]common.Hash, 0, len(eventOperations))
	for name := range eventOperations {
		topics = append(topics, parsed.Events[name].ID)
	}
	slices.SortFunc(topics, func(a, b common.Hash) int { return a.Cmp(b) })

	return &client{
		conn:       conn,
		network:    network,
		contract:   common.HexToAddress(contract),
		abi:        parsed,
		topics:     topics,
		windowSize: max(cfg.windowSize, 1),
		startBlock: cfg.startBlock,
		poller:     cfg.poller,
	}, nil
}

// WithWindowSize sets how many blocks a single eth_getLogs call covers.
func WithWindowSize(n uint64) Option {
	return func(c *config) {
		c.windowSize = n
	}
}

// WithStartBlock sets the first block scanned when no cursor was committed,
// usually the contract deployment block.
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

func (c *client) blockNumber(ctx context.Context) (uint64, error) {
	data, err := c.conn.Fetch(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}

	var head hexutil.Uint64
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, fmt.Errorf("decode eth_blockNumber: %w", err)
	}

	return uint64(head), nil
}

func (c *client) getLogs(ctx context.Context, from, to uint64) ([]logResponse, error) {
	filter := map[string]any{
		"address":   c.contract,
		"fromBlock": hexutil.EncodeUint64(from),
		"toBlock":   hexutil.EncodeUint64(to),
		"topics":    [][]common.Hash{c.topics},
	}

	data, err := c.conn.Fetch(ctx, "eth_getLogs", filter)
	if err != nil {
		return nil, err
	}

	var logs []logResponse
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("decode eth_getLogs: %w", err)
	}

	return logs, nil
}

// getReceipt returns the receipt of hash, or nil if the node does not know it yet.
func (c *client) getReceipt(ctx context.Context, hash string) (*receiptResponse, error) {
	data, err := c.conn.Fetch(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	}

	var receipt *receiptResponse
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("decode eth_getTransactionReceipt: %w", err)
	}

	return receipt, nil
}

// call runs a read-only contract method at the latest block.
func (c *client) call(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	msg := map[string]any{
		"to":   c.contract,
		"data": hexutil.Bytes(input),
	}

	data, err := c.conn.Fetch(ctx, "eth_call", msg, "latest")
	if err != nil {
		return nil, err
	}

	var output hexutil.Bytes
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("decode eth_call %s: %w", method, err)
	}

	values, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %w", registry.ErrInvalidPayload, method, err)
	}

	return values, nil
}

// firstBlock returns the first block not yet covered by from.
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

// ListSince implements indexer.Network. It scans the window after from and
// returns the distinct transactions that emitted registry logs, in log order.
// When they do not fit in maxItems the window is cut at a block boundary.
func (c *client) ListSince(ctx context.Context, from cursor.Cursor, maxItems int) (indexer.Batch, error) {
	start, err := c.firstBlock(from)
	if err != nil {
		return indexer.Batch{}, err
	}

	head, err := c.blockNumber(ctx)
	if err != nil {
		return indexer.Batch{}, err
	}

	if head < start {
		return indexer.Batch{Next: from}, nil
	}

	end := min(start+c.windowSize-1, head)
	logs, err := c.getLogs(ctx, start, end)
	if err != nil {
		return indexer.Batch{}, err
	}

	slices.SortStableFunc(logs, func(a, b logResponse) int {
		return cmp.Or(cmp.Compare(a.BlockNumber, b.BlockNumber), cmp.Compare(a.LogIndex, b.LogIndex))
	})

	var (
		items []indexer.RawItem
		seen  = types.NewSet[common.Hash]()
	)
	for _, l := range logs {
		if l.Removed || !seen.Insert(l.TxHash) {
			continue
		}

		items = append(items, indexer.RawItem{Ref: l.TxHash.Hex(), Ordinal: uint64(l.BlockNumber)})
	}

	if len(items) > maxItems && maxItems > 0 {
		cut := items[maxItems].Ordinal
		if cut > start {
			end = cut - 1
		} else {
			end = start
			logger.Warn(ctx, "block holds more registry transactions than the batch size",
				"indexer.network", c.network,
				"block.height", start,
				"batch.limit", maxItems,
			)
		}

		items = slices.DeleteFunc(items, func(item indexer.RawItem) bool { return item.Ordinal > end })
	}

	return indexer.Batch{Items: indexer.AssignBlockCursors(items, from, start), Next: cursor.Block(end)}, nil
}
