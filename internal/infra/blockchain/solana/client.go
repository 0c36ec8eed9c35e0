// Package solana indexes the registry program on Solana. Batches are the
// program's transaction signatures since the last committed one; entity state
// is read back from the Anchor accounts the instructions touched.
package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/indexer"
	"github.com/gabapcia/registrywatch/internal/pkg/resilience/poll"
	"github.com/gabapcia/registrywatch/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/btcsuite/btcutil/base58"
	"github.com/klauspost/compress/zstd"
)

const (
	// defaultPageSize is the largest page getSignaturesForAddress serves.
	defaultPageSize = 1000

	commitment = "confirmed"
)

// zstdDecoder is shared; DecodeAll is safe for concurrent use.
var zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))

type (
	signatureInfo struct {
		Signature string `json:"signature"`
		Slot      uint64 `json:"slot"`
		Err       any    `json:"err"`
	}

	instructionResponse struct {
		ProgramIDIndex int    `json:"programIdIndex"`
		Accounts       []int  `json:"accounts"`
		Data           string `json:"data"`
	}

	transactionResponse struct {
		Slot uint64 `json:"slot"`
		Meta *struct {
			Err             any `json:"err"`
			LoadedAddresses struct {
				Writable []string `json:"writable"`
				Readonly []string `json:"readonly"`
			} `json:"loadedAddresses"`
		} `json:"meta"`
		Transaction struct {
			Signatures []string `json:"signatures"`
			Message    struct {
				AccountKeys  []string              `json:"accountKeys"`
				Instructions []instructionResponse `json:"instructions"`
			} `json:"message"`
		} `json:"transaction"`
	}

	accountInfoResponse struct {
		Value *struct {
			Data  []string `json:"data"`
			Owner string   `json:"owner"`
		} `json:"value"`
	}
)

// failed reports whether the transaction was executed with an error.
func (t *transactionResponse) failed() bool {
	return t.Meta != nil && t.Meta.Err != nil
}

// accountKeys returns the static keys followed by the ones loaded from
// lookup tables, which is the index space instructions refer to.
func (t *transactionResponse) accountKeys() []string {
	keys := slices.Clone(t.Transaction.Message.AccountKeys)
	if t.Meta != nil {
		keys = append(keys, t.Meta.LoadedAddresses.Writable...)
		keys = append(keys, t.Meta.LoadedAddresses.Readonly...)
	}
	return keys
}

// backlog keeps the signatures a listing read but did not serve, oldest
// first. base is the signature they follow ("" for the program's first one).
// Catching up then reads the history once instead of once per batch.
type backlog struct {
	mu   sync.Mutex
	base string
	sigs []signatureInfo
}

// take returns up to n signatures following until, if the backlog covers it.
// Everything up to until is dropped: the cursor never moves back past it.
func (b *backlog) take(until string, n int) ([]signatureInfo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := -1
	if until == b.base {
		start = 0
	} else {
		for i, sig := range b.sigs {
			if sig.Signature == until {
				start = i + 1
				break
			}
		}
	}
	if start < 0 || start == len(b.sigs) {
		return nil, false
	}

	b.base, b.sigs = until, b.sigs[start:]
	if n <= 0 || n > len(b.sigs) {
		n = len(b.sigs)
	}

	return b.sigs[:n], true
}

func (b *backlog) reset(until string, sigs []signatureInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.base, b.sigs = until, sigs
}

// client implements indexer.Network and indexer.Decoder for a Solana cluster.
type client struct {
	conn     jsonrpc.Client
	network  string
	program  string
	pageSize int
	poller   poll.Poller
	backlog  backlog
}

var (
	_ indexer.Network = (*client)(nil)
	_ indexer.Decoder = (*client)(nil)
)

type config struct {
	pageSize int
	poller   poll.Poller
}

type Option func(*config)

// NewClient returns the adapter of network, watching the registry program.
func NewClient(conn jsonrpc.Client, network, program string, opts ...Option) (*client, error) {
	if len(base58.Decode(program)) != 32 {
		return nil, fmt.Errorf("invalid registry program id %q", program)
	}

	cfg := config{
		pageSize: defaultPageSize,
		poller:   poll.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		conn:     conn,
		network:  network,
		program:  program,
		pageSize: min(max(cfg.pageSize, 1), defaultPageSize),
		poller:   cfg.poller,
	}, nil
}

// WithPageSize sets how many signatures one getSignaturesForAddress call asks for.
func WithPageSize(n int) Option {
	return func(c *config) {
		c.pageSize = n
	}
}

// WithPoller sets how long the client waits for transactions and accounts
// the node does not serve yet.
func WithPoller(p poll.Poller) Option {
	return func(c *config) {
		c.poller = p
	}
}

func (c *client) getSignatures(ctx context.Context, before, until string) ([]signatureInfo, error) {
	opts := map[string]any{
		"limit":      c.pageSize,
		"commitment": commitment,
	}
	if before != "" {
		opts["before"] = before
	}
	if until != "" {
		opts["until"] = until
	}

	data, err := c.conn.Fetch(ctx, "getSignaturesForAddress", c.program, opts)
	if err != nil {
		return nil, err
	}

	var page []signatureInfo
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode getSignaturesForAddress: %w", err)
	}

	return page, nil
}

// ListSince implements indexer.Network. Signatures come newest first, so
// every page after the cursor is read before the list is turned oldest first.
// The oldest maxItems are returned; the rest wait in the backlog for the next
// calls, which resume from the last signature served.
func (c *client) ListSince(ctx context.Context, from cursor.Cursor, maxItems int) (indexer.Batch, error) {
	var until string
	switch from.Kind() {
	case cursor.KindNone:
	case cursor.KindTransaction:
		until, _ = from.TransactionID()
	default:
		return indexer.Batch{}, fmt.Errorf("%w: %s networks resume from transaction cursors, got %s", cursor.ErrInvalidCursor, c.network, from)
	}

	sigs, ok := c.backlog.take(until, maxItems)
	if !ok {
		all, err := c.listSignatures(ctx, until)
		if err != nil {
			return indexer.Batch{}, err
		}

		c.backlog.reset(until, all)
		sigs, _ = c.backlog.take(until, maxItems)
	}

	if len(sigs) == 0 {
		return indexer.Batch{Next: from}, nil
	}

	items := make([]indexer.RawItem, 0, len(sigs))
	for _, sig := range sigs {
		items = append(items, indexer.RawItem{
			Ref:     sig.Signature,
			Ordinal: sig.Slot,
			Cursor:  cursor.Transaction(sig.Signature),
		})
	}

	return indexer.Batch{Items: items}, nil
}

// listSignatures walks every page from the head down to until and returns
// the signatures oldest first.
func (c *client) listSignatures(ctx context.Context, until string) ([]signatureInfo, error) {
	var (
		sigs   []signatureInfo
		before string
	)
	for {
		page, err := c.getSignatures(ctx, before, until)
		if err != nil {
			return nil, err
		}

		sigs = append(sigs, page...)
		if len(page) < c.pageSize {
			break
		}

		before = page[len(page)-1].Signature
	}

	slices.Reverse(sigs)
	return sigs, nil
}

// fetchTransaction waits until the node serves the transaction signed by sig.
func (c *client) fetchTransaction(ctx context.Context, sig string) (*transactionResponse, error) {
	opts := map[string]any{
		"encoding":                       "json",
		"commitment":                     commitment,
		"maxSupportedTransactionVersion": 0,
	}

	var tx *transactionResponse
	err := c.poller.Until(ctx, func(ctx context.Context) (bool, error) {
		data, err := c.conn.Fetch(ctx, "getTransaction", sig, opts)
		if err != nil {
			return false, err
		}

		if err := json.Unmarshal(data, &tx); err != nil {
			return false, fmt.Errorf("decode getTransaction: %w", err)
		}

		return tx != nil, nil
	})
	if errors.Is(err, poll.ErrTimeout) {
		return nil, fmt.Errorf("%w: transaction %s", indexer.ErrNotYetVisible, sig)
	}

	return tx, err
}

// fetchAccount returns the raw data of an account owned by the registry program.
func (c *client) fetchAccount(ctx context.Context, pubkey string) ([]byte, error) {
	opts := map[string]any{
		"encoding":   "base64+zstd",
		"commitment": commitment,
	}

	var info accountInfoResponse
	err := c.poller.Until(ctx, func(ctx context.Context) (bool, error) {
		data, err := c.conn.Fetch(ctx, "getAccountInfo", pubkey, opts)
		if err != nil {
			return false, err
		}

		if err := json.Unmarshal(data, &info); err != nil {
			return false, fmt.Errorf("decode getAccountInfo: %w", err)
		}

		return info.Value != nil, nil
	})
	if errors.Is(err, poll.ErrTimeout) {
		return nil, fmt.Errorf("%w: account %s", indexer.ErrNotYetVisible, pubkey)
	}
	if err != nil {
		return nil, err
	}

	if info.Value.Owner != c.program {
		return nil, fmt.Errorf("%w: account %s is owned by %s", registry.ErrInvalidPayload, pubkey, info.Value.Owner)
	}

	return decodeAccountData(info.Value.Data)
}

// decodeAccountData decodes the [data, encoding] pair of an account.
func decodeAccountData(pair []string) ([]byte, error) {
	if len(pair) != 2 {
		return nil, fmt.Errorf("%w: account data has %d parts", registry.ErrInvalidPayload, len(pair))
	}

	raw, err := base64.StdEncoding.DecodeString(pair[0])
	if err != nil {
		return nil, fmt.Errorf("%w: account data: %w", registry.ErrInvalidPayload, err)
	}

	switch pair[1] {
	case "base64":
		return raw, nil
	case "base64+zstd":
		out, err := zstdDecoder.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: account data: %w", registry.ErrInvalidPayload, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported account encoding %q", registry.ErrInvalidPayload, pair[1])
	}
}
