package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gabapcia/registrywatch/internal/indexer"
	"github.com/gabapcia/registrywatch/internal/pkg/resilience/poll"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var eventOperations = map[string]registry.Operation{
	"ReporterCreated":        registry.OpCreateReporter,
	"ReporterUpdated":        registry.OpUpdateReporter,
	"ReporterActivated":      registry.OpActivateReporter,
	"ReporterDeactivated":    registry.OpDeactivateReporter,
	"ReporterStakeWithdrawn": registry.OpUnstakeReporter,
	"CaseCreated":            registry.OpCreateCase,
	"CaseUpdated":            registry.OpUpdateCase,
	"AddressCreated":         registry.OpCreateAddress,
	"AddressUpdated":         registry.OpUpdateAddress,
	"AddressConfirmed":       registry.OpConfirmAddress,
	"AssetCreated":           registry.OpCreateAsset,
	"AssetUpdated":           registry.OpUpdateAsset,
	"AssetConfirmed":         registry.OpConfirmAsset,
}

// Decode implements indexer.Decoder. Every registry log of the transaction
// becomes one event carrying the entity state read from the contract.
func (c *client) Decode(ctx context.Context, item indexer.RawItem) ([]registry.Event, error) {
	receipt, err := c.waitReceipt(ctx, item.Ref)
	if err != nil {
		return nil, err
	}

	if receipt.Status == 0 {
		return nil, nil
	}

	var events []registry.Event
	for _, l := range receipt.Logs {
		if l.Address != c.contract || len(l.Topics) == 0 {
			continue
		}

		ev, err := c.abi.EventByID(l.Topics[0])
		if err != nil {
			continue
		}

		op, ok := eventOperations[ev.Name]
		if !ok {
			continue
		}

		args, err := unpackLog(ev, l)
		if err != nil {
			return nil, fmt.Errorf("%w: log %d of %s: %w", registry.ErrInvalidPayload, l.LogIndex, item.Ref, err)
		}

		src := registry.Source{
			Network: c.network,
			TxRef:   item.Ref,
			Ordinal: uint64(receipt.BlockNumber),
			Index:   int(l.LogIndex),
		}

		event, err := c.readEvent(ctx, src, op, args)
		if err != nil {
			return nil, err
		}

		if err := event.Validate(); err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	return events, nil
}

func (c *client) waitReceipt(ctx context.Context, hash string) (*receiptResponse, error) {
	var receipt *receiptResponse
	err := c.poller.Until(ctx, func(ctx context.Context) (bool, error) {
		r, err := c.getReceipt(ctx, hash)
		if err != nil {
			return false, err
		}

		receipt = r
		return r != nil, nil
	})
	if errors.Is(err, poll.ErrTimeout) {
		return nil, fmt.Errorf("%w: receipt of %s", indexer.ErrNotYetVisible, hash)
	}

	return receipt, err
}

func unpackLog(ev *abi.Event, l logResponse) (map[string]any, error) {
	var indexed abi.Arguments
	for _, input := range ev.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}

	if len(l.Topics)-1 != len(indexed) {
		return nil, fmt.Errorf("%s expects %d indexed arguments, got %d", ev.Name, len(indexed), len(l.Topics)-1)
	}

	args := make(map[string]any, len(ev.Inputs))
	if err := abi.ParseTopicsIntoMap(args, indexed, l.Topics[1:]); err != nil {
		return nil, err
	}

	if err := ev.Inputs.NonIndexed().UnpackIntoMap(args, l.Data); err != nil {
		return nil, err
	}

	return args, nil
}

func (c *client) readEvent(ctx context.Context, src registry.Source, op registry.Operation, args map[string]any) (registry.Event, error) {
	switch op.Kind() {
	case registry.KindReporter:
		id, err := arg[*big.Int](args, "id")
		if err != nil {
			return registry.Event{}, err
		}

		r, err := c.getReporter(ctx, id)
		return registry.NewReporterEvent(src, op, r), err
	case registry.KindCase:
		id, err := arg[*big.Int](args, "id")
		if err != nil {
			return registry.Event{}, err
		}

		cs, err := c.getCase(ctx, id)
		return registry.NewCaseEvent(src, op, cs), err
	case registry.KindAddress:
		addr, err := arg[common.Address](args, "addr")
		if err != nil {
			return registry.Event{}, err
		}

		a, err := c.getAddress(ctx, addr)
		return registry.NewAddressEvent(src, op, a), err
	default:
		addr, err := arg[common.Address](args, "addr")
		if err != nil {
			return registry.Event{}, err
		}

		id, err := arg[*big.Int](args, "id")
		if err != nil {
			return registry.Event{}, err
		}

		a, err := c.getAsset(ctx, addr, id)
		return registry.NewAssetEvent(src, op, a), err
	}
}

func arg[T any](args map[string]any, name string) (T, error) {
	v, ok := args[name].(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: argument %q has type %T", registry.ErrInvalidPayload, name, args[name])
	}

	return v, nil
}

// outputs reads the values returned by a contract call, keeping the first
// type mismatch as a decoding error.
type outputs struct {
	method string
	values []any
	err    error
}

func output[T any](o *outputs, i int) T {
	var zero T
	if o.err != nil {
		return zero
	}

	if i >= len(o.values) {
		o.err = fmt.Errorf("%w: %s returned %d values", registry.ErrInvalidPayload, o.method, len(o.values))
		return zero
	}

	v, ok := o.values[i].(T)
	if !ok {
		o.err = fmt.Errorf("%w: %s value %d has type %T", registry.ErrInvalidPayload, o.method, i, o.values[i])
		return zero
	}

	return v
}

func (c *client) read(ctx context.Context, method string, args ...any) (*outputs, error) {
	values, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}

	return &outputs{method: method, values: values}, nil
}

func (c *client) getReporter(ctx context.Context, id *big.Int) (registry.Reporter, error) {
	out, err := c.read(ctx, "getReporter", id)
	if err != nil {
		return registry.Reporter{}, err
	}

	var (
		rawID   = output[*big.Int](out, 0)
		account = output[common.Address](out, 1)
		name    = output[string](out, 2)
		url     = output[string](out, 3)
		role    = output[uint8](out, 4)
		status  = output[uint8](out, 5)
		stake   = output[*big.Int](out, 6)
		unlock  = output[*big.Int](out, 7)
	)
	if out.err != nil {
		return registry.Reporter{}, out.err
	}

	r := registry.Reporter{
		Account: account.Hex(),
		Name:    name,
		URL:     url,
		Stake:   decimal.NewFromBigInt(stake, 0),
	}

	if r.ID, err = registry.IDFromBig(rawID); err != nil {
		return registry.Reporter{}, err
	}
	if r.Role, err = registry.ReporterRoleFromCode(uint64(role)); err != nil {
		return registry.Reporter{}, invalid(err)
	}
	if r.Status, err = registry.ReporterStatusFromCode(uint64(status)); err != nil {
		return registry.Reporter{}, invalid(err)
	}
	if r.UnlockTimestamp, err = counter(unlock); err != nil {
		return registry.Reporter{}, err
	}

	return r, nil
}

func (c *client) getCase(ctx context.Context, id *big.Int) (registry.Case, error) {
	out, err := c.read(ctx, "getCase", id)
	if err != nil {
		return registry.Case{}, err
	}

	var (
		rawID       = output[*big.Int](out, 0)
		name        = output[string](out, 1)
		rawReporter = output[*big.Int](out, 2)
		status      = output[uint8](out, 3)
		url         = output[string](out, 4)
	)
	if out.err != nil {
		return registry.Case{}, out.err
	}

	cs := registry.Case{Name: name, URL: url}
	if cs.ID, err = registry.IDFromBig(rawID); err != nil {
		return registry.Case{}, err
	}
	if cs.ReporterID, err = registry.IDFromBig(rawReporter); err != nil {
		return registry.Case{}, err
	}
	if cs.Status, err = registry.CaseStatusFromCode(uint64(status)); err != nil {
		return registry.Case{}, invalid(err)
	}

	return cs, nil
}

func (c *client) getAddress(ctx context.Context, addr common.Address) (registry.Address, error) {
	out, err := c.read(ctx, "getAddress", addr)
	if err != nil {
		return registry.Address{}, err
	}

	var (
		rawAddr       = output[common.Address](out, 0)
		rawCase       = output[*big.Int](out, 1)
		rawReporter   = output[*big.Int](out, 2)
		confirmations = output[*big.Int](out, 3)
		risk          = output[uint8](out, 4)
		category      = output[uint8](out, 5)
	)
	if out.err != nil {
		return registry.Address{}, out.err
	}

	a := registry.Address{Address: rawAddr.Hex(), RiskScore: risk}
	if a.CaseID, a.ReporterID, err = classification(rawCase, rawReporter); err != nil {
		return registry.Address{}, err
	}
	if a.Category, err = registry.CategoryFromCode(uint64(category)); err != nil {
		return registry.Address{}, invalid(err)
	}
	if a.Confirmations, err = counter(confirmations); err != nil {
		return registry.Address{}, err
	}

	return a, nil
}

func (c *client) getAsset(ctx context.Context, addr common.Address, id *big.Int) (registry.Asset, error) {
	out, err := c.read(ctx, "getAsset", addr, id)
	if err != nil {
		return registry.Asset{}, err
	}

	var (
		rawAddr       = output[common.Address](out, 0)
		assetID       = output[*big.Int](out, 1)
		rawCase       = output[*big.Int](out, 2)
		rawReporter   = output[*big.Int](out, 3)
		confirmations = output[*big.Int](out, 4)
		risk          = output[uint8](out, 5)
		category      = output[uint8](out, 6)
	)
	if out.err != nil {
		return registry.Asset{}, out.err
	}

	a := registry.Asset{Address: rawAddr.Hex(), AssetID: assetID.String(), RiskScore: risk}
	if a.CaseID, a.ReporterID, err = classification(rawCase, rawReporter); err != nil {
		return registry.Asset{}, err
	}
	if a.Category, err = registry.CategoryFromCode(uint64(category)); err != nil {
		return registry.Asset{}, invalid(err)
	}
	if a.Confirmations, err = counter(confirmations); err != nil {
		return registry.Asset{}, err
	}

	return a, nil
}

// classification converts the case and reporter ids an address or asset is
// filed under.
func classification(caseID, reporterID *big.Int) (uuid.UUID, uuid.UUID, error) {
	c, err := registry.IDFromBig(caseID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	r, err := registry.IDFromBig(reporterID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	return c, r, nil
}

func counter(v *big.Int) (uint64, error) {
	if v == nil || v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("%w: counter %v out of range", registry.ErrInvalidPayload, v)
	}

	return v.Uint64(), nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", registry.ErrInvalidPayload, err)
}
