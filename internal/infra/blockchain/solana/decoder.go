package solana

import (
	"context"
	"fmt"

	"github.com/gabapcia/registrywatch/internal/indexer"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/btcsuite/btcutil/base58"
)

// instruction describes a registry instruction: the operation it performs and
// the position of the entity account among its accounts.
type instruction struct {
	op     registry.Operation
	entity int
}

var instructions = newInstructionTable(
	instruction{registry.OpCreateReporter, 2},
	instruction{registry.OpUpdateReporter, 2},
	instruction{registry.OpActivateReporter, 2},
	instruction{registry.OpDeactivateReporter, 2},
	instruction{registry.OpUnstakeReporter, 2},
	instruction{registry.OpCreateCase, 3},
	instruction{registry.OpUpdateCase, 3},
	instruction{registry.OpCreateAddress, 4},
	instruction{registry.OpUpdateAddress, 4},
	instruction{registry.OpConfirmAddress, 4},
	instruction{registry.OpCreateAsset, 4},
	instruction{registry.OpUpdateAsset, 4},
	instruction{registry.OpConfirmAsset, 4},
)

// newInstructionTable keys every instruction by its Anchor discriminator,
// sha256("global:<name>")[:8].
func newInstructionTable(list ...instruction) map[[discriminatorSize]byte]instruction {
	table := make(map[[discriminatorSize]byte]instruction, len(list))
	for _, ix := range list {
		table[discriminator("global", string(ix.op))] = ix
	}
	return table
}

// Decode implements indexer.Decoder. Only top-level instructions addressed to
// the registry program are considered.
func (c *client) Decode(ctx context.Context, item indexer.RawItem) ([]registry.Event, error) {
	tx, err := c.fetchTransaction(ctx, item.Ref)
	if err != nil {
		return nil, err
	}

	if tx.failed() {
		return nil, nil
	}

	keys := tx.accountKeys()

	var events []registry.Event
	for i, raw := range tx.Transaction.Message.Instructions {
		if raw.ProgramIDIndex < 0 || raw.ProgramIDIndex >= len(keys) || keys[raw.ProgramIDIndex] != c.program {
			continue
		}

		data := base58.Decode(raw.Data)
		if len(data) < discriminatorSize {
			return nil, fmt.Errorf("%w: instruction %d of %s is too short", registry.ErrInvalidPayload, i, item.Ref)
		}

		ix, ok := instructions[[discriminatorSize]byte(data[:discriminatorSize])]
		if !ok {
			continue
		}

		if ix.entity >= len(raw.Accounts) || raw.Accounts[ix.entity] < 0 || raw.Accounts[ix.entity] >= len(keys) {
			return nil, fmt.Errorf("%w: %s instruction %d of %s lacks its entity account", registry.ErrInvalidPayload, ix.op, i, item.Ref)
		}

		src := registry.Source{
			Network: c.network,
			TxRef:   item.Ref,
			Ordinal: tx.Slot,
			Index:   i,
		}

		event, err := c.readEvent(ctx, src, ix.op, keys[raw.Accounts[ix.entity]])
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

func (c *client) readEvent(ctx context.Context, src registry.Source, op registry.Operation, account string) (registry.Event, error) {
	data, err := c.fetchAccount(ctx, account)
	if err != nil {
		return registry.Event{}, err
	}

	switch op.Kind() {
	case registry.KindReporter:
		r, err := parseReporter(data)
		return registry.NewReporterEvent(src, op, r), err
	case registry.KindCase:
		cs, err := parseCase(data)
		return registry.NewCaseEvent(src, op, cs), err
	case registry.KindAddress:
		a, err := parseAddress(data)
		return registry.NewAddressEvent(src, op, a), err
	default:
		a, err := parseAsset(data)
		return registry.NewAssetEvent(src, op, a), err
	}
}
