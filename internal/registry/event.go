// Package registry defines the canonical, network-agnostic events produced by
// the indexer when it observes a mutation of the registry contract.
//
// An Event is a closed sum over four entity kinds (reporter, case, address,
// asset). Exactly one payload pointer is set and it always matches Kind.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabapcia/registrywatch/internal/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidPayload marks a registry interaction that was recognized but could
// not be decoded: wrong arity, unknown enumeration code, out of range value or
// a malformed on-chain account. Such items are skipped, never retried.
var ErrInvalidPayload = errors.New("invalid registry payload")

// Kind selects the payload of an Event.
type Kind uint8

const (
	KindReporter Kind = iota + 1
	KindCase
	KindAddress
	KindAsset
)

func (k Kind) String() string {
	switch k {
	case KindReporter:
		return "reporter"
	case KindCase:
		return "case"
	case KindAddress:
		return "address"
	case KindAsset:
		return "asset"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindReporter, KindCase, KindAddress, KindAsset:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown event kind %d", uint8(k))
	}
}

func (k *Kind) UnmarshalText(data []byte) error {
	for _, candidate := range []Kind{KindReporter, KindCase, KindAddress, KindAsset} {
		if candidate.String() == string(data) {
			*k = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown event kind %q", data)
}

// Operation is the registry instruction that produced an event.
type Operation string

const (
	OpCreateReporter     Operation = "create_reporter"
	OpUpdateReporter     Operation = "update_reporter"
	OpActivateReporter   Operation = "activate_reporter"
	OpDeactivateReporter Operation = "deactivate_reporter"
	OpUnstakeReporter    Operation = "unstake_reporter"
	OpCreateCase         Operation = "create_case"
	OpUpdateCase         Operation = "update_case"
	OpCreateAddress      Operation = "create_address"
	OpUpdateAddress      Operation = "update_address"
	OpConfirmAddress     Operation = "confirm_address"
	OpCreateAsset        Operation = "create_asset"
	OpUpdateAsset        Operation = "update_asset"
	OpConfirmAsset       Operation = "confirm_asset"
)

var operationKinds = map[Operation]Kind{
	OpCreateReporter:     KindReporter,
	OpUpdateReporter:     KindReporter,
	OpActivateReporter:   KindReporter,
	OpDeactivateReporter: KindReporter,
	OpUnstakeReporter:    KindReporter,
	OpCreateCase:         KindCase,
	OpUpdateCase:         KindCase,
	OpCreateAddress:      KindAddress,
	OpUpdateAddress:      KindAddress,
	OpConfirmAddress:     KindAddress,
	OpCreateAsset:        KindAsset,
	OpUpdateAsset:        KindAsset,
	OpConfirmAsset:       KindAsset,
}

// Kind returns the entity kind the operation mutates, or 0 for unknown operations.
func (o Operation) Kind() Kind {
	return operationKinds[o]
}

// StatusOnly reports whether the operation only changes a reporter's status.
func (o Operation) StatusOnly() bool {
	switch o {
	case OpActivateReporter, OpDeactivateReporter, OpUnstakeReporter:
		return true
	default:
		return false
	}
}

type Reporter struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Account         string          `json:"account"`
	Role            ReporterRole    `json:"role"`
	Status          ReporterStatus  `json:"status"`
	UnlockTimestamp uint64          `json:"unlock_timestamp"`
	URL             string          `json:"url"`
	Stake           decimal.Decimal `json:"stake"`
}

type Case struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	ReporterID uuid.UUID  `json:"reporter_id"`
	Status     CaseStatus `json:"status"`
	URL        string     `json:"url"`
}

type Address struct {
	Address       string    `json:"address" validate:"required"`
	Category      Category  `json:"category"`
	RiskScore     uint8     `json:"risk_score" validate:"max=10"`
	CaseID        uuid.UUID `json:"case_id"`
	ReporterID    uuid.UUID `json:"reporter_id"`
	Confirmations uint64    `json:"confirmations"`
}

type Asset struct {
	Address       string    `json:"address" validate:"required"`
	AssetID       string    `json:"asset_id" validate:"required"`
	Category      Category  `json:"category"`
	RiskScore     uint8     `json:"risk_score" validate:"max=10"`
	CaseID        uuid.UUID `json:"case_id"`
	ReporterID    uuid.UUID `json:"reporter_id"`
	Confirmations uint64    `json:"confirmations"`
}

// Source locates the instruction or log an event was decoded from.
type Source struct {
	Network string // configured network name
	TxRef   string // transaction hash, signature or receipt id
	Ordinal uint64 // block height or slot
	Index   int    // position of the log, instruction or action inside the transaction
}

// Event is one observed state mutation of the registry.
type Event struct {
	Network   string    `json:"network"`
	Kind      Kind      `json:"kind"`
	Operation Operation `json:"operation"`
	TxRef     string    `json:"tx_ref"`
	Ordinal   uint64    `json:"ordinal"`
	Index     int       `json:"index"`

	Reporter *Reporter `json:"reporter,omitempty"`
	Case     *Case     `json:"case,omitempty"`
	Address  *Address  `json:"address,omitempty"`
	Asset    *Asset    `json:"asset,omitempty"`
}

func newEvent(src Source, op Operation) Event {
	return Event{
		Network:   src.Network,
		Kind:      op.Kind(),
		Operation: op,
		TxRef:     src.TxRef,
		Ordinal:   src.Ordinal,
		Index:     src.Index,
	}
}

// NewReporterEvent builds a reporter event. For status-only operations every
// field but the id, the status and the unlock timestamp is dropped.
func NewReporterEvent(src Source, op Operation, r Reporter) Event {
	if op.StatusOnly() {
		r = Reporter{ID: r.ID, Status: r.Status, UnlockTimestamp: r.UnlockTimestamp}
	}

	e := newEvent(src, op)
	e.Reporter = &r
	return e
}

func NewCaseEvent(src Source, op Operation, c Case) Event {
	e := newEvent(src, op)
	e.Case = &c
	return e
}

func NewAddressEvent(src Source, op Operation, a Address) Event {
	e := newEvent(src, op)
	e.Address = &a
	return e
}

func NewAssetEvent(src Source, op Operation, a Asset) Event {
	e := newEvent(src, op)
	e.Asset = &a
	return e
}

// ID is the delivery identity of the event. Replaying the same transaction
// always yields the same ID, which lets the sink discard duplicates.
func (e Event) ID() string {
	return fmt.Sprintf("%s:%s:%d", e.Network, e.TxRef, e.Index)
}

// Key identifies the entity the event mutates. Consumers keep the event with
// the highest Ordinal per (Network, Key). Ordinal ties, such as two Solana
// transactions of one slot, go to the event published last: a network's
// events reach the stream one at a time in chain order, so the higher stream
// sequence wins.
func (e Event) Key() string {
	switch {
	case e.Reporter != nil:
		return "reporter:" + e.Reporter.ID.String()
	case e.Case != nil:
		return "case:" + e.Case.ID.String()
	case e.Address != nil:
		return "address:" + e.Address.Address
	case e.Asset != nil:
		return "asset:" + e.Asset.Address + ":" + e.Asset.AssetID
	default:
		return ""
	}
}

func (e Event) StatusOnly() bool {
	return e.Operation.StatusOnly()
}

// Validate checks that exactly one payload is set, that it matches the event
// kind and that its values are within range. Failures wrap ErrInvalidPayload.
func (e Event) Validate() error {
	var (
		payload any
		set     int
		kind    Kind
	)
	if e.Reporter != nil {
		payload, kind = e.Reporter, KindReporter
		set++
	}
	if e.Case != nil {
		payload, kind = e.Case, KindCase
		set++
	}
	if e.Address != nil {
		payload, kind = e.Address, KindAddress
		set++
	}
	if e.Asset != nil {
		payload, kind = e.Asset, KindAsset
		set++
	}

	switch {
	case set != 1:
		return fmt.Errorf("%w: event carries %d payloads", ErrInvalidPayload, set)
	case kind != e.Kind || e.Operation.Kind() != e.Kind:
		return fmt.Errorf("%w: operation %q does not produce %s events", ErrInvalidPayload, e.Operation, kind)
	}

	if err := validator.Validate(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return nil
}

// reporterStatus is the wire shape of a status-only reporter payload.
type reporterStatus struct {
	ID              uuid.UUID      `json:"id"`
	Status          ReporterStatus `json:"status"`
	UnlockTimestamp uint64         `json:"unlock_timestamp"`
}

// MarshalJSON writes status-only reporter events with just the status fields.
func (e Event) MarshalJSON() ([]byte, error) {
	type plain Event
	if !e.StatusOnly() || e.Reporter == nil {
		return json.Marshal(plain(e))
	}

	return json.Marshal(struct {
		plain
		Reporter reporterStatus `json:"reporter"`
	}{
		plain: plain(e),
		Reporter: reporterStatus{
			ID:              e.Reporter.ID,
			Status:          e.Reporter.Status,
			UnlockTimestamp: e.Reporter.UnlockTimestamp,
		},
	})
}
