package near

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gabapcia/registrywatch/internal/indexer"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// methods maps contract method names to the operation they perform. Stake
// deposits arrive through the token contract's ft_transfer_call.
var methods = map[string]registry.Operation{
	"create_reporter":     registry.OpCreateReporter,
	"update_reporter":     registry.OpUpdateReporter,
	"ft_on_transfer":      registry.OpActivateReporter,
	"deactivate_reporter": registry.OpDeactivateReporter,
	"unstake":             registry.OpUnstakeReporter,
	"create_case":         registry.OpCreateCase,
	"update_case":         registry.OpUpdateCase,
	"create_address":      registry.OpCreateAddress,
	"update_address":      registry.OpUpdateAddress,
	"confirm_address":     registry.OpConfirmAddress,
	"create_asset":        registry.OpCreateAsset,
	"update_asset":        registry.OpUpdateAsset,
	"confirm_asset":       registry.OpConfirmAsset,
}

type (
	functionCall struct {
		MethodName string `json:"method_name"`
		Args       string `json:"args"`
	}

	// callArgs holds the arguments that identify the entity a call touched.
	callArgs struct {
		ID       string `json:"id"`
		Address  string `json:"address"`
		SenderID string `json:"sender_id"`
	}

	reporterView struct {
		ID              string `json:"id"`
		AccountID       string `json:"account_id"`
		Name            string `json:"name"`
		Role            string `json:"role"`
		Status          string `json:"status"`
		Stake           string `json:"stake"`
		URL             string `json:"url"`
		UnlockTimestamp uint64 `json:"unlock_timestamp"`
	}

	caseView struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		ReporterID string `json:"reporter_id"`
		Status     string `json:"status"`
		URL        string `json:"url"`
	}

	addressView struct {
		Address            string `json:"address"`
		ID                 string `json:"id"`
		Category           string `json:"category"`
		RiskScore          uint8  `json:"risk_score"`
		CaseID             string `json:"case_id"`
		ReporterID         string `json:"reporter_id"`
		ConfirmationsCount uint64 `json:"confirmations_count"`
	}
)

// functionCallOf returns the FunctionCall of an action, or nil for every
// other action kind.
func functionCallOf(raw json.RawMessage) (*functionCall, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return nil, nil
	}

	var action struct {
		FunctionCall *functionCall `json:"FunctionCall"`
	}
	if err := json.Unmarshal(raw, &action); err != nil {
		return nil, err
	}

	return action.FunctionCall, nil
}

// Decode implements indexer.Decoder. Every known function call action of the
// receipt yields one event.
func (c *client) Decode(ctx context.Context, item indexer.RawItem) ([]registry.Event, error) {
	receipt, ok := item.Payload.(receiptResponse)
	if !ok {
		var err error
		if receipt, err = c.fetchReceipt(ctx, item.Ref); err != nil {
			return nil, err
		}
	}

	if receipt.ReceiverID != c.contract || receipt.Receipt.Action == nil {
		return nil, nil
	}

	var events []registry.Event
	for i, raw := range receipt.Receipt.Action.Actions {
		call, err := functionCallOf(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: action %d of %s: %w", registry.ErrInvalidPayload, i, item.Ref, err)
		}
		if call == nil {
			continue
		}

		op, ok := methods[call.MethodName]
		if !ok {
			continue
		}

		args, err := parseArgs(call.Args)
		if err != nil {
			return nil, fmt.Errorf("%w: %s arguments of %s: %w", registry.ErrInvalidPayload, call.MethodName, item.Ref, err)
		}

		src := registry.Source{
			Network: c.network,
			TxRef:   item.Ref,
			Ordinal: item.Ordinal,
			Index:   i,
		}

		event, err := c.readEvent(ctx, src, op, args, receipt.PredecessorID)
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

func parseArgs(encoded string) (callArgs, error) {
	var args callArgs
	if encoded == "" {
		return args, nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return args, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return args, nil
	}

	err = json.Unmarshal(data, &args)
	return args, err
}

func required(method, name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s call without %q", registry.ErrInvalidPayload, method, name)
	}
	return nil
}

func (c *client) readEvent(ctx context.Context, src registry.Source, op registry.Operation, args callArgs, predecessor string) (registry.Event, error) {
	switch op {
	case registry.OpCreateReporter, registry.OpUpdateReporter:
		if err := required(string(op), "id", args.ID); err != nil {
			return registry.Event{}, err
		}

		r, err := c.getReporter(ctx, "get_reporter", map[string]any{"id": args.ID})
		return registry.NewReporterEvent(src, op, r), err
	case registry.OpActivateReporter:
		if err := required("ft_on_transfer", "sender_id", args.SenderID); err != nil {
			return registry.Event{}, err
		}

		r, err := c.getReporter(ctx, "get_reporter_by_account", map[string]any{"account_id": args.SenderID})
		return registry.NewReporterEvent(src, op, r), err
	case registry.OpDeactivateReporter, registry.OpUnstakeReporter:
		r, err := c.getReporter(ctx, "get_reporter_by_account", map[string]any{"account_id": predecessor})
		return registry.NewReporterEvent(src, op, r), err
	}

	switch op.Kind() {
	case registry.KindCase:
		if err := required(string(op), "id", args.ID); err != nil {
			return registry.Event{}, err
		}

		cs, err := c.getCase(ctx, args.ID)
		return registry.NewCaseEvent(src, op, cs), err
	case registry.KindAddress:
		if err := required(string(op), "address", args.Address); err != nil {
			return registry.Event{}, err
		}

		a, err := c.getAddress(ctx, args.Address)
		return registry.NewAddressEvent(src, op, a), err
	default:
		if err := required(string(op), "address", args.Address); err != nil {
			return registry.Event{}, err
		}
		if err := required(string(op), "id", args.ID); err != nil {
			return registry.Event{}, err
		}

		a, err := c.getAsset(ctx, args.Address, args.ID)
		return registry.NewAssetEvent(src, op, a), err
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", registry.ErrInvalidPayload, err)
}

func (c *client) getReporter(ctx context.Context, method string, args map[string]any) (registry.Reporter, error) {
	var v reporterView
	if err := c.view(ctx, method, args, &v); err != nil {
		return registry.Reporter{}, err
	}

	r := registry.Reporter{
		Name:            v.Name,
		Account:         v.AccountID,
		UnlockTimestamp: v.UnlockTimestamp,
		URL:             v.URL,
	}

	var err error
	if r.ID, err = registry.IDFromDecimal(v.ID); err != nil {
		return registry.Reporter{}, err
	}
	if r.Role, err = registry.ParseReporterRole(v.Role); err != nil {
		return registry.Reporter{}, invalid(err)
	}
	if r.Status, err = registry.ParseReporterStatus(v.Status); err != nil {
		return registry.Reporter{}, invalid(err)
	}
	if r.Stake, err = decimal.NewFromString(v.Stake); err != nil {
		return registry.Reporter{}, invalid(err)
	}

	return r, nil
}

func (c *client) getCase(ctx context.Context, id string) (registry.Case, error) {
	var v caseView
	if err := c.view(ctx, "get_case", map[string]any{"id": id}, &v); err != nil {
		return registry.Case{}, err
	}

	cs := registry.Case{Name: v.Name, URL: v.URL}

	var err error
	if cs.ID, err = registry.IDFromDecimal(v.ID); err != nil {
		return registry.Case{}, err
	}
	if cs.ReporterID, err = registry.IDFromDecimal(v.ReporterID); err != nil {
		return registry.Case{}, err
	}
	if cs.Status, err = registry.ParseCaseStatus(v.Status); err != nil {
		return registry.Case{}, invalid(err)
	}

	return cs, nil
}

// classify converts the fields addresses and assets share.
func (v addressView) classify() (category registry.Category, caseID, reporterID uuid.UUID, err error) {
	if category, err = registry.ParseCategory(v.Category); err != nil {
		return category, caseID, reporterID, invalid(err)
	}
	if caseID, err = registry.IDFromDecimal(v.CaseID); err != nil {
		return category, caseID, reporterID, err
	}
	if reporterID, err = registry.IDFromDecimal(v.ReporterID); err != nil {
		return category, caseID, reporterID, err
	}

	return category, caseID, reporterID, nil
}

func (c *client) getAddress(ctx context.Context, address string) (registry.Address, error) {
	var v addressView
	if err := c.view(ctx, "get_address", map[string]any{"address": address}, &v); err != nil {
		return registry.Address{}, err
	}

	category, caseID, reporterID, err := v.classify()
	if err != nil {
		return registry.Address{}, err
	}

	return registry.Address{
		Address:       v.Address,
		Category:      category,
		RiskScore:     v.RiskScore,
		CaseID:        caseID,
		ReporterID:    reporterID,
		Confirmations: v.ConfirmationsCount,
	}, nil
}

func (c *client) getAsset(ctx context.Context, address, id string) (registry.Asset, error) {
	var v addressView
	if err := c.view(ctx, "get_asset", map[string]any{"address": address, "id": id}, &v); err != nil {
		return registry.Asset{}, err
	}

	category, caseID, reporterID, err := v.classify()
	if err != nil {
		return registry.Asset{}, err
	}

	return registry.Asset{
		Address:       v.Address,
		AssetID:       v.ID,
		Category:      category,
		RiskScore:     v.RiskScore,
		CaseID:        caseID,
		ReporterID:    reporterID,
		Confirmations: v.ConfirmationsCount,
	}, nil
}
