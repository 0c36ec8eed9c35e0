package solana

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/gabapcia/registrywatch/internal/pkg/encoding/borsh"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/btcsuite/btcutil/base58"
	"github.com/shopspring/decimal"
)

const (
	pubkeySize        = 32
	addressFieldSize  = 64
	discriminatorSize = 8
)

// discriminator returns the 8-byte Anchor prefix of an account or instruction.
func discriminator(namespace, name string) [discriminatorSize]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))

	var out [discriminatorSize]byte
	copy(out[:], sum[:discriminatorSize])
	return out
}

var (
	reporterAccount = discriminator("account", "Reporter")
	caseAccount     = discriminator("account", "Case")
	addressAccount  = discriminator("account", "Address")
	assetAccount    = discriminator("account", "Asset")
)

// accountBody checks the Anchor prefix of data and returns a reader over the
// rest. The version, bump and network fields every account starts with are
// consumed.
func accountBody(data []byte, want [discriminatorSize]byte, name string) (*borsh.Reader, error) {
	if len(data) < discriminatorSize || !bytes.Equal(data[:discriminatorSize], want[:]) {
		return nil, fmt.Errorf("%w: not a %s account", registry.ErrInvalidPayload, name)
	}

	r := borsh.NewReader(data[discriminatorSize:])
	r.U8()              // version
	r.U8()              // bump
	r.Fixed(pubkeySize) // network
	return r, nil
}

// paddedString reads a zero-padded fixed-size string field.
func paddedString(r *borsh.Reader, n int) string {
	return strings.TrimRight(string(r.Fixed(n)), "\x00")
}

func readErr(r *borsh.Reader, name string) error {
	if err := r.Err(); err != nil {
		return fmt.Errorf("%w: %s account: %w", registry.ErrInvalidPayload, name, err)
	}
	return nil
}

func parseReporter(data []byte) (registry.Reporter, error) {
	r, err := accountBody(data, reporterAccount, "reporter")
	if err != nil {
		return registry.Reporter{}, err
	}

	var (
		id      = r.U128()
		account = r.Fixed(pubkeySize)
		name    = r.String()
		role    = r.U8()
		status  = r.U8()
		stake   = r.U64()
		unlock  = r.U64()
		url     = r.String()
	)
	if err := readErr(r, "reporter"); err != nil {
		return registry.Reporter{}, err
	}

	out := registry.Reporter{
		ID:              registry.IDFromLittleEndian(id),
		Name:            name,
		Account:         base58.Encode(account),
		UnlockTimestamp: unlock,
		URL:             url,
		Stake:           decimal.NewFromUint64(stake),
	}
	if out.Role, err = registry.ReporterRoleFromCode(uint64(role)); err != nil {
		return registry.Reporter{}, invalid(err)
	}
	if out.Status, err = registry.ReporterStatusFromCode(uint64(status)); err != nil {
		return registry.Reporter{}, invalid(err)
	}

	return out, nil
}

func parseCase(data []byte) (registry.Case, error) {
	r, err := accountBody(data, caseAccount, "case")
	if err != nil {
		return registry.Case{}, err
	}

	var (
		id       = r.U128()
		name     = r.String()
		reporter = r.U128()
		status   = r.U8()
		url      = r.String()
	)
	if err := readErr(r, "case"); err != nil {
		return registry.Case{}, err
	}

	out := registry.Case{
		ID:         registry.IDFromLittleEndian(id),
		Name:       name,
		ReporterID: registry.IDFromLittleEndian(reporter),
		URL:        url,
	}
	if out.Status, err = registry.CaseStatusFromCode(uint64(status)); err != nil {
		return registry.Case{}, invalid(err)
	}

	return out, nil
}

func parseAddress(data []byte) (registry.Address, error) {
	r, err := accountBody(data, addressAccount, "address")
	if err != nil {
		return registry.Address{}, err
	}

	var (
		address       = paddedString(r, addressFieldSize)
		caseID        = r.U128()
		reporterID    = r.U128()
		risk          = r.U8()
		category      = r.U8()
		confirmations = r.U64()
	)
	if err := readErr(r, "address"); err != nil {
		return registry.Address{}, err
	}

	out := registry.Address{
		Address:       address,
		RiskScore:     risk,
		CaseID:        registry.IDFromLittleEndian(caseID),
		ReporterID:    registry.IDFromLittleEndian(reporterID),
		Confirmations: confirmations,
	}
	if out.Category, err = registry.CategoryFromCode(uint64(category)); err != nil {
		return registry.Address{}, invalid(err)
	}

	return out, nil
}

func parseAsset(data []byte) (registry.Asset, error) {
	r, err := accountBody(data, assetAccount, "asset")
	if err != nil {
		return registry.Asset{}, err
	}

	var (
		address       = paddedString(r, addressFieldSize)
		assetID       = paddedString(r, addressFieldSize)
		caseID        = r.U128()
		reporterID    = r.U128()
		risk          = r.U8()
		category      = r.U8()
		confirmations = r.U64()
	)
	if err := readErr(r, "asset"); err != nil {
		return registry.Asset{}, err
	}

	out := registry.Asset{
		Address:       address,
		AssetID:       assetID,
		RiskScore:     risk,
		CaseID:        registry.IDFromLittleEndian(caseID),
		ReporterID:    registry.IDFromLittleEndian(reporterID),
		Confirmations: confirmations,
	}
	if out.Category, err = registry.CategoryFromCode(uint64(category)); err != nil {
		return registry.Asset{}, invalid(err)
	}

	return out, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", registry.ErrInvalidPayload, err)
}
