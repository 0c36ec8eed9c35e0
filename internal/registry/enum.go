package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCategory is returned for category codes or names outside the known set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownRole is returned for reporter role codes or names outside the known set.
	ErrUnknownRole = errors.New("unknown reporter role")

	// ErrUnknownStatus is returned for reporter or case status codes or names outside the known set.
	ErrUnknownStatus = errors.New("unknown status")
)

// enumTable maps the stable integer codes of an on-chain enumeration to the
// snake_case names used at the domain boundary and the PascalCase names some
// networks put on the wire.
type enumTable struct {
	snake  []string
	pascal []string
	err    error
}

func newEnumTable(err error, snake, pascal []string) enumTable {
	return enumTable{snake: snake, pascal: pascal, err: err}
}

func (t enumTable) fromCode(code uint64) (uint8, error) {
	if code >= uint64(len(t.snake)) {
		return 0, fmt.Errorf("%w: code %d", t.err, code)
	}

	return uint8(code), nil
}

func (t enumTable) parse(name string) (uint8, error) {
	for i := range t.snake {
		if name == t.snake[i] || name == t.pascal[i] {
			return uint8(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", t.err, name)
}

func (t enumTable) name(code uint8) string {
	if int(code) >= len(t.snake) {
		return fmt.Sprintf("unknown(%d)", code)
	}

	return t.snake[code]
}

func (t enumTable) marshal(code uint8) ([]byte, error) {
	if int(code) >= len(t.snake) {
		return nil, fmt.Errorf("%w: code %d", t.err, code)
	}

	return []byte(t.snake[code]), nil
}

// Category is the risk category of an address or asset.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryWalletService
	CategoryMerchantService
	CategoryMiningPool
	CategoryExchange
	CategoryDeFi
	CategoryOTCBroker
	CategoryATM
	CategoryGambling
	CategoryIllicitOrganization
	CategoryMixer
	CategoryDarknetService
	CategoryScam
	CategoryRansomware
	CategoryTheft
	CategoryCounterfeit
	CategoryTerroristFinancing
	CategorySanctions
	CategoryChildAbuse
	CategoryHacker
	CategoryHighRiskJurisdiction
)

var categories = newEnumTable(ErrUnknownCategory,
	[]string{
		"none", "wallet_service", "merchant_service", "mining_pool", "exchange", "defi",
		"otc_broker", "atm", "gambling", "illicit_organization", "mixer", "darknet_service",
		"scam", "ransomware", "theft", "counterfeit", "terrorist_financing", "sanctions",
		"child_abuse", "hacker", "high_risk_jurisdiction",
	},
	[]string{
		"None", "WalletService", "MerchantService", "MiningPool", "Exchange", "DeFi",
		"OTCBroker", "ATM", "Gambling", "IllicitOrganization", "Mixer", "DarknetService",
		"Scam", "Ransomware", "Theft", "Counterfeit", "TerroristFinancing", "Sanctions",
		"ChildAbuse", "Hacker", "HighRiskJurisdiction",
	},
)

// CategoryFromCode converts an on-chain code (0..20) to a Category.
func CategoryFromCode(code uint64) (Category, error) {
	c, err := categories.fromCode(code)
	return Category(c), err
}

// ParseCategory accepts either the snake_case or the PascalCase name.
func ParseCategory(name string) (Category, error) {
	c, err := categories.parse(name)
	return Category(c), err
}

func (c Category) String() string { return categories.name(uint8(c)) }

func (c Category) MarshalText() ([]byte, error) { return categories.marshal(uint8(c)) }

func (c *Category) UnmarshalText(data []byte) error {
	parsed, err := ParseCategory(string(data))
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}

// ReporterRole is the role a reporter was registered with.
type ReporterRole uint8

const (
	RoleValidator ReporterRole = iota
	RoleTracer
	RolePublisher
	RoleAuthority
)

var roles = newEnumTable(ErrUnknownRole,
	[]string{"validator", "tracer", "publisher", "authority"},
	[]string{"Validator", "Tracer", "Publisher", "Authority"},
)

func ReporterRoleFromCode(code uint64) (ReporterRole, error) {
	r, err := roles.fromCode(code)
	return ReporterRole(r), err
}

func ParseReporterRole(name string) (ReporterRole, error) {
	r, err := roles.parse(name)
	return ReporterRole(r), err
}

func (r ReporterRole) String() string { return roles.name(uint8(r)) }

func (r ReporterRole) MarshalText() ([]byte, error) { return roles.marshal(uint8(r)) }

func (r *ReporterRole) UnmarshalText(data []byte) error {
	parsed, err := ParseReporterRole(string(data))
	if err != nil {
		return err
	}

	*r = parsed
	return nil
}

// ReporterStatus is the lifecycle state of a reporter's stake.
type ReporterStatus uint8

const (
	ReporterInactive ReporterStatus = iota
	ReporterActive
	ReporterUnstaking
)

var reporterStatuses = newEnumTable(ErrUnknownStatus,
	[]string{"inactive", "active", "unstaking"},
	[]string{"Inactive", "Active", "Unstaking"},
)

func ReporterStatusFromCode(code uint64) (ReporterStatus, error) {
	s, err := reporterStatuses.fromCode(code)
	return ReporterStatus(s), err
}

func ParseReporterStatus(name string) (ReporterStatus, error) {
	s, err := reporterStatuses.parse(name)
	return ReporterStatus(s), err
}

func (s ReporterStatus) String() string { return reporterStatuses.name(uint8(s)) }

func (s ReporterStatus) MarshalText() ([]byte, error) { return reporterStatuses.marshal(uint8(s)) }

func (s *ReporterStatus) UnmarshalText(data []byte) error {
	parsed, err := ParseReporterStatus(string(data))
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}

// CaseStatus tells whether a case still accepts new addresses and assets.
type CaseStatus uint8

const (
	CaseClosed CaseStatus = iota
	CaseOpen
)

var caseStatuses = newEnumTable(ErrUnknownStatus,
	[]string{"closed", "open"},
	[]string{"Closed", "Open"},
)

func CaseStatusFromCode(code uint64) (CaseStatus, error) {
	s, err := caseStatuses.fromCode(code)
	return CaseStatus(s), err
}

func ParseCaseStatus(name string) (CaseStatus, error) {
	s, err := caseStatuses.parse(name)
	return CaseStatus(s), err
}

func (s CaseStatus) String() string { return caseStatuses.name(uint8(s)) }

func (s CaseStatus) MarshalText() ([]byte, error) { return caseStatuses.marshal(uint8(s)) }

func (s *CaseStatus) UnmarshalText(data []byte) error {
	parsed, err := ParseCaseStatus(string(data))
	if err != nil {
		return err
	}

	*s = parsed
	return nil
}
