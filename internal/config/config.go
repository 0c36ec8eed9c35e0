// Package config loads the registrywatch configuration.
//
// The networks list lives in a YAML file. Scalar settings (log level,
// storage, sink, telemetry) can be overridden with REGISTRYWATCH_* environment
// variables, which makes the same file usable across environments.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. REGISTRYWATCH_LOG_LEVEL.
const EnvPrefix = "REGISTRYWATCH"

var ErrInvalidConfig = errors.New("invalid configuration")

// Kind selects the adapter and decoder of a network.
type Kind string

const (
	KindEVM    Kind = "evm"
	KindSolana Kind = "solana"
	KindNEAR   Kind = "near"
)

// CursorKind returns the cursor variant networks of kind k resume from.
func (k Kind) CursorKind() cursor.Kind {
	if k == KindSolana {
		return cursor.KindTransaction
	}
	return cursor.KindBlock
}

// Storage drivers for the cursor store.
const (
	DriverRedis    = "redis"
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Storage   StorageConfig   `yaml:"storage"`
	Sink      SinkConfig      `yaml:"sink"`

	// Defaults fills the unset tuning fields of every network.
	Defaults Tuning          `yaml:"defaults" ignored:"true"`
	Networks []NetworkConfig `yaml:"networks" ignored:"true" validate:"required,min=1,unique=Name,dive"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name" split_words:"true" validate:"required_if=Enabled true"`
}

type StorageConfig struct {
	Driver   string         `yaml:"driver" validate:"oneof=redis badger postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Badger   BadgerConfig   `yaml:"badger"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

// BadgerConfig points at the database directory. An empty path keeps the
// cursors in memory, which only makes sense for local runs.
type BadgerConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type SinkConfig struct {
	URL             string        `yaml:"nats_url" validate:"required,url"`
	Stream          string        `yaml:"stream" validate:"required"`
	SubjectPrefix   string        `yaml:"subject_prefix" split_words:"true" validate:"required"`
	DuplicateWindow time.Duration `yaml:"duplicate_window" split_words:"true" validate:"gte=0"`
	MaxAge          time.Duration `yaml:"max_age" split_words:"true" validate:"gte=0"`
}

type RetryConfig struct {
	Attempts  uint          `yaml:"attempts"`
	BaseDelay time.Duration `yaml:"base_delay" validate:"gte=0"`
	MaxDelay  time.Duration `yaml:"max_delay" validate:"gte=0"`
}

// Tuning groups the per-network knobs that can be shared through Defaults.
type Tuning struct {
	BatchSize          int           `yaml:"batch_size" validate:"gte=0"`
	PollInterval       time.Duration `yaml:"poll_interval" validate:"gte=0"`
	RPCTimeout         time.Duration `yaml:"rpc_timeout" validate:"gte=0"`
	ListTimeout        time.Duration `yaml:"list_timeout" validate:"gte=0"`
	DecodeTimeout      time.Duration `yaml:"decode_timeout" validate:"gte=0"`
	VisibilityInterval time.Duration `yaml:"visibility_interval" validate:"gte=0"`
	VisibilityTimeout  time.Duration `yaml:"visibility_timeout" validate:"gte=0"`
	Retry              RetryConfig   `yaml:"retry"`
}

type NetworkConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Kind     Kind   `yaml:"kind" validate:"oneof=evm solana near"`
	RPCURL   string `yaml:"rpc_url" validate:"required,url"`
	Contract string `yaml:"contract" validate:"required"`

	// StartBlock is where EVM and NEAR networks begin without a cursor.
	StartBlock uint64 `yaml:"start_block"`
	// WindowSize bounds the blocks scanned per EVM getLogs call or NEAR cycle.
	WindowSize uint64 `yaml:"window_size"`
	// PageSize bounds one Solana signature page.
	PageSize int `yaml:"page_size" validate:"gte=0,lte=1000"`

	Tuning `yaml:",inline"`
}

// Default returns the configuration used for every key the file and the
// environment leave unset.
func Default() Config {
	return Config{
		Log:       LogConfig{Level: "info"},
		Telemetry: TelemetryConfig{ServiceName: "registrywatch"},
		Storage: StorageConfig{
			Driver: DriverRedis,
			Redis:  RedisConfig{Addr: "localhost:6379"},
		},
		Sink: SinkConfig{
			URL:             "nats://localhost:4222",
			Stream:          "REGISTRY",
			SubjectPrefix:   "registry",
			DuplicateWindow: time.Hour,
		},
		Defaults: Tuning{
			BatchSize:          100,
			PollInterval:       10 * time.Second,
			RPCTimeout:         30 * time.Second,
			ListTimeout:        10 * time.Minute,
			VisibilityInterval: 2 * time.Second,
			VisibilityTimeout:  60 * time.Second,
			Retry: RetryConfig{
				Attempts:  5,
				BaseDelay: time.Second,
				MaxDelay:  30 * time.Second,
			},
		},
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies the
// environment overrides and the network defaults, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}

		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// decode rejects unknown keys so a typo does not silently fall back to a default.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func (c *Config) applyDefaults() {
	for i := range c.Networks {
		c.Networks[i].Tuning = c.Networks[i].Tuning.merge(c.Defaults)
	}
}

func (t Tuning) merge(d Tuning) Tuning {
	if t.BatchSize == 0 {
		t.BatchSize = d.BatchSize
	}
	if t.PollInterval == 0 {
		t.PollInterval = d.PollInterval
	}
	if t.RPCTimeout == 0 {
		t.RPCTimeout = d.RPCTimeout
	}
	if t.ListTimeout == 0 {
		t.ListTimeout = d.ListTimeout
	}
	if t.DecodeTimeout == 0 {
		t.DecodeTimeout = d.DecodeTimeout
	}
	if t.VisibilityInterval == 0 {
		t.VisibilityInterval = d.VisibilityInterval
	}
	if t.VisibilityTimeout == 0 {
		t.VisibilityTimeout = d.VisibilityTimeout
	}
	if t.Retry.Attempts == 0 {
		t.Retry.Attempts = d.Retry.Attempts
	}
	if t.Retry.BaseDelay == 0 {
		t.Retry.BaseDelay = d.Retry.BaseDelay
	}
	if t.Retry.MaxDelay == 0 {
		t.Retry.MaxDelay = d.Retry.MaxDelay
	}

	return t
}

// Validate checks the struct tags and the rules that span several fields.
func (c Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch c.Storage.Driver {
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("%w: storage.redis.addr is required by the redis driver", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("%w: storage.postgres.dsn is required by the postgres driver", ErrInvalidConfig)
		}
	}

	for _, n := range c.Networks {
		if n.Retry.MaxDelay < n.Retry.BaseDelay {
			return fmt.Errorf("%w: network %s: retry.max_delay is lower than retry.base_delay", ErrInvalidConfig, n.Name)
		}
	}

	return nil
}

// Network returns the configuration of the named network.
func (c Config) Network(name string) (NetworkConfig, bool) {
	for _, n := range c.Networks {
		if n.Name == name {
			return n, true
		}
	}

	return NetworkConfig{}, false
}
