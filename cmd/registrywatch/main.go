// Command registrywatch indexes the registry contract of EVM, Solana and NEAR
// networks and publishes every observed mutation to NATS JetStream.
//
// The configuration file is read from REGISTRYWATCH_CONFIG (default
// registrywatch.yaml); a .env file in the working directory is loaded first.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gabapcia/registrywatch/internal/config"
	"github.com/gabapcia/registrywatch/internal/handlers/cli"
	"github.com/gabapcia/registrywatch/internal/indexer"
	"github.com/gabapcia/registrywatch/internal/infra/blockchain/evm"
	"github.com/gabapcia/registrywatch/internal/infra/blockchain/near"
	"github.com/gabapcia/registrywatch/internal/infra/blockchain/solana"
	natssink "github.com/gabapcia/registrywatch/internal/infra/sink/nats"
	"github.com/gabapcia/registrywatch/internal/infra/storage/badger"
	"github.com/gabapcia/registrywatch/internal/infra/storage/postgres"
	"github.com/gabapcia/registrywatch/internal/infra/storage/redis"
	"github.com/gabapcia/registrywatch/internal/pkg/logger"
	"github.com/gabapcia/registrywatch/internal/pkg/resilience/poll"
	"github.com/gabapcia/registrywatch/internal/pkg/telemetry"
	"github.com/gabapcia/registrywatch/internal/pkg/transport/http"
	"github.com/gabapcia/registrywatch/internal/pkg/transport/jsonrpc"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "registrywatch:", err)
		os.Exit(1)
	}
}

func configPath() string {
	if p, ok := os.LookupEnv(config.EnvPrefix + "_CONFIG"); ok {
		return p
	}
	return "registrywatch.yaml"
}

func run(ctx context.Context) error {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	if err := logger.Init(cfg.Log.Level); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cursors, closeCursors, err := newCursorStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeCursors()

	var closeSink func()
	defer func() {
		if closeSink != nil {
			closeSink()
		}
	}()

	newService := func(ctx context.Context) (indexer.Service, error) {
		networks, err := newNetworks(cfg.Networks)
		if err != nil {
			return nil, err
		}

		opts := []natssink.Option{natssink.WithDuplicateWindow(cfg.Sink.DuplicateWindow)}
		if cfg.Sink.MaxAge > 0 {
			opts = append(opts, natssink.WithMaxAge(cfg.Sink.MaxAge))
		}

		sink, err := natssink.NewSink(ctx, cfg.Sink.URL, cfg.Sink.Stream, cfg.Sink.SubjectPrefix, opts...)
		if err != nil {
			return nil, err
		}
		closeSink = sink.Close

		return indexer.New(networks, sink, indexer.WithCursorStorage(cursors)), nil
	}

	networks := make(cli.Networks, len(cfg.Networks))
	for _, n := range cfg.Networks {
		networks[n.Name] = n.Kind.CursorKind()
	}

	return cli.Run(ctx, newService, cursors, networks)
}

func newCursorStorage(ctx context.Context, cfg config.StorageConfig) (indexer.CursorStorage, func(), error) {
	switch cfg.Driver {
	case config.DriverBadger:
		store, err := badger.NewClient(cfg.Badger.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger cursor store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case config.DriverPostgres:
		store, err := postgres.NewClient(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres cursor store: %w", err)
		}
		return store, store.Close, nil
	default:
		store, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis cursor store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}
}

// adapter is what every network client implements.
type adapter interface {
	indexer.Network
	indexer.Decoder
}

func newNetworks(networks []config.NetworkConfig) (map[string]indexer.NetworkConfig, error) {
	configured := make(map[string]indexer.NetworkConfig, len(networks))
	for _, n := range networks {
		a, err := newAdapter(n)
		if err != nil {
			return nil, fmt.Errorf("network %s: %w", n.Name, err)
		}

		configured[n.Name] = indexer.NetworkConfig{
			Adapter:       a,
			Decoder:       a,
			BatchSize:     n.BatchSize,
			PollInterval:  n.PollInterval,
			RPCTimeout:    n.RPCTimeout,
			ListTimeout:   n.ListTimeout,
			DecodeTimeout: n.DecodeTimeout,
			Retry: indexer.RetryPolicy{
				Attempts:  n.Retry.Attempts,
				BaseDelay: n.Retry.BaseDelay,
				MaxDelay:  n.Retry.MaxDelay,
			},
		}
	}

	return configured, nil
}

func newAdapter(n config.NetworkConfig) (adapter, error) {
	conn := jsonrpc.NewClient(n.RPCURL, http.NewClient(http.WithTimeout(n.RPCTimeout)))
	poller := poll.New(
		poll.WithInterval(n.VisibilityInterval),
		poll.WithTimeout(n.VisibilityTimeout),
	)

	switch n.Kind {
	case config.KindEVM:
		opts := []evm.Option{evm.WithStartBlock(n.StartBlock), evm.WithPoller(poller)}
		if n.WindowSize > 0 {
			opts = append(opts, evm.WithWindowSize(n.WindowSize))
		}
		return evm.NewClient(conn, n.Name, n.Contract, opts...)
	case config.KindSolana:
		opts := []solana.Option{solana.WithPoller(poller)}
		if n.PageSize > 0 {
			opts = append(opts, solana.WithPageSize(n.PageSize))
		}
		return solana.NewClient(conn, n.Name, n.Contract, opts...)
	case config.KindNEAR:
		opts := []near.Option{near.WithStartBlock(n.StartBlock), near.WithPoller(poller)}
		if n.WindowSize > 0 {
			opts = append(opts, near.WithWindowSize(n.WindowSize))
		}
		return near.NewClient(conn, n.Name, n.Contract, opts...)
	default:
		return nil, errors.New("unsupported network kind " + string(n.Kind))
	}
}
