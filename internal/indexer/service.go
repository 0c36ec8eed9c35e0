// Package indexer mirrors the registry contract of several networks into one
// stream of registry events.
//
// Each configured network runs its own loop: fetch the next batch after the
// committed cursor, decode every item, publish the events to the Sink and
// only then commit the cursor. Loops never share state, so a slow or broken
// network does not hold back the others.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/pkg/x/chflow"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var ErrServiceAlreadyStarted = errors.New("service already started")

const failureChannelBufferSize = 5

type Service interface {
	Start(ctx context.Context) error
	Close()

	// Wake ends the idle wait of network so it fetches immediately.
	Wake(network string) error
}

// RetryPolicy bounds the exponential backoff of every fetch, decode and
// publish. MaxDelay is also the pause before an abandoned cycle restarts.
type RetryPolicy struct {
	Attempts  uint
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// NetworkConfig wires one network into the service.
type NetworkConfig struct {
	Adapter       Network
	Decoder       Decoder
	BatchSize     int
	PollInterval  time.Duration
	RPCTimeout    time.Duration // bounds each publish and commit call
	ListTimeout   time.Duration // bounds one whole fetch, every page of the listing included
	DecodeTimeout time.Duration // bounds the decoding of one item, visibility polling included
	Retry         RetryPolicy
}

func (c NetworkConfig) withDefaults() NetworkConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 10 * time.Second
	}
	if c.RPCTimeout <= 0 {
		c.RPCTimeout = 30 * time.Second
	}
	if c.ListTimeout <= 0 {
		c.ListTimeout = 10 * time.Minute
	}
	if c.DecodeTimeout <= 0 {
		c.DecodeTimeout = c.RPCTimeout + time.Minute
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = 5
	}
	if c.Retry.BaseDelay <= 0 {
		c.Retry.BaseDelay = time.Second
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = 30 * time.Second
	}

	return c
}

type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc
	wakers    map[string]chan struct{}

	networks       map[string]NetworkConfig
	sink           Sink
	cursorStorage  CursorStorage
	failureHandler FailureHandler

	clock   clock.Clock
	tracer  trace.Tracer
	metrics *metrics
}

var _ Service = (*service)(nil)

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	loops := make([]*loop, 0, len(s.networks))
	wakers := make(map[string]chan struct{}, len(s.networks))
	failureCh := make(chan CycleFailure, failureChannelBufferSize)

	for name, cfg := range s.networks {
		start, err := s.loadCursor(ctx, name)
		if err != nil {
			return err
		}

		wakers[name] = make(chan struct{}, 1)
		loops = append(loops, &loop{
			network:   name,
			cfg:       cfg,
			fetcher:   NewFetcher(cfg.Adapter, cfg.BatchSize),
			sink:      s.sink,
			cursors:   s.cursorStorage,
			clock:     s.clock,
			wake:      wakers[name],
			failureCh: failureCh,
			tracer:    s.tracer,
			metrics:   s.metrics,
			attrs:     metric.WithAttributes(attribute.String("indexer.network", name)),
			cursor:    start,
		})
	}

	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	for _, l := range loops {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.run(ctx)
		}()
	}

	handlerDone := make(chan struct{})
	go func() {
		defer close(handlerDone)
		s.handleCycleFailures(ctx, failureCh)
	}()

	s.closeFunc = func() {
		cancel()
		wg.Wait()
		close(failureCh)
		<-handlerDone
	}

	s.wakers = wakers
	s.isStarted = true
	return nil
}

// Close stops every loop and waits for in-flight commits to finish.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.isStarted = false
	s.closeFunc = nil
	s.wakers = nil
}

func (s *service) Wake(network string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wake, ok := s.wakers[network]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNetworkNotRegistered, network)
	}

	chflow.TrySend(wake, struct{}{})
	return nil
}

func (s *service) loadCursor(ctx context.Context, network string) (cursor.Cursor, error) {
	c, err := s.cursorStorage.LoadCursor(ctx, network)
	switch {
	case errors.Is(err, ErrNoCursorFound):
		return cursor.None(), nil
	case err != nil:
		return cursor.Cursor{}, fmt.Errorf("load cursor of %s: %w", network, err)
	default:
		return c, nil
	}
}

type config struct {
	cursorStorage  CursorStorage
	failureHandler FailureHandler
	clock          clock.Clock
	tracer         trace.Tracer
	meter          metric.Meter
}

type Option func(*config)

// New builds a Service indexing every network of networks, keyed by the
// network name used in cursors and event ids.
func New(networks map[string]NetworkConfig, sink Sink, opts ...Option) *service {
	cfg := config{
		cursorStorage:  nopCursor{},
		failureHandler: defaultOnCycleFailure,
		clock:          clock.New(),
		tracer:         defaultTracer(),
		meter:          defaultMeter(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	configured := make(map[string]NetworkConfig, len(networks))
	for name, n := range networks {
		configured[name] = n.withDefaults()
	}

	return &service{
		networks:       configured,
		sink:           sink,
		cursorStorage:  cfg.cursorStorage,
		failureHandler: cfg.failureHandler,
		clock:          cfg.clock,
		tracer:         cfg.tracer,
		metrics:        newMetrics(cfg.meter),
	}
}

func WithCursorStorage(cs CursorStorage) Option {
	return func(c *config) {
		c.cursorStorage = cs
	}
}

func WithFailureHandler(f FailureHandler) Option {
	return func(c *config) {
		c.failureHandler = f
	}
}

// WithClock replaces the clock used for idle and retry pauses.
func WithClock(clk clock.Clock) Option {
	return func(c *config) {
		c.clock = clk
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		c.tracer = t
	}
}

func WithMeter(m metric.Meter) Option {
	return func(c *config) {
		c.meter = m
	}
}
