// Package poll implements bounded, fixed-interval polling for state that is
// expected to become visible eventually (e.g., a transaction a node has not
// indexed yet). Time is read from an injectable clock so callers can drive it
// from tests.
package poll

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
)

// ErrTimeout is returned by Until when the condition was not met before the
// overall timeout elapsed.
var ErrTimeout = errors.New("polling timed out")

// Condition reports whether the awaited state has been reached. A non-nil
// error aborts polling and is returned unchanged.
type Condition func(ctx context.Context) (done bool, err error)

// Poller evaluates a Condition at a fixed interval until it succeeds, fails,
// or the overall timeout is reached.
type Poller interface {
	Until(ctx context.Context, cond Condition) error
}

type config struct {
	clock    clock.Clock
	interval time.Duration
	timeout  time.Duration
}

// Option configures a Poller.
type Option func(*config)

type poller struct {
	cfg config
}

var _ Poller = (*poller)(nil)

// New returns a Poller. Defaults: 2s interval, 60s overall timeout, wall clock.
func New(opts ...Option) Poller {
	cfg := config{
		clock:    clock.New(),
		interval: 2 * time.Second,
		timeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &poller{cfg: cfg}
}

// Until calls cond immediately and then once per interval. It returns nil as
// soon as cond reports done, cond's error if it fails, ctx.Err() if the
// context ends first, and ErrTimeout once the timeout has elapsed without
// success.
func (p *poller) Until(ctx context.Context, cond Condition) error {
	deadline := p.cfg.clock.Now().Add(p.cfg.timeout)

	for {
		done, err := cond(ctx)
		if err != nil {
			return err
		}

		if done {
			return nil
		}

		if !p.cfg.clock.Now().Before(deadline) {
			return ErrTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.cfg.clock.After(p.cfg.interval):
		}
	}
}

// WithClock sets the clock used to measure the interval and the timeout.
func WithClock(c clock.Clock) Option {
	return func(cfg *config) {
		cfg.clock = c
	}
}

// WithInterval sets the fixed delay between two evaluations.
func WithInterval(d time.Duration) Option {
	return func(cfg *config) {
		cfg.interval = d
	}
}

// WithTimeout sets the overall time budget.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}
