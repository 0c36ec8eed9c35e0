// Package retry runs an operation again with exponential backoff when it
// fails. It wraps Avast's retry-go behind a one-method interface configured
// with functional options.
//
//	r := retry.New(
//	    retry.WithAttempts(5),
//	    retry.WithDelay(time.Second),
//	    retry.WithMaxDelay(30*time.Second),
//	)
//	err := r.Execute(ctx, func() error { return sink.Publish(ctx, events) })
package retry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Retry executes an operation until it succeeds or the policy gives up.
type Retry interface {
	// Execute calls operation immediately, then after each backoff delay
	// while it keeps failing. It stops early when ctx ends or an error is
	// not accepted by the RetryIf predicate. operation must be idempotent.
	Execute(ctx context.Context, operation func() error) error
}

type config struct {
	attempts    uint
	delay       time.Duration
	maxDelay    time.Duration
	lastErrOnly bool
	retryIf     func(error) bool
	onRetry     func(attempt uint, err error)
	timer       Timer
}

// Timer schedules the backoff pauses. clock.Clock from benbjohnson/clock
// satisfies it, so a mock clock can drive the retries in tests.
type Timer interface {
	After(d time.Duration) <-chan time.Time
}

type Option func(*config)

type retrier struct {
	cfg config
}

var _ Retry = (*retrier)(nil)

// New returns a Retry. Defaults: 3 attempts, 1s base delay doubling up to 5s,
// only the last error returned, every error retried.
func New(opts ...Option) Retry {
	cfg := config{
		attempts:    3,
		delay:       time.Second,
		maxDelay:    5 * time.Second,
		lastErrOnly: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &retrier{cfg: cfg}
}

func (r *retrier) Execute(ctx context.Context, operation func() error) error {
	options := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(r.cfg.attempts),
		retry.Delay(r.cfg.delay),
		retry.MaxDelay(r.cfg.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(r.cfg.lastErrOnly),
	}
	if r.cfg.retryIf != nil {
		options = append(options, retry.RetryIf(r.cfg.retryIf))
	}
	if r.cfg.onRetry != nil {
		options = append(options, retry.OnRetry(r.cfg.onRetry))
	}
	if r.cfg.timer != nil {
		options = append(options, retry.WithTimer(r.cfg.timer))
	}

	return retry.Do(operation, options...)
}

// WithAttempts sets the total number of calls, the first one included.
func WithAttempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// WithDelay sets the delay before the first retry; it doubles afterwards.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithMaxDelay caps the backoff.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithLastErrorOnly selects between the last error (true) and the joined
// errors of every attempt (false).
func WithLastErrorOnly(b bool) Option {
	return func(c *config) {
		c.lastErrOnly = b
	}
}

// WithRetryIf restricts retries to errors accepted by f. Any other error is
// returned as is, e.g. an invalid registry payload that no retry can fix.
func WithRetryIf(f func(error) bool) Option {
	return func(c *config) {
		c.retryIf = f
	}
}

// WithOnRetry registers a callback run after each failed attempt that will
// be retried. attempt is zero based.
func WithOnRetry(f func(attempt uint, err error)) Option {
	return func(c *config) {
		c.onRetry = f
	}
}

// WithTimer waits the backoff delays on t instead of the wall clock.
func WithTimer(t Timer) Option {
	return func(c *config) {
		c.timer = t
	}
}
