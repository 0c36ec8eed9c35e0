package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/registrywatch/internal/cursor"
	"github.com/gabapcia/registrywatch/internal/pkg/logger"
	"github.com/gabapcia/registrywatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/registrywatch/internal/pkg/x/chflow"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// State is the position of a loop in its fetch, process, idle cycle.
type State uint8

const (
	StateFetching State = iota
	StateProcessing
	StateIdle
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateProcessing:
		return "processing"
	case StateIdle:
		return "idle"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// errShutdown marks a cycle interrupted between two steps by a shutdown.
var errShutdown = errors.New("indexer shutting down")

// loop indexes a single network. It owns its cursor and shares nothing
// mutable with the loops of other networks.
type loop struct {
	network string
	cfg     NetworkConfig
	fetcher *Fetcher
	sink    Sink
	cursors CursorStorage

	clock     clock.Clock
	wake      chan struct{}
	failureCh chan<- CycleFailure
	tracer    trace.Tracer
	metrics   *metrics
	attrs     metric.MeasurementOption

	state  State
	cursor cursor.Cursor
}

// run drives the loop until ctx is canceled. The cursor must already be loaded.
func (l *loop) run(ctx context.Context) {
	ctx = logger.Derive(ctx, "indexer.network", l.network)
	logger.Info(ctx, "indexer loop started", "cursor.value", l.cursor.String())

	for ctx.Err() == nil {
		caughtUp, err := l.cycle(ctx)

		switch {
		case errors.Is(err, errShutdown):
			return
		case err != nil:
			if !l.sleep(ctx, l.cfg.Retry.MaxDelay, false) {
				return
			}
		case caughtUp:
			l.state = StateIdle
			if !l.sleep(ctx, l.cfg.PollInterval, true) {
				return
			}
		}
	}
}

// cycle runs one fetch, decode, publish and commit pass. caughtUp is true
// when the network had nothing new.
func (l *loop) cycle(ctx context.Context) (caughtUp bool, err error) {
	l.state = StateFetching
	if ctx.Err() != nil {
		return false, errShutdown
	}

	ctx, span := l.tracer.Start(ctx, "indexer.cycle", trace.WithAttributes(
		attribute.String("indexer.network", l.network),
		attribute.String("cursor.value", l.cursor.String()),
	))
	defer func() {
		if err != nil && !errors.Is(err, errShutdown) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var batch Batch
	err = l.attempt(ctx, StageFetch, func() error {
		// A listing may span many paginated calls, each bounded by the
		// adapter's transport; ListTimeout only bounds the whole walk.
		listCtx, cancel := l.detached(ctx, l.cfg.ListTimeout)
		defer cancel()

		var err error
		batch, err = l.fetcher.Next(listCtx, l.cursor)
		return err
	})
	if err != nil {
		return false, l.fail(ctx, StageFetch, err)
	}

	if batch.CaughtUp(l.cursor) {
		logger.Debug(ctx, "network caught up", "cursor.value", l.cursor.String())
		return true, nil
	}

	span.SetAttributes(
		attribute.Int("batch.size", len(batch.Items)),
		attribute.String("batch.next", batch.Next.String()),
	)

	l.state = StateProcessing
	events, err := l.decode(ctx, batch)
	if err != nil {
		return false, l.fail(ctx, StageDecode, err)
	}

	if ctx.Err() != nil {
		return false, errShutdown
	}

	if len(events) > 0 {
		err = l.attempt(ctx, StagePublish, func() error {
			publishCtx, cancel := l.detached(ctx, l.cfg.RPCTimeout)
			defer cancel()

			return l.sink.Publish(publishCtx, events)
		})
		if err != nil {
			return false, l.fail(ctx, StagePublish, err)
		}
	}

	// The batch is published: the commit runs even if a shutdown started.
	commitCtx, cancel := l.detached(ctx, l.cfg.RPCTimeout)
	defer cancel()

	if err := l.cursors.CommitCursor(commitCtx, l.network, batch.Next); err != nil {
		return false, l.fail(ctx, StageCommit, err)
	}

	l.metrics.batches.Add(ctx, 1, l.attrs)
	l.metrics.eventsPublished.Add(ctx, int64(len(events)), l.attrs)

	logger.Info(ctx, "batch indexed",
		"cursor.value", l.cursor.String(),
		"batch.next", batch.Next.String(),
		"batch.size", len(batch.Items),
		"batch.events", len(events),
	)

	l.cursor = batch.Next
	return false, nil
}

// decode turns every item of the batch into events. Items with a malformed
// registry payload are skipped. Any other error abandons the batch.
func (l *loop) decode(ctx context.Context, batch Batch) ([]registry.Event, error) {
	var events []registry.Event
	for i, item := range batch.Items {
		if i > 0 && ctx.Err() != nil {
			return nil, errShutdown
		}

		var decoded []registry.Event
		err := l.attempt(ctx, StageDecode, func() error {
			decodeCtx, cancel := l.detached(ctx, l.cfg.DecodeTimeout)
			defer cancel()

			var err error
			decoded, err = l.cfg.Decoder.Decode(decodeCtx, item)
			return err
		})

		switch {
		case errors.Is(err, registry.ErrInvalidPayload):
			l.metrics.itemsInvalid.Add(ctx, 1, l.attrs)
			logger.Warn(ctx, "skipping item with invalid registry payload",
				"item.ref", item.Ref,
				"item.ordinal", item.Ordinal,
				"error", err,
			)
			continue
		case err != nil:
			return nil, fmt.Errorf("decode %s: %w", item.Ref, err)
		}

		if len(decoded) == 0 {
			l.metrics.itemsSkipped.Add(ctx, 1, l.attrs)
			continue
		}

		events = append(events, decoded...)
	}

	return events, nil
}

// attempt runs op with the network's retry policy, pausing on the loop clock.
// Invalid payloads and cursors the adapter cannot resume from are never
// retried; neither is anything once ctx is canceled.
func (l *loop) attempt(ctx context.Context, stage Stage, op func() error) error {
	r := retry.New(
		retry.WithAttempts(l.cfg.Retry.Attempts),
		retry.WithDelay(l.cfg.Retry.BaseDelay),
		retry.WithMaxDelay(l.cfg.Retry.MaxDelay),
		retry.WithTimer(l.clock),
		retry.WithRetryIf(func(err error) bool {
			return ctx.Err() == nil &&
				!errors.Is(err, registry.ErrInvalidPayload) &&
				!errors.Is(err, cursor.ErrInvalidCursor)
		}),
		retry.WithOnRetry(func(attempt uint, err error) {
			logger.Warn(ctx, "retrying indexer step",
				"cycle.stage", stage,
				"retry.attempt", attempt+1,
				"error", err,
			)
		}),
	)

	return r.Execute(ctx, op)
}

// detached returns a context that outlives a shutdown signal so an in-flight
// call is never interrupted, bounded by timeout.
func (l *loop) detached(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// fail reports an abandoned cycle. Errors caused by a shutdown are not
// failures and are normalized to errShutdown.
func (l *loop) fail(ctx context.Context, stage Stage, err error) error {
	if ctx.Err() != nil || errors.Is(err, errShutdown) {
		return errShutdown
	}

	l.metrics.cycleFailures.Add(ctx, 1, l.attrs, metric.WithAttributes(attribute.String("cycle.stage", string(stage))))

	failure := CycleFailure{Network: l.network, Cursor: l.cursor, Stage: stage, Err: err}
	if ok := chflow.Send(ctx, l.failureCh, failure); !ok {
		return errShutdown
	}

	return err
}

// sleep waits d on the loop clock. When wakeable, a Wake call ends the wait
// early. It returns false if ctx ended first.
func (l *loop) sleep(ctx context.Context, d time.Duration, wakeable bool) bool {
	timer := l.clock.Timer(d)
	defer timer.Stop()

	var wake <-chan struct{}
	if wakeable {
		wake = l.wake
	}

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-wake:
		return true
	}
}
