// Package nats publishes registry events to a NATS JetStream stream. Each
// event goes to "<prefix>.<network>.<kind>" with its id as the JetStream
// message id, so events republished after a crash are dropped by the
// stream's duplicate window.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gabapcia/registrywatch/internal/indexer"
	"github.com/gabapcia/registrywatch/internal/pkg/logger"
	"github.com/gabapcia/registrywatch/internal/registry"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const defaultDuplicateWindow = time.Hour

// publisher is the part of jetstream.JetStream the sink needs.
type publisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type sink struct {
	js     publisher
	prefix string
	close  func()
}

var _ indexer.Sink = (*sink)(nil)

type config struct {
	duplicateWindow time.Duration
	maxAge          time.Duration
	options         []nats.Option
}

type Option func(*config)

// WithDuplicateWindow sets how long the stream remembers message ids.
func WithDuplicateWindow(d time.Duration) Option {
	return func(c *config) {
		c.duplicateWindow = d
	}
}

// WithMaxAge sets how long the stream keeps events. Zero keeps them forever.
func WithMaxAge(d time.Duration) Option {
	return func(c *config) {
		c.maxAge = d
	}
}

// WithConnOptions adds NATS connection options, e.g. credentials or TLS.
func WithConnOptions(opts ...nats.Option) Option {
	return func(c *config) {
		c.options = append(c.options, opts...)
	}
}

// NewSink connects to url and creates or updates the stream capturing every
// subject under prefix.
func NewSink(ctx context.Context, url, stream, prefix string, opts ...Option) (*sink, error) {
	cfg := config{duplicateWindow: defaultDuplicateWindow}
	for _, opt := range opts {
		opt(&cfg)
	}

	connOpts := append([]nats.Option{
		nats.Name("registrywatch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn(ctx, "disconnected from nats", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info(ctx, "reconnected to nats", "nats.url", nc.ConnectedUrl())
		}),
	}, cfg.options...)

	nc, err := nats.Connect(url, connOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        stream,
		Description: "Registry events indexed by registrywatch",
		Subjects:    []string{prefix + ".>"},
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.LimitsPolicy,
		Duplicates:  cfg.duplicateWindow,
		MaxAge:      cfg.maxAge,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create stream %s: %w", stream, err)
	}

	logger.Info(ctx, "nats sink ready", "nats.stream", stream, "nats.subjects", prefix+".>")

	return &sink{js: js, prefix: prefix, close: func() { _ = nc.Drain() }}, nil
}

// Subject returns the subject ev is published to.
func (s *sink) Subject(ev registry.Event) string {
	return fmt.Sprintf("%s.%s.%s", s.prefix, ev.Network, ev.Kind)
}

// Publish implements indexer.Sink. Events are published one at a time, in
// order, each waiting for the stream acknowledgement.
func (s *sink) Publish(ctx context.Context, events []registry.Event) error {
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode event %s: %w", ev.ID(), err)
		}

		msg := &nats.Msg{
			Subject: s.Subject(ev),
			Data:    data,
			Header:  nats.Header{},
		}
		msg.Header.Set(nats.MsgIdHdr, ev.ID())

		ack, err := s.js.PublishMsg(ctx, msg)
		if err != nil {
			return fmt.Errorf("publish event %s: %w", ev.ID(), err)
		}

		if ack != nil && ack.Duplicate {
			logger.Debug(ctx, "event already in stream", "event.id", ev.ID(), "nats.sequence", ack.Sequence)
		}
	}

	return nil
}

func (s *sink) Close() {
	if s.close != nil {
		s.close()
	}
}
