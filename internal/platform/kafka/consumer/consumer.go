// Package consumer runs Kafka consumer-group loops with at-least-once semantics:
// a record's offset is committed only after its handler returned nil.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"isdialogmelding/internal/platform/metrics"
	"isdialogmelding/pkg/requestcontext"
)

const defaultRetryBackoff = 5 * time.Second

// HeaderCallID carries the producer's correlation id, when it sends one.
const HeaderCallID = "Nav-Call-Id"

// Message is a transport-independent view of one Kafka record.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes one message. Returning nil commits the offset; returning an
// error leaves it uncommitted and the message is retried.
// Handlers must return nil for payloads that can never succeed (malformed input).
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Client is the subset of *kgo.Client used by the consumer loop.
type Client interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	Close()
}

// Config describes one consumer group subscription.
type Config struct {
	Brokers      []string
	GroupID      string
	Topics       []string
	RetryBackoff time.Duration
}

// Consumer polls records and dispatches them to a Handler one at a time.
type Consumer struct {
	client       Client
	handler      Handler
	logger       *slog.Logger
	metrics      *metrics.Metrics
	retryBackoff time.Duration
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithMetrics records handled and retried messages.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Consumer) {
		c.metrics = m
	}
}

// WithRetryBackoff sets the pause between handler retries.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.retryBackoff = d
		}
	}
}

// New connects a franz-go consumer group client for cfg.
func New(cfg Config, handler Handler, logger *slog.Logger, opts ...Option) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New("at least one topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.FetchMaxWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	opts = append([]Option{WithRetryBackoff(cfg.RetryBackoff)}, opts...)
	return NewWithClient(client, handler, logger, opts...), nil
}

// NewWithClient builds a Consumer around an existing client.
func NewWithClient(client Client, handler Handler, logger *slog.Logger, opts ...Option) *Consumer {
	c := &Consumer{
		client:       client,
		handler:      handler,
		logger:       logger,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.WarnContext(ctx, "kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		iter := fetches.RecordIter()
		for !iter.Done() {
			rec := iter.Next()
			if err := c.handleWithRetry(ctx, rec); err != nil {
				// only cancellation stops retries
				return nil
			}
			if err := c.client.CommitRecords(ctx, rec); err != nil {
				c.logger.WarnContext(ctx, "kafka commit failed, record may be redelivered",
					"topic", rec.Topic,
					"partition", rec.Partition,
					"offset", rec.Offset,
					"error", err,
				)
				continue
			}
			c.metrics.IncrementKafkaMessage(rec.Topic, "committed")
		}
	}
}

// Close leaves the group and closes the client.
func (c *Consumer) Close() {
	c.client.Close()
}

func (c *Consumer) handleWithRetry(ctx context.Context, rec *kgo.Record) error {
	msg := toMessage(rec)
	for {
		err := c.handler.Handle(ctx, msg)
		if err == nil {
			return nil
		}
		c.metrics.IncrementKafkaMessage(rec.Topic, "retried")
		c.logger.ErrorContext(ctx, "failed to handle kafka record, retrying",
			"topic", rec.Topic,
			"partition", rec.Partition,
			"offset", rec.Offset,
			"error", err,
		)

		timer := time.NewTimer(c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// WithMessageContext gives a handler one call id and one clock reading per record.
func WithMessageContext(ctx context.Context, msg *Message) context.Context {
	callID := msg.Headers[HeaderCallID]
	if callID == "" {
		callID = uuid.NewString()
	}
	ctx = requestcontext.WithCallID(ctx, callID)
	return requestcontext.WithTime(ctx, time.Now())
}

func toMessage(rec *kgo.Record) *Message {
	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       rec.Key,
		Value:     rec.Value,
		Headers:   headers,
		Timestamp: rec.Timestamp,
	}
}
