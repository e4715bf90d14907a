package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Handler func(ctx context.Context, key, value []byte) error

// JSONHandler decodes each value into a fresh M before calling handle.
// Undecodable values are reported as errors.
func JSONHandler[M any](handle func(context.Context, []byte, *M) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		msg := new(M)
		if err := json.Unmarshal(value, msg); err != nil {
			return fmt.Errorf("%w: %v", ErrUndecodable, err)
		}
		return handle(ctx, key, msg)
	}
}

// ErrUndecodable marks poison messages; the consumer commits past them.
var ErrUndecodable = errors.New("undecodable message")

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
	cfg    *ConsumerConfig

	retryBase time.Duration
}

type ConsumerConfig struct {
	Brokers       []string
	GroupID       string
	Topic         string
	FromBeginning bool
	Logger        *zap.Logger
}

func NewConsumer(cfg *ConsumerConfig) *Consumer {
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}

	start := kafka.LastOffset
	if cfg.FromBeginning {
		start = kafka.FirstOffset
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:               cfg.Brokers,
		GroupID:               cfg.GroupID,
		Topic:                 cfg.Topic,
		StartOffset:           start,
		WatchPartitionChanges: true,

		MinBytes:          1,
		MaxBytes:          10e6,
		MaxWait:           500 * time.Millisecond,
		SessionTimeout:    10 * time.Second,
		RebalanceTimeout:  15 * time.Second,
		HeartbeatInterval: 3 * time.Second,
	})

	log := cfg.Logger.With(
		zap.String("component", "kafka.consumer"),
		zap.String("topic", cfg.Topic),
		zap.String("group", cfg.GroupID),
	)

	return &Consumer{reader: r, log: log, cfg: cfg}
}

func (c *Consumer) WithLogger(l *zap.Logger) *Consumer {
	if l == nil {
		return c
	}
	cp := *c
	cp.log = l.With(
		zap.String("component", "kafka.consumer"),
		zap.String("topic", c.cfg.Topic),
		zap.String("group", c.cfg.GroupID),
	)
	return &cp
}

// Consume blocks until ctx is canceled. A message is committed only when h
// succeeds or reports ErrUndecodable; other handler errors are retried on the
// same message, so later offsets are never committed past a failed one.
func (c *Consumer) Consume(ctx context.Context, h Handler) error {
	log := c.log
	log.Info("consumer started")

	tr := otel.Tracer("kafka.consumer")
	prop := otel.GetTextMapPropagator()

	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info("consumer stopped (ctx canceled)")
			return ctx.Err()
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped (ctx canceled)")
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				log.Debug("fetch EOF; retry", zap.Duration("backoff", backoff))
			} else {
				log.Warn("fetch failed; retry", zap.Error(err), zap.Duration("backoff", backoff))
			}
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		backoff = 200 * time.Millisecond

		parent := prop.Extract(ctx, mapCarrierFromKafka(msg.Headers))
		msgCtx, span := tr.Start(parent, "kafka.consume "+msg.Topic,
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				semconv.MessagingSystemKafka,
				semconv.MessagingDestinationName(msg.Topic),
				attribute.Int("messaging.kafka.partition", msg.Partition),
				attribute.Int64("messaging.kafka.offset", msg.Offset),
			),
		)

		err = c.handle(msgCtx, h, msg)
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		if err != nil {
			if !errors.Is(err, ErrUndecodable) {
				// Left uncommitted; the group resumes here after a restart.
				log.Info("consumer stopped (ctx canceled)", zap.Int64("pending_offset", msg.Offset))
				return ctx.Err()
			}
			log.Warn("dropping undecodable message", zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				log.Info("commit interrupted by context cancel")
				return ctx.Err()
			}
			log.Warn("commit failed; will retry later", zap.Error(err))
		}
	}
}

// handle calls h until it succeeds, reports ErrUndecodable or ctx ends.
func (c *Consumer) handle(ctx context.Context, h Handler, msg kafka.Message) error {
	backoff := c.retryBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	const maxBackoff = 10 * time.Second

	for attempt := 1; ; attempt++ {
		err := h(ctx, msg.Key, msg.Value)
		if err == nil || errors.Is(err, ErrUndecodable) {
			return err
		}
		c.log.Error("handler error; retrying",
			zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(err))
		if !sleepCtx(ctx, backoff) {
			return fmt.Errorf("%w (last: %v)", ctx.Err(), err)
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *Consumer) Close() error { return c.reader.Close() }

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
