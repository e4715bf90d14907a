package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const DefaultChannelPrefix = "notifications_"

type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return c, nil
}

var _ Registry = (*RedisBus)(nil)

// RedisBus spreads Publish across processes over Redis pub/sub. Handles are
// still joined locally; every process pattern-subscribes to the user channels
// and feeds what it receives into its own Hub.
type RedisBus struct {
	client *redis.Client
	local  *Hub
	prefix string
	log    *zap.Logger

	mu   sync.Mutex
	ps   *redis.PubSub
	done chan struct{}
}

func NewRedisBus(client *redis.Client, prefix string, log *zap.Logger) *RedisBus {
	if log == nil {
		log = zap.NewNop()
	}
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisBus{
		client: client,
		local:  NewHub(log),
		prefix: prefix,
		log:    log.With(zap.String("component", "registry.redis"), zap.String("prefix", prefix)),
	}
}

func (b *RedisBus) Join(userID int64, h Handle)  { b.local.Join(userID, h) }
func (b *RedisBus) Leave(userID int64, h Handle) { b.local.Leave(userID, h) }
func (b *RedisBus) Subscribers(userID int64) int { return b.local.Subscribers(userID) }

func (b *RedisBus) Publish(ctx context.Context, userID int64, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		b.log.Error("marshal message", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, b.channel(userID), payload).Err(); err != nil {
		mBusPublishErrors.Inc()
		b.log.Warn("bus publish failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (b *RedisBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ps != nil {
		return nil
	}

	ps := b.client.PSubscribe(ctx, b.prefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	b.ps = ps
	b.done = make(chan struct{})
	go b.loop(ps.Channel(), b.done)

	b.log.Info("bus subscribed")
	return nil
}

func (b *RedisBus) loop(ch <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	for m := range ch {
		uid, ok := b.userFromChannel(m.Channel)
		if !ok {
			b.log.Warn("unexpected channel", zap.String("channel", m.Channel))
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
			b.log.Warn("bad bus payload", zap.String("channel", m.Channel), zap.Error(err))
			continue
		}
		b.local.Publish(context.Background(), uid, msg)
	}
}

func (b *RedisBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	ps, done := b.ps, b.done
	b.ps, b.done = nil, nil
	b.mu.Unlock()

	if ps != nil {
		if err := ps.Close(); err != nil {
			b.log.Warn("pubsub close", zap.Error(err))
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return b.local.Stop(ctx)
}

func (b *RedisBus) channel(userID int64) string {
	return b.prefix + strconv.FormatInt(userID, 10)
}

func (b *RedisBus) userFromChannel(ch string) (int64, bool) {
	rest, ok := strings.CutPrefix(ch, b.prefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
