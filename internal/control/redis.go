package control

import (
	"context"
	"fmt"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/lemonbar/manager/internal/bar"
	"github.com/lemonbar/manager/pkg/config"
)

// ProvideRedisClient builds a redis client from typed config.
// Returns nil when redis is disabled.
func ProvideRedisClient(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// EventBridge forwards event names published on a redis channel into the
// scheduler's injection source, so remote processes can "click" the bar.
type EventBridge struct {
	rdb     *redis.Client
	channel string
	events  *bar.Source
	logger  *zap.Logger
}

func NewEventBridge(rdb *redis.Client, channel string, events *bar.Source, logger *zap.Logger) *EventBridge {
	return &EventBridge{rdb: rdb, channel: channel, events: events, logger: logger}
}

// Run consumes messages until ctx is cancelled. A nil client makes it a
// no-op, mirroring the disabled-redis fallback.
func (b *EventBridge) Run(ctx context.Context) error {
	if b.rdb == nil {
		return nil
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	b.logger.Info("redis event bridge subscribed", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if !b.events.Push(msg.Payload) {
				b.logger.Warn("dropping redis event, backlog full",
					zap.String("event", msg.Payload))
			}
		}
	}
}
