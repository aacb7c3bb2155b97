// internal/app/system/notify/redis.go
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "learnhub.courses"

// RedisNotifier publishes events as JSON on a Redis pub/sub channel for
// mailers and dashboards to consume.
type RedisNotifier struct {
	rdb     goredis.UniversalClient
	channel string
	log     *zap.Logger
}

// NewRedisNotifier connects to addr and verifies the connection with a ping.
func NewRedisNotifier(ctx context.Context, addr, channel string, logger *zap.Logger) (*RedisNotifier, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisNotifierWithClient(rdb, channel, logger), nil
}

// NewRedisNotifierWithClient wraps an existing client.
func NewRedisNotifierWithClient(rdb goredis.UniversalClient, channel string, logger *zap.Logger) *RedisNotifier {
	if strings.TrimSpace(channel) == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{
		rdb:     rdb,
		channel: channel,
		log:     logger.With(zap.String("notifier", "redis"), zap.String("channel", channel)),
	}
}

func (n *RedisNotifier) publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, n.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", e.Kind, err)
	}
	n.log.Debug("published course notification", zap.String("kind", e.Kind), zap.String("course_id", e.CourseID))
	return nil
}

// CourseReviewRequested implements Notifier.
func (n *RedisNotifier) CourseReviewRequested(ctx context.Context, c models.Course) error {
	return n.publish(ctx, NewEvent(KindReviewRequested, c))
}

// CourseApprovalChanged implements Notifier.
func (n *RedisNotifier) CourseApprovalChanged(ctx context.Context, c models.Course) error {
	return n.publish(ctx, NewEvent(KindApprovalChanged, c))
}

// Subscribe delivers events from the channel to fn until ctx is done. It is
// used by learnhubctl's watch command.
func (n *RedisNotifier) Subscribe(ctx context.Context, fn func(Event)) error {
	sub := n.rdb.Subscribe(ctx, n.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok || m == nil {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
				n.log.Warn("bad notification payload", zap.Error(err))
				continue
			}
			fn(e)
		}
	}
}

// Close releases the Redis connection.
func (n *RedisNotifier) Close() error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Close()
}

// Ping checks the Redis connection. The health endpoint uses it.
func (n *RedisNotifier) Ping(ctx context.Context) error {
	return n.rdb.Ping(ctx).Err()
}
