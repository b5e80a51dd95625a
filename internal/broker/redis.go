package broker

import (
	"context"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"roadtrip/internal/metrics"
)

// RedisBus implements Bus over Redis Streams with consumer groups. Each
// service instance in a group receives disjoint messages; unacknowledged
// entries stay in the pending list and are drained on restart.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(url string) (*RedisBus, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBus{rdb: redis.NewClient(opt)}, nil
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{"payload": payload},
	}).Err()
}

func (b *RedisBus) ensureGroup(ctx context.Context, topic, group string) error {
	err := b.rdb.XGroupCreateMkStream(ctx, topic, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (b *RedisBus) Consume(ctx context.Context, topic, group, consumer string, h Handler) error {
	if err := b.ensureGroup(ctx, topic, group); err != nil {
		return err
	}
	// First pass re-reads this consumer's pending entries (crashed mid-message),
	// then switches to new deliveries.
	cursor := "0"
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := b.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{topic, cursor},
			Count:    1,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				cursor = ">"
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			time.Sleep(time.Second)
			continue
		}
		empty := true
		for _, stream := range res {
			for _, msg := range stream.Messages {
				empty = false
				payload, _ := msg.Values["payload"].(string)
				if err := h(ctx, []byte(payload)); err != nil {
					metrics.MessagesConsumed.WithLabelValues(topic, "error").Inc()
					continue // not acked; stays pending
				}
				metrics.MessagesConsumed.WithLabelValues(topic, "ok").Inc()
				_ = b.rdb.XAck(ctx, topic, group, msg.ID).Err()
				if cursor != ">" {
					cursor = msg.ID
				}
			}
		}
		if empty && cursor != ">" {
			cursor = ">"
		}
	}
}
