// Package broker carries the pipeline topics. Messages are JSON payloads
// delivered at-least-once: a message is acknowledged only after its handler
// returns nil, otherwise it is left pending for redelivery.
package broker

import (
	"context"
	"sync"
)

const (
	TopicUserRequests = "user-requests"
	TopicEnrichment   = "intermediate-enrichment"
	TopicResults      = "results"
)

// Handler processes one message. A non-nil error leaves the message
// unacknowledged.
type Handler func(ctx context.Context, payload []byte) error

type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Consume pulls messages one at a time and processes them fully before
	// pulling the next. It blocks until ctx is cancelled.
	Consume(ctx context.Context, topic, group, consumer string, h Handler) error
}

// MemoryBus is an in-process Bus for dev mode and tests.
type MemoryBus struct {
	mu     sync.Mutex
	queues map[string]chan []byte // topic|group
	parked map[string][][]byte    // topic -> published before any group existed
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{queues: map[string]chan []byte{}, parked: map[string][][]byte{}}
}

func (b *MemoryBus) queue(topic, group string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := topic + "|" + group
	q, ok := b.queues[key]
	if !ok {
		q = make(chan []byte, 256)
		b.queues[key] = q
		// New groups start at the beginning of the topic, like a stream
		// group created at offset 0: they see messages published before
		// any consumer was around, whatever the group name.
		for _, p := range b.parked[topic] {
			select {
			case q <- p:
			default:
			}
		}
	}
	return q
}

func (b *MemoryBus) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	var targets []chan []byte
	for key, q := range b.queues {
		if len(key) > len(topic) && key[:len(topic)+1] == topic+"|" {
			targets = append(targets, q)
		}
	}
	if len(targets) == 0 {
		b.parked[topic] = append(b.parked[topic], payload)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()
	for _, q := range targets {
		select {
		case q <- payload:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *MemoryBus) Consume(ctx context.Context, topic, group, consumer string, h Handler) error {
	q := b.queue(topic, group)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload := <-q:
			if err := h(ctx, payload); err != nil {
				// Requeue for redelivery, matching the stream broker's
				// pending-entry behavior.
				select {
				case q <- payload:
				default:
				}
			}
		}
	}
}
