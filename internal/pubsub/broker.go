// ABOUTME: In-memory fan-out broker routing mutation envelopes to subscribers
// ABOUTME: Topic-filtered pub/sub with bounded per-subscriber buffers

package pubsub

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const (
	// defaultBufferSize is the channel buffer for each subscriber when the
	// broker is constructed with a non-positive size.
	defaultBufferSize = 64
)

// subscription is owned exclusively by the broker for its lifetime; clients
// hold only the receive side of ch.
type subscription struct {
	id     string
	topics []string
	ch     chan Envelope
}

// Broker provides in-memory pub/sub for post mutation envelopes. Subscribers
// register for a set of topics and receive every matching envelope published
// while they are live. Envelopes published with no matching subscriber are
// dropped, not buffered — the broker is not a durable log.
//
// Each subscriber has a bounded buffer. When it is full the oldest queued
// envelope is evicted to make room for the new one (drop-oldest), so a slow
// subscriber never blocks the publisher or delivery to other subscribers.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[string]*subscription // topic -> subID -> sub
	subs   map[string]*subscription            // subID -> sub
	closed bool

	bufferSize int
	logger     *slog.Logger
}

// NewBroker creates a broker. A non-positive bufferSize selects the default
// of 64. Pass nil logger for default.
func NewBroker(bufferSize int, logger *slog.Logger) *Broker {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		topics:     make(map[string]map[string]*subscription),
		subs:       make(map[string]*subscription),
		bufferSize: bufferSize,
		logger:     logger.With("component", "broker"),
	}
}

// Subscribe registers a subscriber for envelopes on the given topics.
// Returns a channel that receives matching envelopes and a subscription ID
// for later unsubscription. The channel is closed — a normal end of the
// sequence, not an error — when the subscription ends. The subscription is
// automatically cleaned up when ctx is cancelled.
//
// Subscribing on a closed broker returns an already-closed channel.
func (b *Broker) Subscribe(ctx context.Context, topics ...string) (<-chan Envelope, string) {
	sub := &subscription{
		id:     uuid.New().String(),
		topics: topics,
		ch:     make(chan Envelope, b.bufferSize),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch, sub.id
	}
	b.subs[sub.id] = sub
	for _, topic := range topics {
		if _, ok := b.topics[topic]; !ok {
			b.topics[topic] = make(map[string]*subscription)
		}
		b.topics[topic][sub.id] = sub
	}
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", sub.id, "topics", topics)

	// Auto-cleanup on context cancellation
	go func() {
		<-ctx.Done()
		b.Unsubscribe(sub.id)
	}()

	return sub.ch, sub.id
}

// Publish delivers an envelope for the post on the given topic to every live
// subscriber whose topic set contains it. Delivery is non-blocking: a full
// subscriber buffer has its oldest envelope dropped to make room. Publishing
// with zero matching subscribers is a no-op.
//
// Sends happen under the registry read lock. Unsubscribe closes channels
// under the write lock, so a channel is never closed while a send to it is
// in flight.
func (b *Broker) Publish(topic string, env Envelope) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs, ok := b.topics[topic]
	if !ok || len(subs) == 0 {
		return
	}

	for _, sub := range subs {
		select {
		case sub.ch <- env:
		default:
			// Buffer full: evict the oldest queued envelope, then retry.
			// The second send can still miss if a consumer drained the
			// buffer concurrently, in which case there is room now anyway.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- env:
			default:
			}
			b.logger.Warn("dropped oldest event for slow subscriber",
				"sub_id", sub.id,
				"topic", topic)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel. It is
// idempotent: unknown or already-removed IDs are ignored.
func (b *Broker) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[subID]
	if !ok {
		return
	}

	delete(b.subs, subID)
	for _, topic := range sub.topics {
		if topicSubs, ok := b.topics[topic]; ok {
			delete(topicSubs, subID)
			if len(topicSubs) == 0 {
				delete(b.topics, topic)
			}
		}
	}
	close(sub.ch)

	b.logger.Debug("subscriber removed", "sub_id", subID)
}

// Close shuts down the broker and closes every subscriber channel. Publish
// and Subscribe on a closed broker are safe no-ops.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for subID, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, subID)
	}
	b.topics = make(map[string]map[string]*subscription)

	b.logger.Debug("broker closed")
}
