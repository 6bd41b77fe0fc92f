// Package pubsub provides in-memory fan-out of post mutation events.
//
// # Overview
//
// The Broker accepts published Envelopes and delivers each to every live
// subscriber whose topic set contains the envelope's topic. Topics are
// opaque strings matched by equality; the broker imposes no naming scheme
// and does not assume publishers are subscribers.
//
// # Subscriptions
//
// A subscription moves through three states: created by Subscribe (live
// immediately), delivering while live, and closed — terminal — by
// Unsubscribe, context cancellation, or Close. A closed subscription's
// channel is closed, which consumers observe as a normal end of the event
// sequence:
//
//	ch, id := broker.Subscribe(ctx, "post.created", "post.deleted")
//	for env := range ch {
//		// env.Post changed
//	}
//	// channel closed: subscription ended
//
// Events published before a subscription exists, or after it closes, are
// never delivered to it. The broker is not a durable log.
//
// # Delivery Guarantees
//
// Per-subscriber buffers are bounded. Delivery is non-blocking for the
// publisher: when a subscriber's buffer is full, the oldest queued envelope
// is evicted (drop-oldest) and a warning is logged, so slow consumers skip
// ahead rather than stalling everyone else. Envelopes on one topic arrive in
// publish order for a single publisher; no order is defined across topics
// or across concurrent publishers.
package pubsub
