// ABOUTME: Event envelope distributed by the broker
// ABOUTME: Immutable topic/payload pair representing one mutation event

package pubsub

import "github.com/tsione/sangria-graphql-subscriptions/internal/store"

// Envelope pairs a routing topic with the post it concerns. Envelopes are
// passed by value and never mutated by the broker; the topic is an opaque
// string chosen by the publisher.
type Envelope struct {
	Topic string     `json:"topic"`
	Post  store.Post `json:"post"`
}
