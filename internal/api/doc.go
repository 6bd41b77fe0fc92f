// Package api exposes posts over HTTP and bridges mutations into the broker.
//
// # Endpoints
//
//   - POST   /api/posts        create a post (201; 409 if the id exists)
//   - GET    /api/posts        list all posts
//   - GET    /api/posts/{id}   fetch one post (404 if absent)
//   - PUT    /api/posts/{id}   update a post (404 if absent)
//   - DELETE /api/posts/{id}   delete a post, returning the deleted record
//   - GET    /api/events       SSE stream of mutation envelopes
//
// # Mutation Bridge
//
// After every successful mutation the handler publishes an envelope on the
// matching topic — post.created, post.updated, or post.deleted. Query
// handlers never touch the broker.
//
// # Event Stream
//
// GET /api/events?topics=post.created,post.deleted streams matching
// envelopes as Server-Sent Events (one "post" event per envelope) after an
// initial "subscribed" event. An empty topics parameter subscribes to all
// three mutation topics. The stream ends when the client disconnects or the
// broker shuts down.
//
// # Error Mapping
//
// Engine failures map to domain-appropriate statuses: ErrNotFound to 404,
// ErrAlreadyExists to 409, and ErrAmbiguousResult to 500 — the latter is
// also logged as a data integrity violation, since it signals corruption
// rather than user error.
package api
