// Package post provides the transactional action engine for the Post entity.
//
// # Overview
//
// Service exposes five operations — Create, Find, FindAll, Update, Delete —
// each executed as one atomic transaction via store.Store.WithTx. Multi-step
// operations (insert then re-read, find then delete) either complete fully
// or leave no trace.
//
// # Error Taxonomy
//
// Operations fail with exactly one of three sentinel errors, each wrapped
// with a descriptive message:
//
//   - ErrNotFound: an operation referenced an id that does not exist
//   - ErrAlreadyExists: a create was given an id that is already present
//   - ErrAmbiguousResult: a uniqueness invariant was found broken — more
//     than one row matched an id, or a post-write lookup missed the
//     just-written row
//
// Match with errors.Is:
//
//	if errors.Is(err, post.ErrNotFound) { ... }
//
// Any other failure (connectivity, driver errors) propagates unchanged as an
// unclassified fatal error. The engine never retries and never swallows a
// failure; ErrAmbiguousResult is additionally logged at error level because
// it signals data corruption rather than expected user error.
//
// # Races
//
// Create pre-checks a caller-populated id, but the pre-check is racy by
// nature: two concurrent creates can both pass it. The store's uniqueness
// constraint is the real guard, and the engine reclassifies its
// store.ErrConstraint as ErrAlreadyExists.
package post
