// ABOUTME: Store interface and Post entity for posts persistence
// ABOUTME: Defines the transactional surface the action engine composes steps against

package store

import (
	"context"
	"errors"
)

// ErrConstraint is returned (wrapped) when a write violates a uniqueness
// constraint. Callers reclassify it with errors.Is.
var ErrConstraint = errors.New("unique constraint violation")

// Post is the single domain entity. ID is zero before persistence; the store
// assigns it exactly once on insert and it is immutable thereafter. Two posts
// are the same record iff their IDs are equal and non-zero.
type Post struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Store is the transactional surface for posts persistence.
type Store interface {
	// WithTx runs fn inside a single transaction. The transaction commits
	// when fn returns nil and rolls back otherwise, so partial effects of a
	// multi-step operation are never observable outside fn.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// Tx is the set of composable read/write steps available inside one
// transaction. Every method is a suspension point; invariant checks between
// steps are the caller's responsibility.
type Tx interface {
	// InsertPost inserts the post and returns its id. A zero p.ID lets the
	// store generate the key; a non-zero p.ID is inserted as given. A
	// uniqueness violation is reported via ErrConstraint.
	InsertPost(ctx context.Context, p Post) (int64, error)

	// PostsByID returns every row matching the id. Callers that expect at
	// most one row must check the length themselves.
	PostsByID(ctx context.Context, id int64) ([]Post, error)

	// AllPosts returns every row ordered by id.
	AllPosts(ctx context.Context) ([]Post, error)

	// UpdatePost applies title/content filtered by p.ID and returns the
	// number of rows modified.
	UpdatePost(ctx context.Context, p Post) (int64, error)

	// DeletePosts removes rows filtered by id and returns the number of rows
	// deleted.
	DeletePosts(ctx context.Context, id int64) (int64, error)
}
