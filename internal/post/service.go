// ABOUTME: Action engine composing transactional multi-step post operations
// ABOUTME: Each operation runs as one atomic transaction with invariant checks

package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsione/sangria-graphql-subscriptions/internal/store"
)

// Service is the action engine for posts. Every operation executes as a
// single transaction against the store: step failures short-circuit and roll
// back, so partial effects (e.g. an insert without a successful re-read) are
// never observable. Failures are one of ErrNotFound, ErrAlreadyExists,
// ErrAmbiguousResult, or an unclassified store error propagated unchanged.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService creates a Service over the given store. Pass nil logger for default.
func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		logger: logger.With("component", "post"),
	}
}

// Create inserts the post and returns it fully materialized with its
// store-assigned id. A caller-populated p.ID is honored; if that id already
// exists the operation fails with ErrAlreadyExists. The just-inserted row is
// re-read inside the same transaction; a missed re-read fails with
// ErrAmbiguousResult rather than being retried, since same-transaction
// visibility is guaranteed by the store and a miss means corruption.
func (s *Service) Create(ctx context.Context, p store.Post) (store.Post, error) {
	var created store.Post

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if p.ID != 0 {
			rows, err := tx.PostsByID(ctx, p.ID)
			if err != nil {
				return err
			}
			if len(rows) > 0 {
				return fmt.Errorf("%w: id %d", ErrAlreadyExists, p.ID)
			}
		}

		id, err := tx.InsertPost(ctx, p)
		if err != nil {
			// The pre-check above is inherently racy; a concurrent create
			// can win between check and insert. The store's uniqueness
			// constraint is the real guard.
			if errors.Is(err, store.ErrConstraint) {
				return fmt.Errorf("%w: id %d", ErrAlreadyExists, p.ID)
			}
			return err
		}

		rows, err := tx.PostsByID(ctx, id)
		if err != nil {
			return err
		}
		switch len(rows) {
		case 1:
			created = rows[0]
			return nil
		case 0:
			return fmt.Errorf("%w: post %d not visible after insert", ErrAmbiguousResult, id)
		default:
			return fmt.Errorf("%w: %d posts share id %d", ErrAmbiguousResult, len(rows), id)
		}
	})
	if err != nil {
		return store.Post{}, s.logged(err)
	}

	return created, nil
}

// Find returns the post with the given id, or nil if no such post exists —
// absence is an empty result here, not an error. More than one matching row
// fails with ErrAmbiguousResult.
func (s *Service) Find(ctx context.Context, id int64) (*store.Post, error) {
	var found *store.Post

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		found, err = findByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, s.logged(err)
	}

	return found, nil
}

// FindAll returns every post ordered by id. An empty store yields an empty
// slice.
func (s *Service) FindAll(ctx context.Context) ([]store.Post, error) {
	var all []store.Post

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		all, err = tx.AllPosts(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

// Update applies the post's title and content filtered by its id and returns
// the post as given — the caller-supplied value is authoritative on success,
// no re-read happens. A zero p.ID fails with ErrNotFound before any store
// round trip; a zero modified-row count fails with ErrNotFound.
func (s *Service) Update(ctx context.Context, p store.Post) (store.Post, error) {
	if p.ID == 0 {
		return store.Post{}, fmt.Errorf("%w: post has no id", ErrNotFound)
	}

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		affected, err := tx.UpdatePost(ctx, p)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: id %d", ErrNotFound, p.ID)
		}
		return nil
	})
	if err != nil {
		return store.Post{}, s.logged(err)
	}

	return p, nil
}

// Delete removes the post with the given id and returns the pre-deletion
// record. A missing id fails with ErrNotFound. The lookup reuses Find's
// uniqueness check, so ErrAmbiguousResult can surface here too; a deleted-row
// count other than exactly one also fails with ErrAmbiguousResult.
func (s *Service) Delete(ctx context.Context, id int64) (store.Post, error) {
	var deleted store.Post

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		found, err := findByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}

		affected, err := tx.DeletePosts(ctx, id)
		if err != nil {
			return err
		}
		// Existence was confirmed above in the same transaction, so zero is
		// as impossible as two; either way the invariant is broken.
		if affected != 1 {
			return fmt.Errorf("%w: deleting id %d removed %d rows", ErrAmbiguousResult, id, affected)
		}

		deleted = *found
		return nil
	})
	if err != nil {
		return store.Post{}, s.logged(err)
	}

	return deleted, nil
}

// findByID looks up the rows matching id inside an open transaction and
// enforces the one-row-per-id invariant. Zero rows is a nil result, not an
// error.
func findByID(ctx context.Context, tx store.Tx, id int64) (*store.Post, error) {
	rows, err := tx.PostsByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	default:
		return nil, fmt.Errorf("%w: %d posts share id %d", ErrAmbiguousResult, len(rows), id)
	}
}

// logged reports broken-invariant failures before returning them unchanged.
// ErrAmbiguousResult indicates corruption rather than expected user error.
func (s *Service) logged(err error) error {
	if errors.Is(err, ErrAmbiguousResult) {
		s.logger.Error("uniqueness invariant violated", "error", err)
	}
	return err
}
