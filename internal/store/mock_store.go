// ABOUTME: In-memory mock implementation of the Store interface for testing
// ABOUTME: Permits seeding invariant-violating states that SQLite cannot represent

package store

import (
	"context"
	"fmt"
	"sync"
)

// MockStore is an in-memory Store for unit tests. Unlike SQLite it allows
// seeding rows that violate the id-uniqueness invariant, and it can be
// scripted to fail individual steps. Transactions snapshot the rows on entry
// and restore them on error, matching the rollback semantics of the real
// store.
type MockStore struct {
	mu     sync.Mutex
	rows   []Post
	nextID int64

	// TxCount is incremented on every WithTx call. Tests use it to prove an
	// operation made no store round trip.
	TxCount int

	// InsertErr, when set, is returned by the next InsertPost call.
	InsertErr error
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{nextID: 1}
}

// Seed appends a row directly, bypassing uniqueness checks. It is how tests
// construct corrupted states (e.g. two rows sharing an id).
func (m *MockStore) Seed(p Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, p)
	if p.ID >= m.nextID {
		m.nextID = p.ID + 1
	}
}

// WithTx runs fn against the in-memory rows, restoring the previous state if
// fn returns an error.
func (m *MockStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TxCount++

	snapshot := make([]Post, len(m.rows))
	copy(snapshot, m.rows)

	if err := fn(&mockTx{store: m}); err != nil {
		m.rows = snapshot
		return err
	}

	return nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}

// mockTx implements Tx over the MockStore's rows. The store mutex is already
// held for the duration of the transaction.
type mockTx struct {
	store *MockStore
}

func (t *mockTx) InsertPost(ctx context.Context, p Post) (int64, error) {
	m := t.store

	if m.InsertErr != nil {
		err := m.InsertErr
		m.InsertErr = nil
		return 0, err
	}

	if p.ID == 0 {
		p.ID = m.nextID
	} else {
		for _, row := range m.rows {
			if row.ID == p.ID {
				return 0, fmt.Errorf("%w: post id %d", ErrConstraint, p.ID)
			}
		}
	}
	if p.ID >= m.nextID {
		m.nextID = p.ID + 1
	}

	m.rows = append(m.rows, p)
	return p.ID, nil
}

func (t *mockTx) PostsByID(ctx context.Context, id int64) ([]Post, error) {
	matches := []Post{}
	for _, row := range t.store.rows {
		if row.ID == id {
			matches = append(matches, row)
		}
	}
	return matches, nil
}

func (t *mockTx) AllPosts(ctx context.Context) ([]Post, error) {
	all := make([]Post, len(t.store.rows))
	copy(all, t.store.rows)
	return all, nil
}

func (t *mockTx) UpdatePost(ctx context.Context, p Post) (int64, error) {
	var affected int64
	for i, row := range t.store.rows {
		if row.ID == p.ID {
			t.store.rows[i] = p
			affected++
		}
	}
	return affected, nil
}

func (t *mockTx) DeletePosts(ctx context.Context, id int64) (int64, error) {
	var kept []Post
	var deleted int64
	for _, row := range t.store.rows {
		if row.ID == id {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	t.store.rows = kept
	return deleted, nil
}
