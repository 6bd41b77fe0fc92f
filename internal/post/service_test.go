// ABOUTME: Tests for the posts action engine
// ABOUTME: Covers the typed error taxonomy, invariant checks, and the full CRUD scenario

package post

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsione/sangria-graphql-subscriptions/internal/store"
)

// setupService creates a Service over a temporary SQLite store.
func setupService(t *testing.T) *Service {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		st.Close()
	})

	return NewService(st, nil)
}

func TestService_CreateAssignsID(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, store.Post{Title: "hello", Content: "world"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "hello", created.Title)
	assert.Equal(t, "world", created.Content)

	found, err := svc.Find(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created, *found)
}

func TestService_CreateWithExistingIDFailsAlreadyExists(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, store.Post{Title: "first", Content: "a"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, store.Post{ID: created.ID, Title: "second", Content: "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// The losing create must leave no trace.
	all, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestService_CreateReclassifiesConstraintRace(t *testing.T) {
	// A concurrent create can slip between the pre-check and the insert; the
	// engine must turn the store's constraint error into ErrAlreadyExists.
	mock := store.NewMockStore()
	mock.InsertErr = store.ErrConstraint
	svc := NewService(mock, nil)

	_, err := svc.Create(context.Background(), store.Post{Title: "raced", Content: "r"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestService_CreateMissedReReadFailsAmbiguous(t *testing.T) {
	// vanishTx simulates a store where the just-inserted row is not visible
	// in the same transaction.
	mock := store.NewMockStore()
	svc := NewService(vanishingStore{mock}, nil)

	_, err := svc.Create(context.Background(), store.Post{Title: "ghost", Content: "g"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousResult)
}

func TestService_FindAbsentIsEmptyNotError(t *testing.T) {
	svc := setupService(t)

	found, err := svc.Find(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestService_FindDuplicateRowsFailsAmbiguous(t *testing.T) {
	mock := store.NewMockStore()
	mock.Seed(store.Post{ID: 1, Title: "a", Content: "x"})
	mock.Seed(store.Post{ID: 1, Title: "b", Content: "y"})
	svc := NewService(mock, nil)

	_, err := svc.Find(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousResult)
}

func TestService_FindAllEmptyStore(t *testing.T) {
	svc := setupService(t)

	all, err := svc.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_UpdateWithoutIDFailsWithoutStoreRoundTrip(t *testing.T) {
	mock := store.NewMockStore()
	svc := NewService(mock, nil)

	_, err := svc.Update(context.Background(), store.Post{Title: "no id", Content: "n"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, mock.TxCount, "update without id must not touch the store")
}

func TestService_UpdateNonexistentFailsNotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Update(context.Background(), store.Post{ID: 99, Title: "t", Content: "c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UpdateReturnsGivenValueAndPersists(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, store.Post{Title: "before", Content: "b"})
	require.NoError(t, err)

	want := store.Post{ID: created.ID, Title: "after", Content: "b"}
	updated, err := svc.Update(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, want, updated)

	found, err := svc.Find(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, want, *found)
}

func TestService_DeleteNonexistentFailsNotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Delete(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_DeleteReturnsPreDeletionRecord(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, store.Post{Title: "doomed", Content: "d"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, deleted)

	found, err := svc.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestService_DeleteDuplicateRowsFailsAmbiguous(t *testing.T) {
	mock := store.NewMockStore()
	mock.Seed(store.Post{ID: 5, Title: "a", Content: "x"})
	mock.Seed(store.Post{ID: 5, Title: "b", Content: "y"})
	svc := NewService(mock, nil)

	_, err := svc.Delete(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousResult)
}

func TestService_FatalStoreErrorPropagatesUnclassified(t *testing.T) {
	mock := store.NewMockStore()
	boom := errors.New("connection reset")
	mock.InsertErr = boom
	svc := NewService(mock, nil)

	_, err := svc.Create(context.Background(), store.Post{Title: "t", Content: "c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.NotErrorIs(t, err, ErrAmbiguousResult)
}

func TestService_FullScenario(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, store.Post{Title: "a", Content: "b"})
	require.NoError(t, err)
	assert.Equal(t, store.Post{ID: 1, Title: "a", Content: "b"}, created)

	all, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Post{{ID: 1, Title: "a", Content: "b"}}, all)

	updated, err := svc.Update(ctx, store.Post{ID: 1, Title: "c", Content: "b"})
	require.NoError(t, err)
	assert.Equal(t, store.Post{ID: 1, Title: "c", Content: "b"}, updated)

	deleted, err := svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, store.Post{ID: 1, Title: "c", Content: "b"}, deleted)

	found, err := svc.Find(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, found)
}

// vanishingStore wraps a Store so that PostsByID sees nothing after an
// insert, simulating a broken same-transaction visibility guarantee.
type vanishingStore struct {
	inner store.Store
}

func (v vanishingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return v.inner.WithTx(ctx, func(tx store.Tx) error {
		return fn(vanishingTx{tx})
	})
}

func (v vanishingStore) Close() error { return v.inner.Close() }

type vanishingTx struct {
	store.Tx
}

func (v vanishingTx) PostsByID(ctx context.Context, id int64) ([]store.Post, error) {
	return []store.Post{}, nil
}
