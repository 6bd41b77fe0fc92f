// ABOUTME: Tests for the in-memory mock store
// ABOUTME: Verifies rollback snapshots, seeding, and scripted failures

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_RollbackRestoresRows(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := m.WithTx(ctx, func(tx Tx) error {
		_, err := tx.InsertPost(ctx, Post{Title: "doomed", Content: "d"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = m.WithTx(ctx, func(tx Tx) error {
		all, err := tx.AllPosts(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
		return nil
	})
	require.NoError(t, err)
}

func TestMockStore_SeedBypassesUniqueness(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	m.Seed(Post{ID: 1, Title: "a", Content: "x"})
	m.Seed(Post{ID: 1, Title: "b", Content: "y"})

	err := m.WithTx(ctx, func(tx Tx) error {
		rows, err := tx.PostsByID(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		return nil
	})
	require.NoError(t, err)
}

func TestMockStore_InsertEnforcesUniqueness(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	m.Seed(Post{ID: 3, Title: "a", Content: "x"})

	err := m.WithTx(ctx, func(tx Tx) error {
		_, err := tx.InsertPost(ctx, Post{ID: 3, Title: "b", Content: "y"})
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestMockStore_GeneratedIDsContinueAfterSeed(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	m.Seed(Post{ID: 10, Title: "seeded", Content: "s"})

	err := m.WithTx(ctx, func(tx Tx) error {
		id, err := tx.InsertPost(ctx, Post{Title: "next", Content: "n"})
		require.NoError(t, err)
		assert.Equal(t, int64(11), id)
		return nil
	})
	require.NoError(t, err)
}

func TestMockStore_InsertErrFiresOnce(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	scripted := errors.New("scripted failure")
	m.InsertErr = scripted

	err := m.WithTx(ctx, func(tx Tx) error {
		_, err := tx.InsertPost(ctx, Post{Title: "t", Content: "c"})
		return err
	})
	require.ErrorIs(t, err, scripted)

	err = m.WithTx(ctx, func(tx Tx) error {
		_, err := tx.InsertPost(ctx, Post{Title: "t", Content: "c"})
		return err
	})
	require.NoError(t, err)
}
