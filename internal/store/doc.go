// Package store provides persistent storage for posts using SQLite.
//
// # Architecture
//
// The package separates the transactional surface from its implementations:
//
//   - Store: opens transactions via WithTx and owns the connection lifecycle
//   - Tx: the composable read/write steps available inside one transaction
//
// SQLiteStore implements Store for production use. MockStore implements it
// in memory for unit tests and, unlike SQLite, can be seeded with states
// that violate the id-uniqueness invariant — which is exactly what tests of
// the invariant checks need.
//
// # Transactions
//
// Multi-step operations (insert then re-read, find then delete) run inside
// a single WithTx call. The transaction commits when the callback returns
// nil and rolls back otherwise, so a failed step never leaves partial
// effects visible:
//
//	err := s.WithTx(ctx, func(tx store.Tx) error {
//		id, err := tx.InsertPost(ctx, p)
//		if err != nil {
//			return err
//		}
//		rows, err := tx.PostsByID(ctx, id)
//		...
//	})
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Post ids are assigned by SQLite (INTEGER PRIMARY KEY); id-collision races
// between concurrent inserts are resolved by the primary-key constraint and
// surfaced as ErrConstraint.
//
// # Testing
//
// Use NewMockStore() for unit tests and NewSQLiteStore(":memory:") or a
// t.TempDir() path for integration tests with real SQLite.
package store
