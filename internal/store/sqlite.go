// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides posts persistence with automatic schema creation and transactions

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists (skip for :memory: databases)
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS posts (
			id      INTEGER PRIMARY KEY,
			title   TEXT NOT NULL,
			content TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a single SQLite transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&sqliteTx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			s.logger.Error("transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// sqliteTx implements Tx over a live *sql.Tx
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) InsertPost(ctx context.Context, p Post) (int64, error) {
	if p.ID != 0 {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO posts (id, title, content) VALUES (?, ?, ?)`,
			p.ID, p.Title, p.Content,
		)
		if err != nil {
			if isConstraintViolation(err) {
				return 0, fmt.Errorf("%w: post id %d", ErrConstraint, p.ID)
			}
			return 0, fmt.Errorf("inserting post: %w", err)
		}
		return p.ID, nil
	}

	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO posts (title, content) VALUES (?, ?)`,
		p.Title, p.Content,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return 0, fmt.Errorf("%w: post", ErrConstraint)
		}
		return 0, fmt.Errorf("inserting post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading generated id: %w", err)
	}

	return id, nil
}

func (t *sqliteTx) PostsByID(ctx context.Context, id int64) ([]Post, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, title, content FROM posts WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying posts by id: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (t *sqliteTx) AllPosts(ctx context.Context) ([]Post, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, title, content FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying all posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (t *sqliteTx) UpdatePost(ctx context.Context, p Post) (int64, error) {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ? WHERE id = ?`,
		p.Title, p.Content, p.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("updating post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return affected, nil
}

func (t *sqliteTx) DeletePosts(ctx context.Context, id int64) (int64, error) {
	result, err := t.tx.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return affected, nil
}

// scanPosts reads every row from rows into a slice. The slice is non-nil
// even when empty so callers can range without a nil check.
func scanPosts(rows *sql.Rows) ([]Post, error) {
	posts := []Post{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content); err != nil {
			return nil, fmt.Errorf("scanning post row: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post rows: %w", err)
	}

	return posts, nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}
