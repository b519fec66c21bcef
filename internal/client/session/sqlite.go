package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/loginflow/internal/client/migrations"
	"github.com/dmitrijs2005/loginflow/internal/client/models"
	"github.com/dmitrijs2005/loginflow/internal/dbx"
)

// SQLiteStore keeps the session in a local SQLite database. Several
// processes may share one file; the last writer wins.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) and migrates the database at dsn.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := dbx.OpenSQLite(ctx, dsn, migrations.Migrations)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	return get(ctx, s.db, key)
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return set(ctx, s.db, key, value)
}

// SetTokens writes both keys in one transaction.
func (s *SQLiteStore) SetTokens(ctx context.Context, pair models.TokenPair) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, KeyAccessToken, pair.Access); err != nil {
			return err
		}
		return set(ctx, tx, KeyRefreshToken, pair.Refresh)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func get(ctx context.Context, q dbx.DBTX, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, q dbx.DBTX, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO session (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}
