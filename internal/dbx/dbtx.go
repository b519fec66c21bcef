// Package dbx provides the small amount of database plumbing the session
// store needs: a minimal interface (DBTX) implemented by both *sql.DB and
// *sql.Tx, a transaction helper, and SQLite bootstrap with goose migrations.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// BusyTimeoutMillis is how long a writer waits for another process holding
// the database lock before giving up.
const BusyTimeoutMillis = 5000

// DBTX is the subset of database/sql used by the store.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// OpenSQLite opens the database at dsn and applies the migrations found at
// the root of migrations. The pool is limited to one connection: SQLite
// allows a single writer, and ":memory:" databases are per connection.
func OpenSQLite(ctx context.Context, dsn string, migrations fs.FS) (*sql.DB, error) {
	db, err := sql.Open("sqlite", withBusyTimeout(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}

	if err := Migrate(ctx, db, migrations); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies all pending goose migrations from migrations. It is safe
// to call repeatedly.
func Migrate(ctx context.Context, db *sql.DB, migrations fs.FS) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func withBusyTimeout(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", dsn, sep, BusyTimeoutMillis)
}
